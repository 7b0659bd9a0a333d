package cmds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/strictdev/contact-relay/internal/logger"
	"github.com/strictdev/contact-relay/internal/types"
)

var pingWaitSecs int64

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the relay's health and configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, span := tracer.Start(cmd.Context(), "pingCmd")
		defer span.End()

		span.SetAttributes(attribute.String("relay", relayURL))

		client := &http.Client{Timeout: 10 * time.Second}

		b := retry.NewFibonacci(time.Millisecond * 250)
		b = retry.WithMaxDuration(time.Duration(pingWaitSecs)*time.Second, b)

		var ping types.PingResponse
		err := retry.Do(ctx, b, func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(
				ctx,
				http.MethodGet,
				relayURL+"/api/ping/",
				nil,
			)
			if err != nil {
				return err
			}

			resp, err := client.Do(req)
			if err != nil {
				logger.Logger.Debug("relay not reachable yet", "error", err)
				return retry.RetryableError(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return retry.RetryableError(
					fmt.Errorf("relay answered status %d", resp.StatusCode),
				)
			}

			return json.NewDecoder(resp.Body).Decode(&ping)
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "relay did not become healthy")
			return fmt.Errorf("relay did not become healthy: %w", err)
		}

		logger.Logger.InfoContext(ctx, "relay is up",
			"host", ping.Host,
			"time", ping.Time,
			"has_web3forms_access_key", ping.HasWeb3FormsAccessKey,
			"has_turnstile_secret_key", ping.HasTurnstileSecretKey,
		)

		if !ping.HasWeb3FormsAccessKey {
			logger.Logger.Warn("relay has no delivery access key; submissions will fail")
		}

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "relay is healthy")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)

	pingCmd.Flags().
		Int64VarP(&pingWaitSecs, "wait", "w", 30, "Seconds to keep retrying before giving up")
}
