package cmds

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/strictdev/contact-relay/internal/client"
	"github.com/strictdev/contact-relay/internal/form"
	"github.com/strictdev/contact-relay/internal/limiter"
	"github.com/strictdev/contact-relay/internal/logger"
)

var (
	submitName         string
	submitEmail        string
	submitCompany      string
	submitRequirements string
)

// submitCmd exercises the relay end to end with a real submission. It runs
// the same pre-flight pipeline the site runs, so a locally invalid payload
// fails before touching the relay.
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Send a test submission through the relay",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, span := tracer.Start(cmd.Context(), "submitCmd")
		defer span.End()

		span.SetAttributes(attribute.String("relay", relayURL))

		l := limiter.New(limiter.NewMemoryStore(), uuid.NewString())
		c := client.New(relayURL+"/api/contact/", l, nil)

		err := c.Submit(ctx, form.Normalize(form.Payload{
			Name:         submitName,
			Email:        submitEmail,
			Company:      submitCompany,
			Requirements: submitRequirements,
		}))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "submission failed")

			var vErr *client.ValidationError
			if errors.As(err, &vErr) {
				for field, msg := range vErr.Fields {
					logger.Logger.Error("field rejected", "field", field, "message", msg)
				}
				return err
			}

			var rErr *client.RejectedError
			if errors.As(err, &rErr) {
				logger.Logger.Error("relay rejected submission",
					"status", rErr.StatusCode,
					"message", rErr.Message,
					"field", rErr.Field,
				)
				return err
			}

			return fmt.Errorf("submission failed: %w", err)
		}

		logger.Logger.InfoContext(ctx, "submission delivered")

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "submission delivered")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVarP(&submitName, "name", "n", "", "Sender name")
	submitCmd.Flags().StringVarP(&submitEmail, "email", "e", "", "Sender email")
	submitCmd.Flags().StringVarP(&submitCompany, "company", "c", "", "Sender company")
	submitCmd.Flags().
		StringVarP(&submitRequirements, "requirements", "m", "", "Project description")

	for _, flag := range []string{"name", "email", "requirements"} {
		err := submitCmd.MarkFlagRequired(flag)
		if err != nil {
			logger.Logger.Error("error setting flag required", "flag", flag, "error", err)
			os.Exit(1)
		}
	}
}
