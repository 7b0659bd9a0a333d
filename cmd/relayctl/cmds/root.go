package cmds

import (
	"context"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/strictdev/contact-relay/relayctl")

var relayURL string

var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "Operator tool for the contact relay",
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&relayURL, "relay", "r", "http://localhost:8080", "Base URL of the relay")
}
