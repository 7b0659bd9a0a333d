package main

import (
	"context"
	"os"

	"github.com/strictdev/contact-relay/cmd/relayctl/cmds"
	"github.com/strictdev/contact-relay/internal/logger"
)

func main() {
	logger.InitSlog()

	ctx := context.Background()

	if err := cmds.Execute(ctx); err != nil {
		logger.Logger.Error("error executing subcommands", "error", err)
		os.Exit(1)
	}
}
