package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/voicechat/cmd/voicechat/bootstrap"
	consolecmder "github.com/papercomputeco/voicechat/cmd/voicechat/console"
	modelscmder "github.com/papercomputeco/voicechat/cmd/voicechat/models"
	servecmder "github.com/papercomputeco/voicechat/cmd/voicechat/serve"
)

const rootLongDesc string = `Talk to an OpenRouter-hosted model by voice or text.

Without a subcommand the web UI is served, like "voicechat serve".

Configuration is read from ~/.voicechat/config.toml when present and from
the environment (OPENROUTER_API_KEY, OPENROUTER_BASE_URL, DEFAULT_MODEL,
VOICECHAT_LISTEN, VOICECHAT_MAX_HISTORY, DEBUG).`

func newRootCmd() *cobra.Command {
	flags := &bootstrap.Flags{}
	serveCmd := servecmder.NewServeCmd(flags)

	cmd := &cobra.Command{
		Use:          "voicechat",
		Short:        "Voice chatbot backed by OpenRouter",
		Long:         rootLongDesc,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         serveCmd.RunE,
	}
	flags.Register(cmd)

	cmd.AddCommand(serveCmd)
	cmd.AddCommand(consolecmder.NewConsoleCmd(flags))
	cmd.AddCommand(modelscmder.NewModelsCmd(flags))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
