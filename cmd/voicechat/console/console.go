package consolecmder

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/cmd/voicechat/bootstrap"
	"github.com/papercomputeco/voicechat/pkg/config"
	"github.com/papercomputeco/voicechat/pkg/console"
)

const consoleLongDesc string = `Chat with the model from the terminal.

Commands:
  voice   record from the microphone until Enter, then send the transcription
  text    type a message
  clear   clear the conversation history
  models  list available models
  help    show the commands
  quit    exit

Replies are narrated with the configured speak command before the next
prompt.`

const consoleShortDesc string = "Chat from the terminal"

type consoleCommander struct {
	flags *bootstrap.Flags

	newLogger func(*config.Config) *zap.Logger
}

func NewConsoleCmd(flags *bootstrap.Flags) *cobra.Command {
	cmder := &consoleCommander{
		flags:     flags,
		newLogger: bootstrap.Logger,
	}

	cmd := &cobra.Command{
		Use:   "console",
		Short: consoleShortDesc,
		Long:  consoleLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	return cmd
}

func (c *consoleCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.flags.Config()
	if err != nil {
		return err
	}

	log := c.newLogger(cfg)
	defer func() { _ = log.Sync() }()

	rt, err := bootstrap.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn("failed to release resources", zap.Error(err))
		}
	}()
	rt.CheckConnection(ctx)

	out := cmd.OutOrStdout()
	opts := console.Options{
		Conversation: rt.Conversation,
		Models:       rt.Client,
		Recorder:     rt.Speech.Recorder,
		Transcriber:  rt.Speech.Transcriber,
		Synthesizer:  rt.Speech.Synthesizer,
		Output:       out,
		Logger:       log,
	}

	if cmd.InOrStdin() == os.Stdin && console.IsTerminal(os.Stdin) {
		opts.Input = console.NewLinerReader()
	} else {
		opts.Input = console.NewBufferedReader(cmd.InOrStdin(), out)
	}
	defer opts.Input.Close()

	if out == os.Stdout && console.IsTerminal(os.Stdout) {
		render, err := console.NewMarkdownRenderer(console.Width(os.Stdout))
		if err != nil {
			log.Debug("markdown rendering disabled", zap.Error(err))
		} else {
			opts.Render = render
		}
	}

	return console.New(opts).Run(ctx)
}
