// Package bootstrap holds the flags and component wiring shared by the
// voicechat subcommands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/config"
	"github.com/papercomputeco/voicechat/pkg/conversation"
	"github.com/papercomputeco/voicechat/pkg/history"
	"github.com/papercomputeco/voicechat/pkg/logger"
	"github.com/papercomputeco/voicechat/pkg/openrouter"
	"github.com/papercomputeco/voicechat/pkg/speech"
	"github.com/papercomputeco/voicechat/pkg/transcript"
)

// Flags are the persistent flags of the root command.
type Flags struct {
	ConfigPath string
	Debug      bool
	Model      string
}

// Register adds the flags to cmd as persistent flags.
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file (default ~/.voicechat/config.toml)")
	cmd.PersistentFlags().BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVarP(&f.Model, "model", "m", "", "Model to use instead of the configured default")
}

// Config loads and validates the configuration with flag overrides applied.
func (f *Flags) Config() (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}
	if f.Debug {
		cfg.Debug = true
	}
	if f.Model != "" {
		cfg.OpenRouter.DefaultModel = f.Model
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Logger creates the process logger for cfg.
func Logger(cfg *config.Config) *zap.Logger {
	return logger.NewLogger(cfg.Debug)
}

// Runtime is the wired set of components behind every front end.
type Runtime struct {
	Config       *config.Config
	Logger       *zap.Logger
	Client       *openrouter.Client
	History      *history.Store
	Transcript   *transcript.Recorder
	Conversation *conversation.Orchestrator
	Speech       *speech.Components
}

// New wires the completion client, history, transcript, orchestrator and
// speech collaborators.
func New(cfg *config.Config, log *zap.Logger) (*Runtime, error) {
	client, err := openrouter.New(openrouter.ConfigFrom(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("could not create completion client: %w", err)
	}

	speechComponents, err := speech.NewComponents(cfg.Speech, log)
	if err != nil {
		return nil, fmt.Errorf("could not create speech components: %w", err)
	}

	store := history.New(cfg.History.MaxMessages)
	recorder := transcript.NewRecorder(transcript.NewMemoryStorer(transcript.WithMaxNodes(transcript.DefaultMaxNodes)))

	return &Runtime{
		Config:       cfg,
		Logger:       log,
		Client:       client,
		History:      store,
		Transcript:   recorder,
		Conversation: conversation.New(client, store, log, conversation.WithTranscript(recorder)),
		Speech:       speechComponents,
	}, nil
}

// CheckConnection probes the endpoint. The client logs a warning when it is
// unreachable; startup continues either way.
func (r *Runtime) CheckConnection(ctx context.Context) bool {
	return r.Client.TestConnection(ctx)
}

// Close releases speech resources and the transcript store.
func (r *Runtime) Close() error {
	return errors.Join(r.Speech.Close(), r.Transcript.Storer().Close())
}
