package modelscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/cmd/voicechat/bootstrap"
	"github.com/papercomputeco/voicechat/pkg/config"
	"github.com/papercomputeco/voicechat/pkg/llm"
	"github.com/papercomputeco/voicechat/pkg/openrouter"
)

const modelsLongDesc string = `List the models offered by OpenRouter, or show one of them.

Examples:
  voicechat models
  voicechat models --id openai/gpt-4o-mini`

const modelsShortDesc string = "List available models"

type modelsCommander struct {
	flags *bootstrap.Flags
	id    string

	newLogger func(*config.Config) *zap.Logger
}

func NewModelsCmd(flags *bootstrap.Flags) *cobra.Command {
	cmder := &modelsCommander{
		flags:     flags,
		newLogger: bootstrap.Logger,
	}

	cmd := &cobra.Command{
		Use:   "models",
		Short: modelsShortDesc,
		Long:  modelsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.id, "id", "", "Show a single model")

	return cmd
}

func (c *modelsCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.flags.Config()
	if err != nil {
		return err
	}

	log := c.newLogger(cfg)
	defer func() { _ = log.Sync() }()

	client, err := openrouter.New(openrouter.ConfigFrom(cfg), log)
	if err != nil {
		return fmt.Errorf("could not create completion client: %w", err)
	}

	out := cmd.OutOrStdout()

	if c.id != "" {
		info := client.ModelInfo(ctx, c.id)
		if info == nil {
			return fmt.Errorf("model %q not found", c.id)
		}
		printModel(cmd, info)
		return nil
	}

	list := client.AvailableModels(ctx)
	if list == nil {
		return fmt.Errorf("could not fetch models from %s", cfg.OpenRouter.BaseURL)
	}

	fmt.Fprintf(out, "%d models available\n", len(list.Data))
	for _, m := range list.Data {
		if m.Name != "" {
			fmt.Fprintf(out, "  %-45s %s\n", m.ID, m.Name)
		} else {
			fmt.Fprintf(out, "  %s\n", m.ID)
		}
	}
	return nil
}

func printModel(cmd *cobra.Command, m *llm.ModelInfo) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:             %s\n", m.ID)
	if m.Name != "" {
		fmt.Fprintf(out, "Name:           %s\n", m.Name)
	}
	if m.ContextLength > 0 {
		fmt.Fprintf(out, "Context length: %d\n", m.ContextLength)
	}
	if m.Pricing != nil {
		fmt.Fprintf(out, "Prompt price:   %s\n", m.Pricing.Prompt)
		fmt.Fprintf(out, "Output price:   %s\n", m.Pricing.Completion)
	}
	if m.Description != "" {
		fmt.Fprintf(out, "\n%s\n", m.Description)
	}
}
