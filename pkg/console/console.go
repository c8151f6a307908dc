// Package console runs the interactive terminal front end: a command loop that
// sends typed or spoken utterances through the conversation and narrates the
// replies.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/conversation"
	"github.com/papercomputeco/voicechat/pkg/llm"
	"github.com/papercomputeco/voicechat/pkg/openrouter"
	"github.com/papercomputeco/voicechat/pkg/speech"
)

// maxListedModels caps the "models" command output.
const maxListedModels = 20

// styles are bound to the console output so plain writers get plain text.
type styles struct {
	banner  lipgloss.Style
	user    lipgloss.Style
	ai      lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		banner:  r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		user:    r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		ai:      r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		info:    r.NewStyle().Foreground(lipgloss.Color("8")),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Conversation runs turns. *conversation.Orchestrator implements it.
type Conversation interface {
	Respond(ctx context.Context, utterance string) (openrouter.Reply, error)
	Clear()
	HistoryLen() int
}

// ModelLister lists the remote models. *openrouter.Client implements it.
type ModelLister interface {
	AvailableModels(ctx context.Context) *llm.ModelList
}

// Options configures a Console.
type Options struct {
	Conversation Conversation
	Models       ModelLister
	Recorder     speech.Recorder
	Transcriber  speech.Transcriber
	Synthesizer  speech.Synthesizer

	Input  LineReader
	Output io.Writer

	// Render formats replies for display. Nil prints them as is.
	Render func(string) string

	Logger *zap.Logger
}

// Console is the interactive command loop.
type Console struct {
	conv        Conversation
	models      ModelLister
	recorder    speech.Recorder
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	in          LineReader
	out         io.Writer
	render      func(string) string
	style       styles
	logger      *zap.Logger
}

// New creates a Console. Missing speech collaborators are disabled.
func New(opts Options) *Console {
	c := &Console{
		conv:        opts.Conversation,
		models:      opts.Models,
		recorder:    opts.Recorder,
		transcriber: opts.Transcriber,
		synthesizer: opts.Synthesizer,
		in:          opts.Input,
		out:         opts.Output,
		render:      opts.Render,
		logger:      opts.Logger,
	}
	if c.recorder == nil {
		c.recorder = speech.DisabledRecorder{}
	}
	if c.transcriber == nil {
		c.transcriber = speech.DisabledTranscriber{}
	}
	if c.synthesizer == nil {
		c.synthesizer = speech.SilentSynthesizer{}
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.in == nil {
		c.in = NewBufferedReader(os.Stdin, c.out)
	}
	if c.render == nil {
		c.render = func(s string) string { return s }
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.style = newStyles(c.out)
	return c
}

// Run prints the banner and processes commands until "quit", end of input or
// cancellation of ctx.
func (c *Console) Run(ctx context.Context) error {
	c.printBanner()

	for {
		if ctx.Err() != nil {
			c.println("\nExiting...")
			return nil
		}

		line, err := c.in.ReadLine("\nEnter command (voice/text/clear/models/help/quit): ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.println("\nExiting...")
				return nil
			}
			return fmt.Errorf("reading command: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "quit", "exit":
			c.println("Goodbye!")
			return nil
		case "voice":
			if err := c.voiceTurn(ctx); err != nil {
				return err
			}
		case "text":
			if err := c.textTurn(ctx); err != nil {
				return err
			}
		case "clear":
			c.conv.Clear()
			c.println(c.style.info.Render("Conversation history cleared."))
		case "models":
			c.listModels(ctx)
		case "help":
			c.printHelp()
		default:
			c.println(c.style.warning.Render("Invalid command. Use 'voice', 'text', 'clear', 'models', 'help' or 'quit'."))
		}
	}
}

func (c *Console) voiceTurn(ctx context.Context) error {
	c.println("\nStarting voice recording...")
	if !c.recorder.StartRecording() {
		c.println(c.style.warning.Render("Could not start recording."))
		return nil
	}

	if _, err := c.in.ReadLine("Recording. Press Enter to stop. "); err != nil && !errors.Is(err, io.EOF) {
		_, _ = c.recorder.StopRecording()
		return fmt.Errorf("waiting for stop: %w", err)
	}

	rec, err := c.recorder.StopRecording()
	if err != nil {
		c.logger.Debug("recording failed", zap.Error(err))
		c.println(c.style.warning.Render("No speech detected or transcription failed."))
		return nil
	}
	defer func() {
		if err := rec.Remove(); err != nil {
			c.logger.Warn("failed to remove recording", zap.Error(err))
		}
	}()

	text, err := c.transcriber.Transcribe(ctx, rec)
	if err != nil {
		c.logger.Debug("transcription failed", zap.Error(err))
		c.println(c.style.warning.Render("No speech detected or transcription failed."))
		return nil
	}

	c.println(c.style.user.Render("You said:") + " " + text)
	c.respond(ctx, text)
	return nil
}

func (c *Console) textTurn(ctx context.Context) error {
	text, err := c.in.ReadLine("Enter your message: ")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("reading message: %w", err)
	}
	c.respond(ctx, text)
	return nil
}

func (c *Console) respond(ctx context.Context, utterance string) {
	reply, err := c.conv.Respond(ctx, utterance)
	if err != nil {
		if errors.Is(err, conversation.ErrEmptyUtterance) {
			c.println(c.style.warning.Render("No text provided."))
			return
		}
		c.println(c.style.warning.Render("Error: " + err.Error()))
		return
	}

	c.println(c.style.ai.Render("AI:") + " " + strings.TrimRight(c.render(reply.Text), "\n"))
	if !reply.OK() {
		c.logger.Warn("reply degraded", zap.Stringer("failure", reply.Failure), zap.Error(reply.Err))
	}

	if err := c.synthesizer.Speak(reply.Text, true); err != nil {
		c.logger.Warn("failed to speak reply", zap.Error(err))
	}
}

func (c *Console) listModels(ctx context.Context) {
	if c.models == nil {
		c.println(c.style.warning.Render("Model listing unavailable."))
		return
	}
	list := c.models.AvailableModels(ctx)
	if list == nil {
		c.println(c.style.warning.Render("Could not fetch models."))
		return
	}

	c.println(c.style.info.Render(fmt.Sprintf("%d models available:", len(list.Data))))
	for i, m := range list.Data {
		if i == maxListedModels {
			c.println(c.style.info.Render(fmt.Sprintf("  ... and %d more", len(list.Data)-maxListedModels)))
			break
		}
		c.println("  " + m.ID)
	}
}

func (c *Console) printBanner() {
	rule := strings.Repeat("=", 50)
	c.println("\n" + rule)
	c.println(c.style.banner.Render("VOICE CHATBOT - CONSOLE MODE"))
	c.println(rule)
	c.printHelp()
	c.println(rule)
}

func (c *Console) printHelp() {
	c.println("Commands:")
	c.println("  'voice'  - Record and send voice message")
	c.println("  'text'   - Send text message")
	c.println("  'clear'  - Clear conversation history")
	c.println("  'models' - List available models")
	c.println("  'help'   - Show this help")
	c.println("  'quit'   - Exit the application")
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}
