// Package server exposes a conversation over HTTP for the browser UI.
package server

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/conversation"
	"github.com/papercomputeco/voicechat/pkg/llm"
	"github.com/papercomputeco/voicechat/pkg/speech"
)

//go:embed static/index.html
var indexHTML []byte

// ModelSource lists the models of the completion endpoint.
// *openrouter.Client implements it.
type ModelSource interface {
	AvailableModels(ctx context.Context) *llm.ModelList
	ModelInfo(ctx context.Context, name string) *llm.ModelInfo
}

// Server serves the web UI and its JSON API. Every request shares one
// conversation; turns from concurrent requests are serialized by the history
// store, not by the server.
type Server struct {
	config Config
	conv   *conversation.Orchestrator
	models ModelSource
	speech *speech.Components
	logger *zap.Logger
	app    *fiber.App
}

// New creates a new Server. speechComponents may be nil, in which case speech
// routes report the capability as unavailable.
func New(config Config, conv *conversation.Orchestrator, models ModelSource, speechComponents *speech.Components, logger *zap.Logger) (*Server, error) {
	if conv == nil {
		return nil, errors.New("server requires a conversation")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if speechComponents == nil {
		speechComponents = &speech.Components{
			Recorder:    speech.DisabledRecorder{},
			Transcriber: speech.DisabledTranscriber{},
			Synthesizer: speech.SilentSynthesizer{Logger: logger},
		}
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		conv:   conv,
		models: models,
		speech: speechComponents,
		logger: logger,
		app:    app,
	}

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(s.logRequests)

	s.registerRoutes(app)
	return s, nil
}

func (s *Server) registerRoutes(app *fiber.App) {
	app.Get("/", s.handleIndex)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	// Conversation
	app.Post("/start_recording", s.handleStartRecording)
	app.Post("/stop_recording", s.handleStopRecording)
	app.Post("/send_text", s.handleSendText)
	app.Post("/send_text/stream", s.handleSendTextStream)
	app.Post("/stop_speaking", s.handleStopSpeaking)
	app.Post("/clear_history", s.handleClearHistory)
	app.Get("/status", s.handleStatus)

	// Models
	app.Get("/models", s.handleModels)
	app.Get("/models/info", s.handleModelInfo)

	// Transcript inspection
	app.Get("/transcript", s.handleTranscript)
	app.Get("/transcript/stats", s.handleTranscriptStats)
	app.Get("/transcript/:hash", s.handleTranscriptAt)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting web server", zap.String("listen", s.config.ListenAddr))
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting web server", zap.String("listen", ln.Addr().String()))
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests until
// ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// Close releases speech resources and the transcript store.
func (s *Server) Close() error {
	err := s.speech.Close()
	if r := s.conv.Transcript(); r != nil {
		err = errors.Join(err, r.Storer().Close())
	}
	return err
}

// logRequests logs every request after it is handled.
func (s *Server) logRequests(c *fiber.Ctx) error {
	startTime := time.Now()
	err := c.Next()

	s.logger.Debug("handled request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(startTime)),
		zap.Error(err),
	)
	return err
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(llm.ErrorResponse{Success: false, Error: msg})
}
