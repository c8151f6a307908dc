package servecmder

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/cmd/voicechat/bootstrap"
	"github.com/papercomputeco/voicechat/pkg/config"
	"github.com/papercomputeco/voicechat/server"
)

const serveLongDesc string = `Serve the voice chatbot web UI and its JSON API.

The UI records from the server's microphone, sends typed or transcribed
messages to the model and narrates replies through the configured speech
commands.

Examples:
  voicechat serve
  voicechat serve --listen 127.0.0.1:8080
  voicechat --model anthropic/claude-3-haiku serve`

const serveShortDesc string = "Serve the web UI"

// shutdownTimeout bounds the graceful shutdown of in-flight requests.
const shutdownTimeout = 5 * time.Second

type serveCommander struct {
	flags  *bootstrap.Flags
	listen string

	newLogger func(*config.Config) *zap.Logger
	onListen  func(net.Addr)
}

func NewServeCmd(flags *bootstrap.Flags) *cobra.Command {
	cmder := &serveCommander{
		flags:     flags,
		newLogger: bootstrap.Logger,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default :5000)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.flags.Config()
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.Server.ListenAddr = c.listen
	}

	log := c.newLogger(cfg)
	defer func() { _ = log.Sync() }()

	rt, err := bootstrap.New(cfg, log)
	if err != nil {
		return err
	}

	log.Info("voicechat server starting",
		zap.String("listen", cfg.Server.ListenAddr),
		zap.String("model", rt.Client.DefaultModel()),
		zap.Int("max_history", cfg.History.MaxMessages),
		zap.Bool("speech", rt.Speech.Initialized()),
	)
	rt.CheckConnection(ctx)

	srv, err := server.New(server.Config{ListenAddr: cfg.Server.ListenAddr}, rt.Conversation, rt.Client, rt.Speech, log)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Warn("failed to release resources", zap.Error(err))
		}
	}()

	ln, err := net.Listen("tcp", cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", cfg.Server.ListenAddr, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Voice Chatbot web server listening on %s\n", browseURL(ln.Addr()))
	fmt.Fprintln(out, "Speak or type messages to interact with the AI. Press Ctrl+C to stop.")
	if c.onListen != nil {
		c.onListen(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.RunWithListener(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

// browseURL turns a listen address into a URL a browser on this host can open.
func browseURL(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || tcp.IP.IsUnspecified() {
		port := 0
		if ok {
			port = tcp.Port
		}
		return fmt.Sprintf("http://localhost:%d", port)
	}
	return "http://" + tcp.String()
}
