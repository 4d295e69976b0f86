// Package server exposes the bot engine over a WebSocket chat endpoint.
//
// The transport contract is thin on purpose: each frame carries the
// message text and, optionally, the literal text of the message being
// replied to. Reply linkage is the client's responsibility; the engine
// only ever sees delivered text.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/qt-konan/zeroiq-bot/bot"
	"github.com/qt-konan/zeroiq-bot/config"
	"github.com/qt-konan/zeroiq-bot/errors"
)

// Server serves the chat WebSocket and health endpoints.
type Server struct {
	engine   *bot.Engine
	cfg      config.ServerConfig
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New creates a chat server around an engine.
func New(engine *bot.Engine, cfg config.ServerConfig, logger *zap.SugaredLogger) *Server {
	s := &Server{
		engine: engine,
		cfg:    cfg,
		logger: logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin allows any origin when no allowlist is configured (local
// dev default), otherwise requires an exact match.
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealthz)

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Infow("Chat server listening", "addr", addr)
		}
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "chat server failed")
		}
		return nil
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleWS upgrades the connection and hands it to a client loop.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Warnw("WebSocket upgrade failed", "error", err)
		}
		return
	}

	client := newClient(conn, s.engine, s.logger)
	if s.logger != nil {
		s.logger.Infow("Client connected", "client_id", client.id, "remote", r.RemoteAddr)
	}

	go client.writePump()
	client.readPump(context.Background())
}
