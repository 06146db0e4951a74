package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nhmods/horizon-ls/internal/basegame"
	"github.com/nhmods/horizon-ls/internal/config"
	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/project"
	"github.com/nhmods/horizon-ls/internal/project/vfs"
	"github.com/nhmods/horizon-ls/internal/project/watcher"
	"github.com/nhmods/horizon-ls/internal/validate"
	"github.com/nhmods/horizon-ls/internal/validate/filepaths"
)

// errExit signals a clean exit requested by the client.
var errExit = errors.New("exit requested")

// Server owns the protocol session: one project, one validator set, one
// client.
type Server struct {
	transport *lsp.Transport
	cfg       config.Config
	logger    *slog.Logger
	fs        vfs.VFS
	version   string

	dataset *basegame.Dataset
	store   *project.Store
	runner  *validate.Runner
	checker *filepaths.Checker
	watch   *watcher.Watcher

	shuttingDown bool
}

// New creates a server over the given transport. Nothing is discovered or
// validated until the client completes the initialize handshake.
func New(transport *lsp.Transport, cfg config.Config, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		transport: transport,
		cfg:       cfg,
		logger:    logger,
		fs:        vfs.NewOS(),
		version:   version,
		dataset:   basegame.Default(),
	}
}

// Run processes messages until the client exits, the transport closes, or
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	msgs := make(chan *lsp.Message, 8)
	readErrs := make(chan error, 1)

	go func() {
		for {
			msg, err := s.transport.ReadMessage()
			if err != nil {
				if errors.Is(err, lsp.ErrMissingContentLength) {
					s.logger.Warn("skipping malformed frame", "error", err)
					continue
				}
				readErrs <- err
				return
			}
			select {
			case msgs <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	defer s.stopWatcher()

	for {
		// The watcher channel is nil until initialization enables it;
		// a nil channel never fires.
		var batches <-chan []string
		if s.watch != nil {
			batches = s.watch.Batches()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErrs:
			if errors.Is(err, io.EOF) || errors.Is(err, lsp.ErrClosed) {
				s.logger.Info("client disconnected")
				return nil
			}
			return fmt.Errorf("read message: %w", err)

		case batch := <-batches:
			s.onWatcherBatch(batch)

		case msg := <-msgs:
			if err := s.handle(ctx, msg); err != nil {
				if errors.Is(err, errExit) {
					return nil
				}
				return err
			}
		}
	}
}

// handle dispatches one message. Handler failures are reported to the
// client; only exit and transport breakage end the session.
func (s *Server) handle(ctx context.Context, msg *lsp.Message) error {
	if msg.IsNotification() {
		if msg.Method == lsp.MethodExit {
			return errExit
		}
		s.handleNotification(ctx, msg)
		return nil
	}
	if msg.ID == nil {
		s.logger.Warn("dropping message with no id and no method")
		return nil
	}
	return s.handleRequest(msg)
}

func (s *Server) handleRequest(msg *lsp.Message) error {
	id := *msg.ID

	switch msg.Method {
	case lsp.MethodInitialize:
		return s.onInitialize(id, msg.Params)

	case lsp.MethodShutdown:
		s.shuttingDown = true
		return s.transport.Reply(id, nil)

	case lsp.MethodGetSystems:
		return s.onGetSystems(id)

	case lsp.MethodGetEntriesForSystem:
		return s.onGetEntriesForSystem(id, msg.Params)

	default:
		s.logger.Warn("unknown request", "method", msg.Method)
		return s.transport.ReplyError(id, lsp.CodeMethodNotFound,
			fmt.Sprintf("method not supported: %s", msg.Method))
	}
}

func (s *Server) handleNotification(ctx context.Context, msg *lsp.Message) {
	switch msg.Method {
	case lsp.MethodInitialized:
		s.onInitialized(ctx)

	case lsp.MethodDidOpen:
		s.onDidOpen(msg.Params)

	case lsp.MethodDidChange:
		s.onDidChange(msg.Params)

	case lsp.MethodDidClose:
		s.onDidClose(msg.Params)

	default:
		s.logger.Debug("ignoring notification", "method", msg.Method)
	}
}

// PublishDiagnostics sends diagnostics for one document to the client.
// It satisfies validate.Publisher.
func (s *Server) PublishDiagnostics(uri lsp.DocumentURI, version *int, diagnostics []lsp.Diagnostic) error {
	return s.transport.Notify(lsp.MethodPublishDiagnostics, lsp.PublishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: diagnostics,
	})
}

func (s *Server) stopWatcher() {
	if s.watch == nil {
		return
	}
	if err := s.watch.Close(); err != nil {
		s.logger.Warn("failed to stop watcher", "error", err)
	}
	s.watch = nil
}

// unmarshalParams decodes request or notification params, logging and
// rejecting malformed payloads.
func unmarshalParams[T any](logger *slog.Logger, method string, raw json.RawMessage) (T, bool) {
	var params T
	if err := json.Unmarshal(raw, &params); err != nil {
		logger.Error("malformed params", "method", method, "error", err)
		return params, false
	}
	return params, true
}
