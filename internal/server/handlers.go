package server

import (
	"context"
	"encoding/json"

	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/project"
	"github.com/nhmods/horizon-ls/internal/project/watcher"
	"github.com/nhmods/horizon-ls/internal/validate"
	"github.com/nhmods/horizon-ls/internal/validate/filepaths"
	"github.com/nhmods/horizon-ls/internal/validate/shiplog"
)

func (s *Server) onInitialize(id json.RawMessage, raw json.RawMessage) error {
	params, ok := unmarshalParams[lsp.InitializeParams](s.logger, lsp.MethodInitialize, raw)
	if !ok {
		return s.transport.ReplyError(id, lsp.CodeInvalidParams, "malformed initialize params")
	}

	root := rootPath(params)
	if root == "" {
		return s.transport.ReplyError(id, lsp.CodeInvalidParams, "no workspace root provided")
	}

	s.store = project.NewStore(root, s.fs, s.logger)

	validators := []validate.Validator{shiplog.NewValidator(s.dataset, s.logger)}
	if s.cfg.SchemaURL != "" {
		s.checker = filepaths.NewChecker(s.fs, s.logger)
		validators = append(validators, s.checker)
	}
	s.runner = validate.NewRunner(s, s.logger, validators...)

	s.logger.Info("initialized", "root", root)

	return s.transport.Reply(id, lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			PositionEncoding: lsp.PositionEncodingUTF16,
			TextDocumentSync: lsp.TextDocumentSyncKindFull,
		},
		ServerInfo: &lsp.ServerInfo{Name: "horizon-ls", Version: s.version},
	})
}

// rootPath extracts the workspace root, preferring rootUri over the
// deprecated rootPath, falling back to the first workspace folder.
func rootPath(params lsp.InitializeParams) string {
	if params.RootURI != "" {
		return lsp.URIToFilePath(params.RootURI)
	}
	if params.RootPath != "" {
		return params.RootPath
	}
	if len(params.WorkspaceFolders) > 0 {
		return lsp.URIToFilePath(params.WorkspaceFolders[0].URI)
	}
	return ""
}

// onInitialized performs the expensive startup work after the handshake:
// project discovery, schema fetch, first validation pass, watcher.
func (s *Server) onInitialized(ctx context.Context) {
	if s.store == nil {
		s.logger.Warn("initialized notification before initialize request")
		return
	}

	s.store.Discover()
	if s.checker != nil {
		s.checker.Prepare(ctx, s.cfg.SchemaURL)
	}
	s.runner.ValidateAll(s.store)

	if s.cfg.Watch {
		w, err := watcher.New(s.store.Root(), s.cfg.Debounce(), s.logger)
		if err != nil {
			s.logger.Warn("filesystem watching disabled", "error", err)
			return
		}
		s.watch = w
	}
}

func (s *Server) onDidOpen(raw json.RawMessage) {
	if s.store == nil {
		return
	}
	params, ok := unmarshalParams[lsp.DidOpenTextDocumentParams](s.logger, lsp.MethodDidOpen, raw)
	if !ok {
		return
	}

	doc := params.TextDocument
	s.store.Open(doc.URI, doc.Version, doc.Text)
	s.runner.OnChange([]lsp.DocumentURI{doc.URI}, s.store)
}

func (s *Server) onDidChange(raw json.RawMessage) {
	if s.store == nil {
		return
	}
	params, ok := unmarshalParams[lsp.DidChangeTextDocumentParams](s.logger, lsp.MethodDidChange, raw)
	if !ok {
		return
	}
	if len(params.ContentChanges) == 0 {
		return
	}

	// Full sync: the last change event carries the whole document.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.store.Open(params.TextDocument.URI, params.TextDocument.Version, text)
	s.runner.OnChange([]lsp.DocumentURI{params.TextDocument.URI}, s.store)
}

func (s *Server) onDidClose(raw json.RawMessage) {
	if s.store == nil {
		return
	}
	params, ok := unmarshalParams[lsp.DidCloseTextDocumentParams](s.logger, lsp.MethodDidClose, raw)
	if !ok {
		return
	}

	s.store.Close(params.TextDocument.URI)
	s.runner.OnChange([]lsp.DocumentURI{params.TextDocument.URI}, s.store)
}

// onWatcherBatch reloads files changed on disk and revalidates. Only
// files without an open editor buffer pick up the disk content.
func (s *Server) onWatcherBatch(paths []string) {
	if s.store == nil {
		return
	}

	var changed []lsp.DocumentURI
	rediscovered := false
	for _, path := range paths {
		uri := lsp.FilePathToURI(path)
		if s.store.Lookup(uri) == nil {
			// A new file may extend the project; discovery skips anything
			// already tracked, so rerunning it is cheap.
			if !rediscovered {
				s.store.Discover()
				rediscovered = true
			}
			if s.store.Lookup(uri) != nil {
				changed = append(changed, uri)
			}
			continue
		}
		if s.store.Reload(uri) {
			changed = append(changed, uri)
		}
	}
	if len(changed) == 0 {
		return
	}

	s.logger.Debug("external changes detected", "files", len(changed))
	s.runner.OnChange(changed, s.store)
}

// getEntriesForSystemParams are the parameters of the custom
// getEntriesForSystem request.
type getEntriesForSystemParams struct {
	Name string `json:"name"`
}

func (s *Server) onGetSystems(id json.RawMessage) error {
	if s.store == nil {
		return s.transport.ReplyError(id, lsp.CodeServerNotInitialized, "server not initialized")
	}

	ctx := shiplog.BuildContext(s.store, s.dataset, s.logger)
	return s.transport.Reply(id, ctx.Systems())
}

func (s *Server) onGetEntriesForSystem(id json.RawMessage, raw json.RawMessage) error {
	if s.store == nil {
		return s.transport.ReplyError(id, lsp.CodeServerNotInitialized, "server not initialized")
	}
	params, ok := unmarshalParams[getEntriesForSystemParams](s.logger, lsp.MethodGetEntriesForSystem, raw)
	if !ok {
		return s.transport.ReplyError(id, lsp.CodeInvalidParams, "malformed params")
	}

	ctx := shiplog.BuildContext(s.store, s.dataset, s.logger)
	entries, known := ctx.EntriesForSystem(params.Name)
	if !known {
		return s.transport.Reply(id, nil)
	}
	return s.transport.Reply(id, entries)
}
