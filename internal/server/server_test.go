package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nhmods/horizon-ls/internal/config"
	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/project/vfs"
)

const sessionPlanet = `{
	"name": "Example Planet",
	"starSystem": "ExampleSystem",
	"ShipLog": { "xmlFile": "planets/example_shiplog.xml" }
}`

const sessionSystem = `{
	"curiosities": [{ "id": "EXAMPLE_CURIOSITY" }],
	"entryPositions": []
}`

const sessionShipLog = `<AstroObjectEntry>
    <ID>EXAMPLE_PLANET</ID>
    <Entry>
        <ID>EXAMPLE_ENTRY</ID>
    </Entry>
    <Entry>
        <ID>EXAMPLE_ENTRY</ID>
    </Entry>
</AstroObjectEntry>`

const cleanShipLog = `<AstroObjectEntry>
    <ID>EXAMPLE_PLANET</ID>
    <Entry>
        <ID>EXAMPLE_ENTRY</ID>
    </Entry>
    <Entry>
        <ID>ANOTHER_ENTRY</ID>
    </Entry>
</AstroObjectEntry>`

// incoming is the client-side view of a server message.
type incoming struct {
	ID     *json.RawMessage `json:"id"`
	Method string           `json:"method"`
	Params json.RawMessage  `json:"params"`
	Result json.RawMessage  `json:"result"`
	Error  *lsp.RPCError    `json:"error"`
}

// session drives a server over in-memory pipes, playing the client.
type session struct {
	t      *testing.T
	writer io.Writer
	reader *bufio.Reader
	nextID int
	done   chan error
}

func startSession(t *testing.T, files map[string]string) *session {
	t.Helper()

	serverRead, clientWrite := io.Pipe()
	clientRead, serverWrite := io.Pipe()

	memfs := vfs.NewMemFS()
	for path, content := range files {
		memfs.AddFile(path, content)
	}

	cfg := config.Default()
	cfg.Watch = false
	cfg.SchemaURL = ""

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(lsp.NewTransport(serverRead, serverWrite, nil), cfg, logger, "test")
	srv.fs = memfs

	s := &session{
		t:      t,
		writer: clientWrite,
		reader: bufio.NewReader(clientRead),
		done:   make(chan error, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { s.done <- srv.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		clientWrite.Close()
		serverWrite.Close()
	})

	return s
}

func (s *session) send(payload string) {
	s.t.Helper()
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(payload), payload); err != nil {
		s.t.Fatalf("send: %v", err)
	}
}

func (s *session) request(method string, params string) int {
	s.nextID++
	id := s.nextID
	if params == "" {
		params = "null"
	}
	s.send(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":%q,"params":%s}`, id, method, params))
	return id
}

func (s *session) notify(method string, params string) {
	if params == "" {
		params = "null"
	}
	s.send(fmt.Sprintf(`{"jsonrpc":"2.0","method":%q,"params":%s}`, method, params))
}

// recv reads one message from the server.
func (s *session) recv() incoming {
	s.t.Helper()

	contentLength := 0
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			s.t.Fatalf("read header: %v", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			contentLength, _ = strconv.Atoi(v)
		}
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		s.t.Fatalf("read body: %v", err)
	}

	var msg incoming
	if err := json.Unmarshal(body, &msg); err != nil {
		s.t.Fatalf("decode %q: %v", body, err)
	}
	return msg
}

// waitResponse reads messages until the response for id arrives,
// discarding interleaved notifications.
func (s *session) waitResponse(id int) incoming {
	s.t.Helper()
	want := strconv.Itoa(id)
	for range 50 {
		msg := s.recv()
		if msg.ID != nil && string(*msg.ID) == want {
			return msg
		}
	}
	s.t.Fatalf("no response for id %d", id)
	return incoming{}
}

// waitDiagnostics reads messages until a publishDiagnostics notification
// for uri arrives.
func (s *session) waitDiagnostics(uri lsp.DocumentURI) lsp.PublishDiagnosticsParams {
	s.t.Helper()
	for range 50 {
		msg := s.recv()
		if msg.Method != lsp.MethodPublishDiagnostics {
			continue
		}
		var params lsp.PublishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.t.Fatalf("decode diagnostics: %v", err)
		}
		if params.URI == uri {
			return params
		}
	}
	s.t.Fatalf("no diagnostics for %s", uri)
	return lsp.PublishDiagnosticsParams{}
}

func (s *session) initialize() {
	s.t.Helper()
	id := s.request(lsp.MethodInitialize, fmt.Sprintf(`{"rootUri":%q}`, lsp.FilePathToURI("/mod")))
	resp := s.waitResponse(id)
	if resp.Error != nil {
		s.t.Fatalf("initialize failed: %v", resp.Error)
	}
	s.notify(lsp.MethodInitialized, "{}")
}

func sessionFiles() map[string]string {
	return map[string]string{
		"/mod/planets/example.json":        sessionPlanet,
		"/mod/planets/example_shiplog.xml": sessionShipLog,
		"/mod/systems/ExampleSystem.json":  sessionSystem,
	}
}

func TestServer_InitializeHandshake(t *testing.T) {
	s := startSession(t, sessionFiles())

	id := s.request(lsp.MethodInitialize, fmt.Sprintf(`{"rootUri":%q}`, lsp.FilePathToURI("/mod")))
	resp := s.waitResponse(id)
	if resp.Error != nil {
		t.Fatalf("initialize error: %v", resp.Error)
	}

	var result lsp.InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Capabilities.PositionEncoding != lsp.PositionEncodingUTF16 {
		t.Errorf("positionEncoding = %q, want utf-16", result.Capabilities.PositionEncoding)
	}
	if result.Capabilities.TextDocumentSync != lsp.TextDocumentSyncKindFull {
		t.Errorf("textDocumentSync = %d, want full", result.Capabilities.TextDocumentSync)
	}
	if result.ServerInfo == nil || result.ServerInfo.Name != "horizon-ls" {
		t.Errorf("serverInfo = %+v", result.ServerInfo)
	}
}

func TestServer_InitialValidationPublishesDiagnostics(t *testing.T) {
	s := startSession(t, sessionFiles())
	s.initialize()

	uri := lsp.FilePathToURI("/mod/planets/example_shiplog.xml")
	params := s.waitDiagnostics(uri)

	if len(params.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %d, want 2", len(params.Diagnostics))
	}
	for _, d := range params.Diagnostics {
		if d.Message != "Duplicate ID: `EXAMPLE_ENTRY`" {
			t.Errorf("message = %q", d.Message)
		}
	}
}

func TestServer_DidChangeClearsFixedDiagnostics(t *testing.T) {
	s := startSession(t, sessionFiles())
	s.initialize()

	uri := lsp.FilePathToURI("/mod/planets/example_shiplog.xml")
	s.waitDiagnostics(uri)

	change := struct {
		TextDocument   lsp.VersionedTextDocumentIdentifier  `json:"textDocument"`
		ContentChanges []lsp.TextDocumentContentChangeEvent `json:"contentChanges"`
	}{
		TextDocument: lsp.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: cleanShipLog}},
	}
	raw, _ := json.Marshal(change)
	s.notify(lsp.MethodDidChange, string(raw))

	params := s.waitDiagnostics(uri)
	if len(params.Diagnostics) != 0 {
		t.Errorf("diagnostics = %d, want 0 after fix", len(params.Diagnostics))
	}
	// The clearing emission carries the version the stale diagnostics
	// were produced against, not the current buffer version.
	if params.Version == nil {
		t.Error("clearing emission should carry a version for a previously flagged file")
	}
}

func TestServer_GetSystems(t *testing.T) {
	s := startSession(t, sessionFiles())
	s.initialize()

	id := s.request(lsp.MethodGetSystems, "")
	resp := s.waitResponse(id)
	if resp.Error != nil {
		t.Fatalf("getSystems error: %v", resp.Error)
	}

	var systems []string
	if err := json.Unmarshal(resp.Result, &systems); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	found := false
	for _, name := range systems {
		if name == "ExampleSystem" {
			found = true
		}
	}
	if !found {
		t.Errorf("systems = %v, want ExampleSystem present", systems)
	}
}

func TestServer_GetEntriesForSystem(t *testing.T) {
	s := startSession(t, sessionFiles())
	s.initialize()

	id := s.request(lsp.MethodGetEntriesForSystem, `{"name":"ExampleSystem"}`)
	resp := s.waitResponse(id)
	if resp.Error != nil {
		t.Fatalf("getEntriesForSystem error: %v", resp.Error)
	}

	var entries []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Result, &entries); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.ID == "EXAMPLE_ENTRY" {
			found = true
		}
	}
	if !found {
		t.Errorf("entries missing EXAMPLE_ENTRY: %v", entries)
	}

	id = s.request(lsp.MethodGetEntriesForSystem, `{"name":"UnknownSystem"}`)
	resp = s.waitResponse(id)
	if resp.Error != nil {
		t.Fatalf("unknown system should not error: %v", resp.Error)
	}
	if string(resp.Result) != "null" && len(resp.Result) != 0 {
		t.Errorf("result = %s, want null for unknown system", resp.Result)
	}
}

func TestServer_RequestBeforeInitialize(t *testing.T) {
	s := startSession(t, sessionFiles())

	id := s.request(lsp.MethodGetSystems, "")
	resp := s.waitResponse(id)
	if resp.Error == nil || resp.Error.Code != lsp.CodeServerNotInitialized {
		t.Errorf("error = %v, want server-not-initialized", resp.Error)
	}
}

func TestServer_ShutdownExit(t *testing.T) {
	s := startSession(t, sessionFiles())
	s.initialize()

	id := s.request(lsp.MethodShutdown, "")
	if resp := s.waitResponse(id); resp.Error != nil {
		t.Fatalf("shutdown error: %v", resp.Error)
	}

	s.notify(lsp.MethodExit, "")

	select {
	case err := <-s.done:
		if err != nil {
			t.Errorf("Run returned %v, want nil on exit", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not exit")
	}
}
