package lsp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
)

func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func TestTransport_ReadMessage_Notification(t *testing.T) {
	body := `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///a.json"}}}`
	tr := NewTransport(strings.NewReader(frame(body)), io.Discard, nil)

	msg, err := tr.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	if !msg.IsNotification() {
		t.Error("expected notification")
	}
	if msg.Method != MethodDidOpen {
		t.Errorf("Method = %q, want %q", msg.Method, MethodDidOpen)
	}

	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if params.TextDocument.URI != "file:///a.json" {
		t.Errorf("URI = %q, want %q", params.TextDocument.URI, "file:///a.json")
	}
}

func TestTransport_ReadMessage_Request(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":7,"method":"getSystems"}`
	tr := NewTransport(strings.NewReader(frame(body)), io.Discard, nil)

	msg, err := tr.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	if msg.IsNotification() {
		t.Error("expected request, got notification")
	}
	if string(*msg.ID) != "7" {
		t.Errorf("ID = %s, want 7", *msg.ID)
	}
}

func TestTransport_ReadMessage_MissingContentLength(t *testing.T) {
	tr := NewTransport(strings.NewReader("\r\n"), io.Discard, nil)

	_, err := tr.ReadMessage()
	if err == nil {
		t.Fatal("expected error for frame without Content-Length")
	}
}

func TestTransport_ReadMessage_EOF(t *testing.T) {
	tr := NewTransport(strings.NewReader(""), io.Discard, nil)

	_, err := tr.ReadMessage()
	if err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestTransport_Notify(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTransport(strings.NewReader(""), &buf, nil)

	version := 3
	params := PublishDiagnosticsParams{
		URI:     "file:///planets/p.json",
		Version: &version,
		Diagnostics: []Diagnostic{{
			Range:    Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 1, Character: 8}},
			Severity: DiagnosticSeverityError,
			Code:     "nh.shiplog.duplicate_ids",
			Source:   "New Horizons",
			Message:  "Duplicate ID: `X`",
		}},
	}
	if err := tr.Notify(MethodPublishDiagnostics, params); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Content-Length: ") {
		t.Fatalf("missing Content-Length header: %q", out)
	}
	if !strings.Contains(out, `"version":3`) {
		t.Errorf("output missing version: %q", out)
	}
	if !strings.Contains(out, `"Duplicate ID: `) {
		t.Errorf("output missing message: %q", out)
	}
}

func TestTransport_Notify_NullVersion(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTransport(strings.NewReader(""), &buf, nil)

	params := PublishDiagnosticsParams{
		URI:         "file:///stale.json",
		Diagnostics: []Diagnostic{},
	}
	if err := tr.Notify(MethodPublishDiagnostics, params); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	// Clearing an unseen file must carry an explicit null version and an
	// empty (not absent) diagnostics array.
	out := buf.String()
	if !strings.Contains(out, `"version":null`) {
		t.Errorf("output missing null version: %q", out)
	}
	if !strings.Contains(out, `"diagnostics":[]`) {
		t.Errorf("output missing empty diagnostics: %q", out)
	}
}

func TestTransport_Reply(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTransport(strings.NewReader(""), &buf, nil)

	id := json.RawMessage("42")
	if err := tr.Reply(id, []string{"SolarSystem"}); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"id":42`) {
		t.Errorf("output missing id: %q", out)
	}
	if !strings.Contains(out, `"SolarSystem"`) {
		t.Errorf("output missing result: %q", out)
	}
}

func TestTransport_Closed(t *testing.T) {
	tr := NewTransport(strings.NewReader(""), io.Discard, nil)
	if err := tr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := tr.ReadMessage(); err != ErrClosed {
		t.Errorf("ReadMessage after close = %v, want ErrClosed", err)
	}
	if err := tr.Notify("x", nil); err != ErrClosed {
		t.Errorf("Notify after close = %v, want ErrClosed", err)
	}
}
