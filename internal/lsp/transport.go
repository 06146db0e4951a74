package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Message is a decoded JSON-RPC message from the client.
// A nil ID with a non-empty Method is a notification; a non-nil ID with a
// Method is a request.
type Message struct {
	ID     *json.RawMessage `json:"id,omitempty"`
	Method string           `json:"method,omitempty"`
	Params json.RawMessage  `json:"params,omitempty"`
}

// IsNotification reports whether the message expects no response.
func (m *Message) IsNotification() bool {
	return m.ID == nil && m.Method != ""
}

// response is the wire shape of an outgoing JSON-RPC response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// notification is the wire shape of an outgoing JSON-RPC notification.
type notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Transport handles server-side JSON-RPC 2.0 communication, typically over
// stdio. It implements the LSP base protocol with Content-Length headers.
// Reads are expected from a single goroutine; writes are serialized.
type Transport struct {
	reader *bufio.Reader

	writeMu sync.Mutex
	writer  io.Writer

	closer io.Closer
	closed atomic.Bool
}

// NewTransport creates a transport over the given reader and writer.
// The closer may be nil.
func NewTransport(r io.Reader, w io.Writer, c io.Closer) *Transport {
	return &Transport{
		reader: bufio.NewReaderSize(r, 64*1024),
		writer: w,
		closer: c,
	}
}

// Close closes the transport and releases resources.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil // already closed
	}
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// ReadMessage reads and decodes the next message from the client.
// It returns io.EOF when the client disconnects.
func (t *Transport) ReadMessage() (*Message, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}

	body, err := t.readFrame()
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &msg, nil
}

// Reply sends a successful response for the given request ID.
func (t *Transport) Reply(id json.RawMessage, result any) error {
	return t.send(response{JSONRPC: "2.0", ID: id, Result: result})
}

// ReplyError sends an error response for the given request ID.
func (t *Transport) ReplyError(id json.RawMessage, code int, message string) error {
	return t.send(response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	})
}

// Notify sends a notification to the client.
func (t *Transport) Notify(method string, params any) error {
	return t.send(notification{JSONRPC: "2.0", Method: method, Params: params})
}

// send writes a message with the LSP Content-Length header.
func (t *Transport) send(msg any) error {
	if t.closed.Load() {
		return ErrClosed
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := io.WriteString(t.writer, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// readFrame reads a single LSP frame body.
func (t *Transport) readFrame() (json.RawMessage, error) {
	var contentLength int
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break // end of headers
		}
		if strings.HasPrefix(strings.ToLower(line), "content-length:") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				if length, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
					contentLength = length
				}
			}
		}
		// Content-Type and other headers are ignored.
	}

	if contentLength <= 0 {
		return nil, ErrMissingContentLength
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// IsClosed returns true if the transport has been closed.
func (t *Transport) IsClosed() bool {
	return t.closed.Load()
}
