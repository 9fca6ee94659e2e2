package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Transport carries JSON-RPC messages between the server and a client.
type Transport interface {
	// Start begins listening for incoming messages.
	Start(ctx context.Context) error

	// Send transmits a JSON-RPC response to the client.
	Send(response *Response) error

	// Receive returns a channel of incoming requests. The channel is closed
	// when the transport shuts down.
	Receive() <-chan *Request

	// Close gracefully shuts down the transport.
	Close() error
}

// StdioTransport implements Transport over stdin/stdout using
// newline-delimited JSON-RPC messages.
type StdioTransport struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	reqChan chan *Request
	mu      sync.Mutex
	closed  bool
}

// NewStdioTransport creates a transport on os.Stdin and os.Stdout.
func NewStdioTransport() *StdioTransport {
	return NewStdioTransportWithIO(os.Stdin, os.Stdout)
}

// NewStdioTransportWithIO creates a transport on custom streams, primarily
// for testing.
func NewStdioTransportWithIO(reader io.Reader, writer io.Writer) *StdioTransport {
	return &StdioTransport{
		reader:  bufio.NewReader(reader),
		writer:  bufio.NewWriter(writer),
		reqChan: make(chan *Request, 10),
	}
}

// Start begins reading messages from the input stream.
func (t *StdioTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	go t.readLoop(ctx)
	return nil
}

// readLoop continuously reads newline-delimited JSON-RPC requests.
func (t *StdioTransport) readLoop(ctx context.Context) {
	defer close(t.reqChan)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := t.reader.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			t.handleLine(ctx, trimmed)
		}
		if err != nil {
			// EOF or a broken stream; a trailing unterminated line has
			// already been handled above.
			return
		}
	}
}

// handleLine parses one inbound line and delivers it to the request channel.
func (t *StdioTransport) handleLine(ctx context.Context, line string) {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		t.sendParseError(nil, err)
		return
	}

	if req.JSONRPC != "2.0" {
		t.sendInvalidRequest(req.ID, "invalid jsonrpc version")
		return
	}

	select {
	case t.reqChan <- &req:
	case <-ctx.Done():
	}
}

// Send writes a JSON-RPC response as a single line followed by a newline.
func (t *StdioTransport) Send(response *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport is closed")
	}

	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if _, err := t.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush response: %w", err)
	}

	return nil
}

// Receive returns the channel of incoming requests.
func (t *StdioTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close marks the transport closed. The request channel is closed by the
// read loop.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	return nil
}

// sendParseError reports an inbound message that was not valid JSON.
func (t *StdioTransport) sendParseError(id interface{}, err error) {
	_ = t.Send(&Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    ParseError,
			Message: "Parse error",
			Data:    err.Error(),
		},
	})
}

// sendInvalidRequest reports a structurally invalid JSON-RPC request.
func (t *StdioTransport) sendInvalidRequest(id interface{}, reason string) {
	_ = t.Send(&Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    InvalidRequest,
			Message: "Invalid Request",
			Data:    reason,
		},
	})
}
