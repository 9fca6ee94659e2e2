package mcp

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagehand/pagehand/pkg/logging"
)

// memTransport records sent responses for handler assertions.
type memTransport struct {
	mu      sync.Mutex
	sent    []*Response
	reqChan chan *Request
}

func newMemTransport() *memTransport {
	return &memTransport{reqChan: make(chan *Request, 10)}
}

func (t *memTransport) Start(ctx context.Context) error { return nil }

func (t *memTransport) Send(response *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, response)
	return nil
}

func (t *memTransport) Receive() <-chan *Request { return t.reqChan }
func (t *memTransport) Close() error             { return nil }

func (t *memTransport) lastSent(tt *testing.T) *Response {
	tt.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()
	require.NotEmpty(tt, t.sent, "no response was sent")
	return t.sent[len(t.sent)-1]
}

func (t *memTransport) sentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

// stubTools is a canned ToolService.
type stubTools struct {
	defs     []ToolDefinition
	known    map[string]bool
	response *ToolResponse
	lastName string
	lastArgs map[string]interface{}
}

func (s *stubTools) Tools() []ToolDefinition { return s.defs }
func (s *stubTools) Exists(name string) bool { return s.known[name] }

func (s *stubTools) Call(ctx context.Context, name string, args map[string]interface{}) *ToolResponse {
	s.lastName = name
	s.lastArgs = args
	return s.response
}

func newTestServer(t *testing.T, tools ToolService) (*Server, *memTransport) {
	t.Helper()

	file, err := os.OpenFile(filepath.Join(t.TempDir(), "test.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	require.NoError(t, err)
	log := logging.NewWithWriter(file, false)
	t.Cleanup(func() { log.Close() })

	transport := newMemTransport()
	return NewServer(transport, tools, ServerInfo{Name: "pagehand", Version: "test"}, log), transport
}

func defaultStub() *stubTools {
	return &stubTools{
		defs: []ToolDefinition{
			{Name: "navigate", Description: "go somewhere", InputSchema: map[string]interface{}{"type": "object"}},
		},
		known: map[string]bool{"navigate": true},
		response: &ToolResponse{
			Content: []ContentBlock{TextContent("ok")},
		},
	}
}

func TestServer_Initialize(t *testing.T) {
	server, transport := newTestServer(t, defaultStub())

	server.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	resp := transport.lastSent(t)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, ProtocolVersion, result["protocolVersion"])
	assert.Equal(t, ServerInfo{Name: "pagehand", Version: "test"}, result["serverInfo"])
}

func TestServer_InitializedNotificationHasNoResponse(t *testing.T) {
	server, transport := newTestServer(t, defaultStub())

	server.handleRequest(context.Background(), &Request{JSONRPC: "2.0", Method: "notifications/initialized"})

	assert.Equal(t, 0, transport.sentCount())
}

func TestServer_Ping(t *testing.T) {
	server, transport := newTestServer(t, defaultStub())

	server.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 5, Method: "ping"})

	resp := transport.lastSent(t)
	assert.Nil(t, resp.Error)
	assert.Equal(t, 5, resp.ID)
}

func TestServer_ToolsList(t *testing.T) {
	server, transport := newTestServer(t, defaultStub())

	server.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 2, Method: "tools/list"})

	resp := transport.lastSent(t)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	tools, ok := result["tools"].([]ToolDefinition)
	require.True(t, ok)
	require.Len(t, tools, 1)
	assert.Equal(t, "navigate", tools[0].Name)
}

func TestServer_ToolsCallDelegates(t *testing.T) {
	stub := defaultStub()
	server, transport := newTestServer(t, stub)

	server.handleRequest(context.Background(), &Request{
		JSONRPC: "2.0",
		ID:      3,
		Method:  "tools/call",
		Params: map[string]interface{}{
			"name":      "navigate",
			"arguments": map[string]interface{}{"url": "https://example.com"},
		},
	})

	resp := transport.lastSent(t)
	require.Nil(t, resp.Error)
	assert.Equal(t, stub.response, resp.Result)
	assert.Equal(t, "navigate", stub.lastName)
	assert.Equal(t, map[string]interface{}{"url": "https://example.com"}, stub.lastArgs)
}

func TestServer_ToolsCallUnknownNameIsProtocolError(t *testing.T) {
	server, transport := newTestServer(t, defaultStub())

	server.handleRequest(context.Background(), &Request{
		JSONRPC: "2.0",
		ID:      4,
		Method:  "tools/call",
		Params:  map[string]interface{}{"name": "not_a_real_tool"},
	})

	resp := transport.lastSent(t)
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidRequest, resp.Error.Code)
	assert.Nil(t, resp.Result)
}

func TestServer_ToolsCallMissingParams(t *testing.T) {
	server, transport := newTestServer(t, defaultStub())

	server.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 6, Method: "tools/call"})

	resp := transport.lastSent(t)
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidParams, resp.Error.Code)
}

func TestServer_ToolsCallMissingName(t *testing.T) {
	server, transport := newTestServer(t, defaultStub())

	server.handleRequest(context.Background(), &Request{
		JSONRPC: "2.0",
		ID:      7,
		Method:  "tools/call",
		Params:  map[string]interface{}{"arguments": map[string]interface{}{}},
	})

	resp := transport.lastSent(t)
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidParams, resp.Error.Code)
}

func TestServer_UnknownMethod(t *testing.T) {
	server, transport := newTestServer(t, defaultStub())

	server.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 8, Method: "resources/list"})

	resp := transport.lastSent(t)
	require.NotNil(t, resp.Error)
	assert.Equal(t, MethodNotFound, resp.Error.Code)
}

func TestServer_MissingMethodIsInvalidRequest(t *testing.T) {
	server, transport := newTestServer(t, defaultStub())

	server.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 9})

	resp := transport.lastSent(t)
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidRequest, resp.Error.Code)
}

func TestServer_UnserializableResultBecomesParseError(t *testing.T) {
	stub := defaultStub()
	server, transport := newTestServer(t, stub)

	// A function value cannot be rendered as JSON; the sanitize step must
	// substitute a parse-error response instead of sending a broken payload.
	server.sendSanitized(&Response{
		JSONRPC: "2.0",
		ID:      10,
		Result:  map[string]interface{}{"value": func() {}},
	})

	resp := transport.lastSent(t)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ParseError, resp.Error.Code)
}

func TestServer_HandlerPanicBecomesInternalError(t *testing.T) {
	server, transport := newTestServer(t, &panicTools{})

	server.handleRequest(context.Background(), &Request{
		JSONRPC: "2.0",
		ID:      11,
		Method:  "tools/call",
		Params:  map[string]interface{}{"name": "navigate"},
	})

	resp := transport.lastSent(t)
	require.NotNil(t, resp.Error)
	assert.Equal(t, InternalError, resp.Error.Code)
}

// panicTools panics on Call to exercise the recover path.
type panicTools struct{}

func (p *panicTools) Tools() []ToolDefinition { return nil }
func (p *panicTools) Exists(name string) bool { return true }
func (p *panicTools) Call(ctx context.Context, name string, args map[string]interface{}) *ToolResponse {
	panic("tool service exploded")
}
