package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, -32700, ParseError)
	assert.Equal(t, -32600, InvalidRequest)
	assert.Equal(t, -32601, MethodNotFound)
	assert.Equal(t, -32602, InvalidParams)
	assert.Equal(t, -32603, InternalError)
}

func TestError_ImplementsError(t *testing.T) {
	var err error = &Error{Code: InternalError, Message: "boom"}
	assert.Equal(t, "boom", err.Error())
}

func TestRequest_IsNotification(t *testing.T) {
	assert.True(t, (&Request{Method: "notifications/initialized"}).IsNotification())
	assert.False(t, (&Request{ID: 1, Method: "ping"}).IsNotification())
}

func TestResponse_ErrorOmittedOnSuccess(t *testing.T) {
	data, err := json.Marshal(&Response{JSONRPC: "2.0", ID: 1, Result: "ok"})
	require.NoError(t, err)

	assert.NotContains(t, string(data), "error")
	assert.Contains(t, string(data), `"result":"ok"`)
}

func TestToolResponse_Serialization(t *testing.T) {
	envelope := &ToolResponse{
		Content: []ContentBlock{TextContent("hello")},
		IsError: false,
	}

	data, err := json.Marshal(envelope)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"hello"}],"isError":false}`, string(data))
}
