// Package mcp implements the Model Context Protocol surface of the server:
// JSON-RPC 2.0 message types, a stdio transport, and the request handlers
// for tool discovery and tool calls.
package mcp

// Request represents a JSON-RPC 2.0 request message.
type Request struct {
	JSONRPC string      `json:"jsonrpc"` // must be "2.0"
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response message.
type Response struct {
	JSONRPC string      `json:"jsonrpc"` // must be "2.0"
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// JSON-RPC 2.0 error codes
const (
	ParseError     = -32700 // invalid JSON received or produced
	InvalidRequest = -32600 // invalid JSON-RPC request structure
	MethodNotFound = -32601 // unknown method
	InvalidParams  = -32602 // invalid method parameters
	InternalError  = -32603 // server internal error
)

// IsNotification reports whether the request carries no id and therefore
// expects no response.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}
