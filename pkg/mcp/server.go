package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pagehand/pagehand/pkg/logging"
)

// ProtocolVersion is the MCP protocol revision this server speaks.
const ProtocolVersion = "2024-11-05"

// ServerInfo identifies the server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Server binds a ToolService to the MCP methods over a Transport. Every
// inbound request receives a structurally valid response, even on internal
// failure.
type Server struct {
	transport Transport
	tools     ToolService
	info      ServerInfo
	log       *logging.Logger
}

// NewServer creates an MCP server.
func NewServer(transport Transport, tools ToolService, info ServerInfo, log *logging.Logger) *Server {
	return &Server{
		transport: transport,
		tools:     tools,
		info:      info,
		log:       log,
	}
}

// Serve starts the transport and processes requests until ctx is cancelled
// or the transport shuts down. A transport start failure is the only error
// it returns; per-request failures become protocol error responses.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.log.Infof("server started: %s %s", s.info.Name, s.info.Version)
	s.processRequests(ctx)
	return nil
}

func (s *Server) processRequests(ctx context.Context) {
	reqChan := s.transport.Receive()

	for {
		select {
		case <-ctx.Done():
			s.log.Infof("server shutting down")
			return
		case req, ok := <-reqChan:
			if !ok {
				s.log.Infof("transport closed")
				return
			}
			s.handleRequest(ctx, req)
		}
	}
}

// handleRequest processes a single JSON-RPC request. Panics and handler
// errors become protocol-level error responses, never crashes.
func (s *Server) handleRequest(ctx context.Context, req *Request) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("handler panic for method %s: %v", req.Method, r)
			s.sendError(req.ID, InternalError, "Internal error", fmt.Sprintf("%v", r))
		}
	}()

	s.log.Debugf("received request: method=%s id=%v", req.Method, req.ID)

	if req.Method == "" {
		s.sendError(req.ID, InvalidRequest, "Invalid Request", "method is required")
		return
	}

	var response *Response

	switch req.Method {
	case "initialize":
		response = s.handleInitialize(req)
	case "notifications/initialized":
		// Notification only, no response.
		return
	case "ping":
		response = &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}
	case "tools/list":
		response = s.handleToolsList(req)
	case "tools/call":
		response = s.handleToolsCall(ctx, req)
	default:
		s.sendError(req.ID, MethodNotFound, "Method not found", fmt.Sprintf("unknown method: %s", req.Method))
		return
	}

	if response == nil {
		// Error response already sent by the handler.
		return
	}

	s.sendSanitized(response)
}

// handleInitialize answers the MCP handshake with the server capabilities.
func (s *Server) handleInitialize(req *Request) *Response {
	result := map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": s.info,
	}

	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// handleToolsList returns the full tool catalog in registry order.
func (s *Server) handleToolsList(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{"tools": s.tools.Tools()},
	}
}

// handleToolsCall validates the call params, rejects unknown tool names at
// the protocol level, and delegates known tools to the ToolService.
func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	params, err := parseCallParams(req.Params)
	if err != nil {
		s.sendError(req.ID, InvalidParams, "Invalid params", err.Error())
		return nil
	}

	if !s.tools.Exists(params.Name) {
		s.log.Warnf("rejected call to unknown tool %q", params.Name)
		s.sendError(req.ID, InvalidRequest, "Invalid Request", fmt.Sprintf("unknown tool: %s", params.Name))
		return nil
	}

	envelope := s.tools.Call(ctx, params.Name, params.Arguments)
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: envelope}
}

// parseCallParams decodes the params field of a tools/call request.
func parseCallParams(params interface{}) (*CallToolParams, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	// Round-trip through JSON to handle both map params and typed structs.
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var call CallToolParams
	if err := json.Unmarshal(data, &call); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool call params: %w", err)
	}

	if call.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if call.Arguments == nil {
		call.Arguments = make(map[string]interface{})
	}

	return &call, nil
}

// sendSanitized verifies the outbound response serializes to valid JSON
// before transmission; if it does not, a standard parse-error response is
// substituted so the client always receives well-formed data.
func (s *Server) sendSanitized(response *Response) {
	if _, err := json.Marshal(response); err != nil {
		s.log.Errorf("failed to serialize response for id %v: %v", response.ID, err)
		s.sendError(response.ID, ParseError, "Parse error", "response could not be serialized")
		return
	}

	if err := s.transport.Send(response); err != nil {
		s.log.Errorf("failed to send response for id %v: %v", response.ID, err)
	}
}

// sendError sends a protocol-level error response.
func (s *Server) sendError(id interface{}, code int, message string, data interface{}) {
	response := &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	if err := s.transport.Send(response); err != nil {
		s.log.Errorf("failed to send error response for id %v: %v", id, err)
	}
}
