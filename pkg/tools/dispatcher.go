package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pagehand/pagehand/pkg/engine"
	"github.com/pagehand/pagehand/pkg/logging"
	"github.com/pagehand/pagehand/pkg/mcp"
	"github.com/pagehand/pagehand/pkg/schema"
)

// ErrMalformedEngineResponse indicates an extraction result without the
// expected data field.
var ErrMalformedEngineResponse = errors.New("engine response missing data field")

// Dispatcher routes validated tool calls to engine operations and normalizes
// every outcome into a response envelope. It implements mcp.ToolService.
type Dispatcher struct {
	registry *Registry
	manager  *Manager
	log      *logging.Logger
}

// NewDispatcher creates a dispatcher over the given registry and lifecycle
// manager.
func NewDispatcher(registry *Registry, manager *Manager, log *logging.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		manager:  manager,
		log:      log,
	}
}

// Tools returns the catalog in registry order.
func (d *Dispatcher) Tools() []mcp.ToolDefinition {
	return d.registry.List()
}

// Exists reports whether name identifies a known tool.
func (d *Dispatcher) Exists(name string) bool {
	return d.registry.Exists(name)
}

// Per-operation argument shapes, decoded from the raw argument mapping
// before any engine work happens.
type navigateArgs struct {
	URL string `json:"url"`
}

type actArgs struct {
	Action    string            `json:"action"`
	Variables map[string]string `json:"variables"`
}

type extractArgs struct {
	Instruction string                 `json:"instruction"`
	Schema      map[string]interface{} `json:"schema"`
}

type observeArgs struct {
	Instruction string `json:"instruction"`
}

// Call executes the named tool. Every outcome, including engine
// initialization failure and unknown names, becomes an envelope; errors are
// never propagated to the protocol layer. Each call gets a fresh operation
// log which is attached to error envelopes.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]interface{}) *mcp.ToolResponse {
	op := logging.NewOperationLog(d.log)
	op.Logf("tool call: %s", name)

	eng, err := d.manager.Ensure(ctx)
	if err != nil {
		op.Errorf("engine initialization failed: %v", err)
		return errorEnvelope(op, fmt.Sprintf("failed to initialize browser automation: %v", err))
	}

	switch name {
	case ToolNavigate:
		return d.navigate(ctx, eng, args, op)
	case ToolAct:
		return d.act(ctx, eng, args, op)
	case ToolExtract:
		return d.extract(ctx, eng, args, op)
	case ToolObserve:
		return d.observe(ctx, eng, args, op)
	default:
		// The protocol layer validates names against the registry; this is
		// the defensive fallback.
		op.Errorf("unknown tool: %s", name)
		return errorEnvelope(op, fmt.Sprintf("unknown tool: %s", name))
	}
}

func (d *Dispatcher) navigate(ctx context.Context, eng engine.Engine, args map[string]interface{}, op *logging.OperationLog) *mcp.ToolResponse {
	var a navigateArgs
	if err := decodeArgs(args, &a); err != nil {
		op.Errorf("invalid arguments: %v", err)
		return errorEnvelope(op, fmt.Sprintf("invalid navigate arguments: %v", err))
	}
	if a.URL == "" {
		op.Errorf("missing required argument: url")
		return errorEnvelope(op, "navigate requires a url argument")
	}

	op.Logf("navigating to %s", a.URL)
	if err := eng.Navigate(ctx, a.URL); err != nil {
		op.Errorf("navigation failed: %v", err)
		return errorEnvelope(op, fmt.Sprintf("failed to navigate: %v", err))
	}

	op.Logf("navigation complete")
	return successEnvelope(fmt.Sprintf("Navigated to: %s", a.URL))
}

func (d *Dispatcher) act(ctx context.Context, eng engine.Engine, args map[string]interface{}, op *logging.OperationLog) *mcp.ToolResponse {
	var a actArgs
	if err := decodeArgs(args, &a); err != nil {
		op.Errorf("invalid arguments: %v", err)
		return errorEnvelope(op, fmt.Sprintf("invalid act arguments: %v", err))
	}
	if a.Action == "" {
		op.Errorf("missing required argument: action")
		return errorEnvelope(op, "act requires an action argument")
	}

	op.Logf("performing action: %s", a.Action)
	summary, err := eng.Act(ctx, a.Action, a.Variables)
	if err != nil {
		op.Errorf("action failed: %v", err)
		return errorEnvelope(op, fmt.Sprintf("failed to perform action: %v", err))
	}

	op.Logf("action complete: %s", summary)
	return successEnvelope(fmt.Sprintf("Action performed: %s", a.Action))
}

func (d *Dispatcher) extract(ctx context.Context, eng engine.Engine, args map[string]interface{}, op *logging.OperationLog) *mcp.ToolResponse {
	var a extractArgs
	if err := decodeArgs(args, &a); err != nil {
		op.Errorf("invalid arguments: %v", err)
		return errorEnvelope(op, fmt.Sprintf("invalid extract arguments: %v", err))
	}
	if a.Instruction == "" {
		op.Errorf("missing required argument: instruction")
		return errorEnvelope(op, "extract requires an instruction argument")
	}
	if a.Schema == nil {
		op.Errorf("missing required argument: schema")
		return errorEnvelope(op, "extract requires a schema argument")
	}

	translated, err := schema.Translate(a.Schema)
	if err != nil {
		op.Errorf("schema translation failed: %v", err)
		return errorEnvelope(op, fmt.Sprintf("failed to translate schema: %v", err))
	}

	op.Logf("extracting: %s", a.Instruction)
	result, err := eng.Extract(ctx, a.Instruction, translated)
	if err != nil {
		op.Errorf("extraction failed: %v", err)
		return errorEnvelope(op, fmt.Sprintf("failed to extract: %v", err))
	}

	data, ok := result["data"]
	if !ok {
		op.Errorf("%v", ErrMalformedEngineResponse)
		return errorEnvelope(op, fmt.Sprintf("failed to extract: %v", ErrMalformedEngineResponse))
	}

	rendered, err := json.Marshal(data)
	if err != nil {
		op.Errorf("failed to render extraction result: %v", err)
		return errorEnvelope(op, fmt.Sprintf("failed to render extraction result: %v", err))
	}

	op.Logf("extraction complete")
	return successEnvelope(fmt.Sprintf("Extraction result: %s", rendered))
}

func (d *Dispatcher) observe(ctx context.Context, eng engine.Engine, args map[string]interface{}, op *logging.OperationLog) *mcp.ToolResponse {
	var a observeArgs
	if err := decodeArgs(args, &a); err != nil {
		op.Errorf("invalid arguments: %v", err)
		return errorEnvelope(op, fmt.Sprintf("invalid observe arguments: %v", err))
	}
	if a.Instruction == "" {
		op.Errorf("missing required argument: instruction")
		return errorEnvelope(op, "observe requires an instruction argument")
	}

	op.Logf("observing: %s", a.Instruction)
	observations, err := eng.Observe(ctx, a.Instruction)
	if err != nil {
		op.Errorf("observation failed: %v", err)
		return errorEnvelope(op, fmt.Sprintf("failed to observe: %v", err))
	}

	rendered, err := json.Marshal(observations)
	if err != nil {
		op.Errorf("failed to render observations: %v", err)
		return errorEnvelope(op, fmt.Sprintf("failed to render observations: %v", err))
	}

	op.Logf("observation complete: %d elements", len(observations))
	return successEnvelope(fmt.Sprintf("Observation result: %s", rendered))
}

// decodeArgs converts the raw argument mapping into a typed argument struct
// via a JSON round trip.
func decodeArgs(args map[string]interface{}, dst interface{}) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}
	return nil
}

// successEnvelope wraps a success message.
func successEnvelope(text string) *mcp.ToolResponse {
	return &mcp.ToolResponse{
		Content: []mcp.ContentBlock{mcp.TextContent(text)},
		IsError: false,
	}
}

// errorEnvelope wraps a failure message and attaches the operation log as a
// second content block.
func errorEnvelope(op *logging.OperationLog, text string) *mcp.ToolResponse {
	return &mcp.ToolResponse{
		Content: []mcp.ContentBlock{
			mcp.TextContent(text),
			mcp.TextContent("Operation log:\n" + op.String()),
		},
		IsError: true,
	}
}
