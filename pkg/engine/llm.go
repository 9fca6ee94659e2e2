package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pagehand/pagehand/pkg/schema"
)

// ActionPlan is the interpreter's decision for a single page interaction.
type ActionPlan struct {
	Method   string `json:"method"`   // click, fill, or press
	Selector string `json:"selector"` // CSS selector of the target element
	Value    string `json:"value"`    // input text or key name, when relevant
}

// Interpreter turns natural-language instructions into page interactions and
// structured data using a chat-completion model.
type Interpreter struct {
	client openai.Client
	model  string
}

// NewInterpreter creates an interpreter for the given provider credentials
// and model identifier. An empty baseURL uses the provider default.
func NewInterpreter(apiKey, baseURL, model string) *Interpreter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Interpreter{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// complete performs one non-streaming chat completion.
func (i *Interpreter) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := i.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(i.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// PlanAction asks the model which single interaction fulfils the action
// description against the given page snapshot and element digest.
func (i *Interpreter) PlanAction(ctx context.Context, action, snapshot, elements string) (*ActionPlan, error) {
	reply, err := i.complete(ctx, actionSystemPrompt, buildActionPrompt(action, snapshot, elements))
	if err != nil {
		return nil, err
	}

	var plan ActionPlan
	if err := json.Unmarshal([]byte(StripCodeFences(reply)), &plan); err != nil {
		return nil, fmt.Errorf("model returned an unusable action plan: %w", err)
	}
	if plan.Method == "" || plan.Selector == "" {
		return nil, fmt.Errorf("model returned an incomplete action plan")
	}
	return &plan, nil
}

// ExtractData asks the model for data matching the schema from the page
// snapshot and returns the decoded value.
func (i *Interpreter) ExtractData(ctx context.Context, instruction string, sc *schema.Schema, snapshot string) (interface{}, error) {
	reply, err := i.complete(ctx, extractSystemPrompt, buildExtractPrompt(instruction, sc.PromptJSON(), snapshot))
	if err != nil {
		return nil, err
	}

	var value interface{}
	if err := json.Unmarshal([]byte(StripCodeFences(reply)), &value); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return value, nil
}

// ObserveElements asks the model which elements are relevant to the
// instruction.
func (i *Interpreter) ObserveElements(ctx context.Context, instruction, snapshot, elements string) ([]Observation, error) {
	reply, err := i.complete(ctx, observeSystemPrompt, buildObservePrompt(instruction, snapshot, elements))
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Elements []Observation `json:"elements"`
	}
	if err := json.Unmarshal([]byte(StripCodeFences(reply)), &decoded); err != nil {
		return nil, fmt.Errorf("model returned invalid observations: %w", err)
	}
	return decoded.Elements, nil
}
