package engine

import (
	"fmt"
	"strings"
)

const actionSystemPrompt = `You control a web page through CSS selectors. Given a page snapshot, a list
of interactive elements, and an action to perform, reply with a single JSON
object {"method": "click"|"fill"|"press", "selector": "<css>", "value": "<text or key>"}
and nothing else. Use "value" only for fill (the text) and press (the key name).`

const extractSystemPrompt = `You extract structured data from web pages. Reply with a single JSON value
that matches the requested schema exactly. Do not wrap the value in prose or
markdown.`

const observeSystemPrompt = `You identify elements on a web page that are relevant to an instruction.
Reply with a single JSON object {"elements": [{"selector": "<css>", "description": "<why>"}]}
and nothing else.`

func buildActionPrompt(action, snapshot, elements string) string {
	return fmt.Sprintf("Action to perform: %s\n\nInteractive elements:\n%s\nPage snapshot:\n%s", action, elements, snapshot)
}

func buildExtractPrompt(instruction, schemaJSON, snapshot string) string {
	return fmt.Sprintf("Instruction: %s\n\nSchema:\n%s\n\nPage snapshot:\n%s", instruction, schemaJSON, snapshot)
}

func buildObservePrompt(instruction, snapshot, elements string) string {
	return fmt.Sprintf("Instruction: %s\n\nInteractive elements:\n%s\nPage snapshot:\n%s", instruction, elements, snapshot)
}

// SubstituteVariables replaces %name% placeholders in the action text with
// the corresponding variable values. Unknown placeholders are left intact.
func SubstituteVariables(action string, variables map[string]string) string {
	if len(variables) == 0 {
		return action
	}

	result := action
	for name, value := range variables {
		result = strings.ReplaceAll(result, "%"+name+"%", value)
	}
	return result
}

// StripCodeFences removes a surrounding markdown code fence from a model
// reply, tolerating a language tag after the opening fence.
func StripCodeFences(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line.
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || !strings.ContainsAny(first, "{[\"") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
