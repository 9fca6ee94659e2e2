// Package engine provides the browser-automation capability behind the
// pagehand tools: page navigation plus AI-driven action execution,
// structured extraction, and observation against the live page.
package engine

import (
	"context"

	"github.com/pagehand/pagehand/pkg/schema"
)

// Observation describes one actionable element found on the page.
type Observation struct {
	Selector    string `json:"selector"`
	Description string `json:"description"`
}

// Engine is the automation capability consumed by the dispatcher. Init must
// be called once before any operation; implementations are safe for
// sequential use from a single dispatcher.
type Engine interface {
	// Init starts the underlying browser and prepares a page. It may be
	// slow (browser download and launch) and may fail; a failed Init leaves
	// the engine unusable and a fresh instance should be created to retry.
	Init(ctx context.Context) error

	// Navigate loads the given URL in the active page.
	Navigate(ctx context.Context, url string) error

	// Act performs the described action on the page, substituting
	// variables into the action text, and returns a human-readable summary
	// of what was done.
	Act(ctx context.Context, action string, variables map[string]string) (string, error)

	// Extract pulls structured data from the page per the instruction. The
	// result object carries the extracted value under the "data" key.
	Extract(ctx context.Context, instruction string, sc *schema.Schema) (map[string]interface{}, error)

	// Observe returns candidate elements on the page relevant to the
	// instruction.
	Observe(ctx context.Context, instruction string) ([]Observation, error)

	// Close tears down the browser and releases resources.
	Close() error
}
