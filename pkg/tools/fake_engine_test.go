package tools

import (
	"context"
	"sync/atomic"

	"github.com/pagehand/pagehand/pkg/engine"
	"github.com/pagehand/pagehand/pkg/schema"
)

// fakeEngine implements engine.Engine for dispatcher and lifecycle tests.
type fakeEngine struct {
	initCalls int32
	initErr   error

	navigateErr  error
	navigatedTo  []string
	actResult    string
	actErr       error
	lastAction   string
	lastVars     map[string]string
	extractValue map[string]interface{}
	extractErr   error
	lastSchema   *schema.Schema
	observations []engine.Observation
	observeErr   error
	closed       bool
}

func (f *fakeEngine) Init(ctx context.Context) error {
	atomic.AddInt32(&f.initCalls, 1)
	return f.initErr
}

func (f *fakeEngine) Navigate(ctx context.Context, url string) error {
	f.navigatedTo = append(f.navigatedTo, url)
	return f.navigateErr
}

func (f *fakeEngine) Act(ctx context.Context, action string, variables map[string]string) (string, error) {
	f.lastAction = action
	f.lastVars = variables
	return f.actResult, f.actErr
}

func (f *fakeEngine) Extract(ctx context.Context, instruction string, sc *schema.Schema) (map[string]interface{}, error) {
	f.lastSchema = sc
	return f.extractValue, f.extractErr
}

func (f *fakeEngine) Observe(ctx context.Context, instruction string) ([]engine.Observation, error) {
	return f.observations, f.observeErr
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}
