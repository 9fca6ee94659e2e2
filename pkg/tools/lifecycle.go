package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/pagehand/pagehand/pkg/engine"
	"github.com/pagehand/pagehand/pkg/logging"
)

// Manager owns the single engine instance for the process. The first caller
// of Ensure performs initialization while concurrent callers block on the
// same attempt; a successful init is cached for the process lifetime, a
// failed one is discarded so a later call can retry from scratch.
type Manager struct {
	mu      sync.Mutex
	factory func() engine.Engine
	eng     engine.Engine
	log     *logging.Logger
}

// NewManager creates a lifecycle manager that builds engine instances with
// factory.
func NewManager(factory func() engine.Engine, log *logging.Logger) *Manager {
	return &Manager{
		factory: factory,
		log:     log,
	}
}

// Ensure returns the ready engine, initializing it on first use.
func (m *Manager) Ensure(ctx context.Context) (engine.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.eng != nil {
		return m.eng, nil
	}

	m.log.Infof("initializing automation engine")
	eng := m.factory()
	if err := eng.Init(ctx); err != nil {
		_ = eng.Close()
		m.log.Errorf("engine initialization failed: %v", err)
		return nil, fmt.Errorf("engine initialization failed: %w", err)
	}

	m.eng = eng
	m.log.Infof("automation engine ready")
	return m.eng, nil
}

// Close tears down the engine if it was initialized.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.eng == nil {
		return nil
	}
	err := m.eng.Close()
	m.eng = nil
	return err
}
