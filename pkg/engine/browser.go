package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"

	"github.com/pagehand/pagehand/pkg/config"
	"github.com/pagehand/pagehand/pkg/logging"
	"github.com/pagehand/pagehand/pkg/schema"
)

// Viewport and content limits for the managed page.
const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 720
	defaultTimeoutMillis  = 30000.0
	maxSnapshotChars      = 12000
)

// elementDigestScript collects the interactive elements on the page with a
// usable CSS selector and short label for each, for the interpreter's
// action-planning and observation prompts.
const elementDigestScript = `() => {
	const nodes = document.querySelectorAll('a, button, input, select, textarea, [role="button"], [onclick]');
	const out = [];
	nodes.forEach((el, i) => {
		if (out.length >= 100) return;
		let selector;
		if (el.id) {
			selector = '#' + CSS.escape(el.id);
		} else if (el.name) {
			selector = el.tagName.toLowerCase() + '[name="' + el.name + '"]';
		} else {
			selector = el.tagName.toLowerCase() + ':nth-of-type(' + (i + 1) + ')';
		}
		const text = (el.innerText || el.value || el.placeholder || el.getAttribute('aria-label') || '').trim().slice(0, 80);
		out.push({ selector: selector, tag: el.tagName.toLowerCase(), text: text });
	});
	return out;
}`

// Browser is the playwright-backed Engine implementation. A single headless
// chromium instance with one page is created by Init and shared by all
// subsequent operations.
type Browser struct {
	cfg    config.EngineConfig
	interp *Interpreter
	log    *logging.Logger

	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
}

// NewBrowser creates an uninitialized engine with the given configuration
// and interpreter. Call Init before any operation.
func NewBrowser(cfg config.EngineConfig, interp *Interpreter, log *logging.Logger) *Browser {
	return &Browser{
		cfg:    cfg,
		interp: interp,
		log:    log,
	}
}

// Init installs and starts playwright, launches chromium, and opens the
// page. Any failure leaves the engine unusable.
func (b *Browser) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Discard driver output so it cannot pollute the protocol stream.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}
	b.pw = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &b.cfg.Headless,
	})
	if err != nil {
		b.teardown()
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	b.browser = browser

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  defaultViewportWidth,
			Height: defaultViewportHeight,
		},
	})
	if err != nil {
		b.teardown()
		return fmt.Errorf("failed to create browser context: %w", err)
	}
	b.bctx = bctx

	page, err := bctx.NewPage()
	if err != nil {
		b.teardown()
		return fmt.Errorf("failed to create page: %w", err)
	}
	b.page = page

	b.log.Infof("engine initialized: headless=%v model=%s", b.cfg.Headless, b.cfg.Model)
	return nil
}

// Navigate loads url in the active page and waits for the load event.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	if err := b.ready(ctx); err != nil {
		return err
	}

	waitUntil := playwright.WaitUntilStateLoad
	timeout := defaultTimeoutMillis
	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntil,
		Timeout:   &timeout,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Act asks the interpreter for an action plan against the current page and
// executes it.
func (b *Browser) Act(ctx context.Context, action string, variables map[string]string) (string, error) {
	if err := b.ready(ctx); err != nil {
		return "", err
	}

	resolved := SubstituteVariables(action, variables)
	snapshot, err := b.snapshot()
	if err != nil {
		return "", err
	}
	elements, err := b.elementDigest()
	if err != nil {
		return "", err
	}

	plan, err := b.interp.PlanAction(ctx, resolved, snapshot, elements)
	if err != nil {
		return "", fmt.Errorf("action planning failed: %w", err)
	}

	if err := b.executePlan(plan); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s %s", plan.Method, plan.Selector), nil
}

// executePlan performs one planned page interaction.
func (b *Browser) executePlan(plan *ActionPlan) error {
	timeout := defaultTimeoutMillis

	switch plan.Method {
	case "click":
		if err := b.page.Click(plan.Selector, playwright.PageClickOptions{Timeout: &timeout}); err != nil {
			return fmt.Errorf("click failed: %w", err)
		}
	case "fill":
		if err := b.page.Fill(plan.Selector, plan.Value, playwright.PageFillOptions{Timeout: &timeout}); err != nil {
			return fmt.Errorf("fill failed: %w", err)
		}
	case "press":
		if err := b.page.Press(plan.Selector, plan.Value, playwright.PagePressOptions{Timeout: &timeout}); err != nil {
			return fmt.Errorf("press failed: %w", err)
		}
	default:
		return fmt.Errorf("unsupported action method %q", plan.Method)
	}

	return nil
}

// Extract pulls structured data from the page, validates it against the
// schema, and wraps it under the "data" key.
func (b *Browser) Extract(ctx context.Context, instruction string, sc *schema.Schema) (map[string]interface{}, error) {
	if err := b.ready(ctx); err != nil {
		return nil, err
	}

	snapshot, err := b.snapshot()
	if err != nil {
		return nil, err
	}

	value, err := b.interp.ExtractData(ctx, instruction, sc, snapshot)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	if err := sc.Validate(value); err != nil {
		return nil, fmt.Errorf("extracted data does not match schema: %w", err)
	}

	return map[string]interface{}{"data": value}, nil
}

// Observe returns candidate elements relevant to the instruction.
func (b *Browser) Observe(ctx context.Context, instruction string) ([]Observation, error) {
	if err := b.ready(ctx); err != nil {
		return nil, err
	}

	snapshot, err := b.snapshot()
	if err != nil {
		return nil, err
	}
	elements, err := b.elementDigest()
	if err != nil {
		return nil, err
	}

	observations, err := b.interp.ObserveElements(ctx, instruction, snapshot, elements)
	if err != nil {
		return nil, fmt.Errorf("observation failed: %w", err)
	}
	return observations, nil
}

// Close tears down the page, context, browser, and playwright driver.
func (b *Browser) Close() error {
	b.teardown()
	return nil
}

func (b *Browser) teardown() {
	if b.bctx != nil {
		_ = b.bctx.Close()
		b.bctx = nil
		b.page = nil
	}
	if b.browser != nil {
		_ = b.browser.Close()
		b.browser = nil
	}
	if b.pw != nil {
		_ = b.pw.Stop()
		b.pw = nil
	}
}

// ready reports whether the engine can serve an operation.
func (b *Browser) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.page == nil {
		return fmt.Errorf("engine is not initialized")
	}
	return nil
}

// snapshot captures the page title, URL, and visible text, truncated to keep
// prompts bounded.
func (b *Browser) snapshot() (string, error) {
	title, err := b.page.Title()
	if err != nil {
		title = ""
	}

	var text string
	body, err := b.page.QuerySelector("body")
	if err == nil && body != nil {
		if content, textErr := body.TextContent(); textErr == nil {
			text = content
		}
	}
	if len(text) > maxSnapshotChars {
		text = text[:maxSnapshotChars] + "\n[content truncated]"
	}

	return fmt.Sprintf("Title: %s\nURL: %s\n\n%s", title, b.page.URL(), text), nil
}

// elementDigest returns a short textual listing of interactive elements.
func (b *Browser) elementDigest() (string, error) {
	result, err := b.page.Evaluate(elementDigestScript)
	if err != nil {
		return "", fmt.Errorf("element scan failed: %w", err)
	}

	items, ok := result.([]interface{})
	if !ok {
		return "", nil
	}

	digest := ""
	for _, raw := range items {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		selector, _ := entry["selector"].(string)
		tag, _ := entry["tag"].(string)
		text, _ := entry["text"].(string)
		digest += fmt.Sprintf("%s | %s | %s\n", selector, tag, text)
	}
	return digest, nil
}
