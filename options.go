package mdtree

import (
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// RenderOption configures rendering behavior.
type RenderOption func(*renderConfig)

// RawHTMLPolicy selects how html nodes are rendered.
type RawHTMLPolicy uint8

const (
	// RawEscape shows the markup as literal text inside a preformatted block.
	RawEscape RawHTMLPolicy = iota
	// RawInject emits the markup unescaped. Only safe for trusted input.
	RawInject
	// RawSanitize emits the markup after running it through a sanitizer.
	RawSanitize
)

func (p RawHTMLPolicy) String() string {
	switch p {
	case RawEscape:
		return "escape"
	case RawInject:
		return "inject"
	case RawSanitize:
		return "sanitize"
	default:
		return fmt.Sprintf("RawHTMLPolicy(%d)", uint8(p))
	}
}

// ParseRawHTMLPolicy parses escape, inject or sanitize.
func ParseRawHTMLPolicy(s string) (RawHTMLPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "escape":
		return RawEscape, nil
	case "inject", "unsafe":
		return RawInject, nil
	case "sanitize":
		return RawSanitize, nil
	default:
		return RawEscape, fmt.Errorf("unknown raw html policy %q: expected escape|inject|sanitize", s)
	}
}

// HeaderCellRule decides which table cells render as header cells.
type HeaderCellRule uint8

const (
	// HeaderFirstRow marks every cell of the first row of a table.
	HeaderFirstRow HeaderCellRule = iota
	// HeaderOffsetZero marks cells whose row starts at source offset 0. Kept
	// for output compatibility; it matches at most one row per document.
	HeaderOffsetZero
)

func (h HeaderCellRule) String() string {
	switch h {
	case HeaderFirstRow:
		return "first-row"
	case HeaderOffsetZero:
		return "offset-zero"
	default:
		return fmt.Sprintf("HeaderCellRule(%d)", uint8(h))
	}
}

// ParseHeaderCellRule parses first-row or offset-zero.
func ParseHeaderCellRule(s string) (HeaderCellRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-row", "row":
		return HeaderFirstRow, nil
	case "offset-zero", "offset":
		return HeaderOffsetZero, nil
	default:
		return HeaderFirstRow, fmt.Errorf("unknown header cell rule %q: expected first-row|offset-zero", s)
	}
}

// FailurePolicy decides what happens when an override callback fails.
type FailurePolicy uint8

const (
	// FailAbort stops rendering and returns the error without a tree.
	FailAbort FailurePolicy = iota
	// FailFallback renders the placeholder for the failing node, finishes the
	// tree and returns it together with the joined errors.
	FailFallback
)

const defaultLinkTarget = "_blank"

type renderConfig struct {
	overrides      Overrides
	rawHTML        RawHTMLPolicy
	sanitize       func(string) string
	headerCells    HeaderCellRule
	strictFallback bool
	linkTarget     string
	maxDepth       int
	failure        FailurePolicy
	logger         zerolog.Logger
}

func newRenderConfig(opts []RenderOption) renderConfig {
	cfg := renderConfig{
		linkTarget: defaultLinkTarget,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.sanitize == nil {
		cfg.sanitize = sanitizeUGC
	}
	return cfg
}

var ugcPolicy = sync.OnceValue(bluemonday.UGCPolicy)

func sanitizeUGC(s string) string {
	return ugcPolicy().Sanitize(s)
}

// WithOverrides registers every override in m. The map is copied.
func WithOverrides(m Overrides) RenderOption {
	return func(cfg *renderConfig) {
		for t, o := range m {
			cfg.setOverride(t, o)
		}
	}
}

// WithOverride registers o for nodes of type t. A nil o removes the override.
func WithOverride(t NodeType, o Override) RenderOption {
	return func(cfg *renderConfig) {
		cfg.setOverride(t, o)
	}
}

func (cfg *renderConfig) setOverride(t NodeType, o Override) {
	if o == nil {
		delete(cfg.overrides, t)
		return
	}
	if cfg.overrides == nil {
		cfg.overrides = make(Overrides)
	}
	cfg.overrides[t] = o
}

// WithRawHTML selects the html node policy. The default is RawEscape.
func WithRawHTML(policy RawHTMLPolicy) RenderOption {
	return func(cfg *renderConfig) {
		cfg.rawHTML = policy
	}
}

// WithSanitizer replaces the sanitizer used by RawSanitize. The default is
// bluemonday's UGC policy.
func WithSanitizer(fn func(string) string) RenderOption {
	return func(cfg *renderConfig) {
		cfg.sanitize = fn
	}
}

// WithHeaderCells selects the header cell rule. The default is HeaderFirstRow.
func WithHeaderCells(rule HeaderCellRule) RenderOption {
	return func(cfg *renderConfig) {
		cfg.headerCells = rule
	}
}

// WithStrictFallback renders placeholders without the node dump.
func WithStrictFallback(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.strictFallback = enabled
	}
}

// WithLinkTarget sets the target of rendered links. An empty target omits
// the property. The default is "_blank".
func WithLinkTarget(target string) RenderOption {
	return func(cfg *renderConfig) {
		cfg.linkTarget = target
	}
}

// WithMaxDepth fails rendering with ErrMaxDepth once the tree is deeper than
// depth levels below the root. Zero means unlimited.
func WithMaxDepth(depth int) RenderOption {
	return func(cfg *renderConfig) {
		cfg.maxDepth = depth
	}
}

// WithOverrideFailure selects what happens when an override callback fails.
func WithOverrideFailure(policy FailurePolicy) RenderOption {
	return func(cfg *renderConfig) {
		cfg.failure = policy
	}
}

// WithLogger sets the logger used for placeholder and failure diagnostics.
func WithLogger(logger zerolog.Logger) RenderOption {
	return func(cfg *renderConfig) {
		cfg.logger = logger
	}
}
