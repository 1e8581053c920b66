// Package config loads mdtree settings from a config file, MDTREE_*
// environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/agnivade/levenshtein"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pkt.systems/mdtree"
	"pkt.systems/mdtree/dump"
)

// EnvPrefix prefixes environment overrides, e.g. MDTREE_RAW_HTML.
const EnvPrefix = "MDTREE"

// Output formats understood by the command.
var Formats = []string{"html", "xml", "tree", "json", "debug"}

// Config holds the resolved settings.
type Config struct {
	Format          string `mapstructure:"format"`
	Input           string `mapstructure:"input"`
	Theme           string `mapstructure:"theme"`
	Width           int    `mapstructure:"width"`
	OSC8            string `mapstructure:"osc8"`
	Color           string `mapstructure:"color"`
	RawHTML         string `mapstructure:"raw_html"`
	HeaderCells     string `mapstructure:"header_cells"`
	StrictFallback  bool   `mapstructure:"strict_fallback"`
	LinkTarget      string `mapstructure:"link_target"`
	MaxDepth        int    `mapstructure:"max_depth"`
	OverrideFailure string `mapstructure:"override_failure"`

	// Overrides maps node types to component overrides. Filled from the
	// overrides table by decodeOverrides.
	Overrides mdtree.Overrides `mapstructure:"-"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"format":           "format",
	"input":            "input",
	"theme":            "theme",
	"width":            "width",
	"osc8":             "osc8",
	"color":            "color",
	"raw-html":         "raw_html",
	"header-cells":     "header_cells",
	"strict-fallback":  "strict_fallback",
	"link-target":      "link_target",
	"max-depth":        "max_depth",
	"override-failure": "override_failure",
}

// DefaultPath returns the config file looked up when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "mdtree", "config.toml")
}

// Load reads the configuration. path selects a config file; when empty,
// $MDTREE_CONFIG and then the XDG config directory are tried, and a missing
// file is not an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault("format", "html")
	v.SetDefault("input", "auto")
	v.SetDefault("theme", "default")
	v.SetDefault("width", 0)
	v.SetDefault("osc8", "auto")
	v.SetDefault("color", "auto")
	v.SetDefault("raw_html", mdtree.RawEscape.String())
	v.SetDefault("header_cells", mdtree.HeaderFirstRow.String())
	v.SetDefault("strict_fallback", false)
	v.SetDefault("link_target", "_blank")
	v.SetDefault("max_depth", 0)
	v.SetDefault("override_failure", "abort")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, "mdtree"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.File = v.ConfigFileUsed()
	overrides, err := decodeOverrides(v.Get("overrides"))
	if err != nil {
		return Config{}, err
	}
	c.Overrides = overrides
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return unknown("format", c.Format, Formats)
	}
	if _, ok := dump.ThemeByName(c.Theme); !ok {
		return unknown("theme", c.Theme, dump.AvailableThemes())
	}
	if _, err := mdtree.ParseRawHTMLPolicy(c.RawHTML); err != nil {
		return err
	}
	if _, err := mdtree.ParseHeaderCellRule(c.HeaderCells); err != nil {
		return err
	}
	if _, err := parseFailure(c.OverrideFailure); err != nil {
		return err
	}
	if _, err := ParseSwitch(c.OSC8); err != nil {
		return fmt.Errorf("osc8: %w", err)
	}
	if _, err := ParseSwitch(c.Color); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	if c.Width < 0 || c.MaxDepth < 0 {
		return fmt.Errorf("width and max_depth must not be negative")
	}
	return nil
}

// RenderOptions turns the configuration into renderer options.
func (c Config) RenderOptions() ([]mdtree.RenderOption, error) {
	raw, err := mdtree.ParseRawHTMLPolicy(c.RawHTML)
	if err != nil {
		return nil, err
	}
	header, err := mdtree.ParseHeaderCellRule(c.HeaderCells)
	if err != nil {
		return nil, err
	}
	failure, err := parseFailure(c.OverrideFailure)
	if err != nil {
		return nil, err
	}
	return []mdtree.RenderOption{
		mdtree.WithOverrides(c.Overrides),
		mdtree.WithRawHTML(raw),
		mdtree.WithHeaderCells(header),
		mdtree.WithStrictFallback(c.StrictFallback),
		mdtree.WithLinkTarget(c.LinkTarget),
		mdtree.WithMaxDepth(c.MaxDepth),
		mdtree.WithOverrideFailure(failure),
	}, nil
}

// ParseSwitch parses auto|on|off style settings. It returns nil for auto.
func ParseSwitch(s string) (*bool, error) {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return nil, nil
	case "on", "true", "1", "yes", "always":
		v = true
	case "off", "false", "0", "no", "never":
		v = false
	default:
		return nil, fmt.Errorf("invalid value %q: expected auto|on|off", s)
	}
	return &v, nil
}

func parseFailure(s string) (mdtree.FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return mdtree.FailAbort, nil
	case "fallback":
		return mdtree.FailFallback, nil
	default:
		return mdtree.FailAbort, unknown("override_failure", s, []string{"abort", "fallback"})
	}
}

// decodeOverrides reads the overrides table. Each entry is either a
// component name or a table with component and props keys.
func decodeOverrides(raw any) (mdtree.Overrides, error) {
	if raw == nil {
		return nil, nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("overrides: expected a table, got %T", raw)
	}
	out := make(mdtree.Overrides, len(table))
	for key, entry := range table {
		var spelled string
		if e, ok := entry.(map[string]any); ok {
			spelled, _ = e["type"].(string)
		}
		t, err := nodeType(key, spelled)
		if err != nil {
			return nil, err
		}
		switch e := entry.(type) {
		case string:
			out[t] = mdtree.Use(mdtree.Named(e))
		case map[string]any:
			name, _ := e["component"].(string)
			var comp mdtree.Component
			if name != "" {
				comp = mdtree.Named(name)
			}
			var props mdtree.Props
			if p, ok := e["props"].(map[string]any); ok {
				props = mdtree.Props(p)
			}
			if comp == nil && len(props) == 0 {
				return nil, fmt.Errorf("overrides.%s: needs a component or props", key)
			}
			out[t] = mdtree.UseProps(comp, props)
		default:
			return nil, fmt.Errorf("overrides.%s: expected a string or table, got %T", key, entry)
		}
	}
	return out, nil
}

// extraNodeTypes are mdast types without a default rule. Listing them
// restores the case viper folds out of config keys.
var extraNodeTypes = []mdtree.NodeType{
	"definition",
	"footnoteDefinition",
	"footnoteReference",
	"imageReference",
	"inlineMath",
	"linkReference",
	"math",
	"toml",
}

// nodeType maps a config key back to a node type. Keys arrive lower-cased;
// spelled, the type field of a table entry, gives the exact spelling of a
// type no list knows. A key close to a type with a default rule is treated
// as a typo unless spelled confirms it.
func nodeType(key, spelled string) (mdtree.NodeType, error) {
	known := mdtree.KnownNodeTypes()
	names := make([]string, len(known))
	for i, t := range known {
		if strings.EqualFold(string(t), key) {
			return t, nil
		}
		names[i] = string(t)
	}
	for _, t := range extraNodeTypes {
		if strings.EqualFold(string(t), key) {
			return t, nil
		}
	}
	if spelled != "" {
		if !strings.EqualFold(spelled, key) {
			return "", fmt.Errorf("overrides.%s: type %q does not match the key", key, spelled)
		}
		key = spelled
	} else if Suggest(key, names) != "" {
		return "", unknown("node type", key, names)
	}
	if !validTypeName(key) {
		return "", fmt.Errorf("overrides.%s: invalid node type name", key)
	}
	return mdtree.NodeType(key), nil
}

// validTypeName accepts lower-camel identifiers such as footnoteReference.
func validTypeName(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return s != ""
}

func unknown(what, got string, candidates []string) error {
	if s := Suggest(got, candidates); s != "" {
		return fmt.Errorf("unknown %s %q (did you mean %q?)", what, got, s)
	}
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	return fmt.Errorf("unknown %s %q: expected one of %s", what, got, strings.Join(sorted, ", "))
}

// Suggest returns the candidate closest to s by edit distance, or "" when
// nothing is close enough.
func Suggest(s string, candidates []string) string {
	s = strings.ToLower(s)
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(s, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := len(s) / 3
	if limit < 1 {
		limit = 1
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}
