package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/k0kubun/pp"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/version"

	"pkt.systems/mdtree"
	"pkt.systems/mdtree/dom"
	"pkt.systems/mdtree/dump"
	"pkt.systems/mdtree/internal/config"
	"pkt.systems/mdtree/internal/logging"
	"pkt.systems/mdtree/source"
)

const (
	defaultWidth = 80
	xmlIndent    = 2
	stdinName    = "-"
)

func init() {
	version.SetDefaultModule("pkt.systems/mdtree")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cli struct {
	cfg    config.Config
	stdin  io.Reader
	out    io.Writer
	stderr io.Writer
	log    zerolog.Logger

	format      source.Format
	renderer    *lipgloss.Renderer
	theme       dump.Theme
	width       int
	osc8        bool
	fingerprint bool
	opts        []mdtree.RenderOption
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		configPath  string
		listThemes  bool
		outPath     string
		fingerprint bool
		verbosity   int
		showVersion bool
	)

	flags := pflag.NewFlagSet("mdtree", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringP("format", "f", "html", "Output format: "+strings.Join(config.Formats, "|"))
	flags.StringP("input", "i", "auto", "Input format: auto|json|markdown")
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default "+config.DefaultPath()+")")
	flags.String("raw-html", mdtree.RawEscape.String(), "Raw HTML nodes: escape|inject|sanitize")
	flags.String("header-cells", mdtree.HeaderFirstRow.String(), "Table header cells: first-row|offset-zero")
	flags.Bool("strict-fallback", false, "Render unknown nodes as empty comments")
	flags.String("link-target", "_blank", "Target attribute for links (empty to omit)")
	flags.Int("max-depth", 0, "Fail on documents nested deeper than this (0 is unlimited)")
	flags.String("override-failure", "abort", "When an override fails: abort|fallback")
	flags.StringP("theme", "t", "default", "Tree theme name")
	flags.IntP("width", "w", 0, "Tree wrap width (0 uses terminal width if available)")
	flags.StringP("osc8", "8", "auto", "OSC8 hyperlinks in tree output: auto|on|off")
	flags.String("color", "auto", "Colour output: auto|on|off")
	flags.BoolVar(&listThemes, "list-themes", false, "List available themes")
	flags.StringVarP(&outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVar(&fingerprint, "fingerprint", false, "Print a BLAKE3 fingerprint of each element tree to stderr")
	flags.CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")
	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: mdtree [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nInputs are Markdown or mdast JSON files, file:// or http(s) URLs, or - for stdin.")
		fmt.Fprintln(stderr, "If no input is provided, stdin is read.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	if listThemes {
		for _, name := range dump.AvailableThemes() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	cfg, err := config.Load(configPath, flags)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	color, _ := config.ParseSwitch(cfg.Color)
	logger := logging.SetupLogger(verbosity, stderr, color != nil && !*color)
	if cfg.File != "" {
		logger.Debug().Str("file", cfg.File).Msg("config loaded")
	}

	writer, closeOut, err := resolveOutput(outPath, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "open output: %v\n", err)
		return 1
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	c, err := newCLI(cfg, writer, logger)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	c.stdin = stdin
	c.stderr = stderr
	c.fingerprint = fingerprint

	inputs := flags.Args()
	if len(inputs) == 0 {
		inputs = []string{stdinName}
	}
	for _, in := range inputs {
		if err := c.process(ctx, in); err != nil {
			logger.Error().Err(err).Str("input", in).Msg("render failed")
			return 1
		}
	}
	return 0
}

func newCLI(cfg config.Config, w io.Writer, logger zerolog.Logger) (*cli, error) {
	format, err := source.ParseFormat(cfg.Input)
	if err != nil {
		return nil, err
	}
	theme, ok := dump.ThemeByName(cfg.Theme)
	if !ok {
		return nil, fmt.Errorf("unknown theme %q", cfg.Theme)
	}
	opts, err := cfg.RenderOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, mdtree.WithLogger(logging.GetLogger("render")))

	color, err := config.ParseSwitch(cfg.Color)
	if err != nil {
		return nil, err
	}
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(colorProfile(color, w))
	pp.ColoringEnabled = renderer.ColorProfile() != termenv.Ascii

	osc8, err := config.ParseSwitch(cfg.OSC8)
	if err != nil {
		return nil, err
	}
	c := &cli{
		cfg:      cfg,
		out:      w,
		log:      logger,
		format:   format,
		renderer: renderer,
		theme:    theme,
		width:    resolveWidth(cfg.Width, w),
		osc8:     osc8 != nil && *osc8,
		opts:     opts,
	}
	if osc8 == nil {
		c.osc8 = isTerminal(w) && dump.DetectOSC8Support()
	}
	return c, nil
}

// process renders one input document.
func (c *cli) process(ctx context.Context, input string) error {
	done := logging.LogOperationStart(c.log, "render "+input)
	defer done()
	start := time.Now()

	name, data, err := c.readInput(ctx, input)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	root, err := source.Load(name, data, c.format)
	if err != nil {
		return err
	}
	el, err := mdtree.RenderContext(ctx, root, c.opts...)
	if el == nil {
		return err
	}
	if err != nil {
		c.log.Warn().Err(err).Str("input", name).Msg("rendered with placeholders for failed overrides")
	}
	if err := c.write(el); err != nil {
		return err
	}
	if c.fingerprint {
		fmt.Fprintf(c.stderr, "%s  %s\n", dump.Fingerprint(el), name)
	}
	c.log.Info().
		Str("input", name).
		Str("size", humanize.Bytes(uint64(len(data)))).
		Str("elements", humanize.Comma(int64(mdtree.Count(el)))).
		Dur("took", time.Since(start)).
		Msg("rendered")
	return nil
}

func (c *cli) write(el *mdtree.Element) error {
	switch c.cfg.Format {
	case "xml":
		if err := dump.XML(c.out, el, xmlIndent); err != nil {
			return err
		}
		_, err := io.WriteString(c.out, "\n")
		return err
	case "tree":
		return dump.Tree(c.out, el, dump.TreeOptions{
			Theme:    c.theme,
			Width:    c.width,
			OSC8:     c.osc8,
			Renderer: c.renderer,
		})
	case "json":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(el)
	case "debug":
		_, err := pp.Fprintln(c.out, el)
		return err
	default:
		if err := dom.Render(c.out, el); err != nil {
			return err
		}
		_, err := io.WriteString(c.out, "\n")
		return err
	}
}

func (c *cli) readInput(ctx context.Context, raw string) (string, []byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil, fmt.Errorf("empty input argument")
	}
	if raw == stdinName {
		data, err := io.ReadAll(c.stdin)
		return raw, data, err
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			data, err := fetchURL(ctx, raw)
			return u.Path, data, err
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			data, err := os.ReadFile(normalizePath(path))
			return path, data, err
		}
	}
	data, err := os.ReadFile(normalizePath(raw))
	return raw, data, err
}

func fetchURL(ctx context.Context, raw string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func colorProfile(mode *bool, w io.Writer) termenv.Profile {
	if mode != nil {
		if *mode {
			return termenv.ANSI256
		}
		return termenv.Ascii
	}
	if !isTerminal(w) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

func resolveWidth(width int, w io.Writer) int {
	if width > 0 {
		return width
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
		return defaultWidth
	}
	return 0
}

func resolveOutput(path string, stdout io.Writer) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
