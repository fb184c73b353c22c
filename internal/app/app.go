// Package app wires configuration, logging, and the compiler pipeline
// behind the command line.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/catalog"
	"github.com/vk/wodc/internal/cli"
	"github.com/vk/wodc/internal/config"
	"github.com/vk/wodc/internal/ctxlog"
	"github.com/vk/wodc/internal/export"
	"github.com/vk/wodc/internal/lint"
	"github.com/vk/wodc/internal/parser"
	"github.com/vk/wodc/internal/resolver"
	"github.com/vk/wodc/internal/results"
	"github.com/vk/wodc/internal/session"
	"github.com/vk/wodc/internal/value"
)

// App runs one parsed invocation. Output goes to out, logs to logOut.
type App struct {
	out    io.Writer
	logOut io.Writer
	invoke *cli.Config
}

// New builds the application for one invocation.
func New(out, logOut io.Writer, invoke *cli.Config) *App {
	return &App{out: out, logOut: logOut, invoke: invoke}
}

// Run executes the invocation's command.
func (a *App) Run(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := ctxlog.NewLogger(a.logOut, cfg.Log.Level, cfg.Log.Format)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("starting", "command", a.invoke.Command, "path", a.invoke.Path)

	src, err := os.ReadFile(a.invoke.Path)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	file, err := parser.Parse(string(src))
	if err != nil {
		return err
	}

	switch a.invoke.Command {
	case "fmt":
		_, err = fmt.Fprint(a.out, ast.Format(file))
		return err
	case "lint":
		return a.runLint(file, cfg)
	case "compile", "export", "rank":
		return a.runCompile(ctx, file, cfg)
	default:
		return &cli.ExitError{Code: 2, Message: "unknown command " + a.invoke.Command}
	}
}

// loadConfig layers the file config under the invocation's flags.
func (a *App) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.invoke.ConfigPath)
	if err != nil {
		return nil, err
	}
	if a.invoke.CatalogPath != "" {
		cfg.Catalog.Path = a.invoke.CatalogPath
	}
	if len(a.invoke.SearchPaths) > 0 {
		cfg.Resolver.SearchPaths = a.invoke.SearchPaths
	}
	if a.invoke.LogLevel != "" {
		cfg.Log.Level = a.invoke.LogLevel
	}
	if a.invoke.LogFormat != "" {
		cfg.Log.Format = a.invoke.LogFormat
	}
	return cfg, nil
}

func (a *App) loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return nil, nil
	}
	return catalog.Load(cfg.Catalog.Path)
}

func (a *App) runLint(file *ast.File, cfg *config.Config) error {
	cat, err := a.loadCatalog(cfg)
	if err != nil {
		return err
	}
	diags := lint.Lint(file, cat)
	for _, d := range diags {
		fmt.Fprintln(a.out, d.String())
	}
	if lint.HasErrors(diags) {
		return &cli.ExitError{Code: 1, Message: "lint found errors"}
	}
	return nil
}

func (a *App) runCompile(ctx context.Context, file *ast.File, cfg *config.Config) error {
	sess, err := a.pickSession(ctx, file)
	if err != nil {
		return err
	}
	cat, err := a.loadCatalog(cfg)
	if err != nil {
		return err
	}

	// Modules defined next to the session win over the search paths.
	local := resolver.NewMemory()
	for _, m := range file.Modules {
		local.Register(m)
	}
	res := resolver.New(resolver.Chain(local, resolver.NewFS(cfg.Resolver.SearchPaths...)))

	compiled, err := session.Compile(ctx, sess, res, session.Options{
		Catalog: cat,
		Gender:  value.Gender(cfg.Defaults.Gender),
		Track:   value.Track(cfg.Defaults.Track),
	})
	if err != nil {
		return err
	}

	switch a.invoke.Command {
	case "export":
		return a.writeICS(compiled, cfg)
	case "rank":
		return a.writeRanking(compiled)
	default:
		raw, err := export.JSON(compiled)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, string(raw))
		return err
	}
}

// pickSession selects the session to compile. -session picks by title; a
// multi-session file without it compiles the first and warns, so nothing is
// dropped silently.
func (a *App) pickSession(ctx context.Context, file *ast.File) (*ast.Session, error) {
	if len(file.Sessions) == 0 {
		return nil, fmt.Errorf("%s defines no session", a.invoke.Path)
	}
	if a.invoke.Session != "" {
		for _, s := range file.Sessions {
			if s.Title == a.invoke.Session {
				return s, nil
			}
		}
		titles := make([]string, len(file.Sessions))
		for i, s := range file.Sessions {
			titles[i] = fmt.Sprintf("%q", s.Title)
		}
		return nil, &cli.ExitError{Code: 2, Message: fmt.Sprintf(
			"%s defines no session titled %q, has %s", a.invoke.Path, a.invoke.Session, strings.Join(titles, ", "))}
	}
	if len(file.Sessions) > 1 {
		ctxlog.FromContext(ctx).Warn("file defines several sessions, compiling the first",
			"count", len(file.Sessions), "title", file.Sessions[0].Title)
	}
	return file.Sessions[0], nil
}

func (a *App) writeICS(compiled *session.CompiledSession, cfg *config.Config) error {
	if a.invoke.Start == "" {
		return &cli.ExitError{Code: 2, Message: "export needs -start"}
	}
	start, err := parseStart(a.invoke.Start)
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}
	raw, err := export.ICS(compiled, export.ICSOptions{
		Start:            start,
		OpenEndedSeconds: cfg.Export.OpenEndedMinutes * 60,
	})
	if err != nil {
		return err
	}
	_, err = a.out.Write(raw)
	return err
}

func parseStart(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse start time %q", raw)
}

func (a *App) writeRanking(compiled *session.CompiledSession) error {
	if len(compiled.Scoring) == 0 {
		return fmt.Errorf("session %q has no scoring directive", compiled.Title)
	}
	spec := compiled.Scoring[0]
	if a.invoke.Alias != "" {
		found := false
		for _, s := range compiled.Scoring {
			if s.Alias == a.invoke.Alias {
				spec, found = s, true
				break
			}
		}
		if !found {
			return fmt.Errorf("session has no scoring directive for alias %q", a.invoke.Alias)
		}
	}

	data, err := os.ReadFile(a.invoke.ScoresPath)
	if err != nil {
		return fmt.Errorf("reading scores: %w", err)
	}
	var records []results.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parsing scores: %w", err)
	}

	raw, err := json.MarshalIndent(results.Rank(records, spec), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(raw))
	return err
}
