package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	z "github.com/reoring/zodgen"
	"github.com/reoring/zodgen/config"
	"github.com/reoring/zodgen/i18n"
	"github.com/reoring/zodgen/internal/goparse"
	js "github.com/reoring/zodgen/jsonschema"
	"github.com/reoring/zodgen/manifest"
)

// newLogger builds the CLI logger. Logs go to w so that generated output
// can own stdout.
func newLogger(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// inputSet splits inputs by front-end.
type inputSet struct {
	goDirs    []string
	goFiles   []string
	manifests []string
}

func isManifest(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func classify(paths []string) (inputSet, error) {
	var in inputSet
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return in, fmt.Errorf("input %s: %w", p, err)
		}
		switch {
		case st.IsDir():
			in.goDirs = append(in.goDirs, p)
		case strings.HasSuffix(p, ".go"):
			in.goFiles = append(in.goFiles, p)
		case isManifest(p):
			in.manifests = append(in.manifests, p)
		default:
			return in, fmt.Errorf("input %s: unsupported file type", p)
		}
	}
	return in, nil
}

// build loads every input and registers its types with a new Generator.
// Go types come first so that manifests can name them.
func build(cfg *config.Config, log zerolog.Logger) (*z.Generator, error) {
	i18n.SetLanguage(cfg.Language)

	in, err := classify(cfg.Inputs)
	if err != nil {
		return nil, err
	}

	opts := []z.Option{z.WithHeader(cfg.Header)}
	if cfg.References {
		opts = append(opts, z.WithReferences())
	}
	g := z.NewGenerator(opts...)

	var known []string
	addGo := func(label string, res *goparse.Result) {
		for _, w := range res.Warnings {
			log.Warn().Str("input", label).Msg(w)
		}
		for _, d := range res.Types {
			g.Add(d)
			known = append(known, d.TypeName())
		}
		log.Debug().Str("input", label).Str("package", res.Package).Int("types", len(res.Types)).Msg("parsed go source")
	}
	for _, dir := range in.goDirs {
		res, err := goparse.ParseDir(dir)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", dir, err)
		}
		addGo(dir, res)
	}
	if len(in.goFiles) > 0 {
		res, err := goparse.ParseFiles(in.goFiles...)
		if err != nil {
			return nil, fmt.Errorf("parse go files: %w", err)
		}
		addGo(strings.Join(in.goFiles, ","), res)
	}

	if len(in.manifests) > 0 {
		m, diag, err := manifest.LoadFiles(in.manifests, manifest.Options{Known: known})
		for _, w := range diag.Warnings() {
			log.Warn().Msg(w)
		}
		if err != nil {
			logIssues(log, err)
			return nil, fmt.Errorf("load manifests: %w", err)
		}
		for _, d := range m.Types {
			g.Add(d)
		}
		for _, e := range m.Exports {
			g.AddRef(e.Name, e.Type)
		}
		log.Debug().Int("types", len(m.Types)).Int("exports", len(m.Exports)).Msg("loaded manifests")
	}
	return g, nil
}

func logIssues(log zerolog.Logger, err error) {
	iss, ok := z.AsIssues(err)
	if !ok {
		return
	}
	for _, it := range iss {
		ev := log.Error().Str("path", it.Path).Str("code", it.Code)
		if src, ok := it.Params["source"].(string); ok {
			ev = ev.Str("source", src)
		}
		ev.Msg(it.Message)
	}
}

// render produces the document in the configured format.
func render(cfg *config.Config, g *z.Generator) ([]byte, error) {
	if cfg.Format == config.FormatJSONSchema {
		doc, err := g.JSONSchema()
		if err != nil {
			return nil, err
		}
		b, err := js.Marshal(doc)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	out, err := g.Generate()
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// writeOutput writes data to the configured output, leaving an identical
// file untouched. It reports whether anything was written.
func writeOutput(cfg *config.Config, data []byte, stdout io.Writer) (bool, error) {
	if cfg.ToStdout() {
		_, err := stdout.Write(data)
		return err == nil, err
	}
	if old, err := os.ReadFile(cfg.Output); err == nil && bytes.Equal(old, data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
		return false, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(cfg.Output, data, 0o644); err != nil {
		return false, fmt.Errorf("write output: %w", err)
	}
	return true, nil
}

// runOnce is one full generation pass.
func runOnce(cfg *config.Config, log zerolog.Logger, stdout io.Writer) error {
	start := time.Now()
	g, err := build(cfg, log)
	if err != nil {
		return err
	}
	data, err := render(cfg, g)
	if err != nil {
		logSynthesisError(log, err)
		return err
	}
	written, err := writeOutput(cfg, data, stdout)
	if err != nil {
		return err
	}
	log.Info().
		Int("exports", len(g.Names())).
		Str("format", cfg.Format).
		Bool("written", written).
		Dur("took", time.Since(start)).
		Msg("generated")
	return nil
}

func logSynthesisError(log zerolog.Logger, err error) {
	ce, ok := z.AsConfigError(err)
	if !ok {
		return
	}
	log.Error().
		Str("code", ce.Code).
		Str("at", ce.Location()).
		Msg(ce.Error())
}
