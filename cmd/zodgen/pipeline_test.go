package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	json "github.com/goccy/go-json"

	"github.com/reoring/zodgen/config"
)

const apiSrc = `package api

//zodgen:enum tag=type
type Event interface{ isEvent() }

//zodgen:variant Event rename=left
type Left struct{}

type User struct {
	ID uint32 ` + "`json:\"id\"`" + `
}
`

const teamYAML = `
types:
  - name: Team
    fields:
      - { name: lead, type: User }
exports:
  - { name: Users, type: "Vec<User>" }
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixture(t *testing.T) (dir string, cfg *config.Config) {
	t.Helper()
	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "api", "api.go"), apiSrc)
	writeFile(t, filepath.Join(dir, "team.yaml"), teamYAML)
	cfg = &config.Config{Inputs: []string{filepath.Join(dir, "api"), filepath.Join(dir, "team.yaml")}}
	require.NoError(t, cfg.Validate())
	return dir, cfg
}

func TestRunOnce_Zod(t *testing.T) {
	_, cfg := fixture(t)
	var out bytes.Buffer
	require.NoError(t, runOnce(cfg, zerolog.Nop(), &out))

	want := "import { z } from 'zod';\n" +
		"\nexport const EventSchema = z.discriminatedUnion('type', [z.object({ type: z.literal('left') })]);\nexport type Event = z.infer<typeof EventSchema>;\n" +
		"\nexport const UserSchema = z.object({ id: z.number() });\nexport type User = z.infer<typeof UserSchema>;\n" +
		"\nexport const TeamSchema = z.object({ lead: z.object({ id: z.number() }) });\nexport type Team = z.infer<typeof TeamSchema>;\n" +
		"\nexport const UsersSchema = z.array(z.object({ id: z.number() }));\nexport type Users = z.infer<typeof UsersSchema>;\n"
	assert.Equal(t, want, out.String())
}

func TestRunOnce_ReferencesAndHeader(t *testing.T) {
	_, cfg := fixture(t)
	cfg.References = true
	cfg.Header = "generated"
	var out bytes.Buffer
	require.NoError(t, runOnce(cfg, zerolog.Nop(), &out))

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "// generated\n\nimport { z } from 'zod';\n"), s)
	assert.Contains(t, s, "export const TeamSchema = z.object({ lead: z.lazy(() => UserSchema) });")
	assert.Contains(t, s, "export const UsersSchema = z.array(z.lazy(() => UserSchema));")
}

func TestRunOnce_JSONSchemaToFile(t *testing.T) {
	dir, cfg := fixture(t)
	cfg.Format = config.FormatJSONSchema
	cfg.Output = filepath.Join(dir, "out", "schema.json")

	require.NoError(t, runOnce(cfg, zerolog.Nop(), &bytes.Buffer{}))
	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	var doc struct {
		Defs map[string]any `json:"$defs"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Defs, 4)
	assert.Contains(t, doc.Defs, "Team")

	// identical output leaves the file alone
	st, _ := os.Stat(cfg.Output)
	written, err := writeOutput(cfg, data, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, written)
	st2, _ := os.Stat(cfg.Output)
	assert.Equal(t, st.ModTime(), st2.ModTime())
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := build(&config.Config{Inputs: []string{filepath.Join(dir, "missing")}}, zerolog.Nop())
	assert.Error(t, err)

	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	_, err = build(&config.Config{Inputs: []string{filepath.Join(dir, "notes.txt")}}, zerolog.Nop())
	assert.ErrorContains(t, err, "unsupported file type")

	writeFile(t, filepath.Join(dir, "bad.yaml"), "types:\n  - name: R\n    fields: [{ name: a, type: Nope }]\n")
	var logs bytes.Buffer
	_, err = build(&config.Config{Inputs: []string{filepath.Join(dir, "bad.yaml")}}, zerolog.New(&logs))
	assert.ErrorContains(t, err, "load manifests")
	assert.Contains(t, logs.String(), `"path":"/types/0/fields/0/type"`)
}

func TestRunOnce_SynthesisError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "e2.yaml"), `
types:
  - name: E2
    directives: { content: c }
    variants: [{ name: A, unit: true }]
`)
	var logs bytes.Buffer
	cfg := &config.Config{Inputs: []string{filepath.Join(dir, "e2.yaml")}}
	require.NoError(t, cfg.Validate())
	err := runOnce(cfg, zerolog.New(&logs), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, logs.String(), `"code":"content_without_tag"`)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	buf.Reset()
	log = newLogger(config.LoggingConfig{Level: "bogus", Format: "console"}, &buf)
	log.Info().Msg("console line")
	assert.Contains(t, buf.String(), "console line")
}

func TestWatchSet(t *testing.T) {
	dir, cfg := fixture(t)
	cfg.Output = filepath.Join(dir, "api", "out.go")
	ws, err := newWatchSet(cfg)
	require.NoError(t, err)

	assert.True(t, ws.relevant(filepath.Join(dir, "api", "more.go")))
	assert.False(t, ws.relevant(filepath.Join(dir, "api", "more_test.go")))
	assert.False(t, ws.relevant(filepath.Join(dir, "api", "out.go")))
	assert.True(t, ws.relevant(filepath.Join(dir, "team.yaml")))
	assert.False(t, ws.relevant(filepath.Join(dir, "other.yaml")))
	assert.ElementsMatch(t, []string{filepath.Join(dir, "api"), dir}, ws.roots())
}

func TestWatch_Regenerates(t *testing.T) {
	dir, cfg := fixture(t)
	cfg.Output = filepath.Join(dir, "schemas.ts")
	cfg.Watch.Debounce = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	stopped := make(chan error, 1)
	go func() { stopped <- watch(ctx, cfg, zerolog.Nop(), &bytes.Buffer{}, done) }()

	require.NoError(t, <-done)
	first, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.NotContains(t, string(first), "OwnerSchema")

	writeFile(t, filepath.Join(dir, "team.yaml"), teamYAML+"  - { name: Owner, type: User }\n")
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no regeneration after change")
	}
	second, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(second), "export const OwnerSchema = z.object({ id: z.number() });")

	cancel()
	require.NoError(t, <-stopped)
}

func TestCommands(t *testing.T) {
	dir, _ := fixture(t)
	out := filepath.Join(dir, "gen.ts")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"check", "--config", filepath.Join(dir, "none.yaml"), filepath.Join(dir, "team.yaml"), filepath.Join(dir, "api")})
	assert.ErrorContains(t, rootCmd.Execute(), "config file not found")

	writeFile(t, filepath.Join(dir, "zodgen.yaml"), "inputs: [api, team.yaml]\nlogging: { level: error }\n")
	rootCmd.SetArgs([]string{"check", "--config", filepath.Join(dir, "zodgen.yaml")})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "ok: 4 exports\n", stdout.String())

	rootCmd.SetArgs([]string{"generate", "--config", filepath.Join(dir, "zodgen.yaml"), "-o", out, "--header", "hdr"})
	require.NoError(t, rootCmd.Execute())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "// hdr\n"))

	stdout.Reset()
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "zodgen dev")
}
