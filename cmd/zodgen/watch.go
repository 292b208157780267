package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/zodgen/config"
)

var watchFlags outputFlags

var watchCmd = &cobra.Command{
	Use:   "watch [inputs...]",
	Short: "Regenerate whenever an input changes",
	Long: `Generate once, then watch every input and regenerate after changes
settle for watch.debounce. Failures are logged and watching continues.
Stops on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args, &watchFlags)
		if err != nil {
			return err
		}
		log := newLogger(cfg.Logging, cmd.ErrOrStderr())
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch(ctx, cfg, log, cmd.OutOrStdout(), nil)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchFlags.bind(watchCmd)
}

// watchSet decides which file events concern the inputs.
type watchSet struct {
	dirs   map[string]bool // Go package directories
	files  map[string]bool // explicitly listed files
	output string
}

func newWatchSet(cfg *config.Config) (*watchSet, error) {
	ws := &watchSet{dirs: map[string]bool{}, files: map[string]bool{}}
	if !cfg.ToStdout() {
		ws.output = filepath.Clean(cfg.Output)
	}
	for _, in := range cfg.Inputs {
		st, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in, err)
		}
		if st.IsDir() {
			ws.dirs[filepath.Clean(in)] = true
		} else {
			ws.files[filepath.Clean(in)] = true
		}
	}
	return ws, nil
}

// roots are the directories handed to fsnotify. Files are watched through
// their directory so atomic saves are seen.
func (ws *watchSet) roots() []string {
	seen := map[string]bool{}
	var out []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for d := range ws.dirs {
		add(d)
	}
	for f := range ws.files {
		add(filepath.Dir(f))
	}
	return out
}

func (ws *watchSet) relevant(name string) bool {
	name = filepath.Clean(name)
	if name == ws.output {
		return false
	}
	if ws.files[name] {
		return true
	}
	return ws.dirs[filepath.Dir(name)] && strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}

// watch regenerates on input changes until ctx is done. done, when non-nil,
// receives the result of every generation pass.
func watch(ctx context.Context, cfg *config.Config, log zerolog.Logger, stdout io.Writer, done chan<- error) error {
	ws, err := newWatchSet(cfg)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, d := range ws.roots() {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
		log.Debug().Str("dir", d).Msg("watching")
	}

	pass := func() {
		err := runOnce(cfg, log, stdout)
		if err != nil {
			log.Error().Err(err).Msg("generation failed")
		}
		if done != nil {
			select {
			case done <- err:
			case <-ctx.Done():
			}
		}
	}
	pass()
	log.Info().Int("inputs", len(cfg.Inputs)).Dur("debounce", cfg.Watch.Debounce).Msg("watching for changes")

	timer := time.NewTimer(cfg.Watch.Debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ws.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("input changed")
			timer.Reset(cfg.Watch.Debounce)

		case <-timer.C:
			pass()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("file watcher error")
		}
	}
}
