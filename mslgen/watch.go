package mslgen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the event bursts editors produce on save.
const watchDebounce = 250 * time.Millisecond

// Watch compiles once, then recompiles whenever the schema file changes,
// until ctx is cancelled. Compilation errors are logged and do not stop
// the watch; only watcher failures and cancellation end it.
func Watch(ctx context.Context, opts Options) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	log := logger(opts)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	schemaPath, err := filepath.Abs(opts.SchemaPath)
	if err != nil {
		return fmt.Errorf("resolve schema path: %w", err)
	}
	// Watch the directory, not the file: editors rename over the file on
	// save, which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(schemaPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(schemaPath), err)
	}

	runPass := func() {
		report, err := Run(ctx, opts)
		switch {
		case err != nil:
			log.Error().Err(err).Msg("compilation failed")
		case report.Failed():
			for _, f := range report.Failures {
				log.Error().Str("target", f.Target).Err(f.Err).Msg("target failed")
			}
		default:
			log.Info().Int("targets", len(report.PerTarget)).Msg("compiled")
		}
	}
	runPass()

	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != schemaPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if pending && !debounce.Stop() {
				<-debounce.C
			}
			debounce.Reset(watchDebounce)
			pending = true

		case <-debounce.C:
			pending = false
			log.Debug().Str("schema", opts.SchemaPath).Msg("schema changed")
			runPass()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}
