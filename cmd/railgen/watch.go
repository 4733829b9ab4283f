package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"railgen/internal/loader"
	"railgen/internal/service"
	"railgen/internal/watcher"
)

var watchImport bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Regenerate YAML topology scripts whenever they change",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := current.cfg.Watch.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return fmt.Errorf("no directory to watch: pass one or set watch.dir")
		}
		if watchImport {
			if _, err := current.requireClient(); err != nil {
				return err
			}
		}

		events := make(chan service.Event, 16)
		defer current.bus.Subscribe(events)()
		go func() {
			for ev := range events {
				if ev.Type == service.EventGenerationFailed {
					log.Printf("Generation failed: %v", ev.Payload)
				}
			}
		}()

		regenerate := func(ctx context.Context, path string) error {
			script, err := loader.LoadScript(path)
			if err != nil {
				return err
			}
			current.bus.Publish(service.Event{
				Type:    service.EventScriptsReloaded,
				Payload: map[string]string{"path": path, "script": script.Name()},
			})
			gen, err := current.svc.Generate(ctx, script)
			if err != nil {
				return err
			}
			if watchImport && !gen.Unchanged {
				_, err = current.svc.ImportRun(ctx, gen.Run.ID)
			}
			return err
		}

		// bring every script up to date before waiting for changes
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir() || !watcher.IsScript(e.Name()) {
				continue
			}
			if err := regenerate(cmd.Context(), filepath.Join(dir, e.Name())); err != nil {
				log.Printf("Regenerating %s failed: %v", e.Name(), err)
			}
		}

		w := watcher.New(dir, regenerate).WithDebounce(current.cfg.Watch.Debounce.Duration())
		if err := w.Watch(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchImport, "import", false, "Import every changed generation")
	rootCmd.AddCommand(watchCmd)
}
