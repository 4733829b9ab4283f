// Command railgen generates railway infrastructures as RailJSON documents and
// hands them to the infrastructure service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"railgen/internal/client"
	"railgen/internal/config"
	"railgen/internal/repository/sqlite"
	"railgen/internal/service"
)

var (
	configPath string
	outputDir  string
	format     string
)

// app holds what every command needs once the config is loaded.
type app struct {
	cfg    *config.Config
	repo   *sqlite.Repository
	bus    *service.EventBus
	client *client.Client // nil when no import target is configured
	svc    *service.GenerationService
}

var current *app

// commands annotated with noCatalog run without config, catalog or client
const noCatalog = "railgen/no-catalog"

var rootCmd = &cobra.Command{
	Use:           "railgen",
	Short:         "Generate railway infrastructures as RailJSON",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		current = nil
		if cmd.Annotations[noCatalog] != "" {
			return nil
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil {
			return nil
		}
		err := current.repo.Close()
		current = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: discovered)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "out", "o", "", "Output directory (overrides output.dir)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", `Extra export written next to infra.json ("yaml")`)
}

func newApp() (*app, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if configPath != "" {
		cfg, path, err = config.LoadFromPath(configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if format != "" {
		cfg.Output.Format = format
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if path != "" {
		log.Printf("Config loaded: %s", path)
	}

	repo, err := sqlite.New(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, repo: repo, bus: service.NewEventBus()}
	opts := service.Options{
		OutputDir:    cfg.Output.Dir,
		Format:       cfg.Output.Format,
		GenerateData: cfg.Import.GenerateData,
	}
	if cfg.Import.Enabled() {
		a.client, err = client.New(cfg.Import.BaseURL, cfg.Import.Token, cfg.Import.Timeout.Duration())
		if err != nil {
			repo.Close()
			return nil, err
		}
		opts.Importer = a.client
	}

	a.svc, err = service.NewGenerationService(repo, a.bus, opts)
	if err != nil {
		repo.Close()
		return nil, err
	}
	return a, nil
}

// requireClient fails commands that talk to the infrastructure service when none is configured.
func (a *app) requireClient() (*client.Client, error) {
	if a.client == nil {
		return nil, fmt.Errorf("%w: set import.base_url in %s", service.ErrImportDisabled, config.ConfigFileName)
	}
	return a.client, nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "railgen:", err)
		os.Exit(1)
	}
}
