package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"railgen/internal/handler"
	"railgen/internal/hub"
	"railgen/internal/service"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation API and live events over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Initialize SSE hub
		sseHub := hub.New()
		go sseHub.Run(ctx)

		// Connect event bus to SSE hub
		eventChan := make(chan service.Event, 100)
		defer current.bus.Subscribe(eventChan)()
		go func() {
			for {
				select {
				case event := <-eventChan:
					sseHub.Publish(string(event.Type), event.Payload)
				case <-ctx.Done():
					return
				}
			}
		}()

		mux := http.NewServeMux()
		handler.NewGenerationHandler(current.svc).Register(mux)
		mux.Handle("GET /events", sseHub)

		// Apply middleware
		finalHandler := handler.Chain(mux,
			handler.Recover,
			handler.Logger,
		)

		server := &http.Server{
			Addr:        serveAddr,
			Handler:     finalHandler,
			ReadTimeout: 10 * time.Second,
			IdleTimeout: 60 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			log.Printf("Server listening on %s", serveAddr)
			errc <- server.ListenAndServe()
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Println("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":3000", "HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}
