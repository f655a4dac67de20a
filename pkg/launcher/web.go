// Package launcher assembles and runs the audit web server.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/advisor"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/api"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/session"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/web"
)

// WebConfig contains everything needed to run the web server.
type WebConfig struct {
	Port   int
	Model  string
	APIKey string
}

// RunWeb starts the HTTP server and blocks until the context is cancelled,
// SIGINT/SIGTERM arrives, or the listener fails.
func RunWeb(ctx context.Context, cfg *WebConfig) error {
	adviser, err := advisor.New(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("initialize advisor: %w", err)
	}

	sessions := session.NewManager(0)
	sessions.StartCleanup()
	defer sessions.Stop()

	router := mux.NewRouter()
	api.NewServer(sessions, adviser).RegisterRoutes(router)
	router.PathPrefix("/").Handler(web.SPAHandler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info().Int("port", cfg.Port).Str("model", cfg.Model).Msg("audit server listening")
	fmt.Printf("\n  MarTech Analysis Agent is running!\n\n")
	fmt.Printf("  ➜  Local:   http://localhost:%d\n\n", cfg.Port)
	fmt.Printf("  Press Ctrl+C to stop\n\n")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
