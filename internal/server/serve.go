package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/agenthands/fuxi/internal/core"
	"github.com/agenthands/fuxi/internal/core/ingest"
	"github.com/agenthands/fuxi/internal/logging"
	"github.com/agenthands/fuxi/internal/watch"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the HTTP API until ctx is done, then drains in-flight requests.
// When input watching is enabled, changed datasets trigger a new run.
func (s *Server) Serve(ctx context.Context) error {
	log := logging.FromContext(ctx)

	if s.Config.Harmonization.WatchInputs {
		w, err := s.newWatcher()
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Input watcher stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + s.Config.Server.Port,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// newWatcher re-runs the default harmonization whenever an input file
// changes. The persisted graph is not an input, so a run never retriggers
// itself.
func (s *Server) newWatcher() (*watch.Watcher, error) {
	var files []string
	for _, spec := range ingest.DefaultSources(s.Config.Data) {
		files = append(files, s.Config.Data.Path(spec.Path))
	}
	debounce := time.Duration(s.Config.Harmonization.WatchDebounceMS) * time.Millisecond

	return watch.New(files, debounce, func(ctx context.Context, changed []string) {
		log := logging.FromContext(ctx)
		log.Info().Int("files", len(changed)).Msg("Re-running harmonization")
		if _, err := s.harmonize(ctx, core.Options{ProjectID: core.DefaultProject}); err != nil {
			log.Error().Err(err).Msg("Harmonization after input change failed")
		}
	})
}
