package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dasdy/softkeys/logging"
	"github.com/dasdy/softkeys/web/routes"
)

var logCtx = logging.PackageCtx("web")

func disableCacheInDevMode(dev bool, next http.Handler) http.Handler {
	if !dev {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func BuildServer(handler *routes.ServerHandler, dev bool) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /combo", disableCacheInDevMode(dev, http.HandlerFunc(handler.CombosHandle)))
	mux.Handle("GET /neighbors", disableCacheInDevMode(dev, http.HandlerFunc(handler.NeighborsHandle)))
	mux.Handle("GET /layout", disableCacheInDevMode(dev, http.HandlerFunc(handler.LayoutHandle)))
	mux.Handle("GET /layout.svg", disableCacheInDevMode(dev, http.HandlerFunc(handler.LayoutSVGHandle)))

	if handler.Storage != nil {
		mux.Handle("GET /{$}", disableCacheInDevMode(dev, http.HandlerFunc(handler.StatsHandle)))
	} else {
		mux.Handle("GET /{$}", http.RedirectHandler("/layout", http.StatusFound))
	}

	return mux
}

// StartServer serves until ctx is done, then shuts down gracefully.
func StartServer(ctx context.Context, port int, handler *routes.ServerHandler, dev bool) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           BuildServer(handler, dev),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(logCtx, "Could not shut down server", "error", err)
		}
	}()

	slog.InfoContext(logCtx, "Running interface", "port", port)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not run server: %w", err)
	}

	return nil
}
