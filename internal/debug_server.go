package internal

import (
	"chat-sync/codec"
	"chat-sync/domain"
	"chat-sync/observability"
	"chat-sync/repositories"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type InspectRow struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
}

// LiveSource returns the authoritative list currently held in memory.
type LiveSource func() domain.MessageList

// NewDebugRouter exposes the metrics, the cached history, the in-memory list
// and the raw badger keys under a prefix.
func NewDebugRouter(db *badger.DB, history repositories.IHistoryRepository, metrics *observability.Metrics, live LiveSource) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Get("/history", func(w http.ResponseWriter, _ *http.Request) {
		list, _, err := history.GetHistory()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respond(w, codec.FromList(list))
	})

	r.Get("/live", func(w http.ResponseWriter, _ *http.Request) {
		if live == nil {
			http.Error(w, "no controller running", http.StatusServiceUnavailable)
			return
		}
		respond(w, codec.FromList(live()))
	})

	r.Get("/keys", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		rows := []InspectRow{}
		err := db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				rows = append(rows, InspectRow{Key: string(item.Key()), Size: int(item.ValueSize())})
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respond(w, rows)
	})
	return r
}

// StartDebugServer serves the handler until ctx is done.
func StartDebugServer(ctx context.Context, log *slog.Logger, port int, handler http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting debug server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("debug server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
	case err := <-errChan:
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func respond(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := codec.JSON.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
