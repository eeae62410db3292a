package internal

import (
	"chat-sync/codec"
	"chat-sync/domain"
	"chat-sync/observability"
	"chat-sync/repositories"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func get(t *testing.T, handler http.Handler, path string) (int, string) {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestDebugRouter(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	history := repositories.NewHistoryRepository(db, slog.Default(), repositories.DefaultHistoryKey)
	metrics := observability.NewMetrics()
	metrics.SnapshotsApplied.Inc()
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	list := domain.MessageList{{ID: "m1", Author: "alice", Body: domain.TextBody{Text: "hi"}, CreatedAt: lo.ToPtr(at)}}
	req.NoError(history.StoreHistory(list))

	router := NewDebugRouter(db, history, metrics, func() domain.MessageList { return list })

	code, body := get(t, router, "/metrics")
	req.Equal(http.StatusOK, code)
	req.Contains(body, "chatsync_snapshots_applied_total 1")

	code, body = get(t, router, "/history")
	req.Equal(http.StatusOK, code)
	var docs []codec.Document
	req.NoError(codec.JSON.UnmarshalFromString(body, &docs))
	req.Len(docs, 1)
	req.Equal("alice", docs[0].User)

	code, body = get(t, router, "/live")
	req.Equal(http.StatusOK, code)
	req.Contains(body, `"m1"`)

	code, body = get(t, router, "/keys?prefix=chat:")
	req.Equal(http.StatusOK, code)
	req.Contains(body, repositories.DefaultHistoryKey)
}

func TestDebugRouter_Without_Controller(t *testing.T) {
	db := openDB(t)
	history := repositories.NewHistoryRepository(db, slog.Default(), repositories.DefaultHistoryKey)
	router := NewDebugRouter(db, history, observability.NewMetrics(), nil)

	code, _ := get(t, router, "/live")

	require.Equal(t, http.StatusServiceUnavailable, code)
}
