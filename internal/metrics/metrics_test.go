package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	c := New()

	c.BookAdded()
	c.BookAdded()
	c.BookRemoved()
	c.BookUpdated()
	c.Persisted(true, nil)
	c.Persisted(false, errors.New("down"))
	c.Persisted(true, nil)
	c.Persisted(false, nil)

	if got := testutil.ToFloat64(c.added); got != 2 {
		t.Errorf("books_added_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.removed); got != 1 {
		t.Errorf("books_removed_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.persists.WithLabelValues("ok")); got != 2 {
		t.Errorf("persist_total{result=ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.persists.WithLabelValues("error")); got != 1 {
		t.Errorf("persist_total{result=error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.persists.WithLabelValues("skipped")); got != 1 {
		t.Errorf("persist_total{result=skipped} = %v, want 1", got)
	}
}

func TestCollectorHandler(t *testing.T) {
	c := New()
	c.TrackBooks(func() int { return 7 })
	c.TrackStorage("memory", func() bool { return true })

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"shelf_books 7",
		`shelf_storage_available{backend="memory"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCollectorLint(t *testing.T) {
	c := New()
	c.TrackBooks(func() int { return 0 })
	c.TrackStorage("file", func() bool { return false })
	c.BookAdded()
	c.Persisted(true, nil)

	problems, err := testutil.GatherAndLint(c.Registry(),
		"shelf_books_added_total", "shelf_persist_total", "shelf_books", "shelf_storage_available")
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Errorf("lint: %s: %s", p.Metric, p.Text)
	}
}
