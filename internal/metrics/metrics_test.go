package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollectorExposesRecordedSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest(http.MethodGet, "/dashboard", http.StatusOK, 25*time.Millisecond)
	c.RecordLogin("google")
	c.RecordGroupCreated()
	c.RecordGroupDeleted()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`gather_http_requests_total{method="GET",route="/dashboard",status="200"} 1`,
		`gather_logins_total{provider="google"} 1`,
		`gather_groups_created_total 1`,
		`gather_groups_deleted_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected scrape output to contain %q, got:\n%s", want, body)
		}
	}
}

func TestCollectorDoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	NewCollector(reg)
}
