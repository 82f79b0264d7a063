package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	goSecure "github.com/MrEthical07/goSecure"
)

type stubSource struct {
	snapshot goSecure.MetricsSnapshot
	dropped  uint64
}

func (s stubSource) MetricsSnapshot() goSecure.MetricsSnapshot { return s.snapshot }
func (s stubSource) AuditDropped() uint64                      { return s.dropped }

func TestRenderExposition(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(stubSource{
		snapshot: goSecure.MetricsSnapshot{
			Counters: map[goSecure.MetricID]uint64{
				goSecure.MetricTokenIssued:   3,
				goSecure.MetricTokenVerified: 2,
			},
		},
		dropped: 1,
	})

	out := exporter.Render()
	for _, want := range []string{
		"# HELP gosecure_token_issued_total",
		"# TYPE gosecure_token_issued_total counter",
		"gosecure_token_issued_total 3",
		"gosecure_token_verified_total 2",
		"gosecure_audit_dropped_total 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(stubSource{
		snapshot: goSecure.MetricsSnapshot{Counters: map[goSecure.MetricID]uint64{}},
	})
	if out := exporter.Render(); out != "" {
		t.Fatalf("empty source rendered %q", out)
	}
}

func TestHandlerContentType(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(stubSource{
		snapshot: goSecure.MetricsSnapshot{
			Counters: map[goSecure.MetricID]uint64{goSecure.MetricTokenIssued: 1},
		},
	})

	rec := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "gosecure_token_issued_total 1") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
