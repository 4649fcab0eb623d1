package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWritePrometheusIncludesWorkflowSeries(t *testing.T) {
	m := New()
	m.ObserveWorkflowCommand("approve_content", "success", 20*time.Millisecond)
	m.ObserveWorkflowCommand("approve_content", "conflict", 5*time.Millisecond)
	m.ObserveAggregateOperation("commit_content", "success", time.Millisecond)
	m.IncAggregateConflict("commit_content")
	m.AddNotificationsCreated("approved", 1)
	m.AddNotificationsCreated("rejected", 0)
	m.IncFanoutFailure("rejected", "store")

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`contentflow_workflow_commands_total{command="approve_content",status="success"} 1`,
		`contentflow_workflow_commands_total{command="approve_content",status="conflict"} 1`,
		`contentflow_aggregate_conflicts_total{operation="commit_content"} 1`,
		`contentflow_notifications_created_total{type="approved"} 1`,
		`contentflow_notification_fanout_failures_total{type="rejected",stage="store"} 1`,
		`contentflow_workflow_command_duration_seconds_count{command="approve_content",status="success"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, `type="rejected"} `) {
		t.Fatalf("zero-count notification series should not be written:\n%s", out)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/requests", "200", time.Millisecond)
	m.ObserveWorkflowCommand("submit_request", "success", time.Millisecond)
	m.IncAggregateUnavailable("commit_request")
	m.ApiInflightInc()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
}

func TestObserveAPICountsServerErrors(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/requests/:id", "200", time.Millisecond)
	m.ObserveAPI("GET", "/api/requests/:id", "503", time.Millisecond)
	m.ObserveAPI("", "", "", time.Millisecond)
	if got := m.apiReqTotal.Value(); got != 3 {
		t.Fatalf("total=%v want 3", got)
	}
	if got := m.apiReqError.Value(); got != 1 {
		t.Fatalf("errors=%v want 1", got)
	}
	if got := m.apiRequests.Value("UNKNOWN", "unknown", "0"); got != 1 {
		t.Fatalf("defaulted labels=%v want 1", got)
	}
}

func TestHistogramBuckets(t *testing.T) {
	h := NewHistogramVec("h", "test", []string{"k"}, []float64{1, 2})
	h.Observe(0.5, "a")
	h.Observe(1.5, "a")
	h.Observe(3, "a")
	var buf bytes.Buffer
	if err := h.WritePrometheus(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`h_bucket{k="a",le="1"} 1`,
		`h_bucket{k="a",le="2"} 2`,
		`h_bucket{k="a",le="+Inf"} 3`,
		`h_count{k="a"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if h.Count("a") != 3 || h.Count("b") != 0 {
		t.Fatalf("unexpected counts a=%d b=%d", h.Count("a"), h.Count("b"))
	}
}

func TestEscapeLabel(t *testing.T) {
	if got := labelString([]string{"x"}, []string{"a\"b\n"}); got != `{x="a\"b\n"}` {
		t.Fatalf("labelString=%q", got)
	}
	if got := labelString([]string{"x", "y"}, []string{"v"}); got != `{x="v",y="unknown"}` {
		t.Fatalf("labelString missing=%q", got)
	}
}
