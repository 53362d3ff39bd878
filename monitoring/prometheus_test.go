package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBeforeInitIsNoop(t *testing.T) {
	if metrics != nil {
		t.Skip("metrics already initialised")
	}
	assert.NotPanics(t, func() {
		RecordApplied("create", time.Millisecond)
		RecordRejected("transfer", "insufficient_funds")
		IncreasePollAttempts()
	})
}

func TestMetricsExposed(t *testing.T) {
	InitMetrics()
	InitMetrics()

	RecordApplied("create", 5*time.Millisecond)
	RecordRejected("transfer", "insufficient_funds")
	RecordSubmission("accepted")
	RecordTracked("COMMITTED")

	mux := http.NewServeMux()
	RegisterMetrics(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, `sawlet_processor_applied_total{op="create"} 1`)
	assert.Contains(t, body, `sawlet_processor_rejected_total{code="insufficient_funds",op="transfer"} 1`)
	assert.Contains(t, body, `sawlet_client_submissions_total{outcome="accepted"} 1`)
}
