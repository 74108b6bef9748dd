package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.RecordWebhook("applied", "completed", 10*time.Millisecond)
	c.RecordWebhook("duplicate", "completed", time.Millisecond)
	c.RecordWebhook("duplicate", "completed", time.Millisecond)
	c.RecordStaleRefund()
	c.RecordTransition("freight", "reactivate", nil)
	c.RecordTransition("freight", "reactivate", errors.New("nope"))
	c.RecordLedgerPruned(42)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.WebhookEvents.WithLabelValues("applied", "completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.WebhookEvents.WithLabelValues("duplicate", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StaleRefunds))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.LifecycleTransitions.WithLabelValues("freight", "reactivate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.LifecycleTransitions.WithLabelValues("freight", "reactivate", "rejected")))
	assert.Equal(t, 42.0, testutil.ToFloat64(c.LedgerPruned))
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector()
	c.RecordHTTPRequest("GET", "/api/freights", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), `freight_broker_http_requests_total{method="GET",route="/api/freights",status_code="200"} 1`))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()
	a.RecordStaleRefund()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.StaleRefunds))
}
