package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRequest("/api/users/login", "POST", 200, 10*time.Millisecond)
	m.RecordRequest("/api/users/login", "POST", 200, 20*time.Millisecond)
	m.RecordError("/api/users/login", "POST", "BAD_REQUEST")
	m.RecordMail("password_reset", "sent")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/users/login", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/api/users/login", "POST", "BAD_REQUEST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mailDelivered.WithLabelValues("password_reset", "sent")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordMail("t", "sent")
	})
}
