package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devicenanny/notifier/internal/domain/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDelivery(t *testing.T) {
	counter := Deliveries.WithLabelValues(string(model.KindCheckOut), string(model.DestinationDirect), string(model.OutcomeUnresolvedRecipient))
	before := testutil.ToFloat64(counter)

	ObserveDelivery(model.KindCheckOut, model.DestinationDirect, model.OutcomeUnresolvedRecipient, time.Now().Add(-20*time.Millisecond))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Positive(t, testutil.CollectAndCount(SendDuration, "devicenanny_notifications_send_duration_seconds"))
}

func TestObserveSuppressed(t *testing.T) {
	counter := Deliveries.WithLabelValues(string(model.KindCheckIn), "", string(model.OutcomeSuppressed))
	before := testutil.ToFloat64(counter)

	ObserveSuppressed(model.KindCheckIn)
	ObserveSuppressed(model.KindCheckIn)

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMetricsHandler(t *testing.T) {
	EventsReceived.WithLabelValues(string(model.KindHelpNeeded), "http").Inc()

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `devicenanny_notifications_events_total{kind="help_needed",source="http"}`)
}
