package monitor

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_Counters(t *testing.T) {
	m := NewMonitor("draw_test")

	m.IncOnlinePlayers()
	m.IncOnlinePlayers()
	m.DecOnlinePlayers()
	m.SetActiveRooms(3)
	m.IncMessagesReceived("guess_word")
	m.IncMessagesReceived("guess_word")
	m.GameStarted()
	m.CorrectGuess()
	m.GameEnded()
	m.ObserveMessageLatency(2 * time.Millisecond)

	metrics := m.Metrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OnlinePlayers))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ActiveRooms))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.MessagesReceived.WithLabelValues("guess_word")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GamesStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CorrectGuesses))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.MessageLatency))
}

func TestMonitor_Handler(t *testing.T) {
	m := NewMonitor("draw_test")
	m.GameStarted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "draw_test_games_started_total 1"))
	assert.Contains(t, body, "draw_test_uptime_seconds")
}

func TestMonitor_Isolated(t *testing.T) {
	// Two monitors with the same namespace must not collide.
	assert.NotPanics(t, func() {
		NewMonitor("draw_test")
		NewMonitor("draw_test")
	})
}
