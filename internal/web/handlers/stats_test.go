package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/smart-attendance/internal/ai"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/rs/zerolog"
)

func TestStatsHandler_Get(t *testing.T) {
	env := newTestEnv(t, nil)
	h := env.attendanceHandler()
	alice := testPhoto(t, red)
	assertStatusCode(t, register(t, h, "Alice", "A1", alice), http.StatusCreated)
	assertStatusCode(t, register(t, h, "Bob", "B2", testPhoto(t, green)), http.StatusCreated)
	assertStatusCode(t, intent(t, h.CheckIn, alice), http.StatusOK)

	recorder := httptest.NewRecorder()
	NewStatsHandler(env.service, env.oracle, zerolog.Nop()).Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	var resp StatsResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Users != 2 || resp.Records != 1 || resp.OpenSessions != 1 {
		t.Errorf("unexpected counts: %+v", resp)
	}
	if resp.Oracle.Provider != "equal" || resp.Oracle.Usage.Requests != 1 {
		t.Errorf("unexpected oracle stats: %+v", resp.Oracle)
	}
	if resp.Oracle.Breaker != "" {
		t.Errorf("plain comparer must not report a breaker, got %q", resp.Oracle.Breaker)
	}
}

func TestStatsHandler_ReportsBreakerState(t *testing.T) {
	env := newTestEnv(t, nil)
	breaker := ai.NewBreakerComparer(env.oracle, constants.BreakerOpenTimeout, zerolog.Nop())

	recorder := httptest.NewRecorder()
	NewStatsHandler(env.service, breaker, zerolog.Nop()).Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	var resp StatsResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Oracle.Breaker != "closed" {
		t.Errorf("breaker = %q, want closed", resp.Oracle.Breaker)
	}
}
