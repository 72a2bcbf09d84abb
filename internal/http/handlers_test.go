package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinkenoogm/ks-bear/internal/config"
	"github.com/vinkenoogm/ks-bear/internal/database"
	"github.com/vinkenoogm/ks-bear/internal/http/handlers"
	"github.com/vinkenoogm/ks-bear/internal/metrics"
	"github.com/vinkenoogm/ks-bear/internal/notifier"
	slacknotifier "github.com/vinkenoogm/ks-bear/internal/notifier/slack"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	testSlackSigningSecret = "test-signing-secret"
	testAdminPassword      = "bear-admin"
)

// setupTestServer initializes a new server with a test database and the given notifier.
func setupTestServer(t *testing.T, n notifier.Notifier, cfg config.Config) *Server {
	t.Helper()

	db, dbTeardown, err := database.InitDB(filepath.Join(t.TempDir(), "server.db"), "")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)

	return NewServer(tracker.New(db), metricsSvc, metricsHandler, cfg, n)
}

func adminConfig() config.Config {
	return config.Config{
		AdminPassword: testAdminPassword,
		Slack:         config.SlackConfig{SigningSecret: testSlackSigningSecret},
	}
}

// doRequest serves a request through the router. A non-nil body is sent as JSON.
func doRequest(t *testing.T, s *Server, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func asAdmin() map[string]string {
	return map[string]string{adminPasswordHeader: testAdminPassword}
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	bodyBytes := []byte(form.Encode())
	req, err := http.NewRequest("POST", targetURL, bytes.NewReader(bodyBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))

	return req
}

// seedTrap1 registers three players and records one Trap 1 event on 2024-01-01 for them.
func seedTrap1(t *testing.T, s *Server) tracker.Event {
	t.Helper()
	return seedTrap1On(t, s, "2024-01-01")
}

// seedTrap1On is seedTrap1 with the event held on date.
func seedTrap1On(t *testing.T, s *Server, date string) tracker.Event {
	t.Helper()

	rr := doRequest(t, s, "POST", "/api/players", handlers.AddPlayersRequest{Name: "Alice", Bulk: "Bob\nCarol"}, asAdmin())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doRequest(t, s, "POST", "/api/events", handlers.CreateEventRequest{Date: date, Category: "trap 1"}, asAdmin())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var event tracker.Event
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &event))

	players, err := s.Store.ListPlayers(context.Background())
	require.NoError(t, err)
	ids := make(map[string]int64)
	for _, p := range players {
		ids[p.Name] = p.ID
	}

	body := fmt.Sprintf(`[{"player_id": %d, "damage": 100}, {"player_id": %d, "damage": "100"}, {"player_id": %d, "damage": "50.9"}]`,
		ids["Alice"], ids["Bob"], ids["Carol"])
	req := httptest.NewRequest("PUT", fmt.Sprintf("/api/events/%d/damage", event.ID), strings.NewReader(body))
	req.Header.Set(adminPasswordHeader, testAdminPassword)
	rr = httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	return event
}

func TestHealthCheckHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock(), config.Config{})

	rr := doRequest(t, server, "GET", "/health", nil, nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock(), config.Config{})

	rr := doRequest(t, server, "GET", "/api/leaderboard?category=9", nil, map[string]string{requestIDHeader: "req-123"})

	assert.Equal(t, "req-123", rr.Header().Get(requestIDHeader))
	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "req-123", body.RequestID)
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock(), adminConfig())
	seedTrap1(t, server)

	rr := doRequest(t, server, "GET", "/metrics", nil, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "bear_players_submitted_total 3")
	assert.Contains(t, rr.Body.String(), "bear_damage_rows_saved_total 3")
}

func TestAdminGate(t *testing.T) {
	t.Run("no password configured", func(t *testing.T) {
		server := setupTestServer(t, notifier.NewMock(), config.Config{})
		rr := doRequest(t, server, "GET", "/api/players", nil, asAdmin())
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		server := setupTestServer(t, notifier.NewMock(), adminConfig())
		rr := doRequest(t, server, "GET", "/api/players", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("wrong password", func(t *testing.T) {
		server := setupTestServer(t, notifier.NewMock(), adminConfig())
		rr := doRequest(t, server, "POST", "/api/players", handlers.AddPlayersRequest{Name: "Mallory"}, map[string]string{adminPasswordHeader: "guess"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		count, err := server.Store.CountPlayers(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("bearer token", func(t *testing.T) {
		server := setupTestServer(t, notifier.NewMock(), adminConfig())
		rr := doRequest(t, server, "GET", "/api/players", nil, map[string]string{"Authorization": "Bearer " + testAdminPassword})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("leaderboard is public", func(t *testing.T) {
		server := setupTestServer(t, notifier.NewMock(), config.Config{})
		rr := doRequest(t, server, "GET", "/api/leaderboard?category=1", nil, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestDamageFlow(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server := setupTestServer(t, mockNotifier, adminConfig())
	event := seedTrap1(t, server)

	assert.Equal(t, tracker.Trap1, event.Category)
	require.Equal(t, 1, mockNotifier.SendDamageSavedCount())
	call := mockNotifier.SendDamageSavedCalls[0]
	assert.Equal(t, 3, call.Saved)
	assert.Equal(t, 3, call.Attendance)
	assert.False(t, call.DryRun)

	t.Run("event lookup", func(t *testing.T) {
		rr := doRequest(t, server, "GET", fmt.Sprintf("/api/events/%d", event.ID), nil, asAdmin())
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"date":"2024-01-01","category":"Trap 1"}`, event.ID), rr.Body.String())
	})

	t.Run("same event is resolved again", func(t *testing.T) {
		rr := doRequest(t, server, "POST", "/api/events", handlers.CreateEventRequest{Date: "2024-01-01", Category: "Trap 1"}, asAdmin())
		require.Equal(t, http.StatusOK, rr.Code)
		var again tracker.Event
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &again))
		assert.Equal(t, event.ID, again.ID)
	})

	t.Run("damage sheet", func(t *testing.T) {
		rr := doRequest(t, server, "GET", fmt.Sprintf("/api/events/%d/damage", event.ID), nil, asAdmin())
		require.Equal(t, http.StatusOK, rr.Code)
		var sheet []tracker.SheetRow
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sheet))
		require.Len(t, sheet, 3)
		assert.Equal(t, "Alice", sheet[0].Name)
		assert.Equal(t, int64(100), sheet[0].Damage)
		assert.Equal(t, int64(50), sheet[2].Damage, "decimal strings are truncated")
	})

	t.Run("leaderboard", func(t *testing.T) {
		rr := doRequest(t, server, "GET", "/api/leaderboard?category=Trap%201", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var board tracker.Leaderboard
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))

		assert.Equal(t, 1, board.TotalEvents)
		assert.Nil(t, board.WindowStart)
		require.Len(t, board.Entries, 3)
		assert.Equal(t, "Alice", board.Entries[0].Name)
		assert.Equal(t, 1, board.Entries[0].Rank)
		assert.Equal(t, "Bob", board.Entries[1].Name)
		assert.Equal(t, 1, board.Entries[1].Rank)
		assert.Equal(t, "Carol", board.Entries[2].Name)
		assert.Equal(t, 2, board.Entries[2].Rank)
		assert.Equal(t, 100.0, board.Entries[2].AttendanceRate)
	})

	t.Run("leaderboard as msgpack", func(t *testing.T) {
		rr := doRequest(t, server, "GET", "/api/leaderboard?category=1&since=2024-01-01", nil, map[string]string{"Accept": handlers.ContentTypeMsgpack})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, handlers.ContentTypeMsgpack, rr.Header().Get("Content-Type"))

		dec := msgpack.NewDecoder(rr.Body)
		dec.SetCustomStructTag("json")
		var board tracker.Leaderboard
		require.NoError(t, dec.Decode(&board))
		require.NotNil(t, board.WindowStart)
		assert.Equal(t, "2024-01-01", board.WindowStart.String())
		assert.Len(t, board.Entries, 3)
	})

	t.Run("other category is empty", func(t *testing.T) {
		rr := doRequest(t, server, "GET", "/api/leaderboard?category=2&window=7d", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var board tracker.Leaderboard
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
		assert.Empty(t, board.Entries)
		assert.NotNil(t, board.WindowStart)
	})
}

func TestSaveDamage_DryRunAndGarbage(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server := setupTestServer(t, mockNotifier, adminConfig())
	event := seedTrap1(t, server)
	mockNotifier.Reset()

	players, err := server.Store.ListPlayers(context.Background())
	require.NoError(t, err)

	body := fmt.Sprintf(`[{"player_id": %d, "damage": "-5"}, {"player_id": %d, "damage": "abc"}, {"player_id": %d, "damage": null}]`,
		players[0].ID, players[1].ID, players[2].ID)
	req := httptest.NewRequest("PUT", fmt.Sprintf("/api/events/%d/damage?dry_run=true", event.ID), strings.NewReader(body))
	req.Header.Set(adminPasswordHeader, testAdminPassword)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"saved":3,"attendance":0}`, rr.Body.String())
	require.Equal(t, 1, mockNotifier.SendDamageSavedCount())
	assert.True(t, mockNotifier.SendDamageSavedCalls[0].DryRun)

	rr = doRequest(t, server, "GET", "/api/leaderboard?category=1", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var board tracker.Leaderboard
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	assert.Empty(t, board.Entries, "zero totals are excluded")
	assert.Equal(t, 1, board.TotalEvents)
}

func TestCreateEvent_RequiresPlayers(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock(), adminConfig())

	rr := doRequest(t, server, "POST", "/api/events", handlers.CreateEventRequest{Date: "2024-01-01", Category: "1"}, asAdmin())

	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Add players first to start entering event damage", body.Error)

	count, err := server.Store.CountEvents(context.Background(), tracker.Trap1, nil)
	require.NoError(t, err)
	assert.Zero(t, count, "no event is created without a roster")

	rr = doRequest(t, server, "POST", "/api/players", handlers.AddPlayersRequest{Name: "Alice"}, asAdmin())
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doRequest(t, server, "POST", "/api/events", handlers.CreateEventRequest{Date: "2024-01-01", Category: "1"}, asAdmin())
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestErrorStatuses(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock(), adminConfig())
	event := seedTrap1(t, server)

	tests := []struct {
		name   string
		method string
		target string
		body   any
		admin  bool
		status int
	}{
		{"unknown category", "GET", "/api/leaderboard?category=Trap%203", nil, false, http.StatusBadRequest},
		{"missing category", "GET", "/api/leaderboard", nil, false, http.StatusBadRequest},
		{"bad window", "GET", "/api/leaderboard?category=1&window=year", nil, false, http.StatusBadRequest},
		{"bad since", "GET", "/api/leaderboard?category=1&since=01-01-2024", nil, false, http.StatusBadRequest},
		{"bad event date", "POST", "/api/events", handlers.CreateEventRequest{Date: "tomorrow", Category: "1"}, true, http.StatusBadRequest},
		{"bad event category", "POST", "/api/events", handlers.CreateEventRequest{Date: "2024-01-01", Category: "3"}, true, http.StatusBadRequest},
		{"unknown body field", "POST", "/api/players", map[string]string{"nickname": "x"}, true, http.StatusBadRequest},
		{"invalid event id", "GET", "/api/events/abc", nil, true, http.StatusBadRequest},
		{"missing event", "GET", "/api/events/999", nil, true, http.StatusNotFound},
		{"missing event sheet", "GET", "/api/events/999/damage", nil, true, http.StatusNotFound},
		{"damage for unknown player", "PUT", fmt.Sprintf("/api/events/%d/damage", event.ID), []map[string]any{{"player_id": 999, "damage": 5}}, true, http.StatusConflict},
		{"damage for missing event", "PUT", "/api/events/999/damage", []map[string]any{}, true, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var headers map[string]string
			if tt.admin {
				headers = asAdmin()
			}
			rr := doRequest(t, server, tt.method, tt.target, tt.body, headers)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())

			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestStoreUnavailable(t *testing.T) {
	store := tracker.NewMock()
	store.GetLeaderboardFunc = func(ctx context.Context, category tracker.Category, windowStart *tracker.Date) (*tracker.Leaderboard, error) {
		return nil, fmt.Errorf("compute leaderboard: %w: connection refused", tracker.ErrStoreUnavailable)
	}
	mockMetrics := metrics.NewMock()
	server := NewServer(store, mockMetrics, http.NotFoundHandler(), config.Config{}, notifier.NewMock())

	rr := doRequest(t, server, "GET", "/api/leaderboard?category=1", nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused", "internal errors are not leaked")
	assert.Equal(t, 1, mockMetrics.RequestErrors(http.StatusServiceUnavailable))
}

func TestAnnounceLeaderboard(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server := setupTestServer(t, mockNotifier, adminConfig())
	tenDaysAgo := tracker.DateOf(time.Now()).AddDays(-10)
	seedTrap1On(t, server, tenDaysAgo.String())

	rr := doRequest(t, server, "POST", "/api/leaderboard/announce?category=1&window=30d&dry_run=true", nil, asAdmin())

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, 1, mockNotifier.SendLeaderboardCount())
	call := mockNotifier.SendLeaderboardCalls[0]
	assert.Equal(t, tracker.Window30Days, call.Window)
	assert.True(t, call.DryRun)
	assert.Equal(t, 1, call.Board.TotalEvents)
	assert.Len(t, call.Board.Entries, 3)

	t.Run("shorter window leaves the event out", func(t *testing.T) {
		mockNotifier.Reset()
		rr := doRequest(t, server, "POST", "/api/leaderboard/announce?category=1&window=7d&dry_run=true", nil, asAdmin())
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		require.Equal(t, 1, mockNotifier.SendLeaderboardCount())
		call := mockNotifier.SendLeaderboardCalls[0]
		assert.Zero(t, call.Board.TotalEvents)
		assert.Empty(t, call.Board.Entries)
	})

	t.Run("since overrides the window", func(t *testing.T) {
		mockNotifier.Reset()
		target := "/api/leaderboard/announce?category=1&window=7d&dry_run=true&since=" + tenDaysAgo.String()
		rr := doRequest(t, server, "POST", target, nil, asAdmin())
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		require.Equal(t, 1, mockNotifier.SendLeaderboardCount())
		call := mockNotifier.SendLeaderboardCalls[0]
		assert.Equal(t, tracker.WindowSince, call.Window)
		require.NotNil(t, call.Board.WindowStart)
		assert.Equal(t, tenDaysAgo, *call.Board.WindowStart)
		assert.Len(t, call.Board.Entries, 3)
	})

	mockNotifier.SendLeaderboardFunc = func(*tracker.Leaderboard, tracker.Window, bool) error {
		return fmt.Errorf("slack is down")
	}
	rr = doRequest(t, server, "POST", "/api/leaderboard/announce?category=1", nil, asAdmin())
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	rr = doRequest(t, server, "POST", "/api/leaderboard/announce?category=1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLeaderboardCommandHandler(t *testing.T) {
	slackNotifier := slacknotifier.NewNotifierWithAPI(nil, "", metrics.NewMock())
	server := setupTestServer(t, slackNotifier, adminConfig())
	seedTrap1(t, server)

	t.Run("valid signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{"text": {"trap 1 all"}, "user_name": {"alice"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var msg slack.Message
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
		assert.Equal(t, slack.ResponseTypeInChannel, msg.ResponseType)
		assert.Contains(t, rr.Body.String(), "Trap 1 Leaderboard")
		assert.Contains(t, rr.Body.String(), "Alice")
	})

	t.Run("usage on bad text", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{"text": {"trap 9"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var msg slack.Message
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
		assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)
		assert.Contains(t, msg.Text, "Usage")
	})

	t.Run("invalid signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{"text": {""}}, "wrong-secret")
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("no signing secret configured", func(t *testing.T) {
		unconfigured := setupTestServer(t, slackNotifier, config.Config{})
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{"text": {""}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		unconfigured.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
