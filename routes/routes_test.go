package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanpsy/tornamate/handlers"
	"github.com/quanpsy/tornamate/logging"
	"github.com/quanpsy/tornamate/metrics"
	"github.com/quanpsy/tornamate/middleware"
	"github.com/quanpsy/tornamate/models"
	"github.com/quanpsy/tornamate/realtime"
	"github.com/quanpsy/tornamate/repositories/memory"
	"github.com/quanpsy/tornamate/services"
)

var secret = []byte("routes-test-secret")

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newAPI(t *testing.T) (*apiClient, *realtime.Hub) {
	t.Helper()
	logger := logging.NewNop()
	store := memory.NewStore()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	locks := services.NewKeyedMutex()

	hub := realtime.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	instruments := metrics.New(prometheus.NewRegistry())
	notifier := instruments.CountPublished(hub)

	tournaments := services.NewTournamentService(store.Tournaments(), store.Teams(), store.Matches(), store, locks, notifier, clock, logger)
	snapshots := services.NewSnapshotService(tournaments, nil, clock, logger)
	matches := services.NewMatchService(store.Tournaments(), store.Teams(), store.Matches(), store, locks, notifier, snapshots, clock, logger)

	router := chi.NewRouter()
	SetupRoutes(router, Options{JWTSecret: secret, AllowedOrigins: []string{"*"}, Logger: logger, Metrics: instruments},
		handlers.NewTournamentHandler(tournaments, matches, snapshots, logger),
		handlers.NewMatchHandler(matches, logger),
		handlers.NewWebSocketHandler(hub, tournaments, []string{"*"}, logger),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &apiClient{t: t, server: server}, hub
}

func (c *apiClient) do(method, path, user string, body interface{}, out interface{}) int {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		token, err := middleware.IssueToken(secret, user, "", time.Now(), time.Hour)
		require.NoError(c.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type tournamentEnvelope struct {
	Tournament struct {
		models.Tournament
		Matches []models.Match `json:"matches"`
	} `json:"tournament"`
}

func TestTournamentLifecycle(t *testing.T) {
	api, _ := newAPI(t)
	const organizer = "org-1"

	status := api.do(http.MethodPost, "/tournaments/", "", map[string]interface{}{"name": "Nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var created tournamentEnvelope
	status = api.do(http.MethodPost, "/tournaments/", organizer, map[string]interface{}{
		"name":       "City Knockout",
		"sport":      "Football",
		"format":     "Knockout",
		"start_date": "2026-06-10T09:00:00Z",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	tid := created.Tournament.ID
	require.NotEmpty(t, tid)
	assert.Equal(t, models.StatusUpcoming, created.Tournament.Status)

	var errBody map[string]interface{}
	status = api.do(http.MethodPost, "/tournaments/", organizer, map[string]interface{}{"name": "x", "surprise": 1}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errBody["error"], "unknown key")

	teamIDs := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		var team struct {
			Team models.Team `json:"team"`
		}
		status = api.do(http.MethodPost, "/tournaments/"+tid+"/teams", fmt.Sprintf("captain-%d", i),
			map[string]interface{}{"name": fmt.Sprintf("Club %d", i)}, &team)
		require.Equal(t, http.StatusCreated, status)
		teamIDs = append(teamIDs, team.Team.ID)
	}

	status = api.do(http.MethodPost, "/tournaments/"+tid+"/teams", "captain-x", map[string]interface{}{"name": "Club 0"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	status = api.do(http.MethodPost, "/tournaments/"+tid+"/start", "someone-else", nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var started tournamentEnvelope
	status = api.do(http.MethodPost, "/tournaments/"+tid+"/start", organizer, nil, &started)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.StatusOngoing, started.Tournament.Status)
	require.Len(t, started.Tournament.Matches, 3)

	var result services.CompleteMatchResult
	status = api.do(http.MethodPost, "/matches/"+tid+"_R1M1/complete", organizer,
		map[string]interface{}{"score_a": "0", "score_b": "2"}, &result)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, result.NextMatch)
	assert.Equal(t, teamIDs[1], *result.NextMatch.TeamAID)

	status = api.do(http.MethodPost, "/matches/"+tid+"_R2M1/complete", organizer,
		map[string]interface{}{"score_a": "1", "score_b": "0"}, &errBody)
	assert.Equal(t, http.StatusConflict, status, "final has only one participant")

	status = api.do(http.MethodPost, "/matches/"+tid+"_R1M2/complete", organizer,
		map[string]interface{}{"details": map[string]interface{}{"kind": "football", "football": map[string]int{"home_goals": 3, "away_goals": 1}}}, &result)
	require.Equal(t, http.StatusOK, status)

	status = api.do(http.MethodPost, "/matches/"+tid+"_R2M1/complete", organizer,
		map[string]interface{}{"score_a": "1", "score_b": "0"}, &result)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, result.TournamentCompleted)

	var standings struct {
		Standings []models.StandingsRow `json:"standings"`
	}
	status = api.do(http.MethodGet, "/tournaments/"+tid+"/standings", "", nil, &standings)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, standings.Standings, 4)
	assert.Equal(t, teamIDs[1], standings.Standings[0].TeamID)

	status = api.do(http.MethodPost, "/tournaments/"+tid+"/snapshot", organizer, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	var list struct {
		Tournaments []models.Tournament `json:"tournaments"`
	}
	status = api.do(http.MethodGet, "/tournaments/?status=COMPLETED", "", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Tournaments, 1)
	assert.Equal(t, tid, list.Tournaments[0].ID)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/tournaments/?status=PAUSED", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/tournaments/?limit=0", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/tournaments/missing", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/matches/missing", "", nil, nil))
}

func TestWebSocketReceivesMatchUpdates(t *testing.T) {
	api, hub := newAPI(t)
	const organizer = "org-ws"

	var created tournamentEnvelope
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/tournaments/", organizer, map[string]interface{}{
		"name": "Evening League", "sport": "Kabaddi", "format": "League", "start_date": "2026-06-10T18:00:00Z",
	}, &created))
	tid := created.Tournament.ID
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/tournaments/"+tid+"/teams", fmt.Sprintf("c-%d", i),
			map[string]interface{}{"name": fmt.Sprintf("Raiders %d", i)}, nil))
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/tournaments/"+tid+"/start", organizer, nil, nil))

	wsURL := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/ws/tournaments/" + tid
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount(realtime.TournamentRoom(tid)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, "/matches/"+tid+"_M1", organizer,
		map[string]interface{}{"status": "LIVE", "score_a": "12", "score_b": "9"}, nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg realtime.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, realtime.MessageMatchUpdated, msg.Type)

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(api.server.URL, "http")+"/ws/tournaments/unknown", nil)
	assert.Error(t, err)
}

func TestMetricsAndHealth(t *testing.T) {
	api, _ := newAPI(t)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodGet, "/healthz", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/tournaments/nope", "", nil, nil))

	resp, err := http.Get(api.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body strings.Builder
	_, err = io.Copy(&body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `tornamate_http_requests_total{method="GET",route="/tournaments/{tournamentID}",status="404"} 1`)
}
