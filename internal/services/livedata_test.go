package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLiveClient(t *testing.T, apiKey, baseURL string) *LiveDataClient {
	t.Helper()
	log := testLogger()
	cache := NewCacheService(unreachableRedis(), log)
	breaker := NewCircuitBreakerService(100, time.Minute, log)
	return NewLiveDataClient(apiKey, baseURL, time.Second, cache, breaker, log)
}

func TestLiveData_DisabledWithoutKey(t *testing.T) {
	l := newLiveClient(t, "", "")

	_, err := l.MatchTVCountries(context.Background(), 42)
	assert.ErrorIs(t, err, ErrLiveDataDisabled)

	_, err = l.PlayerLiveSummary(context.Background(), "Aaron One")
	assert.ErrorIs(t, err, ErrLiveDataDisabled)
}

func TestMatchTVCountries_ProxiesUpstream(t *testing.T) {
	var gotKey, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-apisports-key")
		gotID = r.URL.Query().Get("id")
		w.Write([]byte(`{"response":[{"fixture":{"id":42}}]}`))
	}))
	defer srv.Close()

	l := newLiveClient(t, "secret", srv.URL)
	raw, err := l.MatchTVCountries(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "42", gotID)
	assert.JSONEq(t, `{"response":[{"fixture":{"id":42}}]}`, string(raw))
}

func TestMatchTVCountries_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	l := newLiveClient(t, "secret", srv.URL)
	_, err := l.MatchTVCountries(context.Background(), 42)
	assert.Error(t, err)
}

func TestPlayerLiveSummary_CondensesFirstHit(t *testing.T) {
	payload := `{"response":[{"player":{"name":"Aaron One","nationality":"England","age":24,"photo":"p.png"},"statistics":[{"team":{"name":"Arsenal"}}]}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Aaron One", r.URL.Query().Get("search"))
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	l := newLiveClient(t, "secret", srv.URL)
	summary, err := l.PlayerLiveSummary(context.Background(), "Aaron One")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "Aaron One", summary.Name)
	assert.Equal(t, "Arsenal", summary.Team)
	assert.Equal(t, 24, summary.Age)
	assert.Equal(t, "api-football", summary.Source)
}

func TestPlayerLiveSummary_MissScansAndReturnsNil(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"response":[]}`))
	}))
	defer srv.Close()

	l := newLiveClient(t, "secret", srv.URL)
	summary, err := l.PlayerLiveSummary(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Nil(t, summary)
	// every common league and season combination is tried
	assert.Equal(t, len(commonLeagueIDs)*len(searchSeasons), calls)
}

func TestCondensePlayerResponse_Invalid(t *testing.T) {
	_, ok := condensePlayerResponse(json.RawMessage(`not json`))
	assert.False(t, ok)

	_, ok = condensePlayerResponse(json.RawMessage(`{"response":[]}`))
	assert.False(t, ok)
}
