package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrLiveDataDisabled signals that no API-Football key is configured.
var ErrLiveDataDisabled = errors.New("api-football key not configured")

// commonLeagueIDs is the heuristic scan order when searching a player
// whose league is unknown: Premier League, Champions League, La Liga,
// Bundesliga, Serie A, Ligue 1.
var commonLeagueIDs = []int{39, 2, 140, 78, 135, 61}

var searchSeasons = []int{2024, 2023}

// LiveDataClient proxies the API-Football v3 service for live player
// facts and broadcast lookups. Everything is optional enrichment: a
// missing key or open breaker only disables the feature.
type LiveDataClient struct {
	httpClient     *http.Client
	cache          *CacheService
	circuitBreaker *CircuitBreakerService
	logger         *logrus.Logger
	apiKey         string
	baseURL        string
}

// PlayerLiveSummary is the condensed answer for a live player lookup.
type PlayerLiveSummary struct {
	Name        string          `json:"name"`
	Nationality string          `json:"nationality"`
	Age         int             `json:"age"`
	Photo       string          `json:"photo"`
	Team        string          `json:"team"`
	LeagueStats json.RawMessage `json:"league_stats"`
	Source      string          `json:"source"`
}

func NewLiveDataClient(apiKey, baseURL string, timeout time.Duration, cache *CacheService, cb *CircuitBreakerService, logger *logrus.Logger) *LiveDataClient {
	if baseURL == "" {
		baseURL = "https://v3.football.api-sports.io"
	}
	return &LiveDataClient{
		httpClient:     &http.Client{Timeout: timeout},
		cache:          cache,
		circuitBreaker: cb,
		logger:         logger,
		apiKey:         apiKey,
		baseURL:        baseURL,
	}
}

// Enabled reports whether the live-data collaborator is configured.
func (l *LiveDataClient) Enabled() bool {
	return l.apiKey != ""
}

// MatchTVCountries fetches the TV countries/channels payload for a
// match, cached per match id.
func (l *LiveDataClient) MatchTVCountries(ctx context.Context, matchID int) (json.RawMessage, error) {
	if !l.Enabled() {
		return nil, ErrLiveDataDisabled
	}

	cacheKey := l.cache.BuildKey("live", "tv-countries", strconv.Itoa(matchID))
	var cached json.RawMessage
	if err := l.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	} else if err != redis.Nil {
		l.logger.WithError(err).Debug("TV countries cache lookup failed")
	}

	raw, err := l.get(ctx, "fixtures", url.Values{"id": {strconv.Itoa(matchID)}})
	if err != nil {
		return nil, err
	}
	if err := l.cache.Set(ctx, cacheKey, raw, TVCountriesTTL); err != nil {
		l.logger.WithError(err).Debug("Failed to cache TV countries")
	}
	return raw, nil
}

// PlayerLiveSummary searches the player by name across the common
// leagues and recent seasons and condenses the first hit. A miss across
// the whole scan returns nil without error.
func (l *LiveDataClient) PlayerLiveSummary(ctx context.Context, name string) (*PlayerLiveSummary, error) {
	if !l.Enabled() {
		return nil, ErrLiveDataDisabled
	}

	cacheKey := l.cache.BuildKey("live", "player", name)
	var cached PlayerLiveSummary
	if err := l.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	for _, season := range searchSeasons {
		for _, league := range commonLeagueIDs {
			params := url.Values{
				"search": {name},
				"league": {strconv.Itoa(league)},
				"season": {strconv.Itoa(season)},
			}
			raw, err := l.get(ctx, "players", params)
			if err != nil {
				// scan keeps going; the breaker stops a dead API
				l.logger.WithError(err).WithFields(logrus.Fields{
					"league": league,
					"season": season,
				}).Debug("Live player search attempt failed")
				continue
			}
			summary, ok := condensePlayerResponse(raw)
			if !ok {
				continue
			}
			if err := l.cache.Set(ctx, cacheKey, summary, LiveSummaryTTL); err != nil {
				l.logger.WithError(err).Debug("Failed to cache live summary")
			}
			return summary, nil
		}
	}
	return nil, nil
}

func (l *LiveDataClient) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	result, err := l.circuitBreaker.Execute(BreakerAPIFootball, func() (interface{}, error) {
		u := fmt.Sprintf("%s/%s?%s", l.baseURL, path, params.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-apisports-key", l.apiKey)

		resp, err := l.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling api-football: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("api-football returned %d", resp.StatusCode)
		}
		return json.RawMessage(body), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}

type playerSearchResponse struct {
	Response []struct {
		Player struct {
			Name        string `json:"name"`
			Nationality string `json:"nationality"`
			Age         int    `json:"age"`
			Photo       string `json:"photo"`
		} `json:"player"`
		Statistics json.RawMessage `json:"statistics"`
	} `json:"response"`
}

func condensePlayerResponse(raw json.RawMessage) (*PlayerLiveSummary, bool) {
	var parsed playerSearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Response) == 0 {
		return nil, false
	}
	first := parsed.Response[0]

	team := ""
	var stats []struct {
		Team struct {
			Name string `json:"name"`
		} `json:"team"`
	}
	if err := json.Unmarshal(first.Statistics, &stats); err == nil && len(stats) > 0 {
		team = stats[0].Team.Name
	}

	return &PlayerLiveSummary{
		Name:        first.Player.Name,
		Nationality: first.Player.Nationality,
		Age:         first.Player.Age,
		Photo:       first.Player.Photo,
		Team:        team,
		LeagueStats: first.Statistics,
		Source:      "api-football",
	}, true
}
