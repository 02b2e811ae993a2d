package services

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/scoutx/analytics-service/internal/valuation"
)

const chatFixtureCSV = `Player,Position,Main_Pos,Squad,Comp,Nation,Age,Born,Goals,Assists,Market_Value_Million_EUR,Predicted_Value,Undervaluation
Aaron One,FW,FW,Arsenal,Premier League,ENG,24,2001,18,5,50,80,30
Bruno Two,MF,MF,Barcelona,La Liga,POR,27,1998,6,11,60,55,-5
Carlos Three,FW,FW,Arsenal,Premier League,ESP,21,2004,9,3,20,45,25
Dario Four,DF,DF,Juventus,Serie A,ITA,30,1995,1,0,30,30,0
`

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// unreachableRedis returns a client that fails fast, for exercising the
// degraded paths without a running server.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		ReadTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func newTestServices(t *testing.T) (*valuation.Store, *CacheService, *GeminiClient) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "predictions.csv")
	require.NoError(t, os.WriteFile(path, []byte(chatFixtureCSV), 0o644))

	log := testLogger()
	store := valuation.NewStore([]string{path}, log)
	cache := NewCacheService(unreachableRedis(), log)
	breaker := NewCircuitBreakerService(3, time.Minute, log)
	gemini := NewGeminiClient("", "", time.Second, cache, breaker, log)
	return store, cache, gemini
}
