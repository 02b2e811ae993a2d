package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutx/analytics-service/internal/valuation"
)

const predictionsCSV = `Player,Main_Pos,Squad,Comp,Nation,Age,Market_Value_Million_EUR,Predicted_Value,Undervaluation
Aaron One,FW,Arsenal,Premier League,ENG,24,50,80,30
Bruno Two,MF,Barcelona,La Liga,POR,27,60,55,-5
Carlos Three,FW,Arsenal,Premier League,ESP,21,20,45,25
Dario Four,DF,Juventus,Serie A,ITA,30,30,30,0
`

func newUndervaluedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "predictions.csv")
	require.NoError(t, os.WriteFile(path, []byte(predictionsCSV), 0o644))

	log := testLogger()
	store := valuation.NewStore([]string{path}, log)
	h := NewUndervaluedHandler(store, log)

	r := gin.New()
	r.POST("/undervalued", h.GetUndervalued)
	r.GET("/undervalued/filters", h.GetFilterOptions)
	return r
}

func TestGetUndervaluedEndpoint_Defaults(t *testing.T) {
	r := newUndervaluedRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/undervalued", map[string]interface{}{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), body["total_items"])

	data := body["data"].([]interface{})
	require.Len(t, data, 4)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "Aaron One", first["Player"])
	assert.Equal(t, float64(30), first["Undervaluation"])
}

func TestGetUndervaluedEndpoint_FiltersAndPaging(t *testing.T) {
	r := newUndervaluedRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/undervalued", map[string]interface{}{
		"position": "FW",
		"page":     1,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["total_items"])

	w, body = doJSON(t, r, http.MethodPost, "/undervalued", map[string]interface{}{
		"page":           2,
		"items_per_page": 3,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), body["total_items"])
	assert.Len(t, body["data"].([]interface{}), 1)
}

func TestGetUndervaluedEndpoint_BadBody(t *testing.T) {
	r := newUndervaluedRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/undervalued", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestGetFilterOptionsEndpoint(t *testing.T) {
	r := newUndervaluedRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/undervalued/filters", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		[]interface{}{"Premier League", "La Liga", "Serie A"},
		body["leagues"])
	assert.Equal(t,
		[]interface{}{"Arsenal", "Barcelona", "Juventus"},
		body["squads"])
}

func TestUndervaluedEndpoint_SnapshotUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := testLogger()
	store := valuation.NewStore([]string{filepath.Join(t.TempDir(), "missing.csv")}, log)
	h := NewUndervaluedHandler(store, log)

	r := gin.New()
	r.POST("/undervalued", h.GetUndervalued)

	w, body := doJSON(t, r, http.MethodPost, "/undervalued", map[string]interface{}{})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Predictions snapshot unavailable", body["error"])
}
