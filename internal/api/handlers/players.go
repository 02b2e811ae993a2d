package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/scoutx/analytics-service/internal/dataset"
	"github.com/scoutx/analytics-service/internal/services"
	"github.com/scoutx/analytics-service/internal/similarity"
)

// APIResponse is the standard response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PlayerHandler serves player search, detail, similarity, radar and
// comparison endpoints.
type PlayerHandler struct {
	engine *similarity.Engine
	gemini *services.GeminiClient
	logger *logrus.Logger
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(engine *similarity.Engine, gemini *services.GeminiClient, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{
		engine: engine,
		gemini: gemini,
		logger: logger,
	}
}

// respondError maps the engine's error taxonomy onto HTTP statuses and
// keeps messages short: no internals, no stack traces.
func (h *PlayerHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, similarity.ErrNotFound):
		c.JSON(http.StatusNotFound, APIResponse{Success: false, Error: "Player not found"})
	case errors.Is(err, dataset.ErrDataUnavailable):
		h.logger.WithError(err).Error("Dataset unavailable")
		c.JSON(http.StatusServiceUnavailable, APIResponse{Success: false, Error: "Player dataset unavailable"})
	default:
		h.logger.WithError(err).Error("Player query failed")
		c.JSON(http.StatusInternalServerError, APIResponse{Success: false, Error: "Internal error"})
	}
}

// SearchPlayers handles GET /players/search?q=&rows=
func (h *PlayerHandler) SearchPlayers(c *gin.Context) {
	query := c.Query("q")
	rows := 20
	if raw := c.Query("rows"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			rows = n
		}
	}

	hits, err := h.engine.SearchPlayers(query, rows)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": hits})
}

// GetPlayer handles GET /players/:id where :id is a row id or a name.
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	record, err := h.engine.Record(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: record})
}

// GetSimilarPlayers handles GET /players/:id/similar with optional
// k, min_age, max_age, leagues and positions query parameters.
func (h *PlayerHandler) GetSimilarPlayers(c *gin.Context) {
	identifier := c.Param("id")
	k := 10
	if raw := c.Query("k"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			k = n
		}
	}
	filters := similarity.ParseFilters(
		c.Query("min_age"),
		c.Query("max_age"),
		c.Query("leagues"),
		c.Query("positions"),
	)

	requestID := uuid.New().String()
	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"player_id":  identifier,
		"k":          k,
	}).Info("Processing similar players request")

	results, err := h.engine.SimilarPlayers(identifier, k, filters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	radar, err := h.engine.Radar(identifier)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"results":     results,
		"input_radar": radar,
	})
}

// GetPlayerRadar handles GET /players/:id/radar
func (h *PlayerHandler) GetPlayerRadar(c *gin.Context) {
	radar, err := h.engine.Radar(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: radar})
}

// CompareRequest is the payload for the comparison endpoint.
type CompareRequest struct {
	PlayerIDs []string `json:"player_ids" binding:"required"`
}

// ComparePlayers handles POST /players/compare: resolves every player,
// computes radars, builds the side-by-side stat table and attaches the
// AI scouting report when the collaborator is available.
func (h *PlayerHandler) ComparePlayers(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.PlayerIDs) < 2 {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "At least 2 players required"})
		return
	}

	players := make([]map[string]interface{}, 0, len(req.PlayerIDs))
	radars := make([]similarity.Radar, 0, len(req.PlayerIDs))
	for _, pid := range req.PlayerIDs {
		record, err := h.engine.Record(pid)
		if err != nil {
			h.respondError(c, err)
			return
		}
		radar, err := h.engine.Radar(pid)
		if err != nil {
			h.respondError(c, err)
			return
		}
		players = append(players, record)
		radars = append(radars, radar)
	}

	keys := []string{"Player", "Pos", "Squad", "Age"}
	keys = append(keys, radars[0].Labels...)
	rows := make([]gin.H, 0, len(players))
	for _, p := range players {
		stats := make(map[string]interface{}, len(keys))
		for _, k := range keys {
			if v, ok := p[k]; ok {
				stats[k] = v
			} else {
				stats[k] = ""
			}
		}
		rows = append(rows, gin.H{"Rk": p["Rk"], "stats": stats})
	}

	report := h.gemini.ComparisonReport(c.Request.Context(), players)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"players":       players,
		"radar":         radars,
		"compare_stats": gin.H{"keys": keys, "rows": rows},
		"ai_report":     report,
	})
}

// GetMeta handles GET /meta: distinct leagues and position tokens for
// filter dropdowns.
func (h *PlayerHandler) GetMeta(c *gin.Context) {
	leagues, positions, err := h.engine.Meta()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"leagues":   leagues,
		"positions": positions,
	})
}

// GetFeatureDescriptions handles GET /features
func (h *PlayerHandler) GetFeatureDescriptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"descriptions": dataset.FeatureDescriptions,
	})
}
