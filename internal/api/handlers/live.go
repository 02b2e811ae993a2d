package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/scoutx/analytics-service/internal/services"
)

// LiveHandler proxies the live sports-data collaborator.
type LiveHandler struct {
	live   *services.LiveDataClient
	logger *logrus.Logger
}

func NewLiveHandler(live *services.LiveDataClient, logger *logrus.Logger) *LiveHandler {
	return &LiveHandler{live: live, logger: logger}
}

// GetTVCountries handles GET /live/tv-countries?matchId=
func (h *LiveHandler) GetTVCountries(c *gin.Context) {
	raw := c.Query("matchId")
	if raw == "" {
		raw = c.Query("match_id")
	}
	if raw == "" {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "Provide matchId query parameter"})
		return
	}
	matchID, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "matchId must be an integer"})
		return
	}

	data, err := h.live.MatchTVCountries(c.Request.Context(), matchID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// GetPlayerLiveSummary handles GET /live/player-summary?name=
func (h *LiveHandler) GetPlayerLiveSummary(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "Provide name query parameter"})
		return
	}

	summary, err := h.live.PlayerLiveSummary(c.Request.Context(), name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, APIResponse{Success: false, Error: "No live data found for player"})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: summary})
}

func (h *LiveHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrLiveDataDisabled) {
		c.JSON(http.StatusServiceUnavailable, APIResponse{Success: false, Error: "Live data API key not configured"})
		return
	}
	h.logger.WithError(err).Error("Live data request failed")
	c.JSON(http.StatusBadGateway, APIResponse{Success: false, Error: "Live data provider unavailable"})
}
