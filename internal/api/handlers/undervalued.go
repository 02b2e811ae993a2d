package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/scoutx/analytics-service/internal/dataset"
	"github.com/scoutx/analytics-service/internal/valuation"
)

// UndervaluedHandler serves the undervalued-players ranking.
type UndervaluedHandler struct {
	store  *valuation.Store
	logger *logrus.Logger
}

func NewUndervaluedHandler(store *valuation.Store, logger *logrus.Logger) *UndervaluedHandler {
	return &UndervaluedHandler{store: store, logger: logger}
}

// UndervaluedRequest mirrors the client's filter/sort/page payload.
// Omitted fields fall back to wildcard filters and the default sort.
type UndervaluedRequest struct {
	Position          string   `json:"position"`
	League            string   `json:"league"`
	Squad             string   `json:"squad"`
	Page              int      `json:"page"`
	ItemsPerPage      int      `json:"items_per_page"`
	SortColumn        string   `json:"sort_column"`
	SortDirection     string   `json:"sort_direction"`
	MinAge            *float64 `json:"min_age"`
	MaxAge            *float64 `json:"max_age"`
	MinValue          *float64 `json:"min_value"`
	MaxValue          *float64 `json:"max_value"`
	MinUndervaluation *float64 `json:"min_undervaluation"`
}

// GetUndervalued handles POST /undervalued
func (h *UndervaluedHandler) GetUndervalued(c *gin.Context) {
	req := UndervaluedRequest{
		Position:      valuation.Wildcard,
		League:        valuation.Wildcard,
		Squad:         valuation.Wildcard,
		Page:          1,
		ItemsPerPage:  25,
		SortColumn:    "undervaluation",
		SortDirection: "desc",
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "Invalid request body"})
		return
	}

	page, err := h.store.Undervalued(valuation.Query{
		Position:          req.Position,
		League:            req.League,
		Squad:             req.Squad,
		MinAge:            req.MinAge,
		MaxAge:            req.MaxAge,
		MinValue:          req.MinValue,
		MaxValue:          req.MaxValue,
		MinUndervaluation: req.MinUndervaluation,
		SortColumn:        req.SortColumn,
		SortDirection:     req.SortDirection,
		Page:              req.Page,
		ItemsPerPage:      req.ItemsPerPage,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        page.Items,
		"total_items": page.TotalItems,
	})
}

// GetFilterOptions handles GET /undervalued/filters
func (h *UndervaluedHandler) GetFilterOptions(c *gin.Context) {
	leagues, squads, err := h.store.FilterOptions()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"leagues": leagues,
		"squads":  squads,
	})
}

func (h *UndervaluedHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, dataset.ErrDataUnavailable) {
		h.logger.WithError(err).Error("Predictions snapshot unavailable")
		c.JSON(http.StatusServiceUnavailable, APIResponse{Success: false, Error: "Predictions snapshot unavailable"})
		return
	}
	h.logger.WithError(err).Error("Undervalued query failed")
	c.JSON(http.StatusInternalServerError, APIResponse{Success: false, Error: "Internal error"})
}
