package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/scoutx/analytics-service/internal/services"
)

// ChatHandler serves the conversational assistant.
type ChatHandler struct {
	chat   *services.ChatService
	logger *logrus.Logger
}

func NewChatHandler(chat *services.ChatService, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// ChatRequest is one user message. A missing session id starts a new
// session; the id comes back in the response so the client can keep it.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "Invalid request body"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	h.logger.WithFields(logrus.Fields{
		"chat_session": req.SessionID,
	}).Debug("Processing chat message")

	reply, err := h.chat.Respond(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.WithError(err).Error("Chat request failed")
		c.JSON(http.StatusServiceUnavailable, APIResponse{Success: false, Error: "Assistant unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": req.SessionID,
		"reply":      reply,
	})
}

// ResetRequest identifies the session whose history should be cleared.
type ResetRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Reset handles POST /chat/reset
func (h *ChatHandler) Reset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "Provide session_id"})
		return
	}
	if err := h.chat.Reset(c.Request.Context(), req.SessionID); err != nil {
		h.logger.WithError(err).Error("Failed to reset chat history")
		c.JSON(http.StatusInternalServerError, APIResponse{Success: false, Error: "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "Chat history reset"})
}
