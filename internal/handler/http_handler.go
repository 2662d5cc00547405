package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhishekshinde12/Conv-AI/internal/analytics"
	"github.com/Abhishekshinde12/Conv-AI/internal/audit"
	"github.com/Abhishekshinde12/Conv-AI/internal/service"
	"github.com/Abhishekshinde12/Conv-AI/pkg/log"
	"github.com/Abhishekshinde12/Conv-AI/pkg/middleware"
)

// Handler serves the conversation directory, transcript, and analytics
// endpoints. The /chat paths keep the routes the frontend already uses.
type Handler struct {
	directory      service.DirectoryService
	history        service.HistoryService
	summarizer     analytics.Summarizer
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	directory service.DirectoryService,
	history service.HistoryService,
	summarizer analytics.Summarizer,
	authMiddleware *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		directory:      directory,
		history:        history,
		summarizer:     summarizer,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	chat := r.Group("/chat", h.authMiddleware.RequireAuth())
	{
		chat.GET("/get_conversation_id/:customer_id", h.GetConversationID)
		chat.GET("/get_connected_users/:representative_id", h.GetConnectedUsers)
	}

	api := r.Group("/api/v1", h.authMiddleware.RequireAuth())
	{
		api.GET("/conversations/:conversation_id/messages", h.GetTranscript)
		api.POST("/analytics", h.GetAnalytics)
	}

	r.GET("/health", h.HealthCheck)
}

// GetConversationID resolves (or lazily creates) the conversation between
// the customer and a representative.
func (h *Handler) GetConversationID(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	customerID := c.Param("customer_id")

	conversationID, err := h.directory.GetOrCreateConversation(ctx, customerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		case errors.Is(err, service.ErrNoRepresentative):
			c.JSON(http.StatusNotFound, gin.H{"error": "No Representative available"})
		default:
			l.Error().Err(err).Str(log.FieldUserID, customerID).Msg("failed to resolve conversation")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve conversation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conversationID})
}

// GetConnectedUsers lists the representative's conversations, each with
// the peer's display name.
func (h *Handler) GetConnectedUsers(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	representativeID := c.Param("representative_id")

	summaries, err := h.directory.ListConversationsForRepresentative(ctx, representativeID)
	if err != nil {
		if errors.Is(err, service.ErrRepresentativeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Representative not found"})
			return
		}
		l.Error().Err(err).Str(log.FieldUserID, representativeID).Msg("failed to list conversations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list conversations"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// GetTranscript returns the ordered message history of a conversation.
func (h *Handler) GetTranscript(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	conversationID := c.Param("conversation_id")

	messages, err := h.history.GetTranscript(ctx, conversationID)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		l.Error().Err(err).Str(log.FieldConversationID, conversationID).Msg("failed to get transcript")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get transcript"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

type analyticsRequest struct {
	Messages []analytics.TranscriptEntry `json:"messages"`
}

// GetAnalytics runs the transcript through the external summarizer and
// returns the structured lead report.
func (h *Handler) GetAnalytics(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req analyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Messages are required"})
		return
	}

	report, err := h.summarizer.Summarize(ctx, req.Messages)
	if err != nil {
		l.Error().Err(err).Msg("analytics call failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	audit.Log(ctx, audit.ActionAnalytics, middleware.GetUserID(c), "analytics report generated")
	c.JSON(http.StatusOK, report)
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
