package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Abhishekshinde12/Conv-AI/internal/audit"
	"github.com/Abhishekshinde12/Conv-AI/internal/config"
	"github.com/Abhishekshinde12/Conv-AI/internal/hub"
	"github.com/Abhishekshinde12/Conv-AI/internal/service"
	"github.com/Abhishekshinde12/Conv-AI/pkg/jwt"
	"github.com/Abhishekshinde12/Conv-AI/pkg/log"
	"github.com/Abhishekshinde12/Conv-AI/pkg/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler accepts realtime connections at /ws/chat/:conversation_id.
// The access token rides in the token query parameter (browser WebSocket
// clients cannot set headers); identity is verified before the upgrade.
type WSHandler struct {
	hub    *hub.Hub
	chat   service.ChatService
	tokens *jwt.Manager
	wsCfg  config.WebSocketConfig
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(h *hub.Hub, chat service.ChatService, tokens *jwt.Manager, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:    h,
		chat:   chat,
		tokens: tokens,
		wsCfg:  wsCfg,
	}
}

// RegisterRoutes registers the websocket route.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws/chat/:conversation_id", h.HandleWebSocket)
}

// HandleWebSocket authenticates the connection, upgrades it, joins the
// client into the conversation's group, and starts the pumps. An
// unauthenticated connection is rejected before ever touching a group.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	claims, err := h.verifyRequest(c)
	if err != nil {
		audit.LogWithDetail(c.Request.Context(), audit.ActionConnectRejected, "", conversationID, "rejected unauthenticated connection")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)
	client.UserID = claims.UserID
	client.Username = claims.FirstName + " " + claims.LastName
	client.ConversationID = conversationID

	// The request context dies with the upgrade; give the pumps their own.
	ctx := log.WithLogger(context.Background(), log.L().With().
		Str(log.FieldClientID, client.ID).
		Str(log.FieldUserID, client.UserID).
		Str(log.FieldConversationID, conversationID).
		Logger())

	if err := h.chat.HandleConnect(ctx, client); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("failed to acknowledge join")
	}

	go client.WritePump()
	go func() {
		client.ReadPump(func(c *hub.Client, raw []byte) {
			h.chat.HandleInbound(ctx, c, raw)
		})
		h.chat.HandleDisconnect(ctx, client)
	}()
}

func (h *WSHandler) verifyRequest(c *gin.Context) (*jwt.Claims, error) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader(middleware.AuthHeaderKey)
		token = strings.TrimPrefix(header, middleware.BearerPrefix)
	}
	if token == "" {
		return nil, jwt.ErrInvalidToken
	}
	return h.tokens.Verify(token)
}
