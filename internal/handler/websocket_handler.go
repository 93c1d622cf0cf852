package handler

import (
	"context"
	"net/http"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// JWTValidator turns a raw access token into the caller's principal
type JWTValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.Principal, error)
}

// WebSocketHandler subscribes clients to the live feed of one branch
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      JWTValidator
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// non-browser clients send no Origin
	if origin == "" || h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles GET /ws?token=&branchId=
// Browsers cannot set headers on the upgrade request, so the token travels as a query parameter.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	principal, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	branchID, perr := queryID(c, "branchId")
	if perr != nil {
		return echo.NewHTTPError(http.StatusBadRequest, perr.Error())
	}
	if !principal.CanAccessBranch(branchID) {
		log.Warn().
			Str("subject", principal.Subject).
			Int64("branch_id", branchID).
			Msg("WebSocket connection rejected: branch access denied")
		return echo.NewHTTPError(http.StatusForbidden, domain.ErrBranchAccessDenied.Error())
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, branchID, principal.Subject, h.hub)
	h.hub.Register(client)

	log.Info().
		Int64("branch_id", branchID).
		Str("subject", principal.Subject).
		Str("client_id", client.ID()).
		Int("branch_clients", h.hub.ClientCount(branchID)).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}
