package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTokenValidator accepts one token and maps it to a principal
type stubTokenValidator struct {
	token     string
	principal *domain.Principal
}

func (s *stubTokenValidator) ValidateToken(ctx context.Context, token string) (*domain.Principal, error) {
	if token != s.token {
		return nil, errors.New("token signature invalid")
	}
	return s.principal, nil
}

var testAllowedOrigins = []string{"http://localhost:5173", "https://office.edudesk.app"}

func newTestWSHandler(hub *websocket.Hub) *WebSocketHandler {
	return NewWebSocketHandler(hub, &stubTokenValidator{token: "good-token", principal: branchAdmin}, testAllowedOrigins)
}

func TestWebSocketHandler_HandleWS_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing token", "/ws?branchId=1", http.StatusUnauthorized},
		{"invalid token", "/ws?token=forged&branchId=1", http.StatusUnauthorized},
		{"missing branch", "/ws?token=good-token", http.StatusBadRequest},
		{"malformed branch", "/ws?token=good-token&branchId=north", http.StatusBadRequest},
		{"branch not administered", "/ws?token=good-token&branchId=2", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			hub := websocket.NewHub()
			h := newTestWSHandler(hub)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.HandleWS(c)
			require.Error(t, err)
			var httpErr *echo.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.status, httpErr.Code)
			assert.Equal(t, 0, hub.TotalClientCount())
		})
	}
}

func TestWebSocketHandler_HandleWS_ValidToken_NoUpgrade(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	h := newTestWSHandler(hub)

	// authorised, but not an upgrade request
	req := httptest.NewRequest(http.MethodGet, "/ws?token=good-token&branchId=1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)
	assert.Error(t, err)
	var httpErr *echo.HTTPError
	assert.False(t, errors.As(err, &httpErr))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestWebSocketHandler_HandleWS_ReceivesBranchEvents(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	h := newTestWSHandler(hub)
	e.GET("/ws", h.HandleWS)

	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=good-token&branchId=1"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(1) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(2, websocket.ExpenseCreated(map[string]int64{"id": 9}))
	hub.Publish(1, websocket.PaymentCreated(map[string]int64{"id": 7}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type    string           `json:"type"`
		Payload map[string]int64 `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "payment.created", event.Type)
	assert.Equal(t, int64(7), event.Payload["id"])
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := newTestWSHandler(websocket.NewHub())

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:5173", true},
		{"allowed origin https", "https://office.edudesk.app", true},
		{"disallowed origin", "https://evil.example", false},
		{"no origin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, h.checkOrigin(req))
		})
	}
}
