package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"nutrisense/internal/assistant"
	"nutrisense/internal/utility"
)

const sessionCookieName = "nutrisense_session"

/* ====================================================================
                        Chat Handlers
==================================================================== */

// ChatRequest is one chat turn. UserID is optional; when omitted the last
// explicitly provided id is taken from the session cookie.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// ChatResponse carries the assistant's displayable reply.
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

func (s *Server) chatHandler(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid chat payload"})
	}

	sess := s.resolveSession(c, req.UserID)

	reply, err := s.assistant.HandleQuery(c.Request().Context(), sess, req.Message)
	if err != nil {
		// Only the workout path errors out; it has no fallback.
		log.Error().Err(err).Str("session_id", sess.ID).Msg("chat query failed")
		status := http.StatusBadGateway
		if errors.Is(err, assistant.ErrNoAPIKey) {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, ChatResponse{Reply: reply, SessionID: sess.ID})
}

// chatWebSocketHandler runs the same request/response loop over a
// websocket: one text message in, one reply out.
func (s *Server) chatWebSocketHandler(c echo.Context) error {
	sess := s.resolveSession(c, c.QueryParam("user_id"))

	ws, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	log.Info().Str("session_id", sess.ID).Msg("websocket chat client connected")

	for {
		msgType, msg, err := ws.ReadMessage()
		if err != nil {
			log.Info().Str("session_id", sess.ID).Msg("websocket chat client disconnected")
			return nil
		}
		if msgType != websocket.TextMessage {
			continue
		}

		reply, err := s.assistant.HandleQuery(c.Request().Context(), sess, string(msg))
		if err != nil {
			reply = "⚠️ " + err.Error()
		}
		if err := ws.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to write websocket reply")
			return nil
		}
	}
}

// resolveSession builds the explicit per-request session. A user id given
// in the request wins and is remembered in the cookie; otherwise the cookie
// value is used.
func (s *Server) resolveSession(c echo.Context, userID string) assistant.Session {
	cookie, _ := s.sessions.Get(c.Request(), sessionCookieName)

	sessionID, _ := cookie.Values["session_id"].(string)
	if sessionID == "" {
		sessionID = uuid.New().String()
		cookie.Values["session_id"] = sessionID
	}

	if userID != "" {
		cookie.Values["user_id"] = userID
	} else {
		userID, _ = cookie.Values["user_id"].(string)
	}

	if err := cookie.Save(c.Request(), c.Response()); err != nil {
		log.Warn().Err(err).Msg("failed to save session cookie")
	}

	return assistant.Session{ID: sessionID, UserID: userID}
}
