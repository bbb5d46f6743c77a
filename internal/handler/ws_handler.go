package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/2202030400009/maggic-mock-sub000/internal/engine"
	"github.com/2202030400009/maggic-mock-sub000/internal/middleware"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
	"github.com/2202030400009/maggic-mock-sub000/internal/response"
	"github.com/2202030400009/maggic-mock-sub000/internal/service"
	ws "github.com/2202030400009/maggic-mock-sub000/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live test session over a WebSocket.
type WSHandler struct {
	sessionService *service.TestSessionService
	tickInterval   time.Duration
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.TestSessionService, tickInterval time.Duration, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	return &WSHandler{
		sessionService: sessionService,
		tickInterval:   tickInterval,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// StreamSession godoc
// WS /ws/v1/tests/sessions/:id/stream?token=...
// Accepts session actions and pushes state, tick and completion events.
func (h *WSHandler) StreamSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Resolve before upgrading so a missing session is a plain HTTP error.
	session, err := h.sessionService.Get(claims.CurrentUserID(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", claims.CurrentUserID()).
		Str("session_id", id.String()).
		Logger()
	wsLog.Info().Msg("Stream connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.pushEvents(ctx, conn, session, wsLog)

	_ = conn.Write(ws.EventState, session.Snapshot())

	for {
		var req ws.Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Stream closed")
			}
			return
		}

		if err := h.dispatch(ctx, conn, session, &req); err != nil {
			_, code := classify(err)
			_ = conn.WriteError(string(code), response.GetMessage(code))
		}
	}
}

// dispatch applies one client action. Completion events are left to
// pushEvents, which watches the session.
func (h *WSHandler) dispatch(ctx context.Context, conn *ws.Conn, session *engine.Session, req *ws.Request) error {
	var err error
	switch req.Action {
	case ws.ActionPing:
		return conn.Write(ws.EventPong, nil)
	case ws.ActionState:
	case ws.ActionSelect:
		err = session.SelectOption(req.OptionID)
	case ws.ActionNumeric:
		err = session.SetNumericInput(req.Text)
	case ws.ActionReview:
		if req.Marked == nil {
			return conn.WriteError(string(response.ErrValidation), "marked is required")
		}
		err = session.SetReviewFlag(*req.Marked)
	case ws.ActionJump:
		if req.Index == nil {
			return conn.WriteError(string(response.ErrValidation), "index is required")
		}
		err = session.JumpTo(*req.Index)
	case ws.ActionNext:
		_, err = session.Next(ctx)
	case ws.ActionSkip:
		_, err = session.Skip(ctx)
	case ws.ActionSubmit:
		_, err = session.Submit(ctx)
	default:
		return conn.WriteError(string(response.ErrInvalidPayload), "unknown action: "+string(req.Action))
	}
	if err != nil {
		return err
	}

	switch session.Phase() {
	case model.PhaseSubmitted, model.PhaseClosed:
		return nil
	case model.PhaseSubmitting:
		return conn.Write(ws.EventSubmitting, nil)
	default:
		return conn.Write(ws.EventState, session.Snapshot())
	}
}

// pushEvents sends a tick every interval until the session ends, then the
// final event, and closes the connection to release the reader.
func (h *WSHandler) pushEvents(ctx context.Context, conn *ws.Conn, session *engine.Session, log zerolog.Logger) {
	ticker := time.NewTicker(h.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-session.Done():
			if res := session.Result(); res != nil {
				_ = conn.Write(ws.EventSubmitted, res)
				log.Info().Bool("forced", res.Forced).Msg("Test submitted over stream")
			} else {
				_ = conn.Write(ws.EventClosed, nil)
			}
			_ = conn.Close()
			return

		case <-ticker.C:
			index := session.CurrentIndex()
			spent := session.TimeSpent()
			if err := conn.Write(ws.EventTick, ws.TickData{
				RemainingSeconds: session.RemainingSeconds(),
				CurrentIndex:     index,
				TimeSpent:        spent[index],
			}); err != nil {
				log.Debug().Err(err).Msg("Tick write failed")
				return
			}
		}
	}
}
