package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/2202030400009/maggic-mock-sub000/internal/engine"
	"github.com/2202030400009/maggic-mock-sub000/internal/middleware"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
	"github.com/2202030400009/maggic-mock-sub000/internal/response"
	"github.com/2202030400009/maggic-mock-sub000/internal/service"
	"github.com/2202030400009/maggic-mock-sub000/internal/validator"
)

// TestSessionHandler serves the live test session endpoints.
type TestSessionHandler struct {
	questionService *service.QuestionService
	sessionService  *service.TestSessionService
}

// NewTestSessionHandler creates a new TestSessionHandler.
func NewTestSessionHandler(questionService *service.QuestionService, sessionService *service.TestSessionService) *TestSessionHandler {
	return &TestSessionHandler{
		questionService: questionService,
		sessionService:  sessionService,
	}
}

// ListFormats godoc
// GET /api/v1/tests/formats
func (h *TestSessionHandler) ListFormats(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"formats": h.questionService.Formats()})
}

// StartSession godoc
// POST /api/v1/tests/sessions
// Builds a question list for the requested format and starts the timers.
func (h *TestSessionHandler) StartSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), claims, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Logger(c).Info().
		Str("session_id", session.ID().String()).
		Str("format", req.Format).
		Msg("Test session started")
	response.Success(c, http.StatusCreated, gin.H{"session": session.Snapshot()})
}

// ActiveSession godoc
// GET /api/v1/tests/sessions/active
func (h *TestSessionHandler) ActiveSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, err := h.sessionService.Active(claims.CurrentUserID())
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// GetSession godoc
// GET /api/v1/tests/sessions/:id
func (h *TestSessionHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// SelectOption godoc
// POST /api/v1/tests/sessions/:id/select
// Replaces the MCQ choice or toggles an MSQ option.
func (h *TestSessionHandler) SelectOption(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req model.SelectOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.respond(c, session, session.SelectOption(req.OptionID))
}

// SetNumericInput godoc
// POST /api/v1/tests/sessions/:id/numeric
func (h *TestSessionHandler) SetNumericInput(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req model.NumericInputRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.respond(c, session, session.SetNumericInput(req.Text))
}

// SetReviewFlag godoc
// POST /api/v1/tests/sessions/:id/review
func (h *TestSessionHandler) SetReviewFlag(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req model.ReviewFlagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.respond(c, session, session.SetReviewFlag(*req.Marked))
}

// Next godoc
// POST /api/v1/tests/sessions/:id/next
// Commits the current answer and advances. On the last question it submits.
func (h *TestSessionHandler) Next(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	res, err := session.Next(c.Request.Context())
	h.respondMove(c, session, res, err)
}

// Skip godoc
// POST /api/v1/tests/sessions/:id/skip
func (h *TestSessionHandler) Skip(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	res, err := session.Skip(c.Request.Context())
	h.respondMove(c, session, res, err)
}

// JumpTo godoc
// POST /api/v1/tests/sessions/:id/jump
func (h *TestSessionHandler) JumpTo(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req model.JumpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.respond(c, session, session.JumpTo(*req.Index))
}

// Submit godoc
// POST /api/v1/tests/sessions/:id/submit
// Returns 202 while another submission of the same session is in flight.
func (h *TestSessionHandler) Submit(c *gin.Context) {
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

	res, err := h.sessionService.Submit(c.Request.Context(), claims.CurrentUserID(), id)
	if err != nil {
		failWith(c, err)
		return
	}
	if res == nil {
		response.Success(c, http.StatusAccepted, gin.H{"status": model.PhaseSubmitting})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": res})
}

// AbandonSession godoc
// DELETE /api/v1/tests/sessions/:id
// Discards the session without saving a result.
func (h *TestSessionHandler) AbandonSession(c *gin.Context) {
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

	if err := h.sessionService.Abandon(claims.CurrentUserID(), id); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Test abandoned."})
}

// session resolves the caller's session from the :id parameter, writing the
// error response itself when it cannot.
func (h *TestSessionHandler) session(c *gin.Context) (*engine.Session, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	session, err := h.sessionService.Get(claims.CurrentUserID(), id)
	if err != nil {
		failWith(c, err)
		return nil, false
	}
	return session, true
}

func (h *TestSessionHandler) respond(c *gin.Context, session *engine.Session, err error) {
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// respondMove answers a navigation that may have ended the test.
func (h *TestSessionHandler) respondMove(c *gin.Context, session *engine.Session, res *model.TestResult, err error) {
	switch {
	case err != nil:
		failWith(c, err)
	case res != nil:
		response.Success(c, http.StatusOK, gin.H{"result": res})
	case session.Phase() == model.PhaseSubmitting:
		response.Success(c, http.StatusAccepted, gin.H{"status": model.PhaseSubmitting})
	default:
		response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
	}
}
