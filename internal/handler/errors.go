package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/2202030400009/maggic-mock-sub000/internal/engine"
	"github.com/2202030400009/maggic-mock-sub000/internal/response"
	"github.com/2202030400009/maggic-mock-sub000/internal/service"
)

var errorCodes = []struct {
	err    error
	status int
	code   response.ErrCode
}{
	{service.ErrUnknownFormat, http.StatusBadRequest, response.ErrUnknownFormat},
	{service.ErrSessionNotFound, http.StatusNotFound, response.ErrSessionNotFound},
	{service.ErrSessionActive, http.StatusConflict, response.ErrSessionActive},
	{service.ErrResultNotFound, http.StatusNotFound, response.ErrNotFound},
	{engine.ErrNoQuestions, http.StatusUnprocessableEntity, response.ErrNoQuestions},
	{engine.ErrInsufficientQuestions, http.StatusUnprocessableEntity, response.ErrInsufficientQuestions},
	{engine.ErrInvalidQuestion, http.StatusUnprocessableEntity, response.ErrInvalidQuestion},
	{engine.ErrInvalidDuration, http.StatusUnprocessableEntity, response.ErrInvalidDuration},
	{engine.ErrTimeUp, http.StatusConflict, response.ErrTimeUp},
	{engine.ErrSessionClosed, http.StatusGone, response.ErrSessionClosed},
	{engine.ErrSubmitting, http.StatusConflict, response.ErrSubmitting},
	{engine.ErrIndexOutOfRange, http.StatusBadRequest, response.ErrIndexOutOfRange},
	{engine.ErrUnknownOption, http.StatusBadRequest, response.ErrUnknownOption},
	{engine.ErrNoCurrentUser, http.StatusUnauthorized, response.ErrNoCurrentUser},
	{engine.ErrSaveFailed, http.StatusServiceUnavailable, response.ErrSaveFailed},
}

// classify maps a service or engine error to its HTTP status and code.
func classify(err error) (int, response.ErrCode) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, response.ErrInternal
}

// failWith writes the error response for err. Unexpected errors are logged.
func failWith(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		response.Logger(c).Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	response.Fail(c, status, code)
}
