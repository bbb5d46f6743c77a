package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/2202030400009/maggic-mock-sub000/internal/middleware"
	"github.com/2202030400009/maggic-mock-sub000/internal/response"
	"github.com/2202030400009/maggic-mock-sub000/internal/service"
)

// ResultHandler serves stored test results.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListResults godoc
// GET /api/v1/results?page=1&per_page=10
func (h *ResultHandler) ListResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	results, pagination, err := h.resultService.List(c.Request.Context(), claims.CurrentUserID(), page, perPage)
	if err != nil {
		failWith(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// GetResult godoc
// GET /api/v1/results/:id
func (h *ResultHandler) GetResult(c *gin.Context) {
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

	res, err := h.resultService.Get(c.Request.Context(), claims.CurrentUserID(), id)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": res})
}

// SubjectStats godoc
// GET /api/v1/stats/subjects
// Per-subject totals across all of the caller's stored results.
func (h *ResultHandler) SubjectStats(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	stats, err := h.resultService.SubjectStats(c.Request.Context(), claims.CurrentUserID())
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": stats})
}
