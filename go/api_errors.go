package filterserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	filtersapp "github.com/Apurer/go-adoption-filters/internal/domains/filters/application"
	apierrors "github.com/Apurer/go-adoption-filters/internal/shared/errors"
)

var problems = apierrors.NewChainedResponder("", apierrors.MapAgeErrors, filterProblem)

// respondError preserves the existing call sites while returning RFC 7807 responses.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	case http.StatusUnprocessableEntity:
		problem = apierrors.ErrUnprocessable.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	problems.Respond(c, problem)
}

// respondServiceError maps filter session errors to problem responses.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, filtersapp.ErrSessionNotFound) {
		problems.Respond(c, apierrors.NewNotFoundProblem("filter session", c.Param("sessionId")))
		return
	}
	problems.RespondError(c, err)
}

func filterProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, filtersapp.ErrSessionNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, filtersapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
