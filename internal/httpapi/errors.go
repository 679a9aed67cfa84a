package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenex/matchbook/internal/domain"
)

// errorResponse is the machine-readable error envelope spec.md §7 requires:
// a kind plus a human message.
type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// respondError maps a domain error kind to its HTTP status and kind string,
// per spec.md §7's error-kind table.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Kind: "not_found", Message: err.Error()})
	case errors.Is(err, domain.ErrStateConflict):
		c.JSON(http.StatusBadRequest, errorResponse{Kind: "state_conflict", Message: err.Error()})
	case errors.Is(err, domain.ErrTransient):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Kind: "transient", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Kind: "internal", Message: "internal error"})
	}
}
