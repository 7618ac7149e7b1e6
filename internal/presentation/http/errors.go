package httppresentation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leafy-market/leafy-backend/internal/application/auth"
	appcatalog "github.com/leafy-market/leafy-backend/internal/application/catalog"
	apporder "github.com/leafy-market/leafy-backend/internal/application/order"
	dombatch "github.com/leafy-market/leafy-backend/internal/domain/batch"
	domorder "github.com/leafy-market/leafy-backend/internal/domain/order"
	domuser "github.com/leafy-market/leafy-backend/internal/domain/user"
)

// writeDomainError maps the error taxonomy onto HTTP statuses. The core raises
// typed errors; this is the only place they become status codes.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(c, http.StatusUnauthorized, err)
	case errors.Is(err, auth.ErrPermissionDenied):
		writeError(c, http.StatusForbidden, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, err)
	case errors.Is(err, dombatch.ErrNotFound),
		errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domuser.ErrNotFound):
		writeError(c, http.StatusNotFound, err)
	case errors.Is(err, dombatch.ErrInsufficientStock),
		errors.Is(err, domorder.ErrInvalidTransition):
		writeError(c, http.StatusConflict, err)
	case errors.Is(err, domuser.ErrExists):
		writeError(c, http.StatusConflict, err)
	case errors.Is(err, apporder.ErrValidation),
		errors.Is(err, appcatalog.ErrValidation),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domuser.ErrMissingUsername),
		errors.Is(err, domuser.ErrMissingPassword):
		writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, apporder.ErrRepository):
		writeError(c, http.StatusServiceUnavailable, err)
	default:
		writeError(c, http.StatusInternalServerError, err)
	}
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}
