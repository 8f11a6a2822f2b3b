package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	httptransport "cardvault/contexts/account-management/account-service/transport/http"

	"github.com/gin-gonic/gin"
)

func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrUnauthenticated):
		writeError(c, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, domainerrors.ErrForbidden):
		writeError(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domainerrors.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domainerrors.ErrConflict):
		writeError(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidArgument):
		writeError(c, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidState):
		writeError(c, http.StatusUnprocessableEntity, "invalid_state", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func writeBindingError(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, "invalid_argument", err.Error())
}

func writeError(c *gin.Context, status int, code string, message string) {
	writeJSON(c, status, httptransport.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// pathID parses a positive int64 path parameter and answers 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid_argument", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
