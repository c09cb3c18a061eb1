package response

import (
	"errors"
	"net/http"

	"github.com/driveport/service-rental/internal/domain"
	"github.com/gin-gonic/gin"
)

// envelope is the standard success response body.
type envelope struct {
	Data interface{} `json:"data"`
}

// errorBody is the standard error response body.
type errorBody struct {
	Error             string `json:"error"`
	BlockingBookingID string `json:"blocking_booking_id,omitempty"`
}

// Success writes a 200 response with the standard envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Data: data})
}

// Created writes a 201 response with the standard envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Data: data})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: message})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Error maps a domain error to its HTTP status. Typed domain failures pass
// through verbatim; anything unrecognized is a 500.
func Error(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
		stateErr      *domain.InvalidStateError
		forbiddenErr  *domain.ForbiddenError
		transientErr  *domain.TransientStoreError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, errorBody{Error: validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, errorBody{Error: notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, errorBody{
			Error:             conflictErr.Message,
			BlockingBookingID: conflictErr.BlockingBookingID,
		})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusUnprocessableEntity, errorBody{Error: stateErr.Error()})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, errorBody{Error: forbiddenErr.Message})
	case errors.As(err, &transientErr):
		c.JSON(http.StatusServiceUnavailable, errorBody{Error: "temporary storage failure, retry the request"})
	default:
		c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}
