package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/driveport/service-rental/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.NewValidationError("bad dates"), http.StatusBadRequest},
		{"not found", domain.NewNotFoundError("Booking", "x"), http.StatusNotFound},
		{"conflict", domain.NewConflictError("overlap"), http.StatusConflict},
		{"invalid state", domain.NewInvalidStateError("COMPLETED", "ACTIVE"), http.StatusUnprocessableEntity},
		{"forbidden", domain.NewForbiddenError("nope"), http.StatusForbidden},
		{"transient store", domain.NewTransientStoreError("save", errors.New("timeout")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Error(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestError_ConflictCarriesBlockingBooking(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, domain.NewBookingConflictError("car is taken", "abc-123"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"blocking_booking_id":"abc-123"`)
}
