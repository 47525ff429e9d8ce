package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/anyulbade/cashback-settlement/internal/service"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"sad: wrapped card not found", fmt.Errorf("calc: %w", service.ErrCardNotFound), http.StatusNotFound},
		{"sad: rule mismatch", service.ErrRuleCardMismatch, http.StatusBadRequest},
		{"sad: redemption too large", fmt.Errorf("%w: 10", service.ErrRedemptionExceedsBalance), http.StatusBadRequest},
		{"sad: redemption batch not found", service.ErrRedemptionNotFound, http.StatusNotFound},
		{"sad: total below redeemed", fmt.Errorf("update: %w", service.ErrTotalBelowRedeemed), http.StatusBadRequest},
		{"sad: field error", &service.FieldError{Field: "card_id", Message: "missing"}, http.StatusBadRequest},
		{"sad: no rows", fmt.Errorf("find: %w", pgx.ErrNoRows), http.StatusNotFound},
		{"sad: unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"sad: check violation", &pgconn.PgError{Code: "23514"}, http.StatusBadRequest},
		{"sad: unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/fail", func(c *gin.Context) { _ = c.Error(service.ErrInvalidMonth) })
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
