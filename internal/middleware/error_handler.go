package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/cashback-settlement/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MapError maps service sentinels to client errors and falls back to
// MapDBError for everything else.
func MapError(err error) (int, ErrorResponse) {
	var fe *service.FieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: err.Error()}
	case errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, service.ErrRuleNotFound),
		errors.Is(err, service.ErrRedemptionNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "resource not found", Details: err.Error()}
	case errors.Is(err, service.ErrRuleCardMismatch),
		errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrInvalidMCC),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrTotalBelowRedeemed):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()}
	case errors.Is(err, service.ErrRedemptionExceedsBalance):
		return http.StatusBadRequest, ErrorResponse{Error: "redemption exceeds outstanding cashback", Details: err.Error()}
	}
	return MapDBError(err)
}

func MapDBError(err error) (int, ErrorResponse) {
	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, ErrorResponse{Error: "resource not found"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return http.StatusConflict, ErrorResponse{
				Error:   "resource already exists",
				Details: pgErr.Detail,
			}
		case "23503": // foreign_key_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "referenced resource does not exist",
				Details: pgErr.Detail,
			}
		case "23514": // check_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "constraint violation",
				Details: pgErr.Detail,
			}
		case "23P01": // exclusion_violation
			return http.StatusConflict, ErrorResponse{
				Error:   "overlapping resource",
				Details: pgErr.Detail,
			}
		}
	}

	log.Error().Err(err).Msg("unhandled error")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

// ErrorHandler renders the last error a handler attached with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			status, resp := MapError(c.Errors.Last().Err)
			c.JSON(status, resp)
		}
	}
}
