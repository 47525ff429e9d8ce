package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/cashback-settlement/internal/dto"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

type PaymentService interface {
	Statements(ctx context.Context) (*dto.PaymentsResponse, error)
	UpdateSummary(ctx context.Context, id string, req *dto.UpdateSummaryRequest) (*model.MonthlySummary, error)
}

type PaymentHandler struct {
	svc PaymentService
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) Payments(c *gin.Context) {
	resp, err := h.svc.Statements(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) UpdateSummary(c *gin.Context) {
	var req dto.UpdateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	summary, err := h.svc.UpdateSummary(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
