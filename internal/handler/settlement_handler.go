package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/cashback-settlement/internal/dto"
	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

type SettlementService interface {
	Ledger(ctx context.Context) (engine.Ledger, error)
	Redeem(ctx context.Context, req *dto.RedemptionRequest) (*dto.RedemptionResponse, error)
	Batch(ctx context.Context, batchID string) ([]model.Redemption, error)
}

type SettlementHandler struct {
	svc SettlementService
}

func NewSettlementHandler(svc SettlementService) *SettlementHandler {
	return &SettlementHandler{svc: svc}
}

func (h *SettlementHandler) Ledger(c *gin.Context) {
	p := dto.ParsePagination(c)

	ledger, err := h.svc.Ledger(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	start, end := p.Window(len(ledger.Items))
	c.JSON(http.StatusOK, dto.LedgerResponse{
		Items:      ledger.Items[start:end],
		Points:     ledger.Points,
		Pagination: dto.NewPagination(p.Page, p.PageSize, len(ledger.Items)),
	})
}

func (h *SettlementHandler) Redeem(c *gin.Context) {
	var req dto.RedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.Redeem(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SettlementHandler) Batch(c *gin.Context) {
	entries, err := h.svc.Batch(c.Request.Context(), c.Param("batch_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.RedemptionBatchResponse{BatchID: c.Param("batch_id"), Entries: entries})
}
