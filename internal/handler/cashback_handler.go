package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/cashback-settlement/internal/dto"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

type CashbackService interface {
	Cards(ctx context.Context) ([]model.Card, error)
	Rules(ctx context.Context, cardID string) ([]model.Rule, error)
	Calculate(ctx context.Context, req *dto.CalculateRequest) (*dto.CalculateResponse, error)
	Recommend(ctx context.Context, q *dto.RecommendationQuery) (*dto.RecommendationResponse, error)
	Suggest(ctx context.Context, month string) (*dto.SuggestionsResponse, error)
	CapProgress(ctx context.Context, month string) ([]dto.CapProgressResponse, error)
}

type CashbackHandler struct {
	svc CashbackService
}

func NewCashbackHandler(svc CashbackService) *CashbackHandler {
	return &CashbackHandler{svc: svc}
}

func (h *CashbackHandler) Cards(c *gin.Context) {
	cards, err := h.svc.Cards(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cards})
}

func (h *CashbackHandler) Rules(c *gin.Context) {
	rules, err := h.svc.Rules(c.Request.Context(), c.Query("card_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rules})
}

func (h *CashbackHandler) Calculate(c *gin.Context) {
	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.Calculate(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CashbackHandler) Recommend(c *gin.Context) {
	var q dto.RecommendationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.Recommend(c.Request.Context(), &q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CashbackHandler) Suggestions(c *gin.Context) {
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.Suggest(c.Request.Context(), q.Month)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CashbackHandler) CapProgress(c *gin.Context) {
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.CapProgress(c.Request.Context(), q.Month)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
		Error:  "validation failed",
		Errors: dto.ValidationErrors(err),
	})
}
