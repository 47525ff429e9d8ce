package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/cashback-settlement/internal/dto"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

type TransactionService interface {
	CreateTransaction(ctx context.Context, req *dto.CreateTransactionRequest) (*dto.TransactionResponse, error)
	CreateBatch(ctx context.Context, req *dto.BatchTransactionRequest) ([]dto.TransactionResponse, []dto.ValidationError, error)
	List(ctx context.Context, q *dto.TransactionListQuery) ([]model.Transaction, error)
}

type TransactionHandler struct {
	svc TransactionService
}

func NewTransactionHandler(svc TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	txn, err := h.svc.CreateTransaction(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

func (h *TransactionHandler) CreateBatch(c *gin.Context) {
	var req dto.BatchTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, validationErrors, err := h.svc.CreateBatch(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if len(validationErrors) > 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error:  "batch validation failed",
			Errors: validationErrors,
		})
		return
	}

	c.JSON(http.StatusCreated, dto.BatchTransactionResponse{
		Inserted: len(results),
		Results:  results,
	})
}

func (h *TransactionHandler) List(c *gin.Context) {
	var q dto.TransactionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	txns, err := h.svc.List(c.Request.Context(), &q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": txns})
}
