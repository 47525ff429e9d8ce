package dto

import "time"

type CalculateRequest struct {
	CardID          string    `json:"card_id" binding:"required"`
	RuleID          string    `json:"rule_id" binding:"required"`
	Amount          float64   `json:"amount" binding:"required,gt=0"`
	TransactionDate time.Time `json:"transaction_date"`
}

type RecommendationQuery struct {
	MCC            string  `form:"mcc" binding:"required,mcc"`
	Amount         float64 `form:"amount" binding:"omitempty,gte=0"`
	Date           string  `form:"date" binding:"omitempty,datetime=2006-01-02"`
	CardID         string  `form:"card_id"`
	IncludeDefault bool    `form:"include_default"`
}

type MonthQuery struct {
	Month string `form:"month" binding:"omitempty,yyyymm"`
}

type CreateTransactionRequest struct {
	CardID          string    `json:"card_id" binding:"required"`
	RuleID          string    `json:"rule_id"`
	MCCCode         string    `json:"mcc_code" binding:"required,mcc"`
	Merchant        string    `json:"merchant" binding:"max=200"`
	Amount          float64   `json:"amount" binding:"required,gt=0"`
	TransactionDate time.Time `json:"transaction_date" binding:"required"`
}

type TransactionListQuery struct {
	CardID string `form:"card_id" binding:"required"`
	Month  string `form:"month" binding:"required,yyyymm"`
}

type BatchTransactionRequest struct {
	Transactions []CreateTransactionRequest `json:"transactions" binding:"required,min=1,max=500,dive"`
}

type UpdateSummaryRequest struct {
	ActualCashback  *float64 `json:"actual_cashback" binding:"omitempty,gte=0"`
	Adjustment      *float64 `json:"adjustment"`
	StatementAmount *float64 `json:"statement_amount" binding:"omitempty,gte=0"`
	PaidAmount      *float64 `json:"paid_amount" binding:"omitempty,gte=0"`
	Reviewed        *bool    `json:"reviewed"`
	Notes           *string  `json:"notes" binding:"omitempty,max=2000"`
}

type RedemptionRequest struct {
	CardID string  `json:"card_id" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Note   string  `json:"note" binding:"max=200"`
}
