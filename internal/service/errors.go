package service

import "errors"

var (
	ErrCardNotFound             = errors.New("card not found")
	ErrRuleNotFound             = errors.New("rule not found")
	ErrRuleCardMismatch         = errors.New("rule does not belong to card")
	ErrInvalidMonth             = errors.New("month must be YYYYMM or YYYY-MM")
	ErrInvalidMCC               = errors.New("mcc code must be 4 digits")
	ErrInvalidAmount            = errors.New("amount must be greater than zero")
	ErrRedemptionExceedsBalance = errors.New("redemption exceeds outstanding cashback")
	ErrRedemptionNotFound       = errors.New("redemption batch not found")
	ErrTotalBelowRedeemed       = errors.New("cashback total cannot drop below the amount already redeemed")
)
