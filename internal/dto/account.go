package dto

import (
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required"`
	AccountType    domain.AccountType `json:"accountType" binding:"required,accounttype"`
	InitialBalance decimal.Decimal    `json:"initialBalance"` // Optional, defaults to zero
}

// UpdateAccountNameRequest defines the data allowed for renaming an account.
type UpdateAccountNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID   string             `json:"accountID"`
	Name        string             `json:"name"`
	AccountType domain.AccountType `json:"accountType"`
	Balance     decimal.Decimal    `json:"balance"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   acc.ID().String(),
		Name:        acc.Name(),
		AccountType: acc.Type(),
		Balance:     acc.Balance(),
	}
}
