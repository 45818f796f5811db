package domain

import "github.com/google/uuid"

// TransactionType indicates whether a transaction line is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// IsValid reports whether t is Debit or Credit.
func (t TransactionType) IsValid() bool {
	return t == Debit || t == Credit
}

// Opposite returns the other side.
func (t TransactionType) Opposite() TransactionType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// TransactionLine is one account's debit or credit portion of a journal entry.
// The unused side holds a zero amount in the same currency. The side is kept
// explicitly so a zero-amount posting still knows which side it belongs to.
type TransactionLine struct {
	accountID uuid.UUID
	debit     Money
	credit    Money
	side      TransactionType
}

// NewTransactionLine places amount on the debit side when isDebit, otherwise on the credit side.
func NewTransactionLine(accountID uuid.UUID, amount Money, isDebit bool) TransactionLine {
	if isDebit {
		return TransactionLine{accountID: accountID, debit: amount, credit: zeroOf(amount.currency), side: Debit}
	}
	return TransactionLine{accountID: accountID, debit: zeroOf(amount.currency), credit: amount, side: Credit}
}

func (l TransactionLine) AccountID() uuid.UUID  { return l.accountID }
func (l TransactionLine) Debit() Money          { return l.debit }
func (l TransactionLine) Credit() Money         { return l.credit }
func (l TransactionLine) Side() TransactionType { return l.side }
func (l TransactionLine) IsDebit() bool         { return l.side == Debit }

// Amount returns the money on the line's active side.
func (l TransactionLine) Amount() Money {
	if l.side == Debit {
		return l.debit
	}
	return l.credit
}

// Currency of the line.
func (l TransactionLine) Currency() string {
	return l.Amount().currency
}

// reversed swaps the line's debit and credit.
func (l TransactionLine) reversed() TransactionLine {
	return NewTransactionLine(l.accountID, l.Amount(), !l.IsDebit())
}
