package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
)

// TransactionDTO is the transport shape of one ledger entry.
type TransactionDTO struct {
	ID           uuid.UUID             `json:"id"`
	EntryType    enums.WalletEntryType `json:"entry_type"`
	Amount       decimal.Decimal       `json:"amount"`
	BalanceAfter decimal.Decimal       `json:"balance_after"`
	OrderID      *uuid.UUID            `json:"order_id,omitempty"`
	RefundID     *uuid.UUID            `json:"refund_id,omitempty"`
	Note         *string               `json:"note,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// TransactionList wraps a page of ledger entries plus the next cursor.
type TransactionList struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

// BalanceDTO reports the current cached wallet balance.
type BalanceDTO struct {
	Balance decimal.Decimal `json:"balance"`
}

// EntryInput captures the data required to write one ledger entry.
type EntryInput struct {
	UserID    uuid.UUID
	Amount    decimal.Decimal
	EntryType enums.WalletEntryType
	OrderID   *uuid.UUID
	RefundID  *uuid.UUID
	Note      *string
}

func transactionFromModel(m *models.WalletTransaction) TransactionDTO {
	return TransactionDTO{
		ID:           m.ID,
		EntryType:    m.EntryType,
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		OrderID:      m.OrderID,
		RefundID:     m.RefundID,
		Note:         m.Note,
		CreatedAt:    m.CreatedAt,
	}
}
