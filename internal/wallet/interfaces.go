package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

// Repository defines persistence operations for the wallet ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// AdjustBalance applies a signed delta to the cached user balance. It
	// reports ok=false when the conditional update matched no row, which
	// means the user is missing or the debit would go negative.
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, bool, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	CreateTransaction(ctx context.Context, entry *models.WalletTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionList, error)
}
