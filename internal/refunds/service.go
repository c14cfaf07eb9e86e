package refunds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/internal/catalog"
	"github.com/dmarceau/cartline-backend/internal/orders"
	"github.com/dmarceau/cartline-backend/internal/wallet"
	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
	pkgerrors "github.com/dmarceau/cartline-backend/pkg/errors"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type walletLedger interface {
	Credit(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error)
}

// Service defines the seller-scoped refund workflow.
type Service interface {
	// RefundSellerItems cancels the calling seller's unrefunded items in an
	// order, restores their stock, and credits the buyer's wallet. The order
	// flips to refunded once no unrefunded items remain.
	RefundSellerItems(ctx context.Context, sellerID uuid.UUID, input RefundItemsInput) (*RefundDTO, error)
	ListSellerRefunds(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*RefundList, error)
	ListBuyerRefunds(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*RefundList, error)
}

type service struct {
	repo     Repository
	orders   orders.Repository
	products catalog.Repository
	wallet   walletLedger
	tx       txRunner
	now      func() time.Time
}

// NewService builds a refunds service with the required dependencies.
func NewService(repo Repository, orderRepo orders.Repository, products catalog.Repository, ledger walletLedger, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("refunds repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product store required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		orders:   orderRepo,
		products: products,
		wallet:   ledger,
		tx:       tx,
		now:      time.Now,
	}, nil
}

// untouchableStatuses are the order states the refund workflow cannot settle
// against: already fully settled or already in the buyer's hands.
var untouchableStatuses = map[enums.OrderStatus]bool{
	enums.OrderStatusCancelled: true,
	enums.OrderStatusRefunded:  true,
	enums.OrderStatusDelivered: true,
}

func (s *service) RefundSellerItems(ctx context.Context, sellerID uuid.UUID, input RefundItemsInput) (*RefundDTO, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var created *models.Refund
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		refundRepo := s.repo.WithTx(tx)
		products := s.products.WithTx(tx)

		order, err := orderRepo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if untouchableStatuses[order.Status] {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("orders in status %s cannot be refunded", order.Status))
		}

		hasItems, err := orderRepo.SellerHasItems(ctx, order.ID, sellerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check seller items")
		}
		if !hasItems {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order has no items from this seller")
		}

		items, err := orderRepo.UnrefundedItemsBySeller(ctx, order.ID, sellerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unrefunded items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "nothing to refund for this seller")
		}

		amount := decimal.Zero
		itemIDs := make([]uuid.UUID, 0, len(items))
		for i := range items {
			amount = amount.Add(items[i].LineTotal)
			itemIDs = append(itemIDs, items[i].ID)
		}

		if err := orderRepo.MarkItemsRefunded(ctx, itemIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark items refunded")
		}

		for i := range items {
			if items[i].ProductID == nil {
				continue
			}
			if err := products.RestoreStock(ctx, *items[i].ProductID, items[i].Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}

		processedAt := s.now().UTC()
		created, err = refundRepo.Create(ctx, &models.Refund{
			OrderID:     order.ID,
			SellerID:    sellerID,
			BuyerID:     order.UserID,
			Amount:      amount,
			Reason:      input.Reason,
			Notes:       input.Notes,
			Status:      enums.RefundStatusProcessed,
			ProcessedAt: &processedAt,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund")
		}

		if _, err := s.wallet.Credit(ctx, tx, wallet.EntryInput{
			UserID:    order.UserID,
			Amount:    amount,
			EntryType: enums.WalletEntryRefundCredit,
			OrderID:   &order.ID,
			RefundID:  &created.ID,
		}); err != nil {
			return err
		}

		remaining, err := orderRepo.CountUnrefundedItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unrefunded items")
		}

		from := order.Status
		to := order.Status
		note := fmt.Sprintf("Partially refunded by seller. Amount: %s", amount.StringFixed(2))
		if remaining == 0 {
			if err := orderRepo.UpdateStatus(ctx, order.ID, map[string]any{"status": enums.OrderStatusRefunded}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order refunded")
			}
			to = enums.OrderStatusRefunded
			note = fmt.Sprintf("Refunded by seller. Amount: %s", amount.StringFixed(2))
		}
		actor := sellerID
		if err := orderRepo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: &from,
			ToStatus:   to,
			ChangedBy:  &actor,
			Note:       &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := refundFromModel(created)
	return &dto, nil
}

func (s *service) ListSellerRefunds(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*RefundList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListBySeller(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller refunds")
	}
	return list, nil
}

func (s *service) ListBuyerRefunds(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*RefundList, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByBuyer(ctx, buyerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer refunds")
	}
	return list, nil
}
