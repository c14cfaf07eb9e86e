package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/internal/cart"
	"github.com/dmarceau/cartline-backend/internal/catalog"
	"github.com/dmarceau/cartline-backend/internal/wallet"
	"github.com/dmarceau/cartline-backend/pkg/db"
	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
	pkgerrors "github.com/dmarceau/cartline-backend/pkg/errors"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

// taxRate is the flat rate applied to every order subtotal.
var taxRate = decimal.RequireFromString("0.10")

const orderNumberMaxAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type walletLedger interface {
	Credit(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error)
	Debit(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error)
}

// Service defines the order lifecycle operations.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*OrderList, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*OrderList, error)
	UpdateStatus(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID, note *string) (*OrderDTO, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	carts    cart.Repository
	products catalog.Repository
	wallet   walletLedger
	now      func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, carts cart.Repository, products catalog.Repository, ledger walletLedger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product store required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		carts:    carts,
		products: products,
		wallet:   ledger,
		now:      time.Now,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	address := strings.TrimSpace(input.ShippingAddress)
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		products := s.products.WithTx(tx)
		repo := s.repo.WithTx(tx)

		cart, err := carts.FindOrCreateByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		ids := make([]uuid.UUID, 0, len(cart.Items))
		for i := range cart.Items {
			ids = append(ids, cart.Items[i].ProductID)
		}

		locked, err := products.FindProductsByIDsForUpdate(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock products")
		}
		byID := make(map[uuid.UUID]*models.Product, len(locked))
		for i := range locked {
			byID[locked[i].ID] = &locked[i]
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.Items))
		for i := range cart.Items {
			line := &cart.Items[i]
			product, ok := byID[line.ProductID]
			if !ok || !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "a cart item is no longer available")
			}
			if line.Quantity > product.Stock {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("only %d units of %s available", product.Stock, product.Name))
			}
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			productID := product.ID
			items = append(items, models.OrderItem{
				ProductID:   &productID,
				SellerID:    product.SellerID,
				ProductName: product.Name,
				ProductSKU:  product.SKU,
				UnitPrice:   product.Price,
				Quantity:    line.Quantity,
				LineTotal:   lineTotal,
			})
		}

		tax := subtotal.Mul(taxRate).Round(2)
		shipping := decimal.Zero
		total := subtotal.Add(tax).Add(shipping)

		order, err := s.createWithFreshNumber(ctx, tx, repo, &models.Order{
			UserID:          userID,
			Status:          enums.OrderStatusPending,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   enums.PaymentStatusPending,
			Subtotal:        subtotal,
			Tax:             tax,
			ShippingCost:    shipping,
			Total:           total,
			ShippingAddress: address,
			Notes:           input.Notes,
			Items:           items,
		})
		if err != nil {
			return err
		}
		orderID = order.ID

		if input.PaymentMethod == enums.PaymentMethodWallet {
			if _, err := s.wallet.Debit(ctx, tx, wallet.EntryInput{
				UserID:    userID,
				Amount:    total,
				EntryType: enums.WalletEntryOrderPayment,
				OrderID:   &order.ID,
			}); err != nil {
				return err
			}
			if err := repo.UpdateStatus(ctx, order.ID, map[string]any{"payment_status": enums.PaymentStatusCompleted}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
			}
		}

		for i := range items {
			if err := products.DecrementStockClamped(ctx, *items[i].ProductID, items[i].Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
		}

		actor := userID
		if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  enums.OrderStatusPending,
			ChangedBy: &actor,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		if err := carts.ClearItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, orderID)
}

// createWithFreshNumber inserts the order, regenerating the number on a
// unique violation. Each attempt runs under a savepoint so a failed insert
// does not abort the surrounding Postgres transaction.
func (s *service) createWithFreshNumber(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) (*models.Order, error) {
	const savepoint = "order_number_attempt"
	for attempt := 0; attempt < orderNumberMaxAttempts; attempt++ {
		number, err := GenerateOrderNumber()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		order.OrderNumber = number

		if tx != nil {
			if err := tx.SavePoint(savepoint).Error; err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create savepoint")
			}
		}
		created, err := repo.Create(ctx, order)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_orders_number") {
				if tx != nil {
					if rbErr := tx.RollbackTo(savepoint).Error; rbErr != nil {
						return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, rbErr, "rollback savepoint")
					}
				}
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return created, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique order number")
}

func (s *service) GetOrder(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if order.UserID != actorID && actorRole != enums.UserRoleAdmin {
		hasItems := false
		if actorRole == enums.UserRoleSeller {
			hasItems, err = s.repo.SellerHasItems(ctx, orderID, actorID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check seller items")
			}
		}
		if !hasItems {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
	}
	dto := orderFromModel(order)
	return &dto, nil
}

func (s *service) ListMyOrders(ctx context.Context, userID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByUser(ctx, userID, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*OrderList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListBySeller(ctx, sellerID, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders")
	}
	return list, nil
}

// sellerTransitions are the forward-path moves a seller may perform on orders
// containing their items. Cancellation and refunds go through the refund flow.
var sellerTransitions = map[enums.OrderStatus]bool{
	enums.OrderStatusProcessing: true,
	enums.OrderStatusShipped:    true,
	enums.OrderStatusDelivered:  true,
}

func (s *service) UpdateStatus(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		switch actorRole {
		case enums.UserRoleAdmin:
		case enums.UserRoleSeller:
			hasItems, err := repo.SellerHasItems(ctx, orderID, actorID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check seller items")
			}
			if !hasItems {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order has no items from this seller")
			}
			if !sellerTransitions[input.Status] {
				return pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only advance fulfillment")
			}
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role for status updates")
		}

		if !CanTransition(order.Status, input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition order from %s to %s", order.Status, input.Status))
		}

		updates := map[string]any{"status": input.Status}
		switch input.Status {
		case enums.OrderStatusShipped:
			updates["shipped_at"] = s.now().UTC()
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = s.now().UTC()
		}
		if err := repo.UpdateStatus(ctx, orderID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		from := order.Status
		actor := actorID
		if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: &from,
			ToStatus:   input.Status,
			ChangedBy:  &actor,
			Note:       input.Note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, orderID)
}

// CancelOrder lets the buyer back out before fulfillment starts. Stock is
// restored and wallet payments are returned in the same transaction.
func (s *service) CancelOrder(ctx context.Context, userID, orderID uuid.UUID, note *string) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		products := s.products.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled")
		}

		for i := range order.Items {
			item := &order.Items[i]
			if item.ProductID == nil {
				continue
			}
			if err := products.RestoreStock(ctx, *item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}

		if order.PaymentMethod == enums.PaymentMethodWallet && order.PaymentStatus == enums.PaymentStatusCompleted {
			if _, err := s.wallet.Credit(ctx, tx, wallet.EntryInput{
				UserID:    userID,
				Amount:    order.Total,
				EntryType: enums.WalletEntryRefundCredit,
				OrderID:   &order.ID,
			}); err != nil {
				return err
			}
		}

		if err := repo.UpdateStatus(ctx, orderID, map[string]any{"status": enums.OrderStatusCancelled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}

		from := order.Status
		actor := userID
		if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: &from,
			ToStatus:   enums.OrderStatusCancelled,
			ChangedBy:  &actor,
			Note:       note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, orderID)
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	dto := orderFromModel(order)
	return &dto, nil
}
