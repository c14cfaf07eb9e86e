package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/internal/cart"
	"github.com/dmarceau/cartline-backend/internal/catalog"
	"github.com/dmarceau/cartline-backend/internal/wallet"
	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
	pkgerrors "github.com/dmarceau/cartline-backend/pkg/errors"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrdersRepo struct {
	orders      map[uuid.UUID]*models.Order
	history     []models.OrderStatusHistory
	failCreates int
	seenNumbers []string
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.seenNumbers = append(s.seenNumbers, order.OrderNumber)
	if s.failCreates > 0 {
		s.failCreates--
		return nil, errors.New(`duplicate key value violates unique constraint "idx_orders_number"`)
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	order.StatusHistory = nil
	for _, h := range s.history {
		if h.OrderID == id {
			order.StatusHistory = append(order.StatusHistory, h)
		}
	}
	return order, nil
}

func (s *stubOrdersRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.FindByID(ctx, id)
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		if status != nil && order.Status != *status {
			continue
		}
		list.Orders = append(list.Orders, orderFromModel(order))
	}
	return list, nil
}

func (s *stubOrdersRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		if status != nil && order.Status != *status {
			continue
		}
		for i := range order.Items {
			if order.Items[i].SellerID == sellerID {
				list.Orders = append(list.Orders, orderFromModel(order))
				break
			}
		}
	}
	return list, nil
}

func (s *stubOrdersRepo) SellerHasItems(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	for i := range order.Items {
		if order.Items[i].SellerID == sellerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, exists := updates["status"]; exists {
		order.Status = status.(enums.OrderStatus)
	}
	if paymentStatus, exists := updates["payment_status"]; exists {
		order.PaymentStatus = paymentStatus.(enums.PaymentStatus)
	}
	if shippedAt, exists := updates["shipped_at"]; exists {
		at := shippedAt.(time.Time)
		order.ShippedAt = &at
	}
	if deliveredAt, exists := updates["delivered_at"]; exists {
		at := deliveredAt.(time.Time)
		order.DeliveredAt = &at
	}
	return nil
}

func (s *stubOrdersRepo) AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	s.history = append(s.history, *entry)
	return nil
}

func (s *stubOrdersRepo) MarkItemsRefunded(ctx context.Context, itemIDs []uuid.UUID) error {
	marked := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		marked[id] = true
	}
	for _, order := range s.orders {
		for i := range order.Items {
			if marked[order.Items[i].ID] {
				order.Items[i].IsRefunded = true
			}
		}
	}
	return nil
}

func (s *stubOrdersRepo) UnrefundedItemsBySeller(ctx context.Context, orderID, sellerID uuid.UUID) ([]models.OrderItem, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, nil
	}
	var items []models.OrderItem
	for i := range order.Items {
		if order.Items[i].SellerID == sellerID && !order.Items[i].IsRefunded {
			items = append(items, order.Items[i])
		}
	}
	return items, nil
}

func (s *stubOrdersRepo) CountUnrefundedItems(ctx context.Context, orderID uuid.UUID) (int64, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return 0, nil
	}
	var count int64
	for i := range order.Items {
		if !order.Items[i].IsRefunded {
			count++
		}
	}
	return count, nil
}

type stubOrderCartRepo struct {
	cart    *models.Cart
	cleared bool
}

func (s *stubOrderCartRepo) WithTx(tx *gorm.DB) cart.Repository { return s }

func (s *stubOrderCartRepo) FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if s.cart == nil {
		s.cart = &models.Cart{ID: uuid.New(), UserID: userID}
	}
	return s.cart, nil
}

func (s *stubOrderCartRepo) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderCartRepo) CreateItem(ctx context.Context, item *models.CartItem) error { return nil }

func (s *stubOrderCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return nil
}

func (s *stubOrderCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error { return nil }

func (s *stubOrderCartRepo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	s.cleared = true
	if s.cart != nil {
		s.cart.Items = nil
	}
	return nil
}

type stubOrderProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func newStubOrderProductRepo() *stubOrderProductRepo {
	return &stubOrderProductRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (s *stubOrderProductRepo) WithTx(tx *gorm.DB) catalog.Repository { return s }

func (s *stubOrderProductRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubOrderProductRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubOrderProductRepo) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubOrderProductRepo) FindProductsByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return s.FindProductsByIDs(ctx, ids)
}

func (s *stubOrderProductRepo) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubOrderProductRepo) SearchProducts(ctx context.Context, params pagination.Params, filters catalog.SearchFilters) (*catalog.ProductList, error) {
	return &catalog.ProductList{}, nil
}

func (s *stubOrderProductRepo) ListProductsBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params, includeInactive bool) (*catalog.ProductList, error) {
	return &catalog.ProductList{}, nil
}

func (s *stubOrderProductRepo) DecrementStockClamped(ctx context.Context, productID uuid.UUID, qty int) error {
	if p, ok := s.products[productID]; ok {
		p.Stock -= qty
		if p.Stock < 0 {
			p.Stock = 0
		}
	}
	return nil
}

func (s *stubOrderProductRepo) RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error {
	if p, ok := s.products[productID]; ok {
		p.Stock += qty
	}
	return nil
}

func (s *stubOrderProductRepo) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	return category, nil
}

func (s *stubOrderProductRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderProductRepo) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderProductRepo) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	return nil, nil
}

func (s *stubOrderProductRepo) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubOrderProductRepo) CreateReview(ctx context.Context, review *models.ProductReview) (*models.ProductReview, error) {
	return review, nil
}

func (s *stubOrderProductRepo) ListReviewsByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*catalog.ReviewList, error) {
	return &catalog.ReviewList{}, nil
}

func (s *stubOrderProductRepo) RatingSummary(ctx context.Context, productID uuid.UUID) (*catalog.RatingSummaryDTO, error) {
	return &catalog.RatingSummaryDTO{}, nil
}

func (s *stubOrderProductRepo) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return false, nil
}

type ledgerCall struct {
	kind  string
	input wallet.EntryInput
}

type stubLedger struct {
	calls   []ledgerCall
	balance decimal.Decimal
}

func (s *stubLedger) Credit(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error) {
	s.balance = s.balance.Add(input.Amount)
	s.calls = append(s.calls, ledgerCall{kind: "credit", input: input})
	return &models.WalletTransaction{}, nil
}

func (s *stubLedger) Debit(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error) {
	if s.balance.LessThan(input.Amount) {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient wallet balance")
	}
	s.balance = s.balance.Sub(input.Amount)
	s.calls = append(s.calls, ledgerCall{kind: "debit", input: input})
	return &models.WalletTransaction{}, nil
}

type orderFixture struct {
	svc      Service
	repo     *stubOrdersRepo
	carts    *stubOrderCartRepo
	products *stubOrderProductRepo
	ledger   *stubLedger
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	f := &orderFixture{
		repo:     newStubOrdersRepo(),
		carts:    &stubOrderCartRepo{},
		products: newStubOrderProductRepo(),
		ledger:   &stubLedger{balance: decimal.Zero},
	}
	svc, err := NewService(f.repo, stubTxRunner{}, f.carts, f.products, f.ledger)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *orderFixture) seedProduct(price string, stock int) *models.Product {
	product := &models.Product{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Name:     "Walnut Desk",
		SKU:      "PRD-20260110-XK29F",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	f.products.products[product.ID] = product
	return product
}

func (f *orderFixture) seedCart(userID uuid.UUID, lines ...models.CartItem) {
	cart := &models.Cart{ID: uuid.New(), UserID: userID}
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].CartID = cart.ID
	}
	cart.Items = lines
	f.carts.cart = cart
}

func TestPlaceOrderComputesTotals(t *testing.T) {
	f := newOrderFixture(t)
	buyer := uuid.New()
	product := f.seedProduct("50.00", 10)
	f.seedCart(buyer, models.CartItem{ProductID: product.ID, Quantity: 2})

	order, err := f.svc.PlaceOrder(context.Background(), buyer, PlaceOrderInput{
		ShippingAddress: "12 Main St, Springfield",
		PaymentMethod:   enums.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if !order.Subtotal.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("subtotal = %s, want 100.00", order.Subtotal)
	}
	if !order.Tax.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("tax = %s, want 10.00", order.Tax)
	}
	if !order.Total.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("total = %s, want 110.00", order.Total)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("status = %s, want pending", order.Status)
	}
	if len(order.Items) != 1 || order.Items[0].ProductName != "Walnut Desk" {
		t.Fatalf("unexpected items %+v", order.Items)
	}
	if product.Stock != 8 {
		t.Fatalf("stock = %d, want 8", product.Stock)
	}
	if !f.carts.cleared {
		t.Fatal("cart was not cleared")
	}
	if len(order.StatusHistory) != 1 || order.StatusHistory[0].ToStatus != enums.OrderStatusPending {
		t.Fatalf("expected initial history entry, got %+v", order.StatusHistory)
	}
	if order.StatusHistory[0].FromStatus != nil {
		t.Fatal("initial history entry must have no from status")
	}
}

func TestPlaceOrderRetriesOrderNumberCollision(t *testing.T) {
	f := newOrderFixture(t)
	buyer := uuid.New()
	product := f.seedProduct("50.00", 10)
	f.seedCart(buyer, models.CartItem{ProductID: product.ID, Quantity: 1})
	f.repo.failCreates = 2

	order, err := f.svc.PlaceOrder(context.Background(), buyer, PlaceOrderInput{
		ShippingAddress: "12 Main St, Springfield",
		PaymentMethod:   enums.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("place order after collisions: %v", err)
	}
	if len(f.repo.seenNumbers) != 3 {
		t.Fatalf("expected 3 create attempts, got %d", len(f.repo.seenNumbers))
	}
	if f.repo.seenNumbers[0] == f.repo.seenNumbers[2] {
		t.Fatal("retry must regenerate the order number")
	}
	if order.OrderNumber != f.repo.seenNumbers[2] {
		t.Fatalf("order number %s does not match the final attempt %s", order.OrderNumber, f.repo.seenNumbers[2])
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newOrderFixture(t)
	buyer := uuid.New()
	f.seedCart(buyer)

	_, err := f.svc.PlaceOrder(context.Background(), buyer, PlaceOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   enums.PaymentMethodCard,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	buyer := uuid.New()
	product := f.seedProduct("20.00", 1)
	f.seedCart(buyer, models.CartItem{ProductID: product.ID, Quantity: 3})

	_, err := f.svc.PlaceOrder(context.Background(), buyer, PlaceOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   enums.PaymentMethodCard,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if product.Stock != 1 {
		t.Fatalf("stock must be untouched, got %d", product.Stock)
	}
}

func TestPlaceOrderWalletPayment(t *testing.T) {
	f := newOrderFixture(t)
	buyer := uuid.New()
	product := f.seedProduct("50.00", 5)
	f.seedCart(buyer, models.CartItem{ProductID: product.ID, Quantity: 2})
	f.ledger.balance = decimal.RequireFromString("200.00")

	order, err := f.svc.PlaceOrder(context.Background(), buyer, PlaceOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   enums.PaymentMethodWallet,
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if order.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("payment status = %s, want completed", order.PaymentStatus)
	}
	if len(f.ledger.calls) != 1 || f.ledger.calls[0].kind != "debit" {
		t.Fatalf("expected one debit, got %+v", f.ledger.calls)
	}
	if !f.ledger.calls[0].input.Amount.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("debit amount = %s, want 110.00", f.ledger.calls[0].input.Amount)
	}
}

func TestPlaceOrderWalletInsufficientFunds(t *testing.T) {
	f := newOrderFixture(t)
	buyer := uuid.New()
	product := f.seedProduct("50.00", 5)
	f.seedCart(buyer, models.CartItem{ProductID: product.ID, Quantity: 2})
	f.ledger.balance = decimal.RequireFromString("5.00")

	_, err := f.svc.PlaceOrder(context.Background(), buyer, PlaceOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   enums.PaymentMethodWallet,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestUpdateStatusForwardPath(t *testing.T) {
	f := newOrderFixture(t)
	admin := uuid.New()
	buyer := uuid.New()
	order := &models.Order{
		ID:     uuid.New(),
		UserID: buyer,
		Status: enums.OrderStatusPending,
	}
	f.repo.orders[order.ID] = order

	updated, err := f.svc.UpdateStatus(context.Background(), admin, enums.UserRoleAdmin, order.ID, UpdateStatusInput{Status: enums.OrderStatusProcessing})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("status = %s, want processing", updated.Status)
	}
	if len(f.repo.history) != 1 || *f.repo.history[0].FromStatus != enums.OrderStatusPending {
		t.Fatalf("expected history entry from pending, got %+v", f.repo.history)
	}
}

func TestUpdateStatusRejectsSkippedStep(t *testing.T) {
	f := newOrderFixture(t)
	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusPending}
	f.repo.orders[order.ID] = order

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), enums.UserRoleAdmin, order.ID, UpdateStatusInput{Status: enums.OrderStatusDelivered})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusTerminalIsFrozen(t *testing.T) {
	f := newOrderFixture(t)
	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusDelivered}
	f.repo.orders[order.ID] = order

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), enums.UserRoleAdmin, order.ID, UpdateStatusInput{Status: enums.OrderStatusCancelled})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusSellerNeedsItemsInOrder(t *testing.T) {
	f := newOrderFixture(t)
	seller := uuid.New()
	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusPending}
	f.repo.orders[order.ID] = order

	_, err := f.svc.UpdateStatus(context.Background(), seller, enums.UserRoleSeller, order.ID, UpdateStatusInput{Status: enums.OrderStatusProcessing})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	order.Items = []models.OrderItem{{ID: uuid.New(), OrderID: order.ID, SellerID: seller, Quantity: 1}}
	if _, err := f.svc.UpdateStatus(context.Background(), seller, enums.UserRoleSeller, order.ID, UpdateStatusInput{Status: enums.OrderStatusProcessing}); err != nil {
		t.Fatalf("seller with items should advance order, got %v", err)
	}
}

func TestUpdateStatusSellerCannotCancel(t *testing.T) {
	f := newOrderFixture(t)
	seller := uuid.New()
	order := &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: enums.OrderStatusPending,
		Items:  []models.OrderItem{{ID: uuid.New(), SellerID: seller, Quantity: 1}},
	}
	f.repo.orders[order.ID] = order

	_, err := f.svc.UpdateStatus(context.Background(), seller, enums.UserRoleSeller, order.ID, UpdateStatusInput{Status: enums.OrderStatusCancelled})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCancelOrderRestoresStockAndRefundsWallet(t *testing.T) {
	f := newOrderFixture(t)
	buyer := uuid.New()
	product := f.seedProduct("50.00", 3)
	productID := product.ID
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        buyer,
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodWallet,
		PaymentStatus: enums.PaymentStatusCompleted,
		Total:         decimal.RequireFromString("110.00"),
		Items:         []models.OrderItem{{ID: uuid.New(), ProductID: &productID, SellerID: product.SellerID, Quantity: 2}},
	}
	f.repo.orders[order.ID] = order

	cancelled, err := f.svc.CancelOrder(context.Background(), buyer, order.ID, nil)
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}
	if product.Stock != 5 {
		t.Fatalf("stock = %d, want 5", product.Stock)
	}
	if len(f.ledger.calls) != 1 || f.ledger.calls[0].kind != "credit" {
		t.Fatalf("expected one wallet credit, got %+v", f.ledger.calls)
	}
	if !f.ledger.calls[0].input.Amount.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("credit amount = %s, want 110.00", f.ledger.calls[0].input.Amount)
	}
}

func TestCancelOrderOnlyPending(t *testing.T) {
	f := newOrderFixture(t)
	buyer := uuid.New()
	order := &models.Order{ID: uuid.New(), UserID: buyer, Status: enums.OrderStatusShipped}
	f.repo.orders[order.ID] = order

	_, err := f.svc.CancelOrder(context.Background(), buyer, order.ID, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCancelOrderWrongBuyer(t *testing.T) {
	f := newOrderFixture(t)
	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusPending}
	f.repo.orders[order.ID] = order

	_, err := f.svc.CancelOrder(context.Background(), uuid.New(), order.ID, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetOrderVisibility(t *testing.T) {
	f := newOrderFixture(t)
	buyer := uuid.New()
	seller := uuid.New()
	order := &models.Order{
		ID:     uuid.New(),
		UserID: buyer,
		Status: enums.OrderStatusPending,
		Items:  []models.OrderItem{{ID: uuid.New(), SellerID: seller, Quantity: 1}},
	}
	f.repo.orders[order.ID] = order

	if _, err := f.svc.GetOrder(context.Background(), buyer, enums.UserRoleBuyer, order.ID); err != nil {
		t.Fatalf("buyer should see own order, got %v", err)
	}
	if _, err := f.svc.GetOrder(context.Background(), seller, enums.UserRoleSeller, order.ID); err != nil {
		t.Fatalf("seller with items should see order, got %v", err)
	}
	if _, err := f.svc.GetOrder(context.Background(), uuid.New(), enums.UserRoleBuyer, order.ID); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("stranger must be forbidden, got %v", err)
	}
}
