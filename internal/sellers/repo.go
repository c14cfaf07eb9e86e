package sellers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sellers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProfile(ctx context.Context, profile *models.SellerProfile) (*models.SellerProfile, error) {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *repository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	err := r.db.WithContext(ctx).
		First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindProfileBySlug(ctx context.Context, slug string) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	err := r.db.WithContext(ctx).
		First(&profile, "store_slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.SellerProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

type salesTotalsRow struct {
	Revenue     decimal.NullDecimal
	OrdersCount int64
	UnitsSold   int64
}

func (r *repository) SalesTotals(ctx context.Context, sellerID uuid.UUID) (*SalesTotals, error) {
	var row salesTotalsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(oi.line_total), 0) AS revenue,
			COUNT(DISTINCT oi.order_id)     AS orders_count,
			COALESCE(SUM(oi.quantity), 0)   AS units_sold
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.seller_id = ?
		  AND oi.is_refunded = ?
		  AND o.status <> ?`,
		sellerID, false, enums.OrderStatusCancelled,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	totals := &SalesTotals{
		Revenue:     decimal.Zero,
		OrdersCount: row.OrdersCount,
		UnitsSold:   row.UnitsSold,
	}
	if row.Revenue.Valid {
		totals.Revenue = row.Revenue.Decimal
	}
	return totals, nil
}

type payoutTotalsRow struct {
	Pending   decimal.NullDecimal
	Completed decimal.NullDecimal
}

func (r *repository) PayoutTotals(ctx context.Context, sellerID uuid.UUID) (*PayoutTotals, error) {
	var row payoutTotalsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(CASE WHEN status IN (?, ?) THEN amount ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0)       AS completed
		FROM seller_payouts
		WHERE seller_id = ?`,
		enums.PayoutStatusPending, enums.PayoutStatusProcessing, enums.PayoutStatusCompleted, sellerID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	totals := &PayoutTotals{Pending: decimal.Zero, Completed: decimal.Zero}
	if row.Pending.Valid {
		totals.Pending = row.Pending.Decimal
	}
	if row.Completed.Valid {
		totals.Completed = row.Completed.Decimal
	}
	return totals, nil
}

func (r *repository) CreatePayout(ctx context.Context, payout *models.SellerPayout) (*models.SellerPayout, error) {
	if payout.Status == "" {
		payout.Status = enums.PayoutStatusPending
	}
	if err := r.db.WithContext(ctx).Create(payout).Error; err != nil {
		return nil, err
	}
	return payout, nil
}

func (r *repository) ListPayouts(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*PayoutList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.SellerPayout{}).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.SellerPayout
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &PayoutList{Payouts: make([]PayoutDTO, 0, len(rows))}
	pageSize := pagination.NormalizeLimit(params.Limit)
	if len(rows) > pageSize {
		last := rows[pageSize-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:pageSize]
	}
	for i := range rows {
		list.Payouts = append(list.Payouts, payoutFromModel(&rows[i]))
	}
	return list, nil
}
