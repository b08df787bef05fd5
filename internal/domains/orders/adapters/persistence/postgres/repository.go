package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/broasteria/broasteria/internal/domains/orders/domain"
	"github.com/broasteria/broasteria/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. The aggregate's
// nested sub-records (items, history, workflow log) are stored as JSONB
// columns since they are only ever read back whole.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{})
	}
	return repo
}

type orderRecord struct {
	ID          string `gorm:"primaryKey;column:id;type:varchar(64)"`
	TenantID    string `gorm:"primaryKey;column:tenant_id;type:varchar(64);index:idx_orders_tenant_status"`
	OrderNumber string `gorm:"column:order_number;type:varchar(32);index"`

	CustomerID    string `gorm:"column:customer_id;type:varchar(64);index"`
	CustomerName  string `gorm:"column:customer_name"`
	CustomerPhone string `gorm:"column:customer_phone"`
	CustomerEmail string `gorm:"column:customer_email"`

	Items    []byte  `gorm:"column:items;type:jsonb"`
	Subtotal float64 `gorm:"column:subtotal"`
	Tax      float64 `gorm:"column:tax"`
	Fee      float64 `gorm:"column:delivery_fee"`
	Discount float64 `gorm:"column:discount"`
	Tip      float64 `gorm:"column:tip"`
	Total    float64 `gorm:"column:total"`

	DeliveryAddress string `gorm:"column:delivery_address"`
	DeliveryNotes   string `gorm:"column:delivery_notes"`
	PaymentMethod   string `gorm:"column:payment_method;type:varchar(32)"`
	PaymentStatus   string `gorm:"column:payment_status;type:varchar(32)"`

	Status  string `gorm:"column:status;type:varchar(32);index:idx_orders_tenant_status"`
	History []byte `gorm:"column:status_history;type:jsonb"`
	Flow    []byte `gorm:"column:workflow;type:jsonb"`

	EstimatedMinutes   int        `gorm:"column:estimated_minutes"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CancellationReason string     `gorm:"column:cancellation_reason"`
	CancelledBy        string     `gorm:"column:cancelled_by"`
	RefundRequested    bool       `gorm:"column:refund_requested"`
	RefundStatus       string     `gorm:"column:refund_status;type:varchar(32)"`

	Version   int64     `gorm:"column:version"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Save inserts a new order; re-saving an existing key overwrites it and
// resets the version counter.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record, err := toRecord(order)
	if err != nil {
		return nil, err
	}
	record.Version = 1
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}, {Name: "tenant_id"}},
			UpdateAll: true,
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, order.TenantID, order.ID)
}

// Get fetches an order scoped to its tenant.
func (r *Repository) Get(ctx context.Context, tenantID, orderID string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	err := r.db.WithContext(ctx).
		First(&record, "tenant_id = ? AND id = ?", tenantID, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain()
}

// Update writes a modified order back. When expectedVersion is
// non-negative the update is conditional on the stored version matching;
// a mismatched row count distinguishes a lost race from a missing row.
func (r *Repository) Update(ctx context.Context, order *domain.Order, expectedVersion int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record, err := toRecord(order)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("tenant_id = ? AND id = ?", order.TenantID, order.ID)
	if expectedVersion >= 0 {
		query = query.Where("version = ?", expectedVersion)
	}
	result := query.Updates(map[string]any{
		"customer_name":       record.CustomerName,
		"customer_phone":      record.CustomerPhone,
		"customer_email":      record.CustomerEmail,
		"items":               record.Items,
		"subtotal":            record.Subtotal,
		"tax":                 record.Tax,
		"delivery_fee":        record.Fee,
		"discount":            record.Discount,
		"tip":                 record.Tip,
		"total":               record.Total,
		"delivery_address":    record.DeliveryAddress,
		"delivery_notes":      record.DeliveryNotes,
		"payment_method":      record.PaymentMethod,
		"payment_status":      record.PaymentStatus,
		"status":              record.Status,
		"status_history":      record.History,
		"workflow":            record.Flow,
		"estimated_minutes":   record.EstimatedMinutes,
		"cancelled_at":        record.CancelledAt,
		"cancellation_reason": record.CancellationReason,
		"cancelled_by":        record.CancelledBy,
		"refund_requested":    record.RefundRequested,
		"refund_status":       record.RefundStatus,
		"version":             gorm.Expr("version + 1"),
		"updated_at":          record.UpdatedAt,
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, getErr := r.Get(ctx, order.TenantID, order.ID); errors.Is(getErr, ports.ErrNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, ports.ErrVersionConflict
	}
	return r.Get(ctx, order.TenantID, order.ID)
}

// ListByTenant returns a tenant's orders, most recent first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []orderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records)
}

// ListByStatus returns a tenant's orders in the given status.
func (r *Repository) ListByStatus(ctx context.Context, tenantID string, status domain.Status) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, string(status)).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(records)
}

// ListByCustomer returns a customer's orders within a tenant.
func (r *Repository) ListByCustomer(ctx context.Context, tenantID, customerID string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(records)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toDomainList(records []orderRecord) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		order, err := records[i].toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func toRecord(order *domain.Order) (orderRecord, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return orderRecord{}, err
	}
	history, err := json.Marshal(order.StatusHistory)
	if err != nil {
		return orderRecord{}, err
	}
	flow, err := json.Marshal(order.Workflow)
	if err != nil {
		return orderRecord{}, err
	}
	return orderRecord{
		ID:          order.ID,
		TenantID:    order.TenantID,
		OrderNumber: order.OrderNumber,

		CustomerID:    order.CustomerID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		CustomerEmail: order.CustomerEmail,

		Items:    items,
		Subtotal: order.Subtotal,
		Tax:      order.Tax,
		Fee:      order.DeliveryFee,
		Discount: order.Discount,
		Tip:      order.Tip,
		Total:    order.Total,

		DeliveryAddress: order.DeliveryAddress,
		DeliveryNotes:   order.DeliveryNotes,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,

		Status:  string(order.Status),
		History: history,
		Flow:    flow,

		EstimatedMinutes:   order.EstimatedMinutes,
		CancelledAt:        order.CancelledAt,
		CancellationReason: order.CancellationReason,
		CancelledBy:        order.CancelledBy,
		RefundRequested:    order.RefundRequested,
		RefundStatus:       order.RefundStatus,

		Version:   order.Version,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}, nil
}

func (r orderRecord) toDomain() (*domain.Order, error) {
	order := &domain.Order{
		ID:          r.ID,
		TenantID:    r.TenantID,
		OrderNumber: r.OrderNumber,

		CustomerID:    r.CustomerID,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,

		Subtotal:    r.Subtotal,
		Tax:         r.Tax,
		DeliveryFee: r.Fee,
		Discount:    r.Discount,
		Tip:         r.Tip,
		Total:       r.Total,

		DeliveryAddress: r.DeliveryAddress,
		DeliveryNotes:   r.DeliveryNotes,
		PaymentMethod:   r.PaymentMethod,
		PaymentStatus:   r.PaymentStatus,

		Status: domain.Status(r.Status),

		EstimatedMinutes:   r.EstimatedMinutes,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
		CancelledBy:        r.CancelledBy,
		RefundRequested:    r.RefundRequested,
		RefundStatus:       r.RefundStatus,

		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Items) > 0 {
		if err := json.Unmarshal(r.Items, &order.Items); err != nil {
			return nil, err
		}
	}
	if len(r.History) > 0 {
		if err := json.Unmarshal(r.History, &order.StatusHistory); err != nil {
			return nil, err
		}
	}
	if len(r.Flow) > 0 {
		if err := json.Unmarshal(r.Flow, &order.Workflow); err != nil {
			return nil, err
		}
	}
	return order, nil
}
