package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&menuItemRecord{},
		&promotionRecord{},
		&locationRecord{},
		&stockRecord{},
		&userRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
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

// Menu schema mirrors the menu Postgres adapter.
type menuItemRecord struct {
	ID                 string         `gorm:"primaryKey;column:id;type:varchar(64)"`
	TenantID           string         `gorm:"primaryKey;column:tenant_id;type:varchar(64);index:idx_menu_tenant_category"`
	Name               string         `gorm:"column:name"`
	Description        string         `gorm:"column:description"`
	Category           string         `gorm:"column:category;type:varchar(64);index:idx_menu_tenant_category"`
	Price              float64        `gorm:"column:price"`
	Available          bool           `gorm:"column:available"`
	ImageURL           string         `gorm:"column:image_url"`
	PreparationMinutes int            `gorm:"column:preparation_minutes"`
	Tags               pq.StringArray `gorm:"column:tags;type:text[]"`
	CreatedAt          time.Time      `gorm:"column:created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
}

func (menuItemRecord) TableName() string { return "menu_items" }

type promotionRecord struct {
	ID           string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	TenantID     string    `gorm:"primaryKey;column:tenant_id;type:varchar(64)"`
	Code         string    `gorm:"column:code;type:varchar(64);index:idx_promos_tenant_code"`
	Name         string    `gorm:"column:name"`
	Description  string    `gorm:"column:description"`
	Type         string    `gorm:"column:type;type:varchar(16)"`
	Value        float64   `gorm:"column:value"`
	MinimumOrder float64   `gorm:"column:minimum_order"`
	MaxDiscount  float64   `gorm:"column:max_discount"`
	ValidFrom    time.Time `gorm:"column:valid_from"`
	ValidUntil   time.Time `gorm:"column:valid_until"`
	Active       bool      `gorm:"column:active"`
	UsageLimit   int       `gorm:"column:usage_limit"`
	UsedCount    int       `gorm:"column:used_count"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (promotionRecord) TableName() string { return "promotions" }

type locationRecord struct {
	ID                    string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	TenantID              string    `gorm:"primaryKey;column:tenant_id;type:varchar(64);index"`
	Name                  string    `gorm:"column:name"`
	Address               string    `gorm:"column:address"`
	Phone                 string    `gorm:"column:phone"`
	Latitude              float64   `gorm:"column:latitude"`
	Longitude             float64   `gorm:"column:longitude"`
	DeliveryRadiusKm      float64   `gorm:"column:delivery_radius_km"`
	MinimumOrder          float64   `gorm:"column:minimum_order"`
	DeliveryFee           float64   `gorm:"column:delivery_fee"`
	FreeDeliveryThreshold float64   `gorm:"column:free_delivery_threshold"`
	Active                bool      `gorm:"column:active"`
	CreatedAt             time.Time `gorm:"column:created_at"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`
}

func (locationRecord) TableName() string { return "locations" }

type stockRecord struct {
	ID                string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	TenantID          string    `gorm:"primaryKey;column:tenant_id;type:varchar(64);index"`
	Name              string    `gorm:"column:name"`
	Unit              string    `gorm:"column:unit;type:varchar(32)"`
	Quantity          float64   `gorm:"column:quantity"`
	LowStockThreshold float64   `gorm:"column:low_stock_threshold"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (stockRecord) TableName() string { return "inventory_stock" }

type userRecord struct {
	ID           string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	TenantID     string    `gorm:"primaryKey;column:tenant_id;type:varchar(64);index:idx_users_tenant_email"`
	Email        string    `gorm:"column:email;index:idx_users_tenant_email"`
	Name         string    `gorm:"column:name"`
	Phone        string    `gorm:"column:phone"`
	Role         string    `gorm:"column:role;type:varchar(32)"`
	Salt         string    `gorm:"column:salt;type:varchar(64)"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(128)"`
	Active       bool      `gorm:"column:active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }
