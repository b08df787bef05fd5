package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/broasteria/broasteria/internal/domains/menu/domain"
	"github.com/broasteria/broasteria/internal/domains/menu/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists menu items in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&itemRecord{})
	}
	return repo
}

type itemRecord struct {
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

func (itemRecord) TableName() string { return "menu_items" }

func (r *Repository) Save(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("menu item is nil")
	}
	record := toRecord(item)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}, {Name: "tenant_id"}},
			UpdateAll: true,
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, item.TenantID, item.ID)
}

func (r *Repository) Get(ctx context.Context, tenantID, itemID string) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record itemRecord
	err := r.db.WithContext(ctx).
		First(&record, "tenant_id = ? AND id = ?", tenantID, itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("menu item is nil")
	}
	record := toRecord(item)
	result := r.db.WithContext(ctx).Model(&itemRecord{}).
		Where("tenant_id = ? AND id = ?", item.TenantID, item.ID).
		Updates(map[string]any{
			"name":                record.Name,
			"description":         record.Description,
			"category":            record.Category,
			"price":               record.Price,
			"available":           record.Available,
			"image_url":           record.ImageURL,
			"preparation_minutes": record.PreparationMinutes,
			"tags":                record.Tags,
			"updated_at":          record.UpdatedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.Get(ctx, item.TenantID, item.ID)
}

func (r *Repository) Delete(ctx context.Context, tenantID, itemID string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Delete(&itemRecord{}, "tenant_id = ? AND id = ?", tenantID, itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []itemRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) ListByCategory(ctx context.Context, tenantID, category string) ([]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []itemRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND category = ?", tenantID, category).
		Order("name ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres menu repository not configured")
	}
	return nil
}

func toDomainList(records []itemRecord) []*domain.Item {
	items := make([]*domain.Item, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items
}

func toRecord(item *domain.Item) itemRecord {
	return itemRecord{
		ID:                 item.ID,
		TenantID:           item.TenantID,
		Name:               item.Name,
		Description:        item.Description,
		Category:           item.Category,
		Price:              item.Price,
		Available:          item.Available,
		ImageURL:           item.ImageURL,
		PreparationMinutes: item.PreparationMinutes,
		Tags:               pq.StringArray(item.Tags),
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
}

func (r itemRecord) toDomain() *domain.Item {
	return &domain.Item{
		ID:                 r.ID,
		TenantID:           r.TenantID,
		Name:               r.Name,
		Description:        r.Description,
		Category:           r.Category,
		Price:              r.Price,
		Available:          r.Available,
		ImageURL:           r.ImageURL,
		PreparationMinutes: r.PreparationMinutes,
		Tags:               []string(r.Tags),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
