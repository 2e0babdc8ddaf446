package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 200
)

type AuditFilter struct {
	Actor  string
	Action string
	Entity string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

// Normalize clamps paging to the accepted range.
func (f AuditFilter) Normalize() AuditFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > MaxAuditLimit {
		f.Limit = DefaultAuditLimit
	}
	return f
}

type AuditGormRepository struct {
	db *gorm.DB
}

func NewAuditGormRepository(db *gorm.DB) *AuditGormRepository {
	return &AuditGormRepository{db: db}
}

func (r *AuditGormRepository) Create(
	ctx context.Context,
	log *models.AuditLog,
) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// --------------------------------------------------
// List
// --------------------------------------------------

func (r *AuditGormRepository) List(
	ctx context.Context,
	f AuditFilter,
) ([]models.AuditLog, int64, error) {

	f = f.Normalize()

	q := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if f.Actor != "" {
		q = q.Where("actor = ?", f.Actor)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		// "to" is inclusive of the whole day
		q = q.Where("created_at < ?", f.To.Add(24*time.Hour))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
