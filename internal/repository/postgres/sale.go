package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
)

type SaleRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewSaleRepository(writerDB, readerDB *gorm.DB) *SaleRepository {
	return &SaleRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *SaleRepository) List(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	var sales []domain.Sale

	db := r.readerDB.WithContext(ctx).Preload("Company")
	if filter.CompanyID != "" {
		db = db.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}

	if err := db.Order("created_at DESC").Order("id").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *SaleRepository) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.readerDB.WithContext(ctx).Preload("Company").First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	// The company is referenced by id only; never let gorm upsert it.
	return r.writerDB.WithContext(ctx).Omit("Company").Create(sale).Error
}
