package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
)

type CompanyRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewCompanyRepository(writerDB, readerDB *gorm.DB) *CompanyRepository {
	return &CompanyRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *CompanyRepository) List(ctx context.Context) ([]domain.Company, error) {
	var companies []domain.Company
	if err := r.readerDB.WithContext(ctx).Order("name").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	var company domain.Company
	err := r.readerDB.WithContext(ctx).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.readerDB.WithContext(ctx).Model(&domain.Company{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	return r.writerDB.WithContext(ctx).Create(company).Error
}

func (r *CompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	result := r.writerDB.WithContext(ctx).
		Model(&domain.Company{}).
		Where("id = ?", company.ID).
		Updates(map[string]interface{}{"name": company.Name})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the company and its sales in one transaction.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	return r.writerDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", id).Delete(&domain.Sale{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.Company{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}
