package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

const tenantCount = 10

var (
	namePrefixes = []string{"Acme", "Globex", "Initech", "Umbrella", "Stark", "Wayne", "Hooli", "Vandelay", "Soylent", "Tyrell", "Cyberdyne", "Wonka"}
	nameSuffixes = []string{"Corp", "Industries", "Holdings", "Labs", "Group", "Systems", "Partners", "Logistics"}
)

// Seeder migrates the schema and fills an empty database with demo data.
// admin must be an unscoped connection; scoped must carry the tenancy plugin.
type Seeder struct {
	admin  *gorm.DB
	scoped *gorm.DB
	logger *logger.Logger
	rng    *rand.Rand
	now    func() time.Time
}

func NewSeeder(admin, scoped *gorm.DB, logger *logger.Logger, rng *rand.Rand) *Seeder {
	return &Seeder{
		admin:  admin,
		scoped: scoped,
		logger: logger,
		rng:    rng,
		now:    time.Now,
	}
}

func (s *Seeder) Run(ctx context.Context) error {
	if err := s.Migrate(ctx); err != nil {
		return err
	}
	if err := s.SeedTenants(ctx); err != nil {
		return err
	}

	var tenants []domain.TenantInfo
	if err := s.admin.WithContext(ctx).Order("identifier").Find(&tenants).Error; err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}
	for i := range tenants {
		if err := s.SeedTenantData(ctx, &tenants[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) Migrate(ctx context.Context) error {
	if err := s.admin.WithContext(ctx).AutoMigrate(&domain.TenantInfo{}, &domain.Company{}, &domain.Sale{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SeedTenants creates tenant1..tenant10 when the directory is empty.
func (s *Seeder) SeedTenants(ctx context.Context) error {
	var count int64
	if err := s.admin.WithContext(ctx).Model(&domain.TenantInfo{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count tenants: %w", err)
	}
	if count > 0 {
		s.logger.Info("Tenant directory already seeded", zap.Int64("tenants", count))
		return nil
	}

	tenants := make([]domain.TenantInfo, 0, tenantCount)
	for i := 1; i <= tenantCount; i++ {
		tenants = append(tenants, domain.TenantInfo{
			ID:         uuid.New().String(),
			Identifier: fmt.Sprintf("tenant%d", i),
			Name:       s.companyName(),
		})
	}
	if err := s.admin.WithContext(ctx).Create(&tenants).Error; err != nil {
		return fmt.Errorf("failed to seed tenants: %w", err)
	}

	s.logger.Info("Seeded tenant directory", zap.Int("tenants", len(tenants)))
	return nil
}

// SeedTenantData enters the tenant and writes companies and sales through
// the scoped connection. Tenants that already have companies are skipped.
func (s *Seeder) SeedTenantData(ctx context.Context, tenant *domain.TenantInfo) error {
	tenantCtx, err := tenancy.WithTenant(ctx, tenant)
	if err != nil {
		return err
	}

	var existing int64
	if err := s.scoped.WithContext(tenantCtx).Model(&domain.Company{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to count companies for %s: %w", tenant.Identifier, err)
	}
	if existing > 0 {
		return nil
	}

	companies := make([]domain.Company, s.between(3, 5))
	for i := range companies {
		companies[i] = domain.Company{ID: uuid.New().String(), Name: s.companyName()}
	}

	var sales []domain.Sale
	for _, company := range companies {
		for range s.between(2, 4) {
			sales = append(sales, domain.Sale{
				ID:        uuid.New().String(),
				Amount:    s.amount(500, 5000),
				CreatedAt: s.pastYear(),
				CompanyID: company.ID,
			})
		}
	}

	err = s.scoped.WithContext(tenantCtx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&companies).Error; err != nil {
			return err
		}
		return tx.Omit("Company").Create(&sales).Error
	})
	if err != nil {
		return fmt.Errorf("failed to seed data for %s: %w", tenant.Identifier, err)
	}

	s.logger.Info("Seeded tenant data",
		zap.String("tenant", tenant.Identifier),
		zap.Int("companies", len(companies)),
		zap.Int("sales", len(sales)))
	return nil
}

func (s *Seeder) between(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

func (s *Seeder) amount(lo, hi float64) float64 {
	return math.Round((lo+s.rng.Float64()*(hi-lo))*100) / 100
}

func (s *Seeder) pastYear() time.Time {
	now := s.now().UTC()
	from := now.AddDate(-1, 0, 0)
	return from.Add(time.Duration(s.rng.Int64N(int64(now.Sub(from))))).Truncate(time.Second)
}

func (s *Seeder) companyName() string {
	return namePrefixes[s.rng.IntN(len(namePrefixes))] + " " + nameSuffixes[s.rng.IntN(len(nameSuffixes))]
}
