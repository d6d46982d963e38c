package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/auth"
	"github.com/noscite/crm-api/internal/database"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB spins up an isolated in-memory sqlite database with the full
// schema. Each test gets its own database, so tests can run in parallel.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Shared-cache in-memory databases need a single connection
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createCompany(t *testing.T, db *gorm.DB, name string, companyType domain.CompanyType) *domain.Company {
	t.Helper()
	company := &domain.Company{
		Name:     name,
		Type:     companyType,
		Country:  "Italy",
		IsActive: true,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

func createService(t *testing.T, db *gorm.DB, code string, serviceType domain.ServiceType, unitPrice float64) *domain.Service {
	t.Helper()
	svc := &domain.Service{
		Code:        code,
		Name:        "Service " + code,
		Type:        serviceType,
		UnitPrice:   unitPrice,
		BillingType: domain.BillingTypeFixed,
		IsActive:    true,
	}
	require.NoError(t, db.Create(svc).Error)
	return svc
}

func createProject(t *testing.T, db *gorm.DB, name string, status domain.ProjectStatus) *domain.Project {
	t.Helper()
	project := &domain.Project{
		Code:        "PRJ-2026-" + uuid.NewString()[:4],
		Name:        name,
		Methodology: domain.MethodologyWaterfall,
		Status:      status,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func createUser(t *testing.T, db *gorm.DB, email string, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// ctxWithRoles builds a request context carrying an authenticated user
func ctxWithRoles(roles ...domain.UserRole) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Test User",
		Email:       "test@noscite.it",
		Roles:       roles,
	})
}

func dateOf(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
