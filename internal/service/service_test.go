package service

import (
	"strings"
	"testing"
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service stack over an in-memory SQLite database.
// Every test gets its own database so tests stay independent.
type testEnv struct {
	db          *gorm.DB
	poolRepo    *repository.ResourcePoolRepository
	auditRepo   *repository.ResourceAuditRepository
	bookingRepo *repository.BookingRepository
	historyRepo *repository.BookingHistoryRepository
	balanceRepo *repository.BalanceRepository

	resource *ResourceService
	balance  *BalanceService
	booking  *BookingService
	polling  *PollingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// SQLite allows one writer at a time; funnel concurrent test
	// goroutines through a single connection instead of surfacing
	// SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Hospital{},
		&models.UserHospital{},
		&models.ResourcePool{},
		&models.ResourceAuditLog{},
		&models.Booking{},
		&models.BookingStatusHistory{},
		&models.UserBalance{},
		&models.BalanceTransaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{
		db:          db,
		poolRepo:    repository.NewResourcePoolRepo(db),
		auditRepo:   repository.NewResourceAuditRepo(db),
		bookingRepo: repository.NewBookingRepo(db),
		historyRepo: repository.NewBookingHistoryRepo(db),
		balanceRepo: repository.NewBalanceRepo(db),
	}
	env.resource = NewResourceService(db, env.poolRepo, env.auditRepo)
	env.balance = NewBalanceService(db, env.balanceRepo)
	env.booking = NewBookingService(
		db,
		env.bookingRepo,
		env.historyRepo,
		env.poolRepo,
		env.resource,
		env.balance,
		nil, // notifications are exercised separately
		24*time.Hour,
	)
	env.polling = NewPollingService(env.poolRepo, env.bookingRepo)

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return env
}

// seedPool creates a hospital resource pool with all units available.
func (e *testEnv) seedPool(t *testing.T, hospitalID uint, resourceType models.ResourceType, total int) *models.ResourcePool {
	t.Helper()
	pool := &models.ResourcePool{
		HospitalID:   hospitalID,
		ResourceType: resourceType,
		Total:        total,
		Available:    total,
	}
	if err := e.poolRepo.CreatePool(pool); err != nil {
		t.Fatalf("seed pool: %v", err)
	}
	return pool
}

// seedBooking creates a pending booking against the given pool.
func (e *testEnv) seedBooking(t *testing.T, userID, hospitalID uint, resourceType models.ResourceType, amount decimal.Decimal) *models.Booking {
	t.Helper()
	booking, err := e.booking.CreateBooking(CreateBookingInput{
		UserID:        userID,
		HospitalID:    hospitalID,
		ResourceType:  resourceType,
		PatientName:   "Test Patient",
		PatientAge:    42,
		Urgency:       models.UrgencyHigh,
		ScheduledDate: time.Now().UTC().Add(2 * time.Hour),
		PaymentAmount: amount,
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return booking
}

// mustPool reloads a pool and fails the test if it violates conservation.
func (e *testEnv) mustPool(t *testing.T, hospitalID uint, resourceType models.ResourceType) *models.ResourcePool {
	t.Helper()
	pool, err := e.poolRepo.GetPool(hospitalID, resourceType)
	if err != nil {
		t.Fatalf("reload pool: %v", err)
	}
	if !pool.Balanced() {
		t.Fatalf("pool violates conservation: total=%d available=%d occupied=%d reserved=%d maintenance=%d",
			pool.Total, pool.Available, pool.Occupied, pool.Reserved, pool.Maintenance)
	}
	return pool
}
