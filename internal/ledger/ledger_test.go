package ledger

import (
	"testing"
	"time"

	"github.com/yudopr11/yupi/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Account{}, &models.Category{}, &models.Transaction{})
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		UUID:         uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return &user
}

func seedAccount(t *testing.T, db *gorm.DB, userID uint, name string, accountType models.AccountType, limit *decimal.Decimal) *models.Account {
	t.Helper()

	account := models.Account{
		UUID:   uuid.NewString(),
		UserID: userID,
		Name:   name,
		Type:   accountType,
		Limit:  limit,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed account %s: %v", name, err)
	}
	return &account
}

func seedCategory(t *testing.T, db *gorm.DB, userID uint, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := models.Category{
		UUID:   uuid.NewString(),
		UserID: userID,
		Name:   name,
		Type:   categoryType,
	}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category %s: %v", name, err)
	}
	return &category
}

func seedTransaction(t *testing.T, db *gorm.DB, tx models.Transaction) *models.Transaction {
	t.Helper()

	if tx.UUID == "" {
		tx.UUID = uuid.NewString()
	}
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	}
	if tx.Description == "" {
		tx.Description = "test transaction"
	}
	if err := db.Create(&tx).Error; err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return &tx
}
