package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"fintra/internal/apperr"
	"fintra/internal/auth"
	"fintra/internal/db/dbtest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func str(s string) *string { return &s }

// LedgerTestSuite runs the ledger service against a real store.
type LedgerTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *Service
	ana auth.Identity
	bob auth.Identity
}

func (suite *LedgerTestSuite) SetupTest() {
	suite.db = dbtest.Open(suite.T(), &auth.User{}, &Transaction{})
	suite.svc = NewService(NewStore(suite.db, 5*time.Second))

	users := auth.NewIdentityStore(suite.db, 5*time.Second)
	suite.ana = suite.createUser(users, "ana@example.com")
	suite.bob = suite.createUser(users, "bob@example.com")
}

func (suite *LedgerTestSuite) createUser(users *auth.GormIdentityStore, email string) auth.Identity {
	u := &auth.User{Email: email, PasswordHash: "$argon2id$unused", Salt: []byte("0123456789abcdef")}
	require.NoError(suite.T(), users.Create(context.Background(), u))
	return auth.Identity{UserID: u.ID, Email: u.Email}
}

func (suite *LedgerTestSuite) rowCount() int64 {
	var n int64
	require.NoError(suite.T(), suite.db.Model(&Transaction{}).Count(&n).Error)
	return n
}

func (suite *LedgerTestSuite) assertBalance(id auth.Identity, want string) {
	got, err := suite.svc.GetBalance(context.Background(), id)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), decimal.RequireFromString(want).Equal(got), "balance: want %s, got %s", want, got)
}

func (suite *LedgerTestSuite) TestEmptyBalanceIsZero() {
	suite.assertBalance(suite.ana, "0")
}

func (suite *LedgerTestSuite) TestBalanceIncomeMinusExpense() {
	ctx := context.Background()

	_, err := suite.svc.RecordTransaction(ctx, suite.ana, TransactionRequest{
		Amount:      dec("1500.00"),
		Type:        "income",
		Category:    str("salary"),
		Description: str("Monthly pay"),
		Party:       str("Employer Inc."),
		Date:        str("2025-04-20T10:30:00"),
	})
	require.NoError(suite.T(), err)

	_, err = suite.svc.RecordTransaction(ctx, suite.ana, TransactionRequest{
		Amount: dec("75.50"),
		Type:   "expense",
	})
	require.NoError(suite.T(), err)

	suite.assertBalance(suite.ana, "1424.50")
}

func (suite *LedgerTestSuite) TestRecordStoresFields() {
	ctx := context.Background()

	id, err := suite.svc.RecordTransaction(ctx, suite.ana, TransactionRequest{
		Amount:      dec("200.50"),
		Type:        "income",
		Category:    str("freelance"),
		Description: str("Website design"),
		Party:       str("Client XYZ"),
		Date:        str("2025-04-21T09:00:00Z"),
	})
	require.NoError(suite.T(), err)
	require.NotZero(suite.T(), id)

	var got Transaction
	require.NoError(suite.T(), suite.db.First(&got, id).Error)
	assert.True(suite.T(), decimal.RequireFromString("200.50").Equal(got.Amount))
	assert.Equal(suite.T(), Income, got.Type)
	assert.Equal(suite.T(), "freelance", *got.Category)
	assert.Equal(suite.T(), "Website design", *got.Description)
	assert.Equal(suite.T(), "Client XYZ", *got.Party)
	assert.True(suite.T(), time.Date(2025, 4, 21, 9, 0, 0, 0, time.UTC).Equal(got.Date))
	assert.Equal(suite.T(), suite.ana.UserID, got.UserID)
}

func (suite *LedgerTestSuite) TestRecordDefaultsDateToNow() {
	now := time.Date(2025, 8, 20, 8, 0, 0, 0, time.UTC)
	suite.svc.Now = func() time.Time { return now }

	id, err := suite.svc.RecordTransaction(context.Background(), suite.ana, TransactionRequest{
		Amount: dec("12"),
		Type:   "expense",
	})
	require.NoError(suite.T(), err)

	var got Transaction
	require.NoError(suite.T(), suite.db.First(&got, id).Error)
	assert.True(suite.T(), now.Equal(got.Date))
	assert.Nil(suite.T(), got.Category)

	id, err = suite.svc.RecordTransaction(context.Background(), suite.ana, TransactionRequest{
		Amount: dec("3.10"),
		Type:   "expense",
		Date:   str("  "),
	})
	require.NoError(suite.T(), err)

	var blank Transaction
	require.NoError(suite.T(), suite.db.First(&blank, id).Error)
	assert.True(suite.T(), now.Equal(blank.Date), "blank date counts as absent")
}

func (suite *LedgerTestSuite) TestRecordValidation() {
	ctx := context.Background()

	tests := []struct {
		name string
		req  TransactionRequest
	}{
		{"missing amount", TransactionRequest{Type: "income"}},
		{"zero amount", TransactionRequest{Amount: dec("0"), Type: "income"}},
		{"negative amount", TransactionRequest{Amount: dec("-10.00"), Type: "expense"}},
		{"sub-cent amount", TransactionRequest{Amount: dec("1.005"), Type: "income"}},
		{"huge amount", TransactionRequest{Amount: dec("100000000"), Type: "income"}},
		{"missing type", TransactionRequest{Amount: dec("10.00")}},
		{"unknown type", TransactionRequest{Amount: dec("10.00"), Type: "transfer"}},
		{"bad date", TransactionRequest{Amount: dec("10.00"), Type: "income", Date: str("yesterday")}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			before := suite.rowCount()
			_, err := suite.svc.RecordTransaction(ctx, suite.ana, tt.req)
			assert.ErrorIs(suite.T(), err, apperr.ErrValidation)
			assert.Equal(suite.T(), before, suite.rowCount(), "store must be unchanged")
		})
	}
}

func (suite *LedgerTestSuite) TestAnonymousIsRejected() {
	ctx := context.Background()

	_, err := suite.svc.RecordTransaction(ctx, auth.Identity{}, TransactionRequest{Amount: dec("1"), Type: "income"})
	assert.ErrorIs(suite.T(), err, apperr.ErrAuthorization)

	_, err = suite.svc.GetBalance(ctx, auth.Identity{})
	assert.ErrorIs(suite.T(), err, apperr.ErrAuthorization)
}

func (suite *LedgerTestSuite) TestConcurrentRecordsAreNotLost() {
	ctx := context.Background()
	const n = 25

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.svc.RecordTransaction(ctx, suite.ana, TransactionRequest{
				Amount: dec("10.00"),
				Type:   "income",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(suite.T(), err)
	}
	suite.assertBalance(suite.ana, "250.00")
}

func (suite *LedgerTestSuite) TestBalancesAreIsolatedPerUser() {
	ctx := context.Background()

	_, err := suite.svc.RecordTransaction(ctx, suite.ana, TransactionRequest{Amount: dec("100.00"), Type: "income"})
	require.NoError(suite.T(), err)
	_, err = suite.svc.RecordTransaction(ctx, suite.bob, TransactionRequest{Amount: dec("30.25"), Type: "expense"})
	require.NoError(suite.T(), err)

	suite.assertBalance(suite.ana, "100.00")
	suite.assertBalance(suite.bob, "-30.25")
}

func (suite *LedgerTestSuite) TestStoreUnavailable() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.svc.GetBalance(ctx, suite.ana)
	assert.ErrorIs(suite.T(), err, apperr.ErrStoreUnavailable)

	_, err = suite.svc.RecordTransaction(ctx, suite.ana, TransactionRequest{Amount: dec("1"), Type: "income"})
	assert.ErrorIs(suite.T(), err, apperr.ErrStoreUnavailable)
}

func (suite *LedgerTestSuite) TestDeletingOwnerRemovesTransactions() {
	ctx := context.Background()

	for _, amount := range []string{"10.00", "20.00"} {
		_, err := suite.svc.RecordTransaction(ctx, suite.ana, TransactionRequest{Amount: dec(amount), Type: "income"})
		require.NoError(suite.T(), err)
	}
	_, err := suite.svc.RecordTransaction(ctx, suite.bob, TransactionRequest{Amount: dec("5.00"), Type: "expense"})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.db.Exec("DELETE FROM users WHERE id = ?", suite.ana.UserID).Error)

	var anaRows int64
	require.NoError(suite.T(), suite.db.Model(&Transaction{}).Where("user_id = ?", suite.ana.UserID).Count(&anaRows).Error)
	assert.Zero(suite.T(), anaRows)
	assert.Equal(suite.T(), int64(1), suite.rowCount(), "other users' rows stay")
}

func (suite *LedgerTestSuite) TestInsertForMissingUserIsRejected() {
	store := NewStore(suite.db, 5*time.Second)

	err := store.Insert(context.Background(), &Transaction{
		Amount: decimal.RequireFromString("10.00"),
		Type:   Income,
		Date:   time.Now().UTC(),
		UserID: suite.bob.UserID + 1000,
	})
	assert.Error(suite.T(), err)
	assert.Zero(suite.T(), suite.rowCount())
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
