package ledger

import (
	"context"
	"time"

	"fintra/internal/db"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Store interface {
	Insert(ctx context.Context, t *Transaction) error
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type GormStore struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewStore(gdb *gorm.DB, timeout time.Duration) *GormStore {
	return &GormStore{DB: gdb, Timeout: timeout}
}

func (s *GormStore) Insert(ctx context.Context, t *Transaction) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return db.Classify(s.DB.WithContext(ctx).Omit("User").Create(t).Error)
}

// Balance sums the user's ledger in a single statement, so it sees either
// all or none of any concurrently committed row.
func (s *GormStore) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out struct {
		Balance decimal.Decimal
	}
	err := s.DB.WithContext(ctx).Raw(`
		select coalesce(sum(case when type = ? then amount else -amount end), 0) as balance
		from transactions
		where user_id = ?
	`, string(Income), userID).Scan(&out).Error
	if err != nil {
		return decimal.Zero, db.Classify(err)
	}
	return out.Balance.Round(2), nil
}

func (s *GormStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}
