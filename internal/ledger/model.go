package ledger

import (
	"time"

	"fintra/internal/auth"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Transaction is append-only. The sign of Amount is always positive; Type
// decides whether it adds to or subtracts from the balance.
type Transaction struct {
	ID          int64           `gorm:"primaryKey"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null;check:chk_transactions_amount_positive,amount > 0"`
	Type        TransactionType `gorm:"type:varchar(7);not null;check:chk_transactions_type,type IN ('income','expense')"`
	Category    *string         `gorm:"type:text"`
	Description *string         `gorm:"type:text"`
	Party       *string         `gorm:"type:text"`
	Date        time.Time       `gorm:"not null"`
	UserID      int64           `gorm:"index;not null"`
	User        *auth.User      `gorm:"constraint:OnDelete:CASCADE"`
}
