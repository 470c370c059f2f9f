package ledger

import (
	"context"
	"strings"
	"time"

	"fintra/internal/apperr"
	"fintra/internal/auth"

	"github.com/shopspring/decimal"
)

// maxAmount is the first value that no longer fits NUMERIC(10,2).
var maxAmount = decimal.New(1, 8)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TransactionRequest is the body of POST /transaction.
type TransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Type        string           `json:"type"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Party       *string          `json:"party"`
	Date        *string          `json:"date"`
}

// Validate turns req into a Transaction for the given user. now fills in a
// missing or blank date; a present but unparsable date is an error.
func (req TransactionRequest) Validate(userID int64, now time.Time) (*Transaction, error) {
	if req.Amount == nil {
		return nil, apperr.Validation("amount is required")
	}
	amount := *req.Amount
	if !amount.IsPositive() {
		return nil, apperr.Validation("amount must be positive")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return nil, apperr.Validation("amount must have at most 2 decimal places")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return nil, apperr.Validation("amount is too large")
	}

	if req.Type == "" {
		return nil, apperr.Validation("type is required")
	}
	typ := TransactionType(req.Type)
	if !typ.Valid() {
		return nil, apperr.Validation("type must be income or expense")
	}

	date := now
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		d, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}

	return &Transaction{
		Amount:      amount.Truncate(2),
		Type:        typ,
		Category:    req.Category,
		Description: req.Description,
		Party:       req.Party,
		Date:        date.UTC(),
		UserID:      userID,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validation("date must be RFC3339 or YYYY-MM-DD")
}

// Service records transactions and computes balances, always scoped to the
// caller's identity.
type Service struct {
	Store Store
	Now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

func (s *Service) RecordTransaction(ctx context.Context, id auth.Identity, req TransactionRequest) (int64, error) {
	if !id.Authenticated() {
		return 0, apperr.New(apperr.ErrAuthorization, "authentication required")
	}

	t, err := req.Validate(id.UserID, s.Now())
	if err != nil {
		return 0, err
	}
	if err := s.Store.Insert(ctx, t); err != nil {
		return 0, err
	}
	return t.ID, nil
}

// GetBalance returns income minus expenses; zero when the ledger is empty.
func (s *Service) GetBalance(ctx context.Context, id auth.Identity) (decimal.Decimal, error) {
	if !id.Authenticated() {
		return decimal.Zero, apperr.New(apperr.ErrAuthorization, "authentication required")
	}
	return s.Store.Balance(ctx, id.UserID)
}
