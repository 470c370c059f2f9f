package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"fintra/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

// Classify tags connectivity and timeout failures as
// apperr.ErrStoreUnavailable. Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, apperr.ErrStoreUnavailable) {
		return err
	}
	if unavailable(err) {
		return apperr.Wrap(apperr.ErrStoreUnavailable, "", err)
	}
	return err
}

func unavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
