package database

import (
	"Food-Rescue-Coordinator/domain"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"gorm.io/gorm"
)

type Transactor interface {
	// WithinTransaction runs fn in one transaction. Any error rolls back every
	// write made through tx.
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return MapError(err)
	}
	err := t.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// MapError translates storage and context failures into the domain taxonomy.
// Errors that already carry a domain sentinel pass through untouched.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNoCandidate),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrUnavailable),
		errors.Is(err, domain.ErrInvalidRequest):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	msg := err.Error()
	switch {
	// 40001 serialization_failure, 40P01 deadlock_detected, 55P03 lock_not_available
	case strings.Contains(msg, "SQLSTATE 40001"),
		strings.Contains(msg, "SQLSTATE 40P01"),
		strings.Contains(msg, "SQLSTATE 55P03"),
		strings.Contains(msg, "database is locked"):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case strings.Contains(msg, "SQLSTATE 23505"):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "conn closed"),
		strings.Contains(msg, "SQLSTATE 57014"),
		strings.Contains(msg, "SQLSTATE 08"):
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return err
}
