package postgres

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/clinicore/clinic-api/pkg/apperror"
	"github.com/clinicore/clinic-api/pkg/security"
)

const uniqueViolation = "23505"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// conflictFrom translates a unique-constraint violation into a typed
// Conflict naming the natural key, so two concurrent creates with the same
// key always leave exactly one winner.
func conflictFrom(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	switch {
	case strings.Contains(pqErr.Constraint, "email"):
		return apperror.Conflict("email")
	case strings.Contains(pqErr.Constraint, "national_id"):
		return apperror.Conflict("national id")
	case strings.Contains(pqErr.Constraint, "license"):
		return apperror.Conflict("license number")
	default:
		return apperror.Conflict("natural key")
	}
}

func notFoundFrom(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(resource)
	}
	return nil
}

// sealField encrypts a sensitive column value for storage. A nil encryptor
// or an empty value passes through unchanged.
func sealField(enc security.Encryptor, plain string) (string, error) {
	if enc == nil || plain == "" {
		return plain, nil
	}
	sealed, err := enc.Encrypt([]byte(plain))
	if err != nil {
		return "", fmt.Errorf("failed to seal field: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func openField(enc security.Encryptor, stored string) (string, error) {
	if enc == nil || stored == "" {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed field: %w", err)
	}
	plain, err := enc.Decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed field: %w", err)
	}
	return string(plain), nil
}
