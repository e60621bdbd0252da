package services

import (
	"errors"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.WithField("component", "services")

const pgUniqueViolation = "23505"

// isDuplicateKey detects unique constraint violations from either driver,
// translated or not.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// lookupError maps a single-row lookup failure to NotFound or InternalError.
func lookupError(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError(resource, id)
	}
	return apperrors.NewInternalError("failed to load "+resource, err)
}
