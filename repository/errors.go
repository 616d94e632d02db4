package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Storage error taxonomy. Handlers map these onto HTTP statuses; the bulk
// importer uses ErrDuplicateKey to treat lost check-then-insert races as
// "already exists".
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when an insert or update violates a
	// uniqueness constraint.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidReference is returned when a row references a nonexistent
	// parent (foreign-key violation).
	ErrInvalidReference = errors.New("invalid reference")
)

// translateError maps GORM / SQLite errors onto the repository taxonomy.
// TranslateError on the GORM config covers most cases; the string checks
// catch raw constraint messages from paths that bypass translation.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrInvalidReference
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrDuplicateKey
	case strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
		return ErrInvalidReference
	}
	return err
}
