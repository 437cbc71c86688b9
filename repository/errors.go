package repository

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeNotFound        = "RECORD_NOT_FOUND"
	TextCodeDuplicateKey    = "DUPLICATE_KEY"
	TextCodeInvalidHandlers = "INVALID_MODEL_HANDLERS"
)

// Metadata keys carried by duplicate key errors
const (
	MetaCollection = "collection"
	MetaField      = "field"
	MetaValue      = "value"
)

// ErrNotFound is returned when no record matches an id or filter.
var ErrNotFound = goerrors.New("record not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode(TextCodeNotFound)

// ErrInvalidHandlers is returned when a store is built without model handlers.
var ErrInvalidHandlers = goerrors.New("repository model handlers are incomplete", goerrors.CategoryInternal).
	WithCode(goerrors.CodeInternal).
	WithTextCode(TextCodeInvalidHandlers)

// Duplicate describes a unique constraint violation on a single field.
// Value may be empty when the backend does not report it.
type Duplicate struct {
	Collection string
	Field      string
	Value      string
}

// DuplicateKey builds the conflict error stores return for unique constraint
// violations. cause is the driver error.
func DuplicateKey(collection, field, value string, cause error) *goerrors.Error {
	message := "duplicate key on " + collection
	if field != "" {
		message += "." + field
	}
	if value != "" {
		message += fmt.Sprintf(": %q", value)
	}

	err := goerrors.New(message, goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeDuplicateKey).
		WithMetadata(map[string]any{
			MetaCollection: collection,
			MetaField:      field,
			MetaValue:      value,
		})
	err.Source = cause
	return err
}

// IsNotFound reports whether err is, or wraps, a not found error.
func IsNotFound(err error) bool {
	return goerrors.IsNotFound(err)
}

// IsDuplicateKey reports whether err carries a duplicate key error.
func IsDuplicateKey(err error) bool {
	_, ok := AsDuplicateKey(err)
	return ok
}

// AsDuplicateKey extracts the duplicate key details from err's chain.
func AsDuplicateKey(err error) (Duplicate, bool) {
	var rich *goerrors.Error
	for goerrors.As(err, &rich) {
		if rich.TextCode == TextCodeDuplicateKey {
			collection, _ := rich.Metadata[MetaCollection].(string)
			field, _ := rich.Metadata[MetaField].(string)
			value, _ := rich.Metadata[MetaValue].(string)
			return Duplicate{Collection: collection, Field: field, Value: value}, true
		}
		err = rich.Source
	}
	return Duplicate{}, false
}

// NotFound wraps ErrNotFound with the lookup that failed.
func NotFound(collection, lookup string) error {
	return fmt.Errorf("%s %s: %w", collection, lookup, ErrNotFound)
}
