package auth

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-shop-auth/repository"
)

const (
	TextCodeIdentityNotFound        = "IDENTITY_NOT_FOUND"
	TextCodeUserNotFound            = "USER_NOT_FOUND"
	TextCodeCurrentPasswordMismatch = "CURRENT_PASSWORD_MISMATCH"
	TextCodeMissingToken            = "MISSING_TOKEN"
	TextCodeTokenInvalidSignature   = "TOKEN_INVALID_SIGNATURE"
	TextCodeSessionRevoked          = "SESSION_REVOKED"
	TextCodeForbidden               = "FORBIDDEN"
	TextCodePasswordTooLong         = "PASSWORD_TOO_LONG"
	TextCodePasswordPolicy          = "PASSWORD_POLICY"
	TextCodePasswordMismatch        = "PASSWORD_MISMATCH"
	TextCodeCryptoUnavailable       = "CRYPTO_UNAVAILABLE"
	TextCodeInvalidID               = "INVALID_ID"
	TextCodeDuplicateField          = "DUPLICATE_FIELD"
	TextCodeValidationFailed        = "VALIDATION_FAILED"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryInternal).
	WithCode(goerrors.CodeInternal).
	WithTextCode(TextCodeIdentityNotFound)

// ErrUserNotFound is returned when the account addressed by a session no longer exists
var ErrUserNotFound = goerrors.New("User not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode(TextCodeUserNotFound)

// ErrInvalidCredentials covers both unknown users and wrong passwords
var ErrInvalidCredentials = goerrors.New("Invalid username or password", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(goerrors.TextCodeInvalidCredentials)

// ErrCurrentPasswordMismatch is returned by password change when the current password does not verify
var ErrCurrentPasswordMismatch = goerrors.New("Current password is incorrect", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeCurrentPasswordMismatch)

// ErrMissingToken no bearer token on a protected request
var ErrMissingToken = goerrors.New("Missing or malformed token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeMissingToken)

// ErrTokenMalformed the token cannot be parsed or lacks required claims
var ErrTokenMalformed = goerrors.New("Invalid token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(goerrors.TextCodeTokenMalformed)

// ErrTokenInvalidSignature the token was not signed with our key
var ErrTokenInvalidSignature = goerrors.New("Invalid token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenInvalidSignature)

// ErrTokenExpired the token is past its expiry
var ErrTokenExpired = goerrors.New("Token is expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(goerrors.TextCodeTokenExpired)

// ErrSessionRevoked the token is valid but no longer the account's current token
var ErrSessionRevoked = goerrors.New("Session is no longer active", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeSessionRevoked)

// ErrUnableToDecodeSession unable to decode claims from token
var ErrUnableToDecodeSession = goerrors.New("Invalid token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(goerrors.TextCodeSessionDecodeError)

// ErrForbidden the session lacks the role a route requires
var ErrForbidden = goerrors.New("Access denied", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode(TextCodeForbidden)

// ErrNoEmptyString empty passwords are never hashed
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(goerrors.TextCodeEmptyPassword)

// ErrPasswordTooLong bcrypt only considers the first 72 bytes
var ErrPasswordTooLong = goerrors.New("password must be at most 72 bytes long", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodePasswordTooLong)

// ErrPasswordPolicy new password does not satisfy the minimum length
var ErrPasswordPolicy = goerrors.New(fmt.Sprintf("new password must be at least %d characters long", MinPasswordLength), goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodePasswordPolicy)

// ErrMismatchedHashAndPassword the password does not match the hash
var ErrMismatchedHashAndPassword = goerrors.New("password does not match hash", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodePasswordMismatch)

// ErrCryptoUnavailable hashing failed for reasons unrelated to the input
var ErrCryptoUnavailable = goerrors.New("password hashing unavailable", goerrors.CategoryInternal).
	WithCode(goerrors.CodeInternal).
	WithTextCode(TextCodeCryptoUnavailable)

// ErrInvalidID the id is not a valid record identifier
var ErrInvalidID = goerrors.New("Invalid ID format", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeInvalidID)

// ErrUnableToParseData parse error
var ErrUnableToParseData = goerrors.New("Invalid request body", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(goerrors.TextCodeDataParseError)

// NewDuplicateFieldError reports that value is already taken for field.
// cause, when set, is kept as the source of the error.
func NewDuplicateFieldError(field, value string, cause error) *goerrors.Error {
	err := goerrors.New("Duplicate value for field: "+field, goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeDuplicateField).
		WithMetadata(map[string]any{
			repository.MetaField: field,
			repository.MetaValue: value,
		})
	err.Source = cause
	return err
}

// AsDuplicateField returns the field and value reported by the first
// duplicate field error in err's chain.
func AsDuplicateField(err error) (field, value string, ok bool) {
	rich, ok := findTextCode(err, TextCodeDuplicateField)
	if !ok {
		return "", "", false
	}
	return metaString(rich, repository.MetaField), metaString(rich, repository.MetaValue), true
}

// ValidateInput runs validate and reports a failure as a 400 validation error
// keyed by the json name of each offending field.
func ValidateInput(validate func() error, message string) error {
	if verr := goerrors.ValidateWithOzzo(validate, message); verr != nil {
		return verr.WithCode(goerrors.CodeBadRequest).WithTextCode(TextCodeValidationFailed)
	}
	return nil
}

// NewValidationError builds a 400 validation error from field messages
func NewValidationError(message string, fields map[string]string) *goerrors.Error {
	return goerrors.NewValidationFromMap(message, fields).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeValidationFailed)
}

// ValidationFields returns the field messages of the validation error in
// err's chain.
func ValidationFields(err error) (map[string]string, bool) {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryValidation {
		return nil, false
	}
	return rich.ValidationMap(), true
}

func findTextCode(err error, code string) (*goerrors.Error, bool) {
	var rich *goerrors.Error
	for goerrors.As(err, &rich) {
		if rich.TextCode == code {
			return rich, true
		}
		err = rich.Source
	}
	return nil, false
}

func metaString(err *goerrors.Error, key string) string {
	s, _ := err.Metadata[key].(string)
	return s
}
