package auth

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
)

// Logger is the structured logger used across the package. Arguments after
// the message are key value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningKeyID() string
	GetPreviousSigningKeys() map[string]string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetPasswordCost() int
}

// PasswordAuthenticator hashes and verifies passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool
}

// TokenService issues and validates session tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// NewLogger builds the JSON logger used when callers do not provide one.
// go-errors values passed under the "error" key are expanded into their
// category, code, and metadata.
func NewLogger(opts ...glog.Option) *glog.BaseLogger {
	defaults := []glog.Option{
		glog.WithLoggerTypeJSON(),
		glog.WithLevel(glog.Info),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	}
	return glog.NewLogger(append(defaults, opts...)...)
}

// DefaultLogger returns a named child of a default NewLogger root.
func DefaultLogger(name string) Logger {
	return NewLogger().GetLogger(name)
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return DefaultLogger("auth")
	}
	return l
}
