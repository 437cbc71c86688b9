package auth

import (
	"context"

	"github.com/goliatone/go-shop-auth/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// ContextEnricherAdapter adapts jwtware.AuthClaims to auth.AuthClaims and stores
// the claims in the standard context for downstream handlers.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}
	return WithClaimsContext(c, authClaims)
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}

// TokenValidator verifies a token and returns its claims. TokenService
// satisfies it.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// jwtValidator exposes a TokenValidator to the middleware
type jwtValidator struct {
	validator TokenValidator
}

// NewJWTValidator adapts a TokenValidator to jwtware.TokenValidator
func NewJWTValidator(v TokenValidator) jwtware.TokenValidator {
	return jwtValidator{validator: v}
}

func (v jwtValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
