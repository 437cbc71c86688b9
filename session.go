package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-shop-auth/middleware/jwtware"
)

// SessionGuard returns a validation listener that accepts a verified token
// only while it is the current token stored on its account. Tokens of
// deleted accounts and tokens replaced by a later login are rejected with
// ErrSessionRevoked. On success the user is stored in the request context
// and in the fiber locals under key.
func SessionGuard(accounts *Accounts, key string) jwtware.ValidationListener {
	if key == "" {
		key = "user"
	}
	userKey := key + ".account"

	return func(c *fiber.Ctx, token string, claims jwtware.AuthClaims) error {
		authClaims, ok := claims.(AuthClaims)
		if !ok {
			return ErrUnableToDecodeSession
		}

		user, err := accounts.CheckSession(c.UserContext(), authClaims, token)
		if err != nil {
			return err
		}

		c.Locals(userKey, user)
		c.SetUserContext(WithContext(c.UserContext(), user))
		return nil
	}
}

// CurrentUser returns the user resolved by SessionGuard
func CurrentUser(c *fiber.Ctx) (*User, bool) {
	return FromContext(c.UserContext())
}
