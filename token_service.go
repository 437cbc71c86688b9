package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenExpiration is the token lifetime in hours used when none is configured
const DefaultTokenExpiration = 24

// DefaultSigningKeyID is the kid header written on every issued token
const DefaultSigningKeyID = "primary"

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	keyID           string
	previousKeys    map[string][]byte
	keys            *keyfunc.JWKS
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	now             func() time.Time
	logger          Logger
}

// TokenServiceOption configures a TokenServiceImpl
type TokenServiceOption func(*TokenServiceImpl)

// WithTokenClock replaces the clock used to stamp and verify tokens
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithSigningKeyID sets the kid header written on issued tokens
func WithSigningKeyID(kid string) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if kid != "" {
			ts.keyID = kid
		}
	}
}

// WithPreviousSigningKeys keeps tokens signed with rotated keys verifiable
// until they expire. Keys are indexed by the kid they were issued with.
func WithPreviousSigningKeys(keys map[string][]byte) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		for kid, key := range keys {
			if kid == "" || len(key) == 0 {
				continue
			}
			ts.previousKeys[kid] = key
		}
	}
}

// NewTokenService creates a new TokenService instance. tokenExpiration is
// expressed in hours.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, audience jwt.ClaimStrings, logger Logger, opts ...TokenServiceOption) TokenService {
	if tokenExpiration <= 0 {
		tokenExpiration = DefaultTokenExpiration
	}

	ts := &TokenServiceImpl{
		signingKey:      signingKey,
		keyID:           DefaultSigningKeyID,
		previousKeys:    map[string][]byte{},
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        audience,
		now:             time.Now,
		logger:          normalizeLogger(logger),
	}

	for _, opt := range opts {
		opt(ts)
	}

	given := make(map[string]keyfunc.GivenKey, len(ts.previousKeys)+1)
	for kid, key := range ts.previousKeys {
		given[kid] = hmacGivenKey(key)
	}
	given[ts.keyID] = hmacGivenKey(ts.signingKey)
	ts.keys = keyfunc.NewGiven(given)

	return ts
}

// NewTokenServiceFromConfig creates a TokenService from auth configuration
func NewTokenServiceFromConfig(cfg Config, logger Logger, opts ...TokenServiceOption) TokenService {
	previous := make(map[string][]byte, len(cfg.GetPreviousSigningKeys()))
	for kid, key := range cfg.GetPreviousSigningKeys() {
		previous[kid] = []byte(key)
	}

	base := []TokenServiceOption{
		WithSigningKeyID(cfg.GetSigningKeyID()),
		WithPreviousSigningKeys(previous),
	}

	return NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		logger,
		append(base, opts...)...,
	)
}

func hmacGivenKey(key []byte) keyfunc.GivenKey {
	return keyfunc.NewGivenCustom(key, keyfunc.GivenKeyOptions{
		Algorithm: jwt.SigningMethodHS256.Alg(),
	})
}

// Generate issues a signed token carrying the identity's id, user name and
// email. Every token gets a unique jti so two tokens issued within the same
// second still differ.
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	if identity == nil || identity.ID() == "" {
		return "", ErrIdentityNotFound
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.Lifetime())),
		},
		UID:      identity.ID(),
		UName:    identity.Username(),
		UEmail:   identity.Email(),
		UserRole: identity.Role(),
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = ts.keyID

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// The result depends only on the token, the keys and the clock.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, ts.keyFunc, parserOptions...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			ts.logger.Debug("token rejected", "reason", err.Error())
			return nil, ErrTokenInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode or validate claims")
		return nil, ErrUnableToDecodeSession
	}

	if claims.UserID() == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}

	return claims, nil
}

// Lifetime returns how long issued tokens stay valid
func (ts *TokenServiceImpl) Lifetime() time.Duration {
	return time.Duration(ts.tokenExpiration) * time.Hour
}

func (ts *TokenServiceImpl) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}

	if _, ok := t.Header["kid"]; !ok {
		return ts.signingKey, nil
	}

	return ts.keys.Keyfunc(t)
}
