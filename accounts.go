package auth

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-shop-auth/repository"
)

// MinPasswordLength is the shortest accepted new password, in characters
const MinPasswordLength = 6

// SignupInput is the payload accepted by Signup
type SignupInput struct {
	UserName            string `json:"userName"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	ContactNumber       string `json:"contactNumber"`
	City                string `json:"city"`
	Street              string `json:"street"`
	DeliveryDescription string `json:"deliveryDescription"`
}

// Validate will run validation rules
func (r SignupInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginInput is the payload accepted by Login
type LoginInput struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// PasswordChangeInput is the payload accepted by ChangePassword
type PasswordChangeInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Validate will run validation rules
func (r PasswordChangeInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// Accounts implements the account lifecycle: signup, login, profile update,
// password change and deletion. Every step that issues a token stores it on
// the user so only the most recent token stays usable.
type Accounts struct {
	users    Users
	hasher   PasswordAuthenticator
	tokens   TokenService
	activity ActivitySink
	logger   Logger
	now      func() time.Time

	placeholderOnce sync.Once
	placeholder     string
}

// AccountsOption configures Accounts
type AccountsOption func(*Accounts)

// WithAccountsLogger sets the logger
func WithAccountsLogger(l Logger) AccountsOption {
	return func(a *Accounts) {
		a.logger = normalizeLogger(l)
	}
}

// WithActivitySink sets where lifecycle events are recorded
func WithActivitySink(s ActivitySink) AccountsOption {
	return func(a *Accounts) {
		a.activity = normalizeActivitySink(s)
	}
}

// WithPasswordHasher replaces the default bcrypt hasher
func WithPasswordHasher(h PasswordAuthenticator) AccountsOption {
	return func(a *Accounts) {
		if h != nil {
			a.hasher = h
		}
	}
}

// WithAccountsClock replaces the clock used for event timestamps
func WithAccountsClock(now func() time.Time) AccountsOption {
	return func(a *Accounts) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAccounts creates the account lifecycle service
func NewAccounts(users Users, tokens TokenService, opts ...AccountsOption) *Accounts {
	if users == nil {
		panic("AUTH: accounts require a Users repository")
	}
	if tokens == nil {
		panic("AUTH: accounts require a TokenService")
	}

	a := &Accounts{
		users:    users,
		tokens:   tokens,
		hasher:   Hasher{},
		activity: noopActivitySink{},
		logger:   DefaultLogger("auth.accounts"),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Signup creates an account and issues its first token. The token is
// attached with a second write; if that write fails the account remains
// without a token and the error is returned.
func (a *Accounts) Signup(ctx context.Context, in SignupInput) (*User, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.Email = strings.TrimSpace(in.Email)

	if err := ValidateInput(in.Validate, "Username, email and password are required"); err != nil {
		return nil, err
	}

	if err := a.users.EnsureUnique(ctx, FieldUserName, in.UserName, ""); err != nil {
		return nil, err
	}
	if err := a.users.EnsureUnique(ctx, FieldEmail, in.Email, ""); err != nil {
		return nil, err
	}

	hash, err := a.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := a.users.Register(ctx, &User{
		UserName:            in.UserName,
		Email:               in.Email,
		PasswordHash:        hash,
		ContactNumber:       in.ContactNumber,
		City:                in.City,
		Street:              in.Street,
		DeliveryDescription: in.DeliveryDescription,
		Role:                RoleUser,
	})
	if err != nil {
		return nil, err
	}

	user, err = a.issueToken(ctx, user)
	if err != nil {
		a.logger.Error("signup token attach failed", "user_id", user.ID, "error", err)
		return nil, err
	}

	a.record(ctx, ActivityEventSignup, user, nil)
	return user, nil
}

// Login verifies credentials and replaces the stored token with a new one.
// Unknown users and wrong passwords return the same ErrInvalidCredentials.
func (a *Accounts) Login(ctx context.Context, in LoginInput) (*User, error) {
	if err := ValidateInput(in.Validate, "Username and password are required"); err != nil {
		return nil, err
	}

	user, err := a.users.GetByUserName(ctx, in.UserName)
	if err != nil {
		if repository.IsNotFound(err) {
			a.hasher.VerifyPassword(in.Password, a.placeholderHash())
			a.logger.Info("login rejected", "reason", "unknown user")
			a.record(ctx, ActivityEventLoginFailure, &User{UserName: in.UserName}, map[string]any{"reason": "unknown_user"})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !a.hasher.VerifyPassword(in.Password, user.PasswordHash) {
		a.logger.Info("login rejected", "reason", "password mismatch", "user_id", user.ID)
		a.record(ctx, ActivityEventLoginFailure, user, map[string]any{"reason": "password_mismatch"})
		return nil, ErrInvalidCredentials
	}

	user, err = a.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	a.record(ctx, ActivityEventLoginSuccess, user, nil)
	return user, nil
}

// UpdateProfile applies allow-listed profile changes. Unknown keys and empty
// values are ignored. A changed user name or email must not belong to
// another account.
func (a *Accounts) UpdateProfile(ctx context.Context, userID string, changes map[string]string) (*User, error) {
	user, err := a.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	for key, value := range changes {
		field, allowed := jsonToField[key]
		if !allowed {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		fields[field] = value
	}

	if v, ok := fields[FieldEmail].(string); ok {
		if err := validation.Validate(v, is.Email); err != nil {
			return nil, NewValidationError("Invalid email", map[string]string{"email": err.Error()})
		}
	}

	if v, ok := fields[FieldUserName].(string); ok && v != user.UserName {
		if err := a.users.EnsureUnique(ctx, FieldUserName, v, user.ID); err != nil {
			return nil, err
		}
	}
	if v, ok := fields[FieldEmail].(string); ok && v != user.Email {
		if err := a.users.EnsureUnique(ctx, FieldEmail, v, user.ID); err != nil {
			return nil, err
		}
	}

	if len(fields) == 0 {
		return user, nil
	}

	updated, err := a.users.UpdateFields(ctx, user.ID, fields)
	if err != nil {
		return nil, a.notFound(err)
	}

	a.record(ctx, ActivityEventProfileUpdated, updated, map[string]any{"fields": changedKeys(fields)})
	return updated, nil
}

// ChangePassword replaces the password hash after verifying the current
// password. The stored token is left untouched.
func (a *Accounts) ChangePassword(ctx context.Context, userID string, in PasswordChangeInput) (*User, error) {
	if err := ValidateInput(in.Validate, "Current password and new password are required"); err != nil {
		return nil, err
	}

	user, err := a.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !a.hasher.VerifyPassword(in.CurrentPassword, user.PasswordHash) {
		a.logger.Info("password change rejected", "reason", "current password mismatch", "user_id", user.ID)
		return nil, ErrCurrentPasswordMismatch
	}

	if utf8.RuneCountInString(in.NewPassword) < MinPasswordLength {
		return nil, ErrPasswordPolicy
	}

	hash, err := a.hasher.HashPassword(in.NewPassword)
	if err != nil {
		return nil, err
	}

	updated, err := a.users.SetPasswordHash(ctx, user.ID, hash)
	if err != nil {
		return nil, a.notFound(err)
	}

	a.record(ctx, ActivityEventPasswordChanged, updated, nil)
	return updated, nil
}

// DeleteAccount removes the account permanently
func (a *Accounts) DeleteAccount(ctx context.Context, userID string) error {
	user, err := a.users.FindOneAndDelete(ctx, repository.Where(repository.IDField, userID))
	if err != nil {
		return a.notFound(err)
	}

	a.record(ctx, ActivityEventAccountDeleted, user, nil)
	return nil
}

// Me returns the account addressed by userID
func (a *Accounts) Me(ctx context.Context, userID string) (*User, error) {
	return a.getUser(ctx, userID)
}

// CheckSession resolves the user behind verified claims and confirms token
// is still the user's current token.
func (a *Accounts) CheckSession(ctx context.Context, claims AuthClaims, token string) (*User, error) {
	if claims == nil {
		return nil, ErrUnableToDecodeSession
	}

	user, err := a.users.GetByID(ctx, claims.UserID())
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSessionRevoked
		}
		return nil, err
	}

	if !user.HasToken() || user.Token != token {
		return nil, ErrSessionRevoked
	}

	return user, nil
}

func (a *Accounts) issueToken(ctx context.Context, user *User) (*User, error) {
	token, err := a.tokens.Generate(user.Identity())
	if err != nil {
		return user, err
	}

	updated, err := a.users.SetToken(ctx, user.ID, token)
	if err != nil {
		return user, err
	}
	return updated, nil
}

// placeholderHash is verified against when a login names an unknown user so
// the response takes as long as a password mismatch.
func (a *Accounts) placeholderHash() string {
	a.placeholderOnce.Do(func() {
		hash, err := a.hasher.HashPassword("placeholder-password")
		if err != nil {
			a.logger.Warn("placeholder hash unavailable", "error", err)
			return
		}
		a.placeholder = hash
	})
	return a.placeholder
}

func (a *Accounts) getUser(ctx context.Context, userID string) (*User, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, a.notFound(err)
	}
	return user, nil
}

func (a *Accounts) notFound(err error) error {
	if repository.IsNotFound(err) {
		return goerrors.Join(ErrUserNotFound, err)
	}
	return err
}

func (a *Accounts) record(ctx context.Context, eventType ActivityEventType, user *User, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Metadata:   metadata,
		OccurredAt: a.now().UTC(),
	}
	if user != nil {
		event.UserID = user.ID
		event.UserName = user.UserName
	}

	if err := a.activity.Record(ctx, event); err != nil {
		a.logger.Warn("activity sink failed", "event", string(eventType), "error", err)
	}
}

func changedKeys(fields repository.Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, fieldToJSON(k))
	}
	return keys
}
