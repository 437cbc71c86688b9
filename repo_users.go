package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-shop-auth/repository"
)

// UsersCollection is the table or collection holding user records
const UsersCollection = "users"

// Users is the credential store for user records
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	GetByUserName(ctx context.Context, userName string) (*User, error)
	EnsureUnique(ctx context.Context, field, value, excludeID string) error
	SetToken(ctx context.Context, id, token string) (*User, error)
	SetPasswordHash(ctx context.Context, id, hash string) (*User, error)
	UpdateFields(ctx context.Context, id string, fields repository.Fields) (*User, error)
}

type users struct {
	repository.Repository[*User]
	now func() time.Time
}

var _ Users = (*users)(nil)

// UsersOption configures the users repository
type UsersOption func(*users)

// WithUsersClock replaces the clock used for timestamps
func WithUsersClock(now func() time.Time) UsersOption {
	return func(u *users) {
		if now != nil {
			u.now = now
		}
	}
}

// UserModelHandlers describes the User model to the generic stores
func UserModelHandlers() repository.ModelHandlers[*User] {
	return repository.ModelHandlers[*User]{
		Collection: UsersCollection,
		NewRecord:  func() *User { return &User{} },
		GetID: func(u *User) string {
			if u == nil {
				return ""
			}
			return u.ID
		},
		SetID: func(u *User, id string) {
			if u != nil {
				u.ID = id
			}
		},
	}
}

// NewUsersRepository wraps a backend store with user specific queries
func NewUsersRepository(store repository.Repository[*User], opts ...UsersOption) Users {
	u := &users{Repository: store, now: time.Now}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Register persists a new user. Unique constraint violations from the
// backend are reported as duplicate field errors.
func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	a.prepareUserDefaults(user)

	created, err := a.Create(ctx, user)
	if err != nil {
		return nil, translateDuplicate(err, repository.Fields{
			FieldUserName: user.UserName,
			FieldEmail:    user.Email,
		})
	}
	return created, nil
}

func (a *users) GetByUserName(ctx context.Context, userName string) (*User, error) {
	return a.FindOne(ctx, repository.Where(FieldUserName, strings.TrimSpace(userName)))
}

// EnsureUnique returns a duplicate field error when another record, other than
// excludeID, already holds value in field.
func (a *users) EnsureUnique(ctx context.Context, field, value, excludeID string) error {
	filter := repository.Where(field, value)
	if excludeID != "" {
		filter = filter.Not(repository.IDField, excludeID)
	}

	_, err := a.FindOne(ctx, filter)
	switch {
	case err == nil:
		return NewDuplicateFieldError(fieldToJSON(field), value, nil)
	case repository.IsNotFound(err):
		return nil
	default:
		return err
	}
}

func (a *users) SetToken(ctx context.Context, id, token string) (*User, error) {
	return a.UpdateFields(ctx, id, repository.Fields{FieldToken: token})
}

func (a *users) SetPasswordHash(ctx context.Context, id, hash string) (*User, error) {
	return a.UpdateFields(ctx, id, repository.Fields{FieldPasswordHash: hash})
}

// UpdateFields applies a partial update and stamps updated_at.
func (a *users) UpdateFields(ctx context.Context, id string, fields repository.Fields) (*User, error) {
	if len(fields) == 0 {
		return a.GetByID(ctx, id)
	}

	out := make(repository.Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[FieldUpdatedAt] = a.now().UTC()

	updated, err := a.Update(ctx, id, out)
	if err != nil {
		return nil, translateDuplicate(err, fields)
	}
	return updated, nil
}

func (a *users) prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if !record.Role.IsValid() {
		record.Role = RoleUser
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	now := a.now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}

// translateDuplicate maps a store duplicate key error to a duplicate field
// error. attempted fills the value when the backend does not report it.
func translateDuplicate(err error, attempted repository.Fields) error {
	dup, ok := repository.AsDuplicateKey(err)
	if !ok {
		return err
	}

	value := dup.Value
	if value == "" {
		if v, ok := attempted[dup.Field].(string); ok {
			value = v
		}
	}
	return NewDuplicateFieldError(fieldToJSON(dup.Field), value, err)
}
