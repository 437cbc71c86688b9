package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the user model. Storage names are shared by the SQL and document
// backends; JSON names follow the public API.
type User struct {
	bun.BaseModel       `bun:"table:users,alias:usr" bson:"-" json:"-"`
	ID                  string    `bun:"id,pk" bson:"_id" json:"id"`
	UserName            string    `bun:"user_name,notnull,unique" bson:"user_name" json:"userName"`
	Email               string    `bun:"email,notnull,unique" bson:"email" json:"email"`
	PasswordHash        string    `bun:"password_hash,notnull" bson:"password_hash" json:"-"`
	ContactNumber       string    `bun:"contact_number" bson:"contact_number" json:"contactNumber"`
	City                string    `bun:"city" bson:"city" json:"city"`
	Street              string    `bun:"street" bson:"street" json:"street"`
	DeliveryDescription string    `bun:"delivery_description" bson:"delivery_description" json:"deliveryDescription"`
	Role                UserRole  `bun:"role,notnull" bson:"role" json:"role"`
	Token               string    `bun:"token,nullzero" bson:"token,omitempty" json:"token,omitempty"`
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" bson:"updated_at" json:"updatedAt"`
}

// Storage field names used in filters and partial updates
const (
	FieldUserName            = "user_name"
	FieldEmail               = "email"
	FieldPasswordHash        = "password_hash"
	FieldContactNumber       = "contact_number"
	FieldCity                = "city"
	FieldStreet              = "street"
	FieldDeliveryDescription = "delivery_description"
	FieldToken               = "token"
	FieldRole                = "role"
	FieldUpdatedAt           = "updated_at"
)

// jsonToField maps the public profile field names to storage names. It
// doubles as the profile update allow-list.
var jsonToField = map[string]string{
	"userName":            FieldUserName,
	"email":               FieldEmail,
	"contactNumber":       FieldContactNumber,
	"city":                FieldCity,
	"street":              FieldStreet,
	"deliveryDescription": FieldDeliveryDescription,
}

// fieldToJSON reverses jsonToField for error reporting
func fieldToJSON(field string) string {
	for k, v := range jsonToField {
		if v == field {
			return k
		}
	}
	return field
}

// HasToken reports whether the user has a current session token
func (u *User) HasToken() bool {
	return u != nil && u.Token != ""
}

// Identity returns the view of the user carried into issued tokens
func (u *User) Identity() Identity {
	if u == nil {
		return nil
	}
	return userIdentity{u: u}
}

type userIdentity struct {
	u *User
}

func (i userIdentity) ID() string       { return i.u.ID }
func (i userIdentity) Username() string { return i.u.UserName }
func (i userIdentity) Email() string    { return i.u.Email }
func (i userIdentity) Role() string     { return string(i.u.Role) }
