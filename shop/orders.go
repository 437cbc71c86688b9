package shop

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	auth "github.com/goliatone/go-shop-auth"
	"github.com/goliatone/go-shop-auth/repository"
)

// Validate will run validation rules
func (i OrderItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ItemName, validation.Required),
		validation.Field(&i.Quantity, validation.Required, validation.Min(1)),
	)
}

// OrderInput is the payload accepted when placing an order
type OrderInput struct {
	CName       string      `json:"cName"`
	TotalAmount float64     `json:"totalAmount"`
	Items       []OrderItem `json:"items"`
}

// Validate will run validation rules
func (r OrderInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TotalAmount, validation.Min(0.0)),
		validation.Field(&r.Items),
	)
}

// orderFields maps the public order field names that may be updated
var orderFields = map[string]string{
	"cName":               FieldCName,
	"contactNumber":       FieldContactNumber,
	"city":                FieldCity,
	"street":              FieldStreet,
	"deliveryDescription": FieldDeliveryDescription,
	"totalAmount":         FieldTotalAmount,
	"items":               FieldItems,
	"status":              FieldStatus,
}

// Orders manages delivery orders
type Orders struct {
	orders repository.Repository[*Order]
	logger auth.Logger
	now    func() time.Time
}

// OrdersOption configures Orders
type OrdersOption func(*Orders)

// WithOrdersLogger sets the logger
func WithOrdersLogger(l auth.Logger) OrdersOption {
	return func(o *Orders) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOrdersClock replaces the clock used for timestamps
func WithOrdersClock(now func() time.Time) OrdersOption {
	return func(o *Orders) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrders creates the order service
func NewOrders(orders repository.Repository[*Order], opts ...OrdersOption) *Orders {
	o := &Orders{
		orders: orders,
		logger: auth.DefaultLogger("shop.orders"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// List returns every order, newest first
func (o *Orders) List(ctx context.Context) ([]*Order, error) {
	return o.orders.List(ctx, repository.All().OrderBy(FieldCreatedAt, true))
}

// ListByUser returns the orders placed by userName, newest first
func (o *Orders) ListByUser(ctx context.Context, userName string) ([]*Order, error) {
	return o.orders.List(ctx, repository.Where(FieldUserName, userName).OrderBy(FieldCreatedAt, true))
}

// Place stores a new order for user, copying the delivery details from the
// user's profile.
func (o *Orders) Place(ctx context.Context, user *auth.User, in OrderInput) (*Order, error) {
	if user == nil {
		return nil, auth.ErrUnableToDecodeSession
	}

	if err := auth.ValidateInput(in.Validate, "Validation failed"); err != nil {
		return nil, err
	}

	items := in.Items
	if items == nil {
		items = []OrderItem{}
	}

	now := o.now().UTC()
	order, err := o.orders.Create(ctx, &Order{
		UserName:            user.UserName,
		CName:               in.CName,
		ContactNumber:       user.ContactNumber,
		City:                user.City,
		Street:              user.Street,
		DeliveryDescription: user.DeliveryDescription,
		TotalAmount:         in.TotalAmount,
		Items:               items,
		Status:              DefaultOrderStatus,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("order placed", "order_id", order.ID, "user_id", user.ID)
	return order, nil
}

// Update applies a partial update to the order addressed by id
func (o *Orders) Update(ctx context.Context, id string, changes map[string]any) (*Order, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	fields, err := orderChanges(changes)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return o.orders.GetByID(ctx, id)
	}

	fields[FieldUpdatedAt] = o.now().UTC()
	return o.orders.Update(ctx, id, fields)
}

// Delete removes the order addressed by id
func (o *Orders) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return o.orders.DeleteByID(ctx, id)
}

func orderChanges(changes map[string]any) (repository.Fields, error) {
	fields := repository.Fields{}
	invalid := map[string]string{}

	for key, value := range changes {
		field, ok := orderFields[key]
		if !ok {
			continue
		}

		switch field {
		case FieldTotalAmount:
			n, ok := value.(float64)
			if !ok || n < 0 {
				invalid[key] = "must be a non negative number"
				continue
			}
			fields[field] = n
		case FieldItems:
			items, err := decodeItems(value)
			if err != nil {
				invalid[key] = err.Error()
				continue
			}
			fields[field] = items
		default:
			s, ok := value.(string)
			if !ok {
				invalid[key] = "must be a string"
				continue
			}
			if field == FieldStatus && strings.TrimSpace(s) == "" {
				invalid[key] = "cannot be blank"
				continue
			}
			fields[field] = s
		}
	}

	if len(invalid) > 0 {
		return nil, auth.NewValidationError("Validation failed", invalid)
	}
	return fields, nil
}

func decodeItems(value any) ([]OrderItem, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	items := []OrderItem{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, auth.ErrUnableToParseData
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}
	return items, nil
}
