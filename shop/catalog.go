package shop

import (
	"context"
	"math"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	auth "github.com/goliatone/go-shop-auth"
	"github.com/goliatone/go-shop-auth/repository"
)

// ProductInput is the payload accepted when creating a product
type ProductInput struct {
	ProductName string  `json:"productName"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl"`
}

// Validate will run validation rules
func (r ProductInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Price, validation.Min(0.0)),
		validation.Field(&r.Stock, validation.Min(0)),
		validation.Field(&r.ImageURL, is.URL),
	)
}

// productFields maps the public product field names to storage names
var productFields = map[string]string{
	"productName": FieldProductName,
	"description": FieldDescription,
	"category":    FieldCategory,
	"price":       FieldPrice,
	"stock":       FieldStock,
	"imageUrl":    FieldImageURL,
}

// Catalog manages products
type Catalog struct {
	products repository.Repository[*Product]
	logger   auth.Logger
	now      func() time.Time
}

// CatalogOption configures a Catalog
type CatalogOption func(*Catalog)

// WithCatalogLogger sets the logger
func WithCatalogLogger(l auth.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCatalogClock replaces the clock used for timestamps
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCatalog creates the product service
func NewCatalog(products repository.Repository[*Product], opts ...CatalogOption) *Catalog {
	c := &Catalog{
		products: products,
		logger:   auth.DefaultLogger("shop.catalog"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns every product, newest first
func (c *Catalog) List(ctx context.Context) ([]*Product, error) {
	return c.products.List(ctx, repository.All().OrderBy(FieldCreatedAt, true))
}

// Get returns a product by id
func (c *Catalog) Get(ctx context.Context, id string) (*Product, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return c.products.GetByID(ctx, id)
}

// Create adds a product. Product names are unique.
func (c *Catalog) Create(ctx context.Context, in ProductInput) (*Product, error) {
	in.ProductName = strings.TrimSpace(in.ProductName)
	if err := auth.ValidateInput(in.Validate, "Validation failed"); err != nil {
		return nil, err
	}

	if err := c.ensureUniqueName(ctx, in.ProductName, ""); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	product, err := c.products.Create(ctx, &Product{
		ProductName: in.ProductName,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, translateDuplicate(err, in.ProductName)
	}

	c.logger.Info("product created", "product_id", product.ID)
	return product, nil
}

// Update applies a partial update. Unknown keys are ignored; an empty body
// and a blank productName are rejected.
func (c *Catalog) Update(ctx context.Context, id string, changes map[string]any) (*Product, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	if len(changes) == 0 {
		return nil, auth.NewValidationError("Request body cannot be empty", nil)
	}

	fields, err := productChanges(changes)
	if err != nil {
		return nil, err
	}

	if name, ok := fields[FieldProductName].(string); ok {
		if err := c.ensureUniqueName(ctx, name, id); err != nil {
			return nil, err
		}
	}

	if len(fields) == 0 {
		return c.products.GetByID(ctx, id)
	}

	fields[FieldUpdatedAt] = c.now().UTC()
	product, err := c.products.Update(ctx, id, fields)
	if err != nil {
		name, _ := fields[FieldProductName].(string)
		return nil, translateDuplicate(err, name)
	}
	return product, nil
}

// Delete removes a product and returns it
func (c *Catalog) Delete(ctx context.Context, id string) (*Product, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return c.products.FindOneAndDelete(ctx, repository.Where(repository.IDField, id))
}

func (c *Catalog) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	filter := repository.Where(FieldProductName, name)
	if excludeID != "" {
		filter = filter.Not(repository.IDField, excludeID)
	}

	_, err := c.products.FindOne(ctx, filter)
	switch {
	case err == nil:
		return auth.NewDuplicateFieldError("productName", name, nil)
	case repository.IsNotFound(err):
		return nil
	default:
		return err
	}
}

func productChanges(changes map[string]any) (repository.Fields, error) {
	fields := repository.Fields{}
	invalid := map[string]string{}

	for key, value := range changes {
		field, ok := productFields[key]
		if !ok {
			continue
		}

		switch field {
		case FieldPrice:
			n, ok := value.(float64)
			if !ok || n < 0 {
				invalid[key] = "must be a non negative number"
				continue
			}
			fields[field] = n
		case FieldStock:
			n, ok := value.(float64)
			if !ok || n < 0 || n != math.Trunc(n) {
				invalid[key] = "must be a non negative integer"
				continue
			}
			fields[field] = int(n)
		default:
			s, ok := value.(string)
			if !ok {
				invalid[key] = "must be a string"
				continue
			}
			if field == FieldProductName {
				s = strings.TrimSpace(s)
				if s == "" {
					return nil, auth.NewValidationError("productName cannot be empty", map[string]string{
						key: "cannot be blank",
					})
				}
			}
			fields[field] = s
		}
	}

	if len(invalid) > 0 {
		return nil, auth.NewValidationError("Validation failed", invalid)
	}
	return fields, nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return auth.ErrInvalidID
	}
	return nil
}

// translateDuplicate reports a store unique violation on the product name
// as a duplicate field error carrying the attempted name.
func translateDuplicate(err error, name string) error {
	dup, ok := repository.AsDuplicateKey(err)
	if !ok {
		return err
	}
	field := dup.Field
	if field == FieldProductName || field == "" {
		field = "productName"
	}
	value := dup.Value
	if value == "" {
		value = name
	}
	return auth.NewDuplicateFieldError(field, value, err)
}
