package shop

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-shop-auth/repository"
)

const (
	// ProductsCollection is the table or collection holding products
	ProductsCollection = "products"
	// OrdersCollection is the table or collection holding orders
	OrdersCollection = "orders"
)

// DefaultOrderStatus is assigned to new orders
const DefaultOrderStatus = "Pending"

// Product is a catalog entry
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd" bson:"-" json:"-"`
	ID            string    `bun:"id,pk" bson:"_id" json:"id"`
	ProductName   string    `bun:"product_name,notnull,unique" bson:"product_name" json:"productName"`
	Description   string    `bun:"description" bson:"description" json:"description"`
	Category      string    `bun:"category" bson:"category" json:"category"`
	Price         float64   `bun:"price" bson:"price" json:"price"`
	Stock         int       `bun:"stock" bson:"stock" json:"stock"`
	ImageURL      string    `bun:"image_url" bson:"image_url" json:"imageUrl"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" bson:"updated_at" json:"updatedAt"`
}

// OrderItem is a single order line
type OrderItem struct {
	ItemName string `bson:"item_name" json:"itemName"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// Order is a delivery order placed by a user. The delivery details are
// copied from the user's profile when the order is placed.
type Order struct {
	bun.BaseModel       `bun:"table:orders,alias:ord" bson:"-" json:"-"`
	ID                  string      `bun:"id,pk" bson:"_id" json:"id"`
	UserName            string      `bun:"user_name" bson:"user_name" json:"userName"`
	CName               string      `bun:"c_name" bson:"c_name" json:"cName"`
	ContactNumber       string      `bun:"contact_number" bson:"contact_number" json:"contactNumber"`
	City                string      `bun:"city" bson:"city" json:"city"`
	Street              string      `bun:"street" bson:"street" json:"street"`
	DeliveryDescription string      `bun:"delivery_description" bson:"delivery_description" json:"deliveryDescription"`
	TotalAmount         float64     `bun:"total_amount" bson:"total_amount" json:"totalAmount"`
	Items               []OrderItem `bun:"items,type:text" bson:"items" json:"items"`
	Status              string      `bun:"status" bson:"status" json:"status"`
	CreatedAt           time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" bson:"updated_at" json:"updatedAt"`
}

// Storage field names
const (
	FieldProductName         = "product_name"
	FieldDescription         = "description"
	FieldCategory            = "category"
	FieldPrice               = "price"
	FieldStock               = "stock"
	FieldImageURL            = "image_url"
	FieldUserName            = "user_name"
	FieldCName               = "c_name"
	FieldContactNumber       = "contact_number"
	FieldCity                = "city"
	FieldStreet              = "street"
	FieldDeliveryDescription = "delivery_description"
	FieldTotalAmount         = "total_amount"
	FieldItems               = "items"
	FieldStatus              = "status"
	FieldCreatedAt           = "created_at"
	FieldUpdatedAt           = "updated_at"
)

// ProductModelHandlers describes Product to the generic stores
func ProductModelHandlers() repository.ModelHandlers[*Product] {
	return repository.ModelHandlers[*Product]{
		Collection: ProductsCollection,
		NewRecord:  func() *Product { return &Product{} },
		GetID: func(p *Product) string {
			if p == nil {
				return ""
			}
			return p.ID
		},
		SetID: func(p *Product, id string) {
			if p != nil {
				p.ID = id
			}
		},
	}
}

// OrderModelHandlers describes Order to the generic stores
func OrderModelHandlers() repository.ModelHandlers[*Order] {
	return repository.ModelHandlers[*Order]{
		Collection: OrdersCollection,
		NewRecord:  func() *Order { return &Order{} },
		GetID: func(o *Order) string {
			if o == nil {
				return ""
			}
			return o.ID
		},
		SetID: func(o *Order, id string) {
			if o != nil {
				o.ID = id
			}
		},
	}
}
