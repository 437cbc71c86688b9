package shop

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	auth "github.com/goliatone/go-shop-auth"
	"github.com/goliatone/go-shop-auth/repository"
)

// HealthMessage is the body served on the root route
const HealthMessage = "Running at proj E-com"

// DataResponse is the envelope returned by list and product routes
type DataResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OrderResponse is the envelope returned by order mutations
type OrderResponse struct {
	Message  string `json:"message"`
	Response *Order `json:"response,omitempty"`
}

// idPayload carries the order id in request bodies
type idPayload struct {
	ID string `json:"id"`
}

// ProductController exposes the catalog over HTTP
type ProductController struct {
	Catalog *Catalog
	Logger  auth.Logger
	// Mutations guards create, update and delete. Nil leaves them open.
	Mutations fiber.Handler
}

// RegisterProductRoutes mounts the catalog on router
func RegisterProductRoutes(router fiber.Router, controller *ProductController) {
	router.Get("/", controller.List).Name("product.list")
	router.Get("/:id", controller.Get).Name("product.get")
	router.Post("/", controller.guarded(controller.Create)...).Name("product.create")
	router.Patch("/:id", controller.guarded(controller.Update)...).Name("product.update")
	router.Delete("/:id", controller.guarded(controller.Delete)...).Name("product.delete")
}

func (p *ProductController) guarded(h fiber.Handler) []fiber.Handler {
	if p.Mutations == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{p.Mutations, h}
}

func (p *ProductController) List(c *fiber.Ctx) error {
	products, err := p.Catalog.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(DataResponse{Message: "Data fetched successfully", Data: products})
}

func (p *ProductController) Get(c *fiber.Ctx) error {
	product, err := p.Catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return notFound(err, "Product not found")
	}
	return c.JSON(DataResponse{Message: "Product fetched successfully", Data: product})
}

func (p *ProductController) Create(c *fiber.Ctx) error {
	payload := new(ProductInput)
	if err := c.BodyParser(payload); err != nil {
		return auth.ErrUnableToParseData
	}

	product, err := p.Catalog.Create(c.UserContext(), *payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(DataResponse{Message: "Product data saved successfully", Data: product})
}

func (p *ProductController) Update(c *fiber.Ctx) error {
	changes := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&changes); err != nil {
			return auth.ErrUnableToParseData
		}
	}

	product, err := p.Catalog.Update(c.UserContext(), c.Params("id"), changes)
	if err != nil {
		return notFound(err, "Product not found")
	}
	return c.JSON(DataResponse{Message: "Product updated successfully", Data: product})
}

func (p *ProductController) Delete(c *fiber.Ctx) error {
	product, err := p.Catalog.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return notFound(err, "Product not found")
	}
	return c.JSON(DataResponse{Message: "Product deleted successfully", Data: product})
}

// OrderController exposes orders over HTTP
type OrderController struct {
	Orders *Orders
	Logger auth.Logger
	// Protected guards order placement and resolves the current user
	Protected fiber.Handler
}

// RegisterOrderRoutes mounts the order routes on router
func RegisterOrderRoutes(router fiber.Router, controller *OrderController) {
	if controller.Protected == nil {
		panic("Missing protected route middleware in order controller...")
	}

	router.Get("/", controller.List).Name("order.list")
	router.Get("/mine", controller.Protected, controller.Mine).Name("order.mine")
	router.Post("/", controller.Protected, controller.Place).Name("order.create")
	router.Patch("/", controller.Update).Name("order.update")
	router.Delete("/", controller.Delete).Name("order.delete")
}

func (o *OrderController) List(c *fiber.Ctx) error {
	orders, err := o.Orders.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(DataResponse{Message: "Orders fetched successfully", Data: orders})
}

func (o *OrderController) Mine(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnableToDecodeSession
	}

	orders, err := o.Orders.ListByUser(c.UserContext(), user.UserName)
	if err != nil {
		return err
	}
	return c.JSON(DataResponse{Message: "Orders fetched successfully", Data: orders})
}

func (o *OrderController) Place(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.ErrUnableToDecodeSession
	}

	payload := new(OrderInput)
	if err := c.BodyParser(payload); err != nil {
		return auth.ErrUnableToParseData
	}

	order, err := o.Orders.Place(c.UserContext(), user, *payload)
	if err != nil {
		return err
	}
	return c.JSON(OrderResponse{Message: "Order saved successfully", Response: order})
}

func (o *OrderController) Update(c *fiber.Ctx) error {
	changes := map[string]any{}
	if err := c.BodyParser(&changes); err != nil {
		return auth.ErrUnableToParseData
	}

	id, _ := changes["id"].(string)
	delete(changes, "id")

	order, err := o.Orders.Update(c.UserContext(), id, changes)
	if err != nil {
		return notFound(err, "Order not found")
	}
	return c.JSON(OrderResponse{Message: "Order updated successfully", Response: order})
}

func (o *OrderController) Delete(c *fiber.Ctx) error {
	payload := new(idPayload)
	if err := c.BodyParser(payload); err != nil {
		return auth.ErrUnableToParseData
	}

	if err := o.Orders.Delete(c.UserContext(), payload.ID); err != nil {
		return notFound(err, "Order not found")
	}
	return c.JSON(OrderResponse{Message: "Order deleted successfully"})
}

// Health serves the root route
func Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString(HealthMessage)
}

// notFound replaces generic not found errors with a resource specific message
func notFound(err error, message string) error {
	if !goerrors.IsNotFound(err) {
		return err
	}
	rich := goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(repository.TextCodeNotFound)
	rich.Source = err
	return rich
}
