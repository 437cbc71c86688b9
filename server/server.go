package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-logger/glog"

	auth "github.com/goliatone/go-shop-auth"
	"github.com/goliatone/go-shop-auth/config"
	"github.com/goliatone/go-shop-auth/shop"
	"github.com/goliatone/go-shop-auth/storage"
)

// App holds the HTTP server and the services behind it
type App struct {
	Fiber    *fiber.App
	Accounts *auth.Accounts
	Tokens   auth.TokenService
}

type options struct {
	logger      auth.Logger
	provider    glog.LoggerProvider
	activity    auth.ActivitySink
	accessLog   bool
	tokenOpts   []auth.TokenServiceOption
	accountOpts []auth.AccountsOption
}

// Option configures the server
type Option func(*options)

// WithLogger sets the application logger
func WithLogger(l auth.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLoggerProvider hands each component a named logger from p.
// WithLogger takes precedence when both are set.
func WithLoggerProvider(p glog.LoggerProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

func (o *options) loggerFor(name string) auth.Logger {
	if o.logger != nil {
		return o.logger
	}
	return o.provider.GetLogger(name)
}

// WithActivitySink sets where account events are recorded
func WithActivitySink(s auth.ActivitySink) Option {
	return func(o *options) {
		o.activity = s
	}
}

// WithAccessLog toggles the fiber request logger
func WithAccessLog(enabled bool) Option {
	return func(o *options) {
		o.accessLog = enabled
	}
}

// WithTokenOptions forwards options to the token service
func WithTokenOptions(opts ...auth.TokenServiceOption) Option {
	return func(o *options) {
		o.tokenOpts = append(o.tokenOpts, opts...)
	}
}

// WithAccountsOptions forwards options to the account service
func WithAccountsOptions(opts ...auth.AccountsOption) Option {
	return func(o *options) {
		o.accountOpts = append(o.accountOpts, opts...)
	}
}

// New wires the services over store and mounts every route
func New(cfg config.Config, store *storage.Manager, opts ...Option) *App {
	o := &options{accessLog: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.provider == nil {
		o.provider = auth.NewLogger()
	}
	httpLogger := o.loggerFor("http")

	store.MustValidate()

	tokens := auth.NewTokenServiceFromConfig(cfg, o.loggerFor("auth.tokens"), o.tokenOpts...)
	accounts := auth.NewAccounts(store.Users(), tokens, append([]auth.AccountsOption{
		auth.WithAccountsLogger(o.loggerFor("auth.accounts")),
		auth.WithActivitySink(o.activity),
		auth.WithPasswordHasher(auth.NewHasher(cfg.GetPasswordCost())),
	}, o.accountOpts...)...)

	app := fiber.New(fiber.Config{
		AppName:      "go-shop-auth",
		ErrorHandler: auth.NewErrorHandler(httpLogger),
	})

	app.Use(recover.New())
	if o.accessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CORSAllowOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	session := auth.SessionGuard(accounts, cfg.GetContextKey())
	protected := auth.ProtectedRoute(cfg, tokens, httpLogger, auth.WithValidationListeners(session))

	app.Get("/", shop.Health).Name("health")

	auth.RegisterUserRoutes(app.Group("/user"),
		auth.WithAccounts(accounts),
		auth.WithProtectedRoute(protected),
		auth.WithUserControllerLogger(httpLogger),
	)

	products := &shop.ProductController{
		Catalog: shop.NewCatalog(store.Products(), shop.WithCatalogLogger(o.loggerFor("shop.catalog"))),
		Logger:  httpLogger,
	}
	if cfg.CatalogAdminOnly {
		products.Mutations = auth.ProtectedRoute(cfg, tokens, httpLogger,
			auth.WithValidationListeners(session),
			auth.WithStoredRole(auth.RoleAdmin),
		)
	}
	shop.RegisterProductRoutes(app.Group("/product"), products)

	shop.RegisterOrderRoutes(app.Group("/order"), &shop.OrderController{
		Orders:    shop.NewOrders(store.Orders(), shop.WithOrdersLogger(o.loggerFor("shop.orders"))),
		Logger:    httpLogger,
		Protected: protected,
	})

	return &App{Fiber: app, Accounts: accounts, Tokens: tokens}
}

func normalizeOrigins(origins string) string {
	origins = strings.TrimSpace(origins)
	if origins == "" {
		return "*"
	}
	return origins
}
