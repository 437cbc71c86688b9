package auth

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-shop-auth/middleware/jwtware"
	"github.com/goliatone/go-shop-auth/repository"
)

// ErrorResponse is the JSON body written for failed requests
type ErrorResponse struct {
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Value   string            `json:"value,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// errorMappers turn errors raised outside this package into rich errors
var errorMappers = []goerrors.ErrorMapper{
	mapMiddlewareErrors,
	mapFiberErrors,
}

func mapMiddlewareErrors(err error) *goerrors.Error {
	switch {
	case goerrors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		return ErrMissingToken
	case goerrors.Is(err, jwtware.ErrInsufficientRole):
		return ErrForbidden
	}
	return nil
}

func mapFiberErrors(err error) *goerrors.Error {
	var ferr *fiber.Error
	if !goerrors.As(err, &ferr) {
		return nil
	}
	return goerrors.New(ferr.Message, goerrors.HTTPStatusToCategory(ferr.Code)).
		WithCode(ferr.Code).
		WithTextCode(goerrors.HTTPStatusToTextCode(ferr.Code))
}

// AsRichError returns err as a go-errors Error. Errors without one in their
// chain become internal errors.
func AsRichError(err error) *goerrors.Error {
	return goerrors.MapToError(err, errorMappers)
}

// ErrorStatus maps err to an HTTP status and the response body
func ErrorStatus(err error) (int, ErrorResponse) {
	return errorResponse(AsRichError(err))
}

func errorResponse(rich *goerrors.Error) (int, ErrorResponse) {
	status := rich.Code
	if status == 0 {
		status = categoryStatus(rich.Category)
	}
	if status >= fiber.StatusInternalServerError {
		return fiber.StatusInternalServerError, ErrorResponse{Message: "Internal server error"}
	}

	body := ErrorResponse{Message: rich.Message}
	if fields := rich.ValidationMap(); len(fields) > 0 {
		body.Errors = fields
	}

	if rich.Category == goerrors.CategoryConflict {
		if field := metaString(rich, repository.MetaField); field != "" {
			body.Message = "Duplicate value for field: " + field
			body.Field = field
			body.Value = metaString(rich, repository.MetaValue)
		}
	}

	return status, body
}

func categoryStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// NewErrorHandler returns the fiber error handler that renders every error
// as JSON. Server errors are logged, client errors are not.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)
	return func(c *fiber.Ctx, err error) error {
		rich := AsRichError(err)
		status, body := errorResponse(rich)
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"error", rich,
			)
		}
		return c.Status(status).JSON(body)
	}
}

// RouteOption configures a protected route
type RouteOption func(*jwtware.Config)

// WithRequiredRole restricts the route to sessions holding role
func WithRequiredRole(role UserRole) RouteOption {
	return func(c *jwtware.Config) {
		c.RequiredRole = string(role)
	}
}

// WithStoredRole restricts the route to accounts whose stored role is at
// least role. The account is the one SessionGuard resolved, so the guard
// must be one of the route's validation listeners.
func WithStoredRole(role UserRole) RouteOption {
	return func(c *jwtware.Config) {
		c.MinimumRole = string(role)
		c.RoleChecker = func(ctx *fiber.Ctx, _ jwtware.AuthClaims, required string) bool {
			user, ok := CurrentUser(ctx)
			return ok && user.Role.IsAtLeast(UserRole(required))
		}
	}
}

// WithValidationListeners adds listeners run after token verification
func WithValidationListeners(listeners ...ValidationListener) RouteOption {
	return func(c *jwtware.Config) {
		RegisterValidationListeners(c, listeners...)
	}
}

// ProtectedRoute returns a middleware that requires a valid bearer token.
// Failures are rendered through NewErrorHandler.
func ProtectedRoute(cfg Config, validator TokenValidator, logger Logger, opts ...RouteOption) fiber.Handler {
	mw := jwtware.Config{
		ErrorHandler:    NewErrorHandler(logger),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		AuthScheme:      cfg.GetAuthScheme(),
		TokenValidator:  NewJWTValidator(validator),
		ContextEnricher: ContextEnricherAdapter,
	}

	for _, opt := range opts {
		opt(&mw)
	}

	return jwtware.New(mw)
}
