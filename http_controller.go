package auth

import (
	"github.com/gofiber/fiber/v2"
)

// UserControllerRoutes holds the paths served by UserController, relative
// to the router it is mounted on.
type UserControllerRoutes struct {
	Signup         string
	Login          string
	Profile        string
	Update         string
	Password       string
	ChangePassword string
	Delete         string
	Me             string
}

// UserController exposes the account lifecycle over HTTP
type UserController struct {
	Debug    bool
	Logger   Logger
	Accounts *Accounts
	Routes   *UserControllerRoutes
	// Protected guards every route that needs a session
	Protected fiber.Handler
}

// UserControllerOption configures a UserController
type UserControllerOption func(*UserController) *UserController

// WithUserControllerLogger sets the controller logger
func WithUserControllerLogger(l Logger) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Logger = normalizeLogger(l)
		return c
	}
}

// WithAccounts sets the account service
func WithAccounts(a *Accounts) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Accounts = a
		return c
	}
}

// WithProtectedRoute sets the session middleware
func WithProtectedRoute(h fiber.Handler) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Protected = h
		return c
	}
}

// NewUserController creates the controller. It panics when the account
// service or the session middleware are missing.
func NewUserController(opts ...UserControllerOption) *UserController {
	c := &UserController{
		Logger: DefaultLogger("auth.http"),
		Routes: &UserControllerRoutes{
			Signup:         "/signup",
			Login:          "/login",
			Profile:        "/user",
			Update:         "/update",
			Password:       "/password",
			ChangePassword: "/change-password",
			Delete:         "/delete",
			Me:             "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing Accounts in user controller...")
	}

	if c.Protected == nil {
		panic("Missing protected route middleware in user controller...")
	}

	return c
}

// RegisterUserRoutes mounts the account routes on router
func RegisterUserRoutes(router fiber.Router, opts ...UserControllerOption) *UserController {
	controller := NewUserController(opts...)
	routes := controller.Routes
	protected := controller.Protected

	router.Post(routes.Signup, controller.Signup).Name("user.signup")
	router.Post(routes.Login, controller.Login).Name("user.login")

	router.Patch(routes.Profile, protected, controller.UpdateProfile).Name("user.profile.patch")
	router.Put(routes.Update, protected, controller.UpdateProfile).Name("user.update.put")
	router.Patch(routes.Update, protected, controller.UpdateProfile).Name("user.update.patch")

	router.Patch(routes.Password, protected, controller.ChangePassword).Name("user.password.patch")
	router.Put(routes.ChangePassword, protected, controller.ChangePassword).Name("user.change-password.put")
	router.Patch(routes.ChangePassword, protected, controller.ChangePassword).Name("user.change-password.patch")

	router.Delete(routes.Delete, protected, controller.Delete).Name("user.delete")
	router.Get(routes.Me, protected, controller.Me).Name("user.me")

	return controller
}

// UserResponse is the envelope returned by account routes
type UserResponse struct {
	Message  string `json:"message"`
	Response *User  `json:"response,omitempty"`
}

func (a *UserController) Signup(c *fiber.Ctx) error {
	payload := new(SignupInput)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("signup parse payload", "error", err)
		return ErrUnableToParseData
	}

	user, err := a.Accounts.Signup(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(UserResponse{
		Message:  "User created successfully",
		Response: user,
	})
}

func (a *UserController) Login(c *fiber.Ctx) error {
	payload := new(LoginInput)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("login parse payload", "error", err)
		return ErrUnableToParseData
	}

	user, err := a.Accounts.Login(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.JSON(UserResponse{
		Message:  "Login successful",
		Response: user,
	})
}

func (a *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	body := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			a.Logger.Debug("update profile parse payload", "error", err)
			return ErrUnableToParseData
		}
	}

	changes := make(map[string]string, len(body))
	for k, v := range body {
		if s, ok := v.(string); ok {
			changes[k] = s
		}
	}

	user, err := a.Accounts.UpdateProfile(c.UserContext(), userID, changes)
	if err != nil {
		return err
	}

	return c.JSON(UserResponse{
		Message:  "User updated successfully",
		Response: user,
	})
}

func (a *UserController) ChangePassword(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	payload := new(PasswordChangeInput)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("change password parse payload", "error", err)
		return ErrUnableToParseData
	}

	user, err := a.Accounts.ChangePassword(c.UserContext(), userID, *payload)
	if err != nil {
		return err
	}

	return c.JSON(UserResponse{
		Message:  "Password changed successfully",
		Response: user,
	})
}

func (a *UserController) Delete(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	if err := a.Accounts.DeleteAccount(c.UserContext(), userID); err != nil {
		return err
	}

	return c.JSON(UserResponse{Message: "Account deleted successfully"})
}

func (a *UserController) Me(c *fiber.Ctx) error {
	if user, ok := CurrentUser(c); ok {
		return c.JSON(UserResponse{Message: "User fetched successfully", Response: user})
	}

	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	user, err := a.Accounts.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(UserResponse{Message: "User fetched successfully", Response: user})
}

// sessionUserID returns the account id of the authenticated request
func sessionUserID(c *fiber.Ctx) (string, error) {
	if user, ok := CurrentUser(c); ok {
		return user.ID, nil
	}
	if claims, ok := GetClaims(c.UserContext()); ok && claims.UserID() != "" {
		return claims.UserID(), nil
	}
	return "", ErrUnableToDecodeSession
}
