package biblio

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// Role tags returned by register and login so legacy clients can branch on
// the account type without inspecting the token.
const (
	RoleTagAdmin  = 1990
	RoleTagMember = 2024
)

// RegisterRequest is the register payload.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Validate implements validation.Validatable.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 0)),
	)
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements validation.Validatable.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// AuthController exposes the credential flows over HTTP. The refresh token
// travels only in the httpOnly "jwt" cookie; the access token only in the
// response body.
type AuthController struct {
	auther *Auther
	logger Logger
}

// NewAuthController builds the controller around the credential flows.
func NewAuthController(auther *Auther, logger Logger) *AuthController {
	if logger == nil {
		logger = defLogger{}
	}
	return &AuthController{auther: auther, logger: logger}
}

// Register handles POST /auth/register.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid register payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user := &User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		IsAdmin:   req.IsAdmin,
	}

	result, err := ac.auther.Register(c.UserContext(), user, req.Password)
	if err != nil {
		return err
	}

	setRefreshCookie(c, result.RefreshToken)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"role":  roleTag(result.User.IsAdmin),
		"user":  result.User,
		"token": result.AccessToken,
	})
}

// Login handles POST /auth/login.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid login payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	result, err := ac.auther.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	setRefreshCookie(c, result.RefreshToken)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"role":  roleTag(result.User.IsAdmin),
		"user":  result.User,
		"token": result.AccessToken,
	})
}

// Refresh handles GET /auth/refresh. The refresh token is read from the
// cookie, never from the body or headers.
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	raw := c.Cookies(RefreshCookieName)
	if raw == "" {
		return ErrAuthRequired
	}

	result, err := ac.auther.Refresh(c.UserContext(), raw)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"user":  result.User,
		"token": result.AccessToken,
	})
}

// Logout handles GET /auth/logout. Without a cookie there is no session to
// close, so the response is an empty 204.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	raw := c.Cookies(RefreshCookieName)
	if raw == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}

	user, err := ac.auther.Logout(c.UserContext(), raw)
	if err != nil {
		return err
	}

	clearRefreshCookie(c)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"Message": fmt.Sprintf("User number %d logged out successfully!", user.ID),
	})
}

func roleTag(isAdmin bool) int {
	if isAdmin {
		return RoleTagAdmin
	}
	return RoleTagMember
}

func setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Expires:  time.Now().Add(DefaultRefreshTokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
