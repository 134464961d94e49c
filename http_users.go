package biblio

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// UserUpdateRequest is the partial profile update payload; nil fields are
// left untouched.
type UserUpdateRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	IsAdmin   *bool   `json:"isAdmin"`
}

// Validate implements validation.Validatable.
func (r UserUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password, validation.Length(6, 0)),
	)
}

// UsersController exposes user administration. Creation goes through the
// same flow as register so admin-created accounts come back with tokens.
type UsersController struct {
	users  Users
	auther *Auther
	hasher *Hasher
	logger Logger
}

// NewUsersController builds the controller.
func NewUsersController(users Users, auther *Auther, hasher *Hasher, logger Logger) *UsersController {
	if logger == nil {
		logger = defLogger{}
	}
	return &UsersController{users: users, auther: auther, hasher: hasher, logger: logger}
}

// Create handles POST /users. Admin only; unlike register the caller may
// set isAdmin freely.
func (uc *UsersController) Create(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid user payload")
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

	result, err := uc.auther.Register(c.UserContext(), user, req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"role":  roleTag(result.User.IsAdmin),
		"user":  result.User,
		"token": result.AccessToken,
	})
}

// List handles GET /users.
func (uc *UsersController) List(c *fiber.Ctx) error {
	list, err := uc.users.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": list})
}

// Get handles GET /users/:id.
func (uc *UsersController) Get(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	user, err := uc.users.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// Update handles PATCH /users/:id. Plaintext passwords are re-hashed here
// so the repository only ever sees the hash; the isAdmin flag is honored
// only when the caller is an admin.
func (uc *UsersController) Update(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	var req UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid user payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	patch := UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}

	if req.Password != nil {
		hash, err := uc.hasher.Hash(*req.Password)
		if err != nil {
			return err
		}
		patch.PasswordHash = &hash
	}

	claims := ClaimsFromRequest(c)
	if req.IsAdmin != nil && claims != nil && claims.IsAdmin {
		patch.IsAdmin = req.IsAdmin
	}

	user, err := uc.users.Update(c.UserContext(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// Delete handles DELETE /users/:id. Removing the row also removes the
// stored refresh token, closing any live session.
func (uc *UsersController) Delete(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	if err := uc.users.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": fmt.Sprintf("User number %d", id)})
}
