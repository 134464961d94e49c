package biblio

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// CollectionRequest is the collection creation payload. The owner is taken
// from the session, never from the body.
type CollectionRequest struct {
	Title     string `json:"title"`
	IsPrivate bool   `json:"isPrivate"`
}

// Validate implements validation.Validatable.
func (r CollectionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
	)
}

// CollectionUpdateRequest is the partial collection update payload.
type CollectionUpdateRequest struct {
	Title     *string `json:"title"`
	IsPrivate *bool   `json:"isPrivate"`
}

// BookRequest is the payload for adding a book to a collection.
type BookRequest struct {
	CollectionID int64  `json:"collectionId"`
	Key          string `json:"key"`
	Author       string `json:"author"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Year         int    `json:"year"`
	Status       string `json:"status"`
}

// Validate implements validation.Validatable.
func (r BookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CollectionID, validation.Required),
		validation.Field(&r.Key, validation.Required),
		validation.Field(&r.Title, validation.Required),
	)
}

// BookUpdateRequest is the partial book update payload.
type BookUpdateRequest struct {
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Year        *int    `json:"year"`
	Status      *string `json:"status"`
}

// CollectionsController exposes collection CRUD. Private collections are
// readable only by their owner or an admin; mutations require ownership.
type CollectionsController struct {
	collections Collections
	logger      Logger
}

// NewCollectionsController builds the controller.
func NewCollectionsController(collections Collections, logger Logger) *CollectionsController {
	if logger == nil {
		logger = defLogger{}
	}
	return &CollectionsController{collections: collections, logger: logger}
}

// Create handles POST /collections.
func (cc *CollectionsController) Create(c *fiber.Ctx) error {
	claims := ClaimsFromRequest(c)
	if claims == nil {
		return ErrAuthRequired
	}

	var req CollectionRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid collection payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	collection := &Collection{
		Title:     req.Title,
		Owner:     claims.UserID,
		IsPrivate: req.IsPrivate,
	}

	created, err := cc.collections.Create(c.UserContext(), collection)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"collection": created})
}

// ListPublic handles GET /collections/public.
func (cc *CollectionsController) ListPublic(c *fiber.Ctx) error {
	list, err := cc.collections.FindPublic(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"collections": list})
}

// ListForUser handles GET /collections/user/:id.
func (cc *CollectionsController) ListForUser(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	list, err := cc.collections.FindForUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"collections": list})
}

// Get handles GET /collections/:id. Public collections are open to any
// authenticated user; private ones only to their owner or an admin.
func (cc *CollectionsController) Get(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	collection, err := cc.collections.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	if collection.IsPrivate {
		if err := CheckResourceOwner(collection, ClaimsFromRequest(c)); err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{"collection": collection})
}

// Update handles PATCH /collections/:id.
func (cc *CollectionsController) Update(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	collection, err := cc.collections.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(collection, ClaimsFromRequest(c)); err != nil {
		return err
	}

	var req CollectionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid collection payload")
	}

	updated, err := cc.collections.Update(c.UserContext(), id, req.Title, req.IsPrivate)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"collection": updated})
}

// Delete handles DELETE /collections/:id.
func (cc *CollectionsController) Delete(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	collection, err := cc.collections.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(collection, ClaimsFromRequest(c)); err != nil {
		return err
	}

	if err := cc.collections.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": fmt.Sprintf("Collection id: %d", id)})
}

// BooksController exposes book CRUD inside collections.
type BooksController struct {
	books       Books
	collections Collections
	logger      Logger
}

// NewBooksController builds the controller.
func NewBooksController(books Books, collections Collections, logger Logger) *BooksController {
	if logger == nil {
		logger = defLogger{}
	}
	return &BooksController{books: books, collections: collections, logger: logger}
}

// Create handles POST /books. The caller must own the target collection.
func (bc *BooksController) Create(c *fiber.Ctx) error {
	claims := ClaimsFromRequest(c)
	if claims == nil {
		return ErrAuthRequired
	}

	var req BookRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid book payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	collection, err := bc.collections.GetByID(c.UserContext(), req.CollectionID)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(collection, claims); err != nil {
		return err
	}

	book := &Book{
		CollectionID: req.CollectionID,
		UserID:       claims.UserID,
		Key:          req.Key,
		Author:       req.Author,
		Title:        req.Title,
		Description:  req.Description,
		Year:         req.Year,
		Status:       req.Status,
	}

	created, err := bc.books.Add(c.UserContext(), book)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"book": created})
}

// ListByCollection handles GET /books/collection/:id.
func (bc *BooksController) ListByCollection(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	collection, err := bc.collections.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if collection.IsPrivate {
		if err := CheckResourceOwner(collection, ClaimsFromRequest(c)); err != nil {
			return err
		}
	}

	list, err := bc.books.FindByCollection(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"books": list})
}

// Get handles GET /books/:id.
func (bc *BooksController) Get(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	book, err := bc.books.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"book": book})
}

// Update handles PATCH /books/:id.
func (bc *BooksController) Update(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	book, err := bc.books.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(book, ClaimsFromRequest(c)); err != nil {
		return err
	}

	var req BookUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid book payload")
	}

	updated, err := bc.books.Update(c.UserContext(), id, BookUpdate{
		Author:      req.Author,
		Title:       req.Title,
		Description: req.Description,
		Year:        req.Year,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"book": updated})
}

// Delete handles DELETE /books/:id.
func (bc *BooksController) Delete(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	book, err := bc.books.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(book, ClaimsFromRequest(c)); err != nil {
		return err
	}

	if err := bc.books.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": fmt.Sprintf("Book id: %d", id)})
}
