package biblio

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Collections persists book collections.
type Collections interface {
	Create(ctx context.Context, collection *Collection) (*Collection, error)
	GetByID(ctx context.Context, id int64) (*Collection, error)
	FindPublic(ctx context.Context) ([]*Collection, error)
	FindForUser(ctx context.Context, ownerID int64) ([]*Collection, error)
	Update(ctx context.Context, id int64, title *string, isPrivate *bool) (*Collection, error)
	Delete(ctx context.Context, id int64) error
}

// Books persists titles inside collections.
type Books interface {
	Add(ctx context.Context, book *Book) (*Book, error)
	GetByID(ctx context.Context, id int64) (*Book, error)
	FindByCollection(ctx context.Context, collectionID int64) ([]*Book, error)
	Update(ctx context.Context, id int64, patch BookUpdate) (*Book, error)
	Delete(ctx context.Context, id int64) error
}

// BookUpdate is a partial book update; nil fields are untouched.
type BookUpdate struct {
	Author      *string
	Title       *string
	Description *string
	Year        *int
	Status      *string
}

type collections struct {
	db bun.IDB
}

var _ Collections = (*collections)(nil)

// NewCollectionsRepository creates the bun-backed Collections repository.
func NewCollectionsRepository(db bun.IDB) Collections {
	return &collections{db: db}
}

func (r *collections) Create(ctx context.Context, collection *Collection) (*Collection, error) {
	if err := ensureRowExists(ctx, r.db, (*User)(nil), collection.Owner, "user"); err != nil {
		return nil, err
	}

	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = time.Now()
	}

	if _, err := r.db.NewInsert().Model(collection).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert collection")
	}

	collection.Date = FormatDate(collection.CreatedAt)
	return collection, nil
}

func (r *collections) GetByID(ctx context.Context, id int64) (*Collection, error) {
	collection := &Collection{}
	err := r.db.NewSelect().Model(collection).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookupErr(err, "collection")
	}
	collection.Date = FormatDate(collection.CreatedAt)
	return collection, nil
}

func (r *collections) FindPublic(ctx context.Context) ([]*Collection, error) {
	var list []*Collection
	err := r.db.NewSelect().Model(&list).
		Where("?TableAlias.is_private = ?", false).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list public collections")
	}
	for _, c := range list {
		c.Date = FormatDate(c.CreatedAt)
	}
	return list, nil
}

func (r *collections) FindForUser(ctx context.Context, ownerID int64) ([]*Collection, error) {
	var list []*Collection
	err := r.db.NewSelect().Model(&list).
		Where("?TableAlias.owner = ?", ownerID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list user collections")
	}
	for _, c := range list {
		c.Date = FormatDate(c.CreatedAt)
	}
	return list, nil
}

func (r *collections) Update(ctx context.Context, id int64, title *string, isPrivate *bool) (*Collection, error) {
	q := r.db.NewUpdate().Model((*Collection)(nil)).
		Where("id = ?", id)

	dirty := false
	if title != nil {
		q.Set("title = ?", *title)
		dirty = true
	}
	if isPrivate != nil {
		q.Set("is_private = ?", *isPrivate)
		dirty = true
	}

	if dirty {
		res, err := q.Exec(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update collection")
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, NotFoundError("collection")
		}
	}

	return r.GetByID(ctx, id)
}

func (r *collections) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, (*Collection)(nil), id, "collection")
}

type books struct {
	db bun.IDB
}

var _ Books = (*books)(nil)

// NewBooksRepository creates the bun-backed Books repository.
func NewBooksRepository(db bun.IDB) Books {
	return &books{db: db}
}

func (r *books) Add(ctx context.Context, book *Book) (*Book, error) {
	if err := ensureRowExists(ctx, r.db, (*User)(nil), book.UserID, "user"); err != nil {
		return nil, err
	}

	exists, err := r.db.NewSelect().Model((*Book)(nil)).
		Where("?TableAlias.key = ?", book.Key).
		Where("?TableAlias.collection_id = ?", book.CollectionID).
		Exists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for duplicate book")
	}
	if exists {
		return nil, DuplicateError("Book already exists in user collection!")
	}

	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}

	if _, err := r.db.NewInsert().Model(book).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert book")
	}

	book.Date = FormatDate(book.CreatedAt)
	return book, nil
}

func (r *books) GetByID(ctx context.Context, id int64) (*Book, error) {
	book := &Book{}
	err := r.db.NewSelect().Model(book).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookupErr(err, "book")
	}
	book.Date = FormatDate(book.CreatedAt)
	return book, nil
}

func (r *books) FindByCollection(ctx context.Context, collectionID int64) ([]*Book, error) {
	var list []*Book
	err := r.db.NewSelect().Model(&list).
		Where("?TableAlias.collection_id = ?", collectionID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list books")
	}
	for _, b := range list {
		b.Date = FormatDate(b.CreatedAt)
	}
	return list, nil
}

func (r *books) Update(ctx context.Context, id int64, patch BookUpdate) (*Book, error) {
	q := r.db.NewUpdate().Model((*Book)(nil)).
		Where("id = ?", id)

	dirty := false
	if patch.Author != nil {
		q.Set("author = ?", *patch.Author)
		dirty = true
	}
	if patch.Title != nil {
		q.Set("title = ?", *patch.Title)
		dirty = true
	}
	if patch.Description != nil {
		q.Set("description = ?", *patch.Description)
		dirty = true
	}
	if patch.Year != nil {
		q.Set("year = ?", *patch.Year)
		dirty = true
	}
	if patch.Status != nil {
		q.Set("status = ?", *patch.Status)
		dirty = true
	}

	if dirty {
		res, err := q.Exec(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update book")
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, NotFoundError("book")
		}
	}

	return r.GetByID(ctx, id)
}

func (r *books) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, (*Book)(nil), id, "book")
}

// ensureRowExists guards creations that reference another row; a missing
// reference is reported as NotFound, matching the lookup semantics.
func ensureRowExists(ctx context.Context, db bun.IDB, model any, id int64, entity string) error {
	exists, err := db.NewSelect().Model(model).
		Where("?TableAlias.id = ?", id).
		Exists(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to check "+entity+" reference")
	}
	if !exists {
		return NotFoundError(entity)
	}
	return nil
}

func deleteByID(ctx context.Context, db bun.IDB, model any, id int64, entity string) error {
	res, err := db.NewDelete().Model(model).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete "+entity)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return NotFoundError(entity)
	}
	return nil
}

func wrapLookupErr(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return NotFoundError(entity)
	}
	return errors.Wrap(err, errors.CategoryInternal, entity+" lookup failed")
}
