package biblio

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// UserUpdate is a partial profile update. Nil fields are left untouched;
// Password arrives as plaintext and is re-hashed by the caller before the
// repository sees it.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PasswordHash *string
	IsAdmin      *bool
}

// Users persists identities and their single active refresh token.
type Users interface {
	Register(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, id int64, patch UserUpdate) (*User, error)
	Delete(ctx context.Context, id int64) error

	SaveRefreshToken(ctx context.Context, id int64, token string) error
	GetByRefreshToken(ctx context.Context, token string) (*User, error)
	ClearRefreshToken(ctx context.Context, id int64) error
}

type users struct {
	db bun.IDB
}

var _ Users = (*users)(nil)

// NewUsersRepository creates the bun-backed Users repository.
func NewUsersRepository(db bun.IDB) Users {
	return &users{db: db}
}

func (r *users) Register(ctx context.Context, user *User) (*User, error) {
	exists, err := r.db.NewSelect().Model((*User)(nil)).
		Where("?TableAlias.email = ?", user.Email).
		Exists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for duplicate email")
	}
	if exists {
		return nil, DuplicateEmailError(user.Email)
	}

	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert user")
	}

	return user, nil
}

func (r *users) GetByID(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().Model(user).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

func (r *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().Model(user).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

func (r *users) FindAll(ctx context.Context) ([]*User, error) {
	var list []*User
	err := r.db.NewSelect().Model(&list).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}
	return list, nil
}

func (r *users) Update(ctx context.Context, id int64, patch UserUpdate) (*User, error) {
	q := r.db.NewUpdate().Model((*User)(nil)).
		Where("id = ?", id)

	dirty := false
	if patch.FirstName != nil {
		q.Set("first_name = ?", *patch.FirstName)
		dirty = true
	}
	if patch.LastName != nil {
		q.Set("last_name = ?", *patch.LastName)
		dirty = true
	}
	if patch.Email != nil {
		q.Set("email = ?", *patch.Email)
		dirty = true
	}
	if patch.PasswordHash != nil {
		q.Set("password = ?", *patch.PasswordHash)
		dirty = true
	}
	if patch.IsAdmin != nil {
		q.Set("is_admin = ?", *patch.IsAdmin)
		dirty = true
	}

	if dirty {
		res, err := q.Exec(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update user")
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, NotFoundError("user")
		}
	}

	return r.GetByID(ctx, id)
}

func (r *users) Delete(ctx context.Context, id int64) error {
	// The refresh token lives on the same row, so removing the row also
	// invalidates any outstanding session.
	res, err := r.db.NewDelete().Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return NotFoundError("user")
	}
	return nil
}

func (r *users) SaveRefreshToken(ctx context.Context, id int64, token string) error {
	res, err := r.db.NewUpdate().Model((*User)(nil)).
		Set("token = ?", token).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to save refresh token")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return NotFoundError("user")
	}
	return nil
}

func (r *users) GetByRefreshToken(ctx context.Context, token string) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().Model(user).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

func (r *users) ClearRefreshToken(ctx context.Context, id int64) error {
	res, err := r.db.NewUpdate().Model((*User)(nil)).
		Set("token = NULL").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear refresh token")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return NotFoundError("user")
	}
	return nil
}

func wrapUserErr(err error) error {
	return wrapLookupErr(err, "user")
}
