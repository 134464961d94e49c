package biblio

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// RepositoryManager bundles the per-entity repositories over one bun handle
// and lets callers run a closure inside a transaction with repositories
// bound to it.
type RepositoryManager interface {
	Users() Users
	Collections() Collections
	Books() Books
	Posts() Posts
	Comments() Comments
	Replies() Replies
	Likes() Likes
	Forums() Forums
	Subjects() Subjects
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error
}

type mngr struct {
	db bun.IDB

	users       Users
	collections Collections
	books       Books
	posts       Posts
	comments    Comments
	replies     Replies
	likes       Likes
	forums      Forums
	subjects    Subjects
}

var _ RepositoryManager = (*mngr)(nil)

// NewRepositoryManager builds all repositories on top of db.
func NewRepositoryManager(db bun.IDB) RepositoryManager {
	return &mngr{
		db:          db,
		users:       NewUsersRepository(db),
		collections: NewCollectionsRepository(db),
		books:       NewBooksRepository(db),
		posts:       NewPostsRepository(db),
		comments:    NewCommentsRepository(db),
		replies:     NewRepliesRepository(db),
		likes:       NewLikesRepository(db),
		forums:      NewForumsRepository(db),
		subjects:    NewSubjectsRepository(db),
	}
}

func (m *mngr) Users() Users             { return m.users }
func (m *mngr) Collections() Collections { return m.collections }
func (m *mngr) Books() Books             { return m.books }
func (m *mngr) Posts() Posts             { return m.posts }
func (m *mngr) Comments() Comments       { return m.comments }
func (m *mngr) Replies() Replies         { return m.replies }
func (m *mngr) Likes() Likes             { return m.likes }
func (m *mngr) Forums() Forums           { return m.forums }
func (m *mngr) Subjects() Subjects       { return m.subjects }

func (m *mngr) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
	return m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// CreateSchema creates all tables if they do not exist. Meant for tests and
// local development; production schemas are managed with migrations.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Collection)(nil),
		(*Book)(nil),
		(*Post)(nil),
		(*Comment)(nil),
		(*Reply)(nil),
		(*Like)(nil),
		(*Forum)(nil),
		(*Subject)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create table")
		}
	}
	return nil
}
