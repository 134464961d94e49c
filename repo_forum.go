package biblio

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Posts persists forum posts.
type Posts interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	FindPublic(ctx context.Context) ([]*Post, error)
	FindForUser(ctx context.Context, creatorID int64) ([]*Post, error)
	Update(ctx context.Context, id int64, patch PostUpdate) (*Post, error)
	Delete(ctx context.Context, id int64) error
}

// PostUpdate is a partial post update; nil fields are untouched.
type PostUpdate struct {
	Title     *string
	PostText  *string
	Subject   *int64
	Forum     *int64
	IsPrivate *bool
}

// Comments persists comments on posts.
type Comments interface {
	Create(ctx context.Context, comment *Comment) (*Comment, error)
	GetByID(ctx context.Context, id int64) (*Comment, error)
	FindAll(ctx context.Context) ([]*Comment, error)
	FindByPost(ctx context.Context, postID int64) ([]*Comment, error)
	FindForUser(ctx context.Context, creatorID int64) ([]*Comment, error)
	Update(ctx context.Context, id int64, text string) (*Comment, error)
	Delete(ctx context.Context, id int64) error
}

// Replies persists replies on comments.
type Replies interface {
	Create(ctx context.Context, reply *Reply) (*Reply, error)
	GetByID(ctx context.Context, id int64) (*Reply, error)
	FindAll(ctx context.Context) ([]*Reply, error)
	FindByComment(ctx context.Context, commentID int64) ([]*Reply, error)
	FindForUser(ctx context.Context, creatorID int64) ([]*Reply, error)
	Update(ctx context.Context, id int64, text string) (*Reply, error)
	Delete(ctx context.Context, id int64) error
}

// Likes persists post likes, at most one per user and post.
type Likes interface {
	Create(ctx context.Context, like *Like) (*Like, error)
	GetByID(ctx context.Context, id int64) (*Like, error)
	FindAll(ctx context.Context) ([]*Like, error)
	FindByPost(ctx context.Context, postID int64) ([]*Like, error)
	FindForUser(ctx context.Context, creatorID int64) ([]*Like, error)
	Update(ctx context.Context, id int64, postID *int64) (*Like, error)
	Delete(ctx context.Context, id int64) error
}

// Forums persists the admin-curated boards.
type Forums interface {
	Create(ctx context.Context, forum *Forum) (*Forum, error)
	GetByID(ctx context.Context, id int64) (*Forum, error)
	FindAll(ctx context.Context) ([]*Forum, error)
	Update(ctx context.Context, id int64, title, description *string) (*Forum, error)
	Delete(ctx context.Context, id int64) error
}

// Subjects persists the user-created post topics.
type Subjects interface {
	Create(ctx context.Context, subject *Subject) (*Subject, error)
	GetByID(ctx context.Context, id int64) (*Subject, error)
	FindAll(ctx context.Context) ([]*Subject, error)
	Update(ctx context.Context, id int64, name string) (*Subject, error)
	Delete(ctx context.Context, id int64) error
}

type posts struct {
	db bun.IDB
}

var _ Posts = (*posts)(nil)

// NewPostsRepository creates the bun-backed Posts repository.
func NewPostsRepository(db bun.IDB) Posts {
	return &posts{db: db}
}

func (r *posts) Create(ctx context.Context, post *Post) (*Post, error) {
	if err := ensureRowExists(ctx, r.db, (*User)(nil), post.Creator, "user"); err != nil {
		return nil, err
	}

	exists, err := r.db.NewSelect().Model((*Post)(nil)).
		Where("?TableAlias.creator = ?", post.Creator).
		Where("?TableAlias.title = ?", post.Title).
		Exists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for duplicate post")
	}
	if exists {
		return nil, DuplicateError("A post with this name already exists!")
	}

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}

	if _, err := r.db.NewInsert().Model(post).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert post")
	}

	post.Date = FormatDate(post.CreatedAt)
	return post, nil
}

func (r *posts) GetByID(ctx context.Context, id int64) (*Post, error) {
	post := &Post{}
	err := r.db.NewSelect().Model(post).
		Apply(joinPostNames).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookupErr(err, "post")
	}
	post.Date = FormatDate(post.CreatedAt)
	return post, nil
}

func (r *posts) FindPublic(ctx context.Context) ([]*Post, error) {
	var list []*Post
	err := r.db.NewSelect().Model(&list).
		Apply(joinPostNames).
		Where("?TableAlias.is_private = ?", false).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list public posts")
	}
	decoratePosts(list)
	return list, nil
}

func (r *posts) FindForUser(ctx context.Context, creatorID int64) ([]*Post, error) {
	var list []*Post
	err := r.db.NewSelect().Model(&list).
		Apply(joinPostNames).
		Where("?TableAlias.creator = ?", creatorID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list user posts")
	}
	decoratePosts(list)
	return list, nil
}

func (r *posts) Update(ctx context.Context, id int64, patch PostUpdate) (*Post, error) {
	q := r.db.NewUpdate().Model((*Post)(nil)).
		Where("id = ?", id)

	dirty := false
	if patch.Title != nil {
		q.Set("title = ?", *patch.Title)
		dirty = true
	}
	if patch.PostText != nil {
		q.Set("post_text = ?", *patch.PostText)
		dirty = true
	}
	if patch.Subject != nil {
		q.Set("subject = ?", *patch.Subject)
		dirty = true
	}
	if patch.Forum != nil {
		q.Set("forum = ?", *patch.Forum)
		dirty = true
	}
	if patch.IsPrivate != nil {
		q.Set("is_private = ?", *patch.IsPrivate)
		dirty = true
	}

	if dirty {
		res, err := q.Exec(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update post")
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, NotFoundError("post")
		}
	}

	return r.GetByID(ctx, id)
}

func (r *posts) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, (*Post)(nil), id, "post")
}

// joinPostNames projects the creator display name plus the subject and forum
// labels onto post rows. LEFT JOINs keep posts whose subject or forum was
// removed.
func joinPostNames(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		ColumnExpr("?TableAlias.*").
		ColumnExpr("usr.first_name || ' ' || usr.last_name AS full_name").
		ColumnExpr("sbj.name AS subject_name").
		ColumnExpr("frm.title AS forum_title").
		Join("JOIN users AS usr ON usr.id = ?TableAlias.creator").
		Join("LEFT JOIN subjects AS sbj ON sbj.id = ?TableAlias.subject").
		Join("LEFT JOIN forums AS frm ON frm.id = ?TableAlias.forum")
}

func decoratePosts(list []*Post) {
	for _, p := range list {
		p.Date = FormatDate(p.CreatedAt)
	}
}

type comments struct {
	db bun.IDB
}

var _ Comments = (*comments)(nil)

// NewCommentsRepository creates the bun-backed Comments repository.
func NewCommentsRepository(db bun.IDB) Comments {
	return &comments{db: db}
}

func (r *comments) Create(ctx context.Context, comment *Comment) (*Comment, error) {
	if err := ensureRowExists(ctx, r.db, (*User)(nil), comment.CreatorID, "user"); err != nil {
		return nil, err
	}
	if err := ensureRowExists(ctx, r.db, (*Post)(nil), comment.PostID, "post"); err != nil {
		return nil, err
	}

	now := time.Now()
	comment.Clock = FormatClock(now)
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}

	if _, err := r.db.NewInsert().Model(comment).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert comment")
	}

	comment.Date = FormatDate(comment.CreatedAt)
	return comment, nil
}

func (r *comments) GetByID(ctx context.Context, id int64) (*Comment, error) {
	comment := &Comment{}
	err := r.db.NewSelect().Model(comment).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookupErr(err, "comment")
	}
	comment.Date = FormatDate(comment.CreatedAt)
	return comment, nil
}

func (r *comments) FindAll(ctx context.Context) ([]*Comment, error) {
	var list []*Comment
	err := r.namedSelect(&list).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list comments")
	}
	decorateComments(list)
	return list, nil
}

func (r *comments) FindByPost(ctx context.Context, postID int64) ([]*Comment, error) {
	var list []*Comment
	err := r.namedSelect(&list).
		Where("?TableAlias.post_id = ?", postID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list comments")
	}
	decorateComments(list)
	return list, nil
}

func (r *comments) FindForUser(ctx context.Context, creatorID int64) ([]*Comment, error) {
	var list []*Comment
	err := r.namedSelect(&list).
		Where("?TableAlias.creator_id = ?", creatorID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list user comments")
	}
	decorateComments(list)
	return list, nil
}

func (r *comments) namedSelect(list *[]*Comment) *bun.SelectQuery {
	return r.db.NewSelect().Model(list).
		ColumnExpr("?TableAlias.*").
		ColumnExpr("usr.first_name || ' ' || usr.last_name AS full_name").
		Join("JOIN users AS usr ON usr.id = ?TableAlias.creator_id")
}

func decorateComments(list []*Comment) {
	for _, c := range list {
		c.Date = FormatDate(c.CreatedAt)
	}
}

func (r *comments) Update(ctx context.Context, id int64, text string) (*Comment, error) {
	res, err := r.db.NewUpdate().Model((*Comment)(nil)).
		Set("text = ?", text).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update comment")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, NotFoundError("comment")
	}
	return r.GetByID(ctx, id)
}

func (r *comments) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, (*Comment)(nil), id, "comment")
}

type replies struct {
	db bun.IDB
}

var _ Replies = (*replies)(nil)

// NewRepliesRepository creates the bun-backed Replies repository.
func NewRepliesRepository(db bun.IDB) Replies {
	return &replies{db: db}
}

func (r *replies) Create(ctx context.Context, reply *Reply) (*Reply, error) {
	if err := ensureRowExists(ctx, r.db, (*User)(nil), reply.CreatorID, "user"); err != nil {
		return nil, err
	}
	if err := ensureRowExists(ctx, r.db, (*Comment)(nil), reply.CommentID, "comment"); err != nil {
		return nil, err
	}

	now := time.Now()
	reply.Clock = FormatClock(now)
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = now
	}

	if _, err := r.db.NewInsert().Model(reply).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert reply")
	}

	reply.Date = FormatDate(reply.CreatedAt)
	return reply, nil
}

func (r *replies) GetByID(ctx context.Context, id int64) (*Reply, error) {
	reply := &Reply{}
	err := r.db.NewSelect().Model(reply).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookupErr(err, "reply")
	}
	reply.Date = FormatDate(reply.CreatedAt)
	return reply, nil
}

func (r *replies) FindAll(ctx context.Context) ([]*Reply, error) {
	var list []*Reply
	err := r.namedSelect(&list).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list replies")
	}
	decorateReplies(list)
	return list, nil
}

func (r *replies) FindByComment(ctx context.Context, commentID int64) ([]*Reply, error) {
	var list []*Reply
	err := r.namedSelect(&list).
		Where("?TableAlias.comment_id = ?", commentID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list replies")
	}
	decorateReplies(list)
	return list, nil
}

func (r *replies) FindForUser(ctx context.Context, creatorID int64) ([]*Reply, error) {
	var list []*Reply
	err := r.namedSelect(&list).
		Where("?TableAlias.creator_id = ?", creatorID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list user replies")
	}
	decorateReplies(list)
	return list, nil
}

func (r *replies) namedSelect(list *[]*Reply) *bun.SelectQuery {
	return r.db.NewSelect().Model(list).
		ColumnExpr("?TableAlias.*").
		ColumnExpr("usr.first_name || ' ' || usr.last_name AS full_name").
		Join("JOIN users AS usr ON usr.id = ?TableAlias.creator_id")
}

func decorateReplies(list []*Reply) {
	for _, rp := range list {
		rp.Date = FormatDate(rp.CreatedAt)
	}
}

func (r *replies) Update(ctx context.Context, id int64, text string) (*Reply, error) {
	res, err := r.db.NewUpdate().Model((*Reply)(nil)).
		Set("text = ?", text).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update reply")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, NotFoundError("reply")
	}
	return r.GetByID(ctx, id)
}

func (r *replies) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, (*Reply)(nil), id, "reply")
}

type likes struct {
	db bun.IDB
}

var _ Likes = (*likes)(nil)

// NewLikesRepository creates the bun-backed Likes repository.
func NewLikesRepository(db bun.IDB) Likes {
	return &likes{db: db}
}

func (r *likes) Create(ctx context.Context, like *Like) (*Like, error) {
	if err := ensureRowExists(ctx, r.db, (*User)(nil), like.CreatorID, "user"); err != nil {
		return nil, err
	}
	if err := ensureRowExists(ctx, r.db, (*Post)(nil), like.PostID, "post"); err != nil {
		return nil, err
	}

	exists, err := r.db.NewSelect().Model((*Like)(nil)).
		Where("?TableAlias.post_id = ?", like.PostID).
		Where("?TableAlias.creator_id = ?", like.CreatorID).
		Exists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for duplicate like")
	}
	if exists {
		return nil, DuplicateError("User has already liked this post!")
	}

	now := time.Now()
	like.Clock = FormatClock(now)
	if like.CreatedAt.IsZero() {
		like.CreatedAt = now
	}

	if _, err := r.db.NewInsert().Model(like).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert like")
	}

	like.Date = FormatDate(like.CreatedAt)
	return like, nil
}

func (r *likes) GetByID(ctx context.Context, id int64) (*Like, error) {
	like := &Like{}
	err := r.db.NewSelect().Model(like).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookupErr(err, "like")
	}
	like.Date = FormatDate(like.CreatedAt)
	return like, nil
}

func (r *likes) FindAll(ctx context.Context) ([]*Like, error) {
	var list []*Like
	err := r.namedSelect(&list).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list likes")
	}
	decorateLikes(list)
	return list, nil
}

func (r *likes) FindByPost(ctx context.Context, postID int64) ([]*Like, error) {
	var list []*Like
	err := r.namedSelect(&list).
		Where("?TableAlias.post_id = ?", postID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list likes")
	}
	decorateLikes(list)
	return list, nil
}

func (r *likes) FindForUser(ctx context.Context, creatorID int64) ([]*Like, error) {
	var list []*Like
	err := r.namedSelect(&list).
		Where("?TableAlias.creator_id = ?", creatorID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list user likes")
	}
	decorateLikes(list)
	return list, nil
}

func (r *likes) namedSelect(list *[]*Like) *bun.SelectQuery {
	return r.db.NewSelect().Model(list).
		ColumnExpr("?TableAlias.*").
		ColumnExpr("usr.first_name || ' ' || usr.last_name AS full_name").
		Join("JOIN users AS usr ON usr.id = ?TableAlias.creator_id")
}

func decorateLikes(list []*Like) {
	for _, l := range list {
		l.Date = FormatDate(l.CreatedAt)
	}
}

func (r *likes) Update(ctx context.Context, id int64, postID *int64) (*Like, error) {
	if postID != nil {
		if err := ensureRowExists(ctx, r.db, (*Post)(nil), *postID, "post"); err != nil {
			return nil, err
		}

		res, err := r.db.NewUpdate().Model((*Like)(nil)).
			Set("post_id = ?", *postID).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update like")
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, NotFoundError("like")
		}
	}

	return r.GetByID(ctx, id)
}

func (r *likes) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, (*Like)(nil), id, "like")
}

type forums struct {
	db bun.IDB
}

var _ Forums = (*forums)(nil)

// NewForumsRepository creates the bun-backed Forums repository.
func NewForumsRepository(db bun.IDB) Forums {
	return &forums{db: db}
}

func (r *forums) Create(ctx context.Context, forum *Forum) (*Forum, error) {
	exists, err := r.db.NewSelect().Model((*Forum)(nil)).
		Where("?TableAlias.title = ?", forum.Title).
		Exists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for duplicate forum")
	}
	if exists {
		return nil, DuplicateError("A forum with this title already exists!")
	}

	if _, err := r.db.NewInsert().Model(forum).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert forum")
	}
	return forum, nil
}

func (r *forums) GetByID(ctx context.Context, id int64) (*Forum, error) {
	forum := &Forum{}
	err := r.db.NewSelect().Model(forum).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookupErr(err, "forum")
	}
	return forum, nil
}

func (r *forums) FindAll(ctx context.Context) ([]*Forum, error) {
	var list []*Forum
	err := r.db.NewSelect().Model(&list).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list forums")
	}
	return list, nil
}

func (r *forums) Update(ctx context.Context, id int64, title, description *string) (*Forum, error) {
	q := r.db.NewUpdate().Model((*Forum)(nil)).
		Where("id = ?", id)

	dirty := false
	if title != nil {
		q.Set("title = ?", *title)
		dirty = true
	}
	if description != nil {
		q.Set("description = ?", *description)
		dirty = true
	}

	if dirty {
		res, err := q.Exec(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update forum")
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, NotFoundError("forum")
		}
	}

	return r.GetByID(ctx, id)
}

func (r *forums) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, (*Forum)(nil), id, "forum")
}

type subjects struct {
	db bun.IDB
}

var _ Subjects = (*subjects)(nil)

// NewSubjectsRepository creates the bun-backed Subjects repository.
func NewSubjectsRepository(db bun.IDB) Subjects {
	return &subjects{db: db}
}

func (r *subjects) Create(ctx context.Context, subject *Subject) (*Subject, error) {
	exists, err := r.db.NewSelect().Model((*Subject)(nil)).
		Where("?TableAlias.name = ?", subject.Name).
		Exists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for duplicate subject")
	}
	if exists {
		return nil, DuplicateError("A subject with this name already exists!")
	}

	if _, err := r.db.NewInsert().Model(subject).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert subject")
	}
	return subject, nil
}

func (r *subjects) GetByID(ctx context.Context, id int64) (*Subject, error) {
	subject := &Subject{}
	err := r.db.NewSelect().Model(subject).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookupErr(err, "subject")
	}
	return subject, nil
}

func (r *subjects) FindAll(ctx context.Context) ([]*Subject, error) {
	var list []*Subject
	err := r.db.NewSelect().Model(&list).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list subjects")
	}
	return list, nil
}

func (r *subjects) Update(ctx context.Context, id int64, name string) (*Subject, error) {
	res, err := r.db.NewUpdate().Model((*Subject)(nil)).
		Set("name = ?", name).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update subject")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, NotFoundError("subject")
	}
	return r.GetByID(ctx, id)
}

func (r *subjects) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, (*Subject)(nil), id, "subject")
}
