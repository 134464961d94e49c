package biblio

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the identity row. PasswordHash and RefreshToken never leave the
// server: the hash is set only by the Hasher, and the refresh token column
// holds at most one active session token (issuing overwrites, logout and
// row deletion clear).
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           int64   `bun:"id,pk,autoincrement" json:"id"`
	Email        string  `bun:"email,notnull,unique" json:"email"`
	FirstName    string  `bun:"first_name,notnull" json:"firstName"`
	LastName     string  `bun:"last_name,notnull" json:"lastName"`
	PasswordHash string  `bun:"password,notnull" json:"-"`
	IsAdmin      bool    `bun:"is_admin,notnull,default:false" json:"isAdmin"`
	RefreshToken *string `bun:"token,nullzero" json:"-"`
}

// Collection groups a user's books.
type Collection struct {
	bun.BaseModel `bun:"table:collections,alias:col"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Owner     int64     `bun:"owner,notnull" json:"owner"`
	IsPrivate bool      `bun:"is_private,notnull,default:false" json:"isPrivate"`
	CreatedAt time.Time `bun:"date_created,nullzero,notnull,default:current_timestamp" json:"-"`

	Date string `bun:"-" json:"date,omitempty"`
}

func (c *Collection) OwnerID() int64 { return c.Owner }

// Book is a title inside a user collection. Key is the external catalog
// identifier used for duplicate detection within a collection.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:bk"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	CollectionID int64     `bun:"collection_id,notnull" json:"collectionId"`
	UserID       int64     `bun:"user_id,notnull" json:"userId"`
	Key          string    `bun:"key,notnull" json:"key"`
	Author       string    `bun:"author" json:"author"`
	Title        string    `bun:"title,notnull" json:"title"`
	Description  string    `bun:"description" json:"description"`
	Year         int       `bun:"year" json:"year"`
	Status       string    `bun:"status" json:"status"`
	CreatedAt    time.Time `bun:"date_added,nullzero,notnull,default:current_timestamp" json:"-"`

	Date string `bun:"-" json:"date,omitempty"`
}

func (b *Book) OwnerID() int64 { return b.UserID }

// Post is a forum post. Subject and Forum reference the admin-curated
// taxonomy tables.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Creator   int64     `bun:"creator,notnull" json:"creator"`
	Title     string    `bun:"title,notnull" json:"title"`
	PostText  string    `bun:"post_text,notnull" json:"postText"`
	Subject   int64     `bun:"subject" json:"subject"`
	Forum     int64     `bun:"forum" json:"forum"`
	IsPrivate bool      `bun:"is_private,notnull,default:false" json:"isPrivate"`
	CreatedAt time.Time `bun:"date_created,nullzero,notnull,default:current_timestamp" json:"-"`

	Date        string `bun:"-" json:"date,omitempty"`
	FullName    string `bun:"full_name,scanonly" json:"fullName,omitempty"`
	SubjectName string `bun:"subject_name,scanonly" json:"subjectName,omitempty"`
	ForumTitle  string `bun:"forum_title,scanonly" json:"forumTitle,omitempty"`
}

func (p *Post) OwnerID() int64 { return p.Creator }

// Comment is a user comment on a post.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cmt"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	CreatorID int64     `bun:"creator_id,notnull" json:"creatorId"`
	PostID    int64     `bun:"post_id,notnull" json:"postId"`
	Text      string    `bun:"text,notnull" json:"text"`
	Clock     string    `bun:"time" json:"time"`
	CreatedAt time.Time `bun:"date_created,nullzero,notnull,default:current_timestamp" json:"-"`

	Date     string `bun:"-" json:"date,omitempty"`
	FullName string `bun:"full_name,scanonly" json:"fullName,omitempty"`
}

func (c *Comment) OwnerID() int64 { return c.CreatorID }

// Reply is a user reply on a comment.
type Reply struct {
	bun.BaseModel `bun:"table:replies,alias:rpl"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	CreatorID int64     `bun:"creator_id,notnull" json:"creatorId"`
	CommentID int64     `bun:"comment_id,notnull" json:"commentId"`
	Text      string    `bun:"text,notnull" json:"text"`
	Clock     string    `bun:"time" json:"time"`
	CreatedAt time.Time `bun:"date_created,nullzero,notnull,default:current_timestamp" json:"-"`

	Date     string `bun:"-" json:"date,omitempty"`
	FullName string `bun:"full_name,scanonly" json:"fullName,omitempty"`
}

func (r *Reply) OwnerID() int64 { return r.CreatorID }

// Like marks a post as liked by a user; one per (post, user).
type Like struct {
	bun.BaseModel `bun:"table:likes,alias:lk"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	PostID    int64     `bun:"post_id,notnull" json:"postId"`
	CreatorID int64     `bun:"creator_id,notnull" json:"creatorId"`
	Clock     string    `bun:"time" json:"time"`
	CreatedAt time.Time `bun:"date_created,nullzero,notnull,default:current_timestamp" json:"-"`

	Date     string `bun:"-" json:"date,omitempty"`
	FullName string `bun:"full_name,scanonly" json:"fullName,omitempty"`
}

func (l *Like) OwnerID() int64 { return l.CreatorID }

// Forum is an admin-curated discussion board.
type Forum struct {
	bun.BaseModel `bun:"table:forums,alias:frm"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Title       string `bun:"title,notnull" json:"title"`
	Description string `bun:"description" json:"description"`
	Creator     int64  `bun:"creator,notnull" json:"creator"`
}

// Subject is a post topic, created by any user.
type Subject struct {
	bun.BaseModel `bun:"table:subjects,alias:sbj"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"name,notnull" json:"name"`
	Creator int64  `bun:"creator,notnull" json:"creator"`
}

func (s *Subject) OwnerID() int64 { return s.Creator }

// FullName renders the display name appended to forum records.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
