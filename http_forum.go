package biblio

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// PostRequest is the post creation payload; the creator is taken from the
// session.
type PostRequest struct {
	Title     string `json:"title"`
	PostText  string `json:"postText"`
	Subject   int64  `json:"subject"`
	Forum     int64  `json:"forum"`
	IsPrivate bool   `json:"isPrivate"`
}

// Validate implements validation.Validatable.
func (r PostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.PostText, validation.Required),
	)
}

// PostUpdateRequest is the partial post update payload.
type PostUpdateRequest struct {
	Title     *string `json:"title"`
	PostText  *string `json:"postText"`
	Subject   *int64  `json:"subject"`
	Forum     *int64  `json:"forum"`
	IsPrivate *bool   `json:"isPrivate"`
}

// CommentRequest is the comment creation payload.
type CommentRequest struct {
	PostID int64  `json:"postId"`
	Text   string `json:"text"`
}

// Validate implements validation.Validatable.
func (r CommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostID, validation.Required),
		validation.Field(&r.Text, validation.Required),
	)
}

// ReplyRequest is the reply creation payload.
type ReplyRequest struct {
	CommentID int64  `json:"commentId"`
	Text      string `json:"text"`
}

// Validate implements validation.Validatable.
func (r ReplyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CommentID, validation.Required),
		validation.Field(&r.Text, validation.Required),
	)
}

// TextUpdateRequest updates the body of a comment or reply.
type TextUpdateRequest struct {
	Text string `json:"text"`
}

// Validate implements validation.Validatable.
func (r TextUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
	)
}

// LikeRequest is the like creation payload.
type LikeRequest struct {
	PostID int64 `json:"postId"`
}

// Validate implements validation.Validatable.
func (r LikeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostID, validation.Required),
	)
}

// LikeUpdateRequest moves a like to another post.
type LikeUpdateRequest struct {
	PostID *int64 `json:"postId"`
}

// ForumRequest is the board creation payload.
type ForumRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate implements validation.Validatable.
func (r ForumRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
	)
}

// ForumUpdateRequest is the partial board update payload.
type ForumUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// SubjectRequest is the topic creation payload.
type SubjectRequest struct {
	Name string `json:"name"`
}

// Validate implements validation.Validatable.
func (r SubjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
}

// PostsController exposes forum post CRUD.
type PostsController struct {
	posts  Posts
	logger Logger
}

// NewPostsController builds the controller.
func NewPostsController(posts Posts, logger Logger) *PostsController {
	if logger == nil {
		logger = defLogger{}
	}
	return &PostsController{posts: posts, logger: logger}
}

// Create handles POST /posts.
func (pc *PostsController) Create(c *fiber.Ctx) error {
	claims := ClaimsFromRequest(c)
	if claims == nil {
		return ErrAuthRequired
	}

	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid post payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	post := &Post{
		Creator:   claims.UserID,
		Title:     req.Title,
		PostText:  req.PostText,
		Subject:   req.Subject,
		Forum:     req.Forum,
		IsPrivate: req.IsPrivate,
	}

	created, err := pc.posts.Create(c.UserContext(), post)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": created})
}

// ListPublic handles GET /posts/public.
func (pc *PostsController) ListPublic(c *fiber.Ctx) error {
	list, err := pc.posts.FindPublic(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"posts": list})
}

// ListForUser handles GET /posts/user/:id.
func (pc *PostsController) ListForUser(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	list, err := pc.posts.FindForUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"posts": list})
}

// Get handles GET /posts/:id.
func (pc *PostsController) Get(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	post, err := pc.posts.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	if post.IsPrivate {
		if err := CheckResourceOwner(post, ClaimsFromRequest(c)); err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{"post": post})
}

// Update handles PATCH /posts/:id.
func (pc *PostsController) Update(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	post, err := pc.posts.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(post, ClaimsFromRequest(c)); err != nil {
		return err
	}

	var req PostUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid post payload")
	}

	updated, err := pc.posts.Update(c.UserContext(), id, PostUpdate{
		Title:     req.Title,
		PostText:  req.PostText,
		Subject:   req.Subject,
		Forum:     req.Forum,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"post": updated})
}

// Delete handles DELETE /posts/:id.
func (pc *PostsController) Delete(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	post, err := pc.posts.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(post, ClaimsFromRequest(c)); err != nil {
		return err
	}

	if err := pc.posts.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": fmt.Sprintf("Post id: %d", id)})
}

// CommentsController exposes comment CRUD.
type CommentsController struct {
	comments Comments
	logger   Logger
}

// NewCommentsController builds the controller.
func NewCommentsController(comments Comments, logger Logger) *CommentsController {
	if logger == nil {
		logger = defLogger{}
	}
	return &CommentsController{comments: comments, logger: logger}
}

// Create handles POST /comments.
func (cc *CommentsController) Create(c *fiber.Ctx) error {
	claims := ClaimsFromRequest(c)
	if claims == nil {
		return ErrAuthRequired
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid comment payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	comment := &Comment{
		CreatorID: claims.UserID,
		PostID:    req.PostID,
		Text:      req.Text,
	}

	created, err := cc.comments.Create(c.UserContext(), comment)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": created})
}

// List handles GET /comments.
func (cc *CommentsController) List(c *fiber.Ctx) error {
	list, err := cc.comments.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comments": list})
}

// ListByPost handles GET /comments/post/:id.
func (cc *CommentsController) ListByPost(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	list, err := cc.comments.FindByPost(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comments": list})
}

// ListForUser handles GET /comments/user/:id.
func (cc *CommentsController) ListForUser(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	list, err := cc.comments.FindForUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comments": list})
}

// Get handles GET /comments/:id.
func (cc *CommentsController) Get(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	comment, err := cc.comments.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comment": comment})
}

// Update handles PATCH /comments/:id.
func (cc *CommentsController) Update(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	comment, err := cc.comments.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(comment, ClaimsFromRequest(c)); err != nil {
		return err
	}

	var req TextUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid comment payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	updated, err := cc.comments.Update(c.UserContext(), id, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comment": updated})
}

// Delete handles DELETE /comments/:id.
func (cc *CommentsController) Delete(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	comment, err := cc.comments.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(comment, ClaimsFromRequest(c)); err != nil {
		return err
	}

	if err := cc.comments.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": fmt.Sprintf("Comment id: %d", id)})
}

// RepliesController exposes reply CRUD.
type RepliesController struct {
	replies Replies
	logger  Logger
}

// NewRepliesController builds the controller.
func NewRepliesController(replies Replies, logger Logger) *RepliesController {
	if logger == nil {
		logger = defLogger{}
	}
	return &RepliesController{replies: replies, logger: logger}
}

// Create handles POST /replies.
func (rc *RepliesController) Create(c *fiber.Ctx) error {
	claims := ClaimsFromRequest(c)
	if claims == nil {
		return ErrAuthRequired
	}

	var req ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid reply payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	reply := &Reply{
		CreatorID: claims.UserID,
		CommentID: req.CommentID,
		Text:      req.Text,
	}

	created, err := rc.replies.Create(c.UserContext(), reply)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reply": created})
}

// List handles GET /replies.
func (rc *RepliesController) List(c *fiber.Ctx) error {
	list, err := rc.replies.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"replies": list})
}

// ListByComment handles GET /replies/comment/:id.
func (rc *RepliesController) ListByComment(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	list, err := rc.replies.FindByComment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"replies": list})
}

// ListForUser handles GET /replies/user/:id.
func (rc *RepliesController) ListForUser(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	list, err := rc.replies.FindForUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"replies": list})
}

// Get handles GET /replies/:id.
func (rc *RepliesController) Get(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	reply, err := rc.replies.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reply": reply})
}

// Update handles PATCH /replies/:id.
func (rc *RepliesController) Update(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	reply, err := rc.replies.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(reply, ClaimsFromRequest(c)); err != nil {
		return err
	}

	var req TextUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid reply payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	updated, err := rc.replies.Update(c.UserContext(), id, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reply": updated})
}

// Delete handles DELETE /replies/:id.
func (rc *RepliesController) Delete(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	reply, err := rc.replies.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(reply, ClaimsFromRequest(c)); err != nil {
		return err
	}

	if err := rc.replies.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": fmt.Sprintf("Reply id: %d", id)})
}

// LikesController exposes like CRUD. A second like on the same post is
// rejected; moving or removing a like requires owning it.
type LikesController struct {
	likes  Likes
	logger Logger
}

// NewLikesController builds the controller.
func NewLikesController(likes Likes, logger Logger) *LikesController {
	if logger == nil {
		logger = defLogger{}
	}
	return &LikesController{likes: likes, logger: logger}
}

// Create handles POST /likes.
func (lc *LikesController) Create(c *fiber.Ctx) error {
	claims := ClaimsFromRequest(c)
	if claims == nil {
		return ErrAuthRequired
	}

	var req LikeRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid like payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	like := &Like{
		PostID:    req.PostID,
		CreatorID: claims.UserID,
	}

	created, err := lc.likes.Create(c.UserContext(), like)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"like": created})
}

// List handles GET /likes.
func (lc *LikesController) List(c *fiber.Ctx) error {
	list, err := lc.likes.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"likes": list})
}

// ListByPost handles GET /likes/post/:id.
func (lc *LikesController) ListByPost(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	list, err := lc.likes.FindByPost(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"likes": list})
}

// ListForUser handles GET /likes/user/:id.
func (lc *LikesController) ListForUser(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	list, err := lc.likes.FindForUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"likes": list})
}

// Get handles GET /likes/:id.
func (lc *LikesController) Get(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	like, err := lc.likes.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"like": like})
}

// Update handles PATCH /likes/:id.
func (lc *LikesController) Update(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	like, err := lc.likes.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(like, ClaimsFromRequest(c)); err != nil {
		return err
	}

	var req LikeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid like payload")
	}

	updated, err := lc.likes.Update(c.UserContext(), id, req.PostID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"like": updated})
}

// Delete handles DELETE /likes/:id.
func (lc *LikesController) Delete(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	like, err := lc.likes.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(like, ClaimsFromRequest(c)); err != nil {
		return err
	}

	if err := lc.likes.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": fmt.Sprintf("Like id: %d", id)})
}

// ForumsController exposes the admin-curated boards. Mutations are gated by
// the admin policy at route registration.
type ForumsController struct {
	forums Forums
	logger Logger
}

// NewForumsController builds the controller.
func NewForumsController(forums Forums, logger Logger) *ForumsController {
	if logger == nil {
		logger = defLogger{}
	}
	return &ForumsController{forums: forums, logger: logger}
}

// Create handles POST /forums.
func (fc *ForumsController) Create(c *fiber.Ctx) error {
	claims := ClaimsFromRequest(c)
	if claims == nil {
		return ErrAuthRequired
	}

	var req ForumRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid forum payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	forum := &Forum{
		Title:       req.Title,
		Description: req.Description,
		Creator:     claims.UserID,
	}

	created, err := fc.forums.Create(c.UserContext(), forum)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"forum": created})
}

// List handles GET /forums.
func (fc *ForumsController) List(c *fiber.Ctx) error {
	list, err := fc.forums.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"forums": list})
}

// Get handles GET /forums/:id.
func (fc *ForumsController) Get(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	forum, err := fc.forums.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"forum": forum})
}

// Update handles PATCH /forums/:id.
func (fc *ForumsController) Update(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	var req ForumUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid forum payload")
	}

	updated, err := fc.forums.Update(c.UserContext(), id, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"forum": updated})
}

// Delete handles DELETE /forums/:id.
func (fc *ForumsController) Delete(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	if err := fc.forums.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": fmt.Sprintf("Forum id: %d", id)})
}

// SubjectsController exposes post topics. Any authenticated user may create
// one; edits and removals require the creator or an admin.
type SubjectsController struct {
	subjects Subjects
	logger   Logger
}

// NewSubjectsController builds the controller.
func NewSubjectsController(subjects Subjects, logger Logger) *SubjectsController {
	if logger == nil {
		logger = defLogger{}
	}
	return &SubjectsController{subjects: subjects, logger: logger}
}

// Create handles POST /subjects.
func (sc *SubjectsController) Create(c *fiber.Ctx) error {
	claims := ClaimsFromRequest(c)
	if claims == nil {
		return ErrAuthRequired
	}

	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid subject payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	subject := &Subject{
		Name:    req.Name,
		Creator: claims.UserID,
	}

	created, err := sc.subjects.Create(c.UserContext(), subject)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subject": created})
}

// List handles GET /subjects.
func (sc *SubjectsController) List(c *fiber.Ctx) error {
	list, err := sc.subjects.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"subjects": list})
}

// Get handles GET /subjects/:id.
func (sc *SubjectsController) Get(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	subject, err := sc.subjects.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"subject": subject})
}

// Update handles PATCH /subjects/:id.
func (sc *SubjectsController) Update(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	subject, err := sc.subjects.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(subject, ClaimsFromRequest(c)); err != nil {
		return err
	}

	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError(err, "invalid subject payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	updated, err := sc.subjects.Update(c.UserContext(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"subject": updated})
}

// Delete handles DELETE /subjects/:id.
func (sc *SubjectsController) Delete(c *fiber.Ctx) error {
	id, err := RouteID(c)
	if err != nil {
		return err
	}

	subject, err := sc.subjects.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := CheckResourceOwner(subject, ClaimsFromRequest(c)); err != nil {
		return err
	}

	if err := sc.subjects.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": fmt.Sprintf("Subject id: %d", id)})
}
