package biblio

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Server assembles the HTTP surface: one fiber app, the session middleware
// on every route, and per-route policies on top.
type Server struct {
	app    *fiber.App
	cfg    Config
	logger Logger
}

// NewServer wires the controllers over the repository manager and registers
// every route. The session middleware runs globally and never rejects; the
// policies attached per route do.
func NewServer(cfg Config, repos RepositoryManager, logger Logger) *Server {
	if logger == nil {
		logger = defLogger{}
	}

	cfg = cfg.withDefaults()

	app := fiber.New(fiber.Config{
		AppName:      "biblio",
		ErrorHandler: ErrorHandler(logger),
	})

	tokens := NewTokenService(cfg, logger)
	hasher := NewHasher(cfg.BcryptCost)
	auther := NewAuther(repos.Users(), hasher, tokens, logger)

	app.Use(Authenticate(tokens))

	authCtrl := NewAuthController(auther, logger)
	auth := app.Group("/auth")
	auth.Post("/register", authCtrl.Register)
	auth.Post("/login", authCtrl.Login)
	auth.Get("/refresh", authCtrl.Refresh)
	auth.Get("/logout", authCtrl.Logout)

	usersCtrl := NewUsersController(repos.Users(), auther, hasher, logger)
	users := app.Group("/users", RequireAuthenticated)
	users.Post("/", RequireAdmin, usersCtrl.Create)
	users.Get("/", usersCtrl.List)
	users.Get("/:id", usersCtrl.Get)
	users.Patch("/:id", RequireSelfOrAdmin, usersCtrl.Update)
	users.Delete("/:id", RequireSelfOrAdmin, usersCtrl.Delete)

	collCtrl := NewCollectionsController(repos.Collections(), logger)
	collections := app.Group("/collections", RequireAuthenticated)
	collections.Post("/", collCtrl.Create)
	collections.Get("/public", collCtrl.ListPublic)
	collections.Get("/user/:id", RequireSelfOrAdmin, collCtrl.ListForUser)
	collections.Get("/:id", collCtrl.Get)
	collections.Patch("/:id", collCtrl.Update)
	collections.Delete("/:id", collCtrl.Delete)

	booksCtrl := NewBooksController(repos.Books(), repos.Collections(), logger)
	books := app.Group("/books", RequireAuthenticated)
	books.Post("/", booksCtrl.Create)
	books.Get("/collection/:id", booksCtrl.ListByCollection)
	books.Get("/:id", booksCtrl.Get)
	books.Patch("/:id", booksCtrl.Update)
	books.Delete("/:id", booksCtrl.Delete)

	postsCtrl := NewPostsController(repos.Posts(), logger)
	posts := app.Group("/posts", RequireAuthenticated)
	posts.Post("/", postsCtrl.Create)
	posts.Get("/public", postsCtrl.ListPublic)
	posts.Get("/user/:id", RequireSelfOrAdmin, postsCtrl.ListForUser)
	posts.Get("/:id", postsCtrl.Get)
	posts.Patch("/:id", postsCtrl.Update)
	posts.Delete("/:id", postsCtrl.Delete)

	commentsCtrl := NewCommentsController(repos.Comments(), logger)
	comments := app.Group("/comments", RequireAuthenticated)
	comments.Post("/", commentsCtrl.Create)
	comments.Get("/", commentsCtrl.List)
	comments.Get("/post/:id", commentsCtrl.ListByPost)
	comments.Get("/user/:id", RequireSelfOrAdmin, commentsCtrl.ListForUser)
	comments.Get("/:id", commentsCtrl.Get)
	comments.Patch("/:id", commentsCtrl.Update)
	comments.Delete("/:id", commentsCtrl.Delete)

	repliesCtrl := NewRepliesController(repos.Replies(), logger)
	replies := app.Group("/replies", RequireAuthenticated)
	replies.Post("/", repliesCtrl.Create)
	replies.Get("/", repliesCtrl.List)
	replies.Get("/comment/:id", repliesCtrl.ListByComment)
	replies.Get("/user/:id", RequireSelfOrAdmin, repliesCtrl.ListForUser)
	replies.Get("/:id", repliesCtrl.Get)
	replies.Patch("/:id", repliesCtrl.Update)
	replies.Delete("/:id", repliesCtrl.Delete)

	likesCtrl := NewLikesController(repos.Likes(), logger)
	likes := app.Group("/likes", RequireAuthenticated)
	likes.Post("/", likesCtrl.Create)
	likes.Get("/", likesCtrl.List)
	likes.Get("/post/:id", likesCtrl.ListByPost)
	likes.Get("/user/:id", RequireSelfOrAdmin, likesCtrl.ListForUser)
	likes.Get("/:id", likesCtrl.Get)
	likes.Patch("/:id", likesCtrl.Update)
	likes.Delete("/:id", likesCtrl.Delete)

	forumsCtrl := NewForumsController(repos.Forums(), logger)
	forums := app.Group("/forums", RequireAuthenticated)
	forums.Post("/", RequireAdmin, forumsCtrl.Create)
	forums.Get("/", forumsCtrl.List)
	forums.Get("/:id", forumsCtrl.Get)
	forums.Patch("/:id", RequireAdmin, forumsCtrl.Update)
	forums.Delete("/:id", RequireAdmin, forumsCtrl.Delete)

	subjectsCtrl := NewSubjectsController(repos.Subjects(), logger)
	subjects := app.Group("/subjects", RequireAuthenticated)
	subjects.Post("/", subjectsCtrl.Create)
	subjects.Get("/", subjectsCtrl.List)
	subjects.Get("/:id", subjectsCtrl.Get)
	subjects.Patch("/:id", subjectsCtrl.Update)
	subjects.Delete("/:id", subjectsCtrl.Delete)

	return &Server{app: app, cfg: cfg, logger: logger}
}

// App exposes the underlying fiber app, mainly for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured port until the app shuts down.
func (s *Server) Listen() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
