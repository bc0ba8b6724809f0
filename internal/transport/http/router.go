package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"workfolio/internal/handler"
	"workfolio/internal/httputil"
	authmw "workfolio/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	Handlers  *handler.Handlers
	Sessions  *authmw.Sessions
	Ownership *authmw.Ownership
	Log       *zap.Logger
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	h := cfg.Handlers
	own := cfg.Ownership

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(authmw.RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(authmw.MethodOverride)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Everything below sees the session, if any.
	r.Group(func(r chi.Router) {
		r.Use(cfg.Sessions.Load)

		r.Get("/login", h.Auth.LoginForm)
		r.Post("/login", h.Auth.Login)
		r.Get("/signup", h.Auth.SignupForm)
		r.Post("/signup", h.Auth.Signup)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Sessions.RequireAuth)

			r.Get("/logout", h.Auth.Logout)

			// Accounts
			r.Get("/users/{username}", h.User.Show)
			r.Post("/users/{username}/add", h.User.AddFriend)
			r.With(own.Account).Get("/users/{username}/edit", h.User.Edit)
			r.With(own.Account).Patch("/users/{username}/edit", h.User.Update)
			r.With(own.Account).Patch("/users/{username}", h.User.Update)
			r.With(own.Account).Get("/password/{username}/edit_password", h.User.EditPassword)
			r.With(own.Account).Patch("/password/{username}/edit_password", h.User.UpdatePassword)
			r.With(own.Account).Delete("/delete/{username}", h.User.Delete)

			// Profiles
			r.With(own.Account).Get("/profiles/add_profile/{username}", h.Profile.AddForm)
			r.With(own.Account).Post("/profiles/add_profile/{username}", h.Profile.Add)
			r.With(own.Profile).Get("/profiles/edit_profile/{username}", h.Profile.EditForm)
			r.With(own.Profile).Patch("/profiles/edit_profile/{username}", h.Profile.Update)

			// Portfolios
			r.Get("/", h.Portfolio.List)
			r.Get("/add", h.Portfolio.AddForm)
			r.Post("/add", h.Portfolio.Add)
			r.Get("/portfolios/{portfolio}", h.Portfolio.Show)
			r.With(own.Portfolio).Get("/portfolios/{portfolio}/edit", h.Portfolio.EditForm)
			r.With(own.Portfolio).Patch("/portfolios/{portfolio}/edit", h.Portfolio.Update)
			r.With(own.Portfolio).Patch("/portfolios/{portfolio}", h.Portfolio.Update)

			// Comments
			r.Get("/portfolios/{portfolio}/add_comment", h.Comment.AddForm)
			r.Post("/portfolios/{portfolio}/add_comment", h.Comment.Add)
			r.Get("/portfolios/{portfolio}/view_comment/{comment}", h.Comment.Show)
			r.With(own.Comment).Get("/portfolios/{portfolio}/edit_comment/{comment}", h.Comment.EditForm)
			r.With(own.Comment).Patch("/portfolios/{portfolio}/{comment}", h.Comment.Update)
			r.With(own.Comment).Delete("/portfolios/{portfolio}/{comment}", h.Comment.Delete)
			r.With(own.Comment).Delete("/portfolios/{portfolio}/comment/{comment}", h.Comment.Delete)

			// Jobs
			r.Get("/jobs", h.Job.List)
			r.Get("/add_job", h.Job.AddForm)
			r.Post("/add_job", h.Job.Add)
			r.Get("/jobs/{job}", h.Job.Show)
			r.With(own.Job).Get("/jobs/{job}/edit_job", h.Job.EditForm)
			r.With(own.Job).Patch("/jobs/{job}/edit_job", h.Job.Update)
			r.With(own.Job).Delete("/jobs/{job}", h.Job.Delete)
			r.Patch("/job/{job}/applied", h.Job.Apply)

			// Media
			r.Post("/media/profile_image", h.Media.UploadProfileImage)
			r.Post("/media/portfolio_image", h.Media.UploadPortfolioImage)
		})
	})

	return r
}
