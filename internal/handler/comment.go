package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"workfolio/internal/model"
	"workfolio/internal/service"
	"workfolio/internal/transport/http/middleware"
)

type CommentHandler struct {
	base
	commentService   *service.CommentService
	portfolioService *service.PortfolioService
}

func newCommentHandler(b base, commentService *service.CommentService, portfolioService *service.PortfolioService) *CommentHandler {
	return &CommentHandler{base: b, commentService: commentService, portfolioService: portfolioService}
}

func commentID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "comment"), 10, 64)
	if err != nil {
		return 0, model.ErrCommentNotFound
	}
	return id, nil
}

// AddForm handles GET /portfolios/{portfolio}/add_comment
func (h *CommentHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetByTitle(r.Context(), chi.URLParam(r, "portfolio"))
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.page(w, r, "add_comment", portfolio)
}

// Add handles POST /portfolios/{portfolio}/add_comment
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	title := chi.URLParam(r, "portfolio")
	if err := parseForm(w, r); err != nil {
		h.fail(w, r, errBadForm, portfolioPath(title)+"/add_comment")
		return
	}

	if _, err := h.commentService.Create(r.Context(), p, title, r.FormValue("comment")); err != nil {
		h.fail(w, r, err, portfolioPath(title)+"/add_comment")
		return
	}
	h.done(w, r, portfolioPath(title), "Comment added.")
}

// Show handles GET /portfolios/{portfolio}/view_comment/{comment}
func (h *CommentHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "comment")
}

// EditForm handles GET /portfolios/{portfolio}/edit_comment/{comment}
func (h *CommentHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "edit_comment")
}

func (h *CommentHandler) render(w http.ResponseWriter, r *http.Request, view string) {
	id, err := commentID(r)
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	cv, err := h.commentService.Get(r.Context(), chi.URLParam(r, "portfolio"), id)
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.page(w, r, view, cv)
}

// Update handles PATCH /portfolios/{portfolio}/{comment}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "portfolio")
	id, err := commentID(r)
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	form := portfolioPath(title) + "/edit_comment/" + strconv.FormatInt(id, 10)
	if err := parseForm(w, r); err != nil {
		h.fail(w, r, errBadForm, form)
		return
	}

	if _, err := h.commentService.Update(r.Context(), title, id, r.FormValue("comment")); err != nil {
		h.fail(w, r, err, form)
		return
	}
	h.done(w, r, portfolioPath(title), "Comment has been successfully updated.")
}

// Delete handles DELETE /portfolios/{portfolio}/{comment} and
// DELETE /portfolios/{portfolio}/comment/{comment}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "portfolio")
	id, err := commentID(r)
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}

	if err := h.commentService.Delete(r.Context(), title, id); err != nil {
		h.fail(w, r, err, portfolioPath(title))
		return
	}
	h.done(w, r, portfolioPath(title), "Comment successfully deleted.")
}
