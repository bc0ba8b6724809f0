package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"workfolio/internal/model"
	"workfolio/internal/service"
	"workfolio/internal/transport/http/middleware"
)

// imageFields are the three portfolio image slots of the form.
var imageFields = []string{"imageOfOne", "imageOfTwo", "imageOfThree"}

type PortfolioHandler struct {
	base
	portfolioService *service.PortfolioService
	media            *MediaHandler
}

func newPortfolioHandler(b base, portfolioService *service.PortfolioService, media *MediaHandler) *PortfolioHandler {
	return &PortfolioHandler{base: b, portfolioService: portfolioService, media: media}
}

func portfolioPath(title string) string {
	return "/portfolios/" + url.PathEscape(title)
}

// List handles GET /
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.page(w, r, "index", map[string]interface{}{"portfolios": portfolios})
}

// AddForm handles GET /add
func (h *PortfolioHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "add_portfolio", nil)
}

// Add handles POST /add
func (h *PortfolioHandler) Add(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if err := parseForm(w, r); err != nil {
		h.fail(w, r, errBadForm, "/add")
		return
	}
	slots, err := h.imageSlots(r)
	if err != nil {
		h.fail(w, r, err, "/add")
		return
	}
	images := make([]string, 0, len(slots))
	for _, ref := range slots {
		if ref != nil {
			images = append(images, *ref)
		}
	}

	portfolio, err := h.portfolioService.Create(r.Context(), p, &model.CreatePortfolioRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
		Images:      images,
		URL:         r.FormValue("url"),
	})
	if err != nil {
		h.fail(w, r, err, "/add")
		return
	}
	h.done(w, r, portfolioPath(portfolio.Title), "Portfolio added to your account.")
}

// Show handles GET /portfolios/{portfolio}
func (h *PortfolioHandler) Show(w http.ResponseWriter, r *http.Request) {
	view, err := h.portfolioService.View(r.Context(), chi.URLParam(r, "portfolio"))
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.page(w, r, "portfolio", view)
}

// EditForm handles GET /portfolios/{portfolio}/edit
func (h *PortfolioHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetByTitle(r.Context(), chi.URLParam(r, "portfolio"))
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.page(w, r, "edit_portfolio", portfolio)
}

// Update handles PATCH /portfolios/{portfolio}. Omitted fields are kept.
func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "portfolio")
	form := portfolioPath(title) + "/edit"
	if err := parseForm(w, r); err != nil {
		h.fail(w, r, errBadForm, form)
		return
	}

	req := &model.UpdatePortfolioRequest{}
	if v, ok := formValue(r, "title"); ok {
		req.Title = &v
	}
	if v, ok := formValue(r, "description"); ok {
		req.Description = &v
	}
	if v, ok := formValue(r, "tags"); ok {
		req.Tags = &v
	}
	if v, ok := formValue(r, "url"); ok {
		req.URL = &v
	}
	slots, err := h.imageSlots(r)
	if err != nil {
		h.fail(w, r, err, form)
		return
	}
	for _, ref := range slots {
		if ref != nil {
			req.Images = slots
			break
		}
	}

	portfolio, err := h.portfolioService.Update(r.Context(), title, req)
	if err != nil {
		h.fail(w, r, err, form)
		return
	}
	h.done(w, r, portfolioPath(portfolio.Title), "Portfolio has been updated.")
}

// imageSlots resolves each image slot in order. A slot missing from the
// form is nil.
func (h *PortfolioHandler) imageSlots(r *http.Request) ([]*string, error) {
	slots := make([]*string, len(imageFields))
	for i, field := range imageFields {
		_, sent := formValue(r, field)
		if !sent && (r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0) {
			continue
		}
		ref, err := h.media.portfolioImage(r, field)
		if err != nil {
			return nil, err
		}
		slots[i] = &ref
	}
	return slots, nil
}
