package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"workfolio/internal/model"
	"workfolio/internal/service"
	"workfolio/internal/transport/http/middleware"
)

type JobHandler struct {
	base
	jobService *service.JobService
}

func newJobHandler(b base, jobService *service.JobService) *JobHandler {
	return &JobHandler{base: b, jobService: jobService}
}

func jobPath(title string) string {
	return "/jobs/" + url.PathEscape(title)
}

// List handles GET /jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobService.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.page(w, r, "jobs", map[string]interface{}{"jobs": jobs})
}

// AddForm handles GET /add_job
func (h *JobHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "add_job", nil)
}

// Add handles POST /add_job
func (h *JobHandler) Add(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	req, err := jobRequest(w, r)
	if err != nil {
		h.fail(w, r, err, "/add_job")
		return
	}

	job, err := h.jobService.Create(r.Context(), p, req)
	if err != nil {
		h.fail(w, r, err, "/add_job")
		return
	}
	h.done(w, r, jobPath(job.JobTitle), "Job posted.")
}

// Show handles GET /jobs/{job}
func (h *JobHandler) Show(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.GetByTitle(r.Context(), chi.URLParam(r, "job"))
	if err != nil {
		h.fail(w, r, err, "/jobs")
		return
	}
	h.page(w, r, "job", job)
}

// EditForm handles GET /jobs/{job}/edit_job
func (h *JobHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.GetByTitle(r.Context(), chi.URLParam(r, "job"))
	if err != nil {
		h.fail(w, r, err, "/jobs")
		return
	}
	h.page(w, r, "edit_job", job)
}

// Update handles PATCH /jobs/{job}/edit_job
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "job")
	form := jobPath(title) + "/edit_job"
	req, err := jobRequest(w, r)
	if err != nil {
		h.fail(w, r, err, form)
		return
	}

	job, err := h.jobService.Update(r.Context(), title, req)
	if err != nil {
		h.fail(w, r, err, form)
		return
	}
	h.done(w, r, jobPath(job.JobTitle), "Job has been updated.")
}

// Delete handles DELETE /jobs/{job}
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.jobService.Delete(r.Context(), chi.URLParam(r, "job")); err != nil {
		h.fail(w, r, err, "/jobs")
		return
	}
	h.done(w, r, "/jobs", "Job has been deleted.")
}

// Apply handles PATCH /job/{job}/applied. Applying twice is harmless.
func (h *JobHandler) Apply(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	title := chi.URLParam(r, "job")

	added, err := h.jobService.Apply(r.Context(), title, p.ID)
	if err != nil {
		h.fail(w, r, err, jobPath(title))
		return
	}
	msg := "You have applied to this job."
	if !added {
		msg = "You have already applied to this job."
	}
	h.done(w, r, jobPath(title), msg)
}

func jobRequest(w http.ResponseWriter, r *http.Request) (*model.JobRequest, error) {
	if err := parseForm(w, r); err != nil {
		return nil, errBadForm
	}

	req := &model.JobRequest{
		JobTitle:       r.FormValue("jobTitle"),
		CompanyName:    r.FormValue("companyName"),
		JobDescription: r.FormValue("jobDescription"),
		JobSkills:      r.FormValue("jobSkills"),
		ProjectTypes:   r.FormValue("projectTypes"),
	}
	if v, ok := formValue(r, "companyRating"); ok && v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, model.ErrCompanyRatingInvalid
		}
		req.CompanyRating = &rating
	}
	return req, nil
}
