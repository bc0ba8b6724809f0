package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Job is a listing posted by an account. PeopleApplied is a set of account ids.
type Job struct {
	ID             int64          `db:"id" json:"id"`
	JobTitle       string         `db:"job_title" json:"job_title"`
	CompanyName    string         `db:"company_name" json:"company_name"`
	CompanyRating  *float64       `db:"company_rating" json:"company_rating,omitempty"`
	JobDescription string         `db:"job_description" json:"job_description"`
	JobSkills      pq.StringArray `db:"job_skills" json:"job_skills"`
	ProjectTypes   pq.StringArray `db:"project_types" json:"project_types"`
	JobPosterID    int64          `db:"job_poster_id" json:"job_poster_id"`
	PeopleApplied  pq.Int64Array  `db:"people_applied" json:"people_applied"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// HasApplicant reports whether userID already applied.
func (j *Job) HasApplicant(userID int64) bool {
	for _, id := range j.PeopleApplied {
		if id == userID {
			return true
		}
	}
	return false
}

// JobRequest is the add/edit job form. JobSkills and ProjectTypes are comma-delimited.
type JobRequest struct {
	JobTitle       string
	CompanyName    string
	CompanyRating  *float64
	JobDescription string
	JobSkills      string
	ProjectTypes   string
}

// Job errors
var (
	ErrJobNotFound            = errors.New("job not found")
	ErrJobTitleTaken          = errors.New("job title already exists")
	ErrJobTitleRequired       = errors.New("job title is required")
	ErrCompanyRequired        = errors.New("company name is required")
	ErrJobDescriptionRequired = errors.New("job description is required")
	ErrCompanyRatingInvalid   = errors.New("company rating must be a number")
)
