package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"workfolio/internal/model"
)

const jobColumns = `id, job_title, company_name, company_rating, job_description, job_skills, project_types, job_poster_id, people_applied, created_at, updated_at`

type jobRepository struct {
	base
}

func NewJobRepository(db *sqlx.DB, timeout time.Duration) JobRepository {
	return &jobRepository{base: newBase(db, timeout, "jobs")}
}

func (r *jobRepository) Create(ctx context.Context, j *model.Job) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO jobs (job_title, company_name, company_rating, job_description, job_skills, project_types, job_poster_id, people_applied)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '{}')
		RETURNING id, people_applied, created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		j.JobTitle, j.CompanyName, j.CompanyRating, j.JobDescription, j.JobSkills, j.ProjectTypes, j.JobPosterID)
	if err := row.Scan(&j.ID, &j.PeopleApplied, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.ErrJobTitleTaken
		}
		return r.storeErr(ctx, "insert job", err)
	}
	return nil
}

func (r *jobRepository) get(ctx context.Context, op, where string, arg interface{}) (*model.Job, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var j model.Job
	err := r.db.GetContext(ctx, &j, `SELECT `+jobColumns+` FROM jobs WHERE `+where, arg)
	if err == sql.ErrNoRows {
		return nil, model.ErrJobNotFound
	}
	if err != nil {
		return nil, r.storeErr(ctx, op, err)
	}
	return &j, nil
}

func (r *jobRepository) GetByID(ctx context.Context, id int64) (*model.Job, error) {
	return r.get(ctx, "get job", `id = $1`, id)
}

func (r *jobRepository) GetByTitle(ctx context.Context, title string) (*model.Job, error) {
	return r.get(ctx, "get job by title", `job_title = $1`, title)
}

func (r *jobRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM jobs WHERE job_title = $1)`, title)
	if err != nil {
		return false, r.storeErr(ctx, "check job title", err)
	}
	return exists, nil
}

func (r *jobRepository) List(ctx context.Context, limit int) ([]model.Job, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	jobs := []model.Job{}
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, r.storeErr(ctx, "list jobs", err)
	}
	return jobs, nil
}

// Update writes the editable fields. Poster and applicants are never touched here.
func (r *jobRepository) Update(ctx context.Context, j *model.Job) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE jobs
		SET job_title = $2, company_name = $3, company_rating = $4, job_description = $5,
			job_skills = $6, project_types = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.GetContext(ctx, &j.UpdatedAt, query,
		j.ID, j.JobTitle, j.CompanyName, j.CompanyRating, j.JobDescription, j.JobSkills, j.ProjectTypes)
	if err == sql.ErrNoRows {
		return model.ErrJobNotFound
	}
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.ErrJobTitleTaken
		}
		return r.storeErr(ctx, "update job", err)
	}
	return nil
}

func (r *jobRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return r.storeErr(ctx, "delete job", err)
	}
	return requireRow(res, model.ErrJobNotFound)
}

func (r *jobRepository) AddApplicant(ctx context.Context, jobID, userID int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET people_applied = array_append(people_applied, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(people_applied))
	`, jobID, userID)
	if err != nil {
		return false, r.storeErr(ctx, "add applicant", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, jobID); err != nil {
		return false, r.storeErr(ctx, "check job existence", err)
	}
	if !exists {
		return false, model.ErrJobNotFound
	}
	return false, nil
}

// RemoveApplicant strips userID from every applicant set and returns how many jobs changed.
func (r *jobRepository) RemoveApplicant(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET people_applied = array_remove(people_applied, $1), updated_at = NOW()
		WHERE $1 = ANY(people_applied)
	`, userID)
	if err != nil {
		return 0, r.storeErr(ctx, "remove applicant", err)
	}
	return res.RowsAffected()
}

func (r *jobRepository) DeleteByPoster(ctx context.Context, posterID int64) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE job_poster_id = $1`, posterID)
	if err != nil {
		return 0, r.storeErr(ctx, "delete jobs by poster", err)
	}
	return res.RowsAffected()
}
