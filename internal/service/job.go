package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"workfolio/internal/model"
	"workfolio/internal/repository"
)

type JobService struct {
	jobs        repository.JobRepository
	consistency *ConsistencyManager
	log         *zap.Logger
}

func NewJobService(jobs repository.JobRepository, consistency *ConsistencyManager, log *zap.Logger) *JobService {
	return &JobService{jobs: jobs, consistency: consistency, log: log}
}

func (s *JobService) List(ctx context.Context) ([]model.Job, error) {
	return s.jobs.List(ctx, model.ListPageSize)
}

func (s *JobService) GetByTitle(ctx context.Context, title string) (*model.Job, error) {
	return s.jobs.GetByTitle(ctx, title)
}

// applyJobRequest validates req and copies it onto j. Skills and project
// types are truncated to their bounds.
func applyJobRequest(j *model.Job, req *model.JobRequest) error {
	title := strings.TrimSpace(req.JobTitle)
	if title == "" {
		return model.ErrJobTitleRequired
	}
	if len([]rune(title)) > model.MaxTitleLength {
		return model.ErrTitleTooLong
	}
	company := strings.TrimSpace(req.CompanyName)
	if company == "" {
		return model.ErrCompanyRequired
	}
	description := strings.TrimSpace(req.JobDescription)
	if description == "" {
		return model.ErrJobDescriptionRequired
	}

	j.JobTitle = title
	j.CompanyName = company
	j.CompanyRating = req.CompanyRating
	j.JobDescription = description
	j.JobSkills = model.SplitBounded(req.JobSkills, model.MaxBoundedItems)
	j.ProjectTypes = model.SplitBounded(req.ProjectTypes, model.MaxBoundedItems)
	return nil
}

// Create posts a job as the principal.
func (s *JobService) Create(ctx context.Context, p *model.Principal, req *model.JobRequest) (*model.Job, error) {
	if p == nil {
		return nil, model.ErrUnauthenticated
	}

	job := &model.Job{JobPosterID: p.ID}
	if err := applyJobRequest(job, req); err != nil {
		return nil, err
	}
	if err := s.consistency.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info("job created", zap.Int64("job_id", job.ID), zap.Int64("poster_id", p.ID))
	return job, nil
}

// Update replaces the editable fields of the job named title. The poster and
// the applicant set are never changed here.
func (s *JobService) Update(ctx context.Context, title string, req *model.JobRequest) (*model.Job, error) {
	job, err := s.jobs.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	oldTitle := job.JobTitle
	if err := applyJobRequest(job, req); err != nil {
		return nil, err
	}
	if job.JobTitle != oldTitle {
		taken, err := s.jobs.ExistsByTitle(ctx, job.JobTitle)
		if err != nil {
			return nil, fmt.Errorf("check job title: %w", err)
		}
		if taken {
			return nil, model.ErrJobTitleTaken
		}
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) Delete(ctx context.Context, title string) error {
	job, err := s.jobs.GetByTitle(ctx, title)
	if err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, job.ID); err != nil {
		return err
	}

	s.log.Info("job deleted", zap.Int64("job_id", job.ID))
	return nil
}

// Apply adds the account to the job's applicant set. Applying twice is a
// no-op; the bool reports whether this call added it.
func (s *JobService) Apply(ctx context.Context, title string, userID int64) (bool, error) {
	job, err := s.jobs.GetByTitle(ctx, title)
	if err != nil {
		return false, err
	}
	if job.HasApplicant(userID) {
		return false, nil
	}
	return s.jobs.AddApplicant(ctx, job.ID, userID)
}
