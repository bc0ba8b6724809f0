package testutil

import (
	"context"
	"sort"
	"time"

	"workfolio/internal/model"
)

// UserRepo implements repository.UserRepository over a Store.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.Create"); err != nil {
		return err
	}
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return model.ErrUsernameExists
		}
	}
	now := time.Now().UTC()
	user.ID = r.s.id()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.FriendsList == nil {
		user.FriendsList = []string{}
	}
	r.s.users[user.ID] = copyUser(*user)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := copyUser(u)
	return &out, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.GetByUsername"); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.Username == username {
			out := copyUser(u)
			return &out, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *UserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) UpdateAccount(_ context.Context, id int64, username, phoneNumber string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.UpdateAccount"); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	for otherID, other := range r.s.users {
		if otherID != id && other.Username == username {
			return model.ErrUsernameExists
		}
	}
	u.Username = username
	u.PhoneNumber = phoneNumber
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return nil
}

func (r *UserRepo) UpdatePassword(_ context.Context, id int64, passwordHashed string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.UpdatePassword"); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHashed = passwordHashed
	r.s.users[id] = u
	return nil
}

func (r *UserRepo) CreateProfile(_ context.Context, id int64, profile *model.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.CreateProfile"); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	if u.Profile != nil {
		return model.ErrProfileExists
	}
	p := *profile
	u.Profile = &p
	r.s.users[id] = copyUser(u)
	return nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, id int64, profile *model.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.UpdateProfile"); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	if u.Profile == nil {
		return model.ErrProfileNotFound
	}
	p := *profile
	u.Profile = &p
	r.s.users[id] = copyUser(u)
	return nil
}

func (r *UserRepo) AppendFriend(_ context.Context, id int64, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.FriendsList = append(u.FriendsList, name)
	r.s.users[id] = u
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

// PortfolioRepo implements repository.PortfolioRepository over a Store.
type PortfolioRepo struct{ s *Store }

func (r *PortfolioRepo) Create(_ context.Context, portfolio *model.Portfolio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("portfolios.Create"); err != nil {
		return err
	}
	for _, p := range r.s.portfolios {
		if p.AuthorID == portfolio.AuthorID {
			return model.ErrPortfolioExists
		}
	}
	for _, p := range r.s.portfolios {
		if p.Title == portfolio.Title {
			return model.ErrPortfolioTitleTaken
		}
	}
	now := time.Now().UTC()
	portfolio.ID = r.s.id()
	portfolio.CreatedAt = now
	portfolio.UpdatedAt = now
	portfolio.CommentIDs = []int64{}
	r.s.portfolios[portfolio.ID] = copyPortfolio(*portfolio)
	return nil
}

func (r *PortfolioRepo) find(op string, match func(model.Portfolio) bool) (*model.Portfolio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(op); err != nil {
		return nil, err
	}
	for _, p := range r.s.portfolios {
		if match(p) {
			out := copyPortfolio(p)
			return &out, nil
		}
	}
	return nil, model.ErrPortfolioNotFound
}

func (r *PortfolioRepo) GetByID(_ context.Context, id int64) (*model.Portfolio, error) {
	return r.find("portfolios.GetByID", func(p model.Portfolio) bool { return p.ID == id })
}

func (r *PortfolioRepo) GetByTitle(_ context.Context, title string) (*model.Portfolio, error) {
	return r.find("portfolios.GetByTitle", func(p model.Portfolio) bool { return p.Title == title })
}

func (r *PortfolioRepo) GetByAuthorID(_ context.Context, authorID int64) (*model.Portfolio, error) {
	return r.find("portfolios.GetByAuthorID", func(p model.Portfolio) bool { return p.AuthorID == authorID })
}

func (r *PortfolioRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	_, err := r.GetByTitle(ctx, title)
	if err == model.ErrPortfolioNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *PortfolioRepo) List(_ context.Context, limit int) ([]model.Portfolio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Portfolio, 0, len(r.s.portfolios))
	for _, p := range r.s.portfolios {
		out = append(out, copyPortfolio(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PortfolioRepo) Update(_ context.Context, portfolio *model.Portfolio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("portfolios.Update"); err != nil {
		return err
	}
	cur, ok := r.s.portfolios[portfolio.ID]
	if !ok {
		return model.ErrPortfolioNotFound
	}
	for id, p := range r.s.portfolios {
		if id != portfolio.ID && p.Title == portfolio.Title {
			return model.ErrPortfolioTitleTaken
		}
	}
	cur.Title = portfolio.Title
	cur.Description = portfolio.Description
	cur.Tags = portfolio.Tags
	cur.Images = portfolio.Images
	cur.URL = portfolio.URL
	cur.UpdatedAt = time.Now().UTC()
	portfolio.UpdatedAt = cur.UpdatedAt
	r.s.portfolios[cur.ID] = copyPortfolio(cur)
	return nil
}

func (r *PortfolioRepo) AppendComment(_ context.Context, portfolioID, commentID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("portfolios.AppendComment"); err != nil {
		return false, err
	}
	p, ok := r.s.portfolios[portfolioID]
	if !ok {
		return false, model.ErrPortfolioNotFound
	}
	if p.HasComment(commentID) {
		return false, nil
	}
	p.CommentIDs = append(p.CommentIDs, commentID)
	r.s.portfolios[portfolioID] = p
	return true, nil
}

func (r *PortfolioRepo) RemoveComments(_ context.Context, commentIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("portfolios.RemoveComments"); err != nil {
		return err
	}
	drop := make(map[int64]struct{}, len(commentIDs))
	for _, id := range commentIDs {
		drop[id] = struct{}{}
	}
	for id, p := range r.s.portfolios {
		kept := make([]int64, 0, len(p.CommentIDs))
		for _, cid := range p.CommentIDs {
			if _, gone := drop[cid]; !gone {
				kept = append(kept, cid)
			}
		}
		p.CommentIDs = kept
		r.s.portfolios[id] = p
	}
	return nil
}

func (r *PortfolioRepo) DeleteByAuthor(_ context.Context, authorID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("portfolios.DeleteByAuthor"); err != nil {
		return 0, err
	}
	var n int64
	for id, p := range r.s.portfolios {
		if p.AuthorID == authorID {
			delete(r.s.portfolios, id)
			n++
		}
	}
	return n, nil
}

// CommentRepo implements repository.CommentRepository over a Store.
type CommentRepo struct{ s *Store }

func (r *CommentRepo) Create(_ context.Context, comment *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("comments.Create"); err != nil {
		return err
	}
	now := time.Now().UTC()
	comment.ID = r.s.id()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r *CommentRepo) GetByID(_ context.Context, id int64) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("comments.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	return &c, nil
}

func (r *CommentRepo) GetByIDs(_ context.Context, ids []int64) ([]model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.s.comments[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CommentRepo) Update(_ context.Context, id int64, body string) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	c.Body = body
	c.UpdatedAt = time.Now().UTC()
	r.s.comments[id] = c
	return &c, nil
}

func (r *CommentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("comments.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.comments[id]; !ok {
		return model.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *CommentRepo) ListIDsByAuthor(_ context.Context, authorID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("comments.ListIDsByAuthor"); err != nil {
		return nil, err
	}
	ids := []int64{}
	for id, c := range r.s.comments {
		if c.AuthorID == authorID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *CommentRepo) deleteWhere(op string, match func(model.Comment) bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(op); err != nil {
		return 0, err
	}
	var n int64
	for id, c := range r.s.comments {
		if match(c) {
			delete(r.s.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *CommentRepo) DeleteByAuthor(_ context.Context, authorID int64) (int64, error) {
	return r.deleteWhere("comments.DeleteByAuthor", func(c model.Comment) bool { return c.AuthorID == authorID })
}

func (r *CommentRepo) DeleteByPortfolio(_ context.Context, portfolioID int64) (int64, error) {
	return r.deleteWhere("comments.DeleteByPortfolio", func(c model.Comment) bool { return c.PortfolioID == portfolioID })
}

// JobRepo implements repository.JobRepository over a Store.
type JobRepo struct{ s *Store }

func (r *JobRepo) Create(_ context.Context, job *model.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("jobs.Create"); err != nil {
		return err
	}
	for _, j := range r.s.jobs {
		if j.JobTitle == job.JobTitle {
			return model.ErrJobTitleTaken
		}
	}
	now := time.Now().UTC()
	job.ID = r.s.id()
	job.CreatedAt = now
	job.UpdatedAt = now
	job.PeopleApplied = []int64{}
	r.s.jobs[job.ID] = copyJob(*job)
	return nil
}

func (r *JobRepo) find(op string, match func(model.Job) bool) (*model.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(op); err != nil {
		return nil, err
	}
	for _, j := range r.s.jobs {
		if match(j) {
			out := copyJob(j)
			return &out, nil
		}
	}
	return nil, model.ErrJobNotFound
}

func (r *JobRepo) GetByID(_ context.Context, id int64) (*model.Job, error) {
	return r.find("jobs.GetByID", func(j model.Job) bool { return j.ID == id })
}

func (r *JobRepo) GetByTitle(_ context.Context, title string) (*model.Job, error) {
	return r.find("jobs.GetByTitle", func(j model.Job) bool { return j.JobTitle == title })
}

func (r *JobRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	_, err := r.GetByTitle(ctx, title)
	if err == model.ErrJobNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *JobRepo) List(_ context.Context, limit int) ([]model.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Job, 0, len(r.s.jobs))
	for _, j := range r.s.jobs {
		out = append(out, copyJob(j))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *JobRepo) Update(_ context.Context, job *model.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("jobs.Update"); err != nil {
		return err
	}
	cur, ok := r.s.jobs[job.ID]
	if !ok {
		return model.ErrJobNotFound
	}
	for id, j := range r.s.jobs {
		if id != job.ID && j.JobTitle == job.JobTitle {
			return model.ErrJobTitleTaken
		}
	}
	cur.JobTitle = job.JobTitle
	cur.CompanyName = job.CompanyName
	cur.CompanyRating = job.CompanyRating
	cur.JobDescription = job.JobDescription
	cur.JobSkills = job.JobSkills
	cur.ProjectTypes = job.ProjectTypes
	cur.UpdatedAt = time.Now().UTC()
	r.s.jobs[cur.ID] = copyJob(cur)
	return nil
}

func (r *JobRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[id]; !ok {
		return model.ErrJobNotFound
	}
	delete(r.s.jobs, id)
	return nil
}

func (r *JobRepo) AddApplicant(_ context.Context, jobID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[jobID]
	if !ok {
		return false, model.ErrJobNotFound
	}
	if j.HasApplicant(userID) {
		return false, nil
	}
	j.PeopleApplied = append(j.PeopleApplied, userID)
	r.s.jobs[jobID] = j
	return true, nil
}

func (r *JobRepo) RemoveApplicant(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("jobs.RemoveApplicant"); err != nil {
		return 0, err
	}
	var n int64
	for id, j := range r.s.jobs {
		if !j.HasApplicant(userID) {
			continue
		}
		kept := make([]int64, 0, len(j.PeopleApplied))
		for _, a := range j.PeopleApplied {
			if a != userID {
				kept = append(kept, a)
			}
		}
		j.PeopleApplied = kept
		r.s.jobs[id] = j
		n++
	}
	return n, nil
}

func (r *JobRepo) DeleteByPoster(_ context.Context, posterID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("jobs.DeleteByPoster"); err != nil {
		return 0, err
	}
	var n int64
	for id, j := range r.s.jobs {
		if j.JobPosterID == posterID {
			delete(r.s.jobs, id)
			n++
		}
	}
	return n, nil
}

// InconsistencyRepo implements repository.InconsistencyRepository over a Store.
type InconsistencyRepo struct{ s *Store }

func (r *InconsistencyRepo) Create(_ context.Context, rec *model.Inconsistency) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("inconsistencies.Create"); err != nil {
		return err
	}
	rec.ID = r.s.id()
	rec.CreatedAt = time.Now().UTC()
	r.s.inconsistencies[rec.ID] = *rec
	return nil
}

func (r *InconsistencyRepo) GetByID(_ context.Context, id int64) (*model.Inconsistency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.inconsistencies[id]
	if !ok {
		return nil, model.ErrInconsistencyNotFound
	}
	return &rec, nil
}

func (r *InconsistencyRepo) ListUnresolved(_ context.Context, limit int) ([]model.Inconsistency, error) {
	out := r.s.Unresolved()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InconsistencyRepo) IncrementAttempts(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.inconsistencies[id]
	if !ok {
		return model.ErrInconsistencyNotFound
	}
	rec.Attempts++
	r.s.inconsistencies[id] = rec
	return nil
}

func (r *InconsistencyRepo) Resolve(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.inconsistencies[id]
	if !ok {
		return model.ErrInconsistencyNotFound
	}
	if rec.ResolvedAt == nil {
		now := time.Now().UTC()
		rec.ResolvedAt = &now
		r.s.inconsistencies[id] = rec
	}
	return nil
}
