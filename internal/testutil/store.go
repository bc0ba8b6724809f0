// Package testutil provides in-memory repositories and fixtures shared by
// service and transport tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"workfolio/internal/model"
	"workfolio/internal/queue"
)

// Store is an in-memory stand-in for the Postgres schema, including its
// unique constraints. Records are copied in and out so callers cannot mutate
// stored state by accident.
type Store struct {
	mu     sync.Mutex
	nextID int64
	fail   map[string]error

	users           map[int64]model.User
	portfolios      map[int64]model.Portfolio
	comments        map[int64]model.Comment
	jobs            map[int64]model.Job
	inconsistencies map[int64]model.Inconsistency
}

func NewStore() *Store {
	return &Store{
		fail:            make(map[string]error),
		users:           make(map[int64]model.User),
		portfolios:      make(map[int64]model.Portfolio),
		comments:        make(map[int64]model.Comment),
		jobs:            make(map[int64]model.Job),
		inconsistencies: make(map[int64]model.Inconsistency),
	}
}

// FailOn makes the named operation (for example "portfolios.DeleteByAuthor")
// return err until Heal is called.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// Heal clears every injected failure.
func (s *Store) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = make(map[string]error)
}

func (s *Store) failure(op string) error {
	return s.fail[op]
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Users() *UserRepo                   { return &UserRepo{s} }
func (s *Store) Portfolios() *PortfolioRepo         { return &PortfolioRepo{s} }
func (s *Store) Comments() *CommentRepo             { return &CommentRepo{s} }
func (s *Store) Jobs() *JobRepo                     { return &JobRepo{s} }
func (s *Store) Inconsistencies() *InconsistencyRepo { return &InconsistencyRepo{s} }

// Counts for assertions.

func (s *Store) CountComments(pred func(model.Comment) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.comments {
		if pred(c) {
			n++
		}
	}
	return n
}

func (s *Store) CountPortfolios(pred func(model.Portfolio) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.portfolios {
		if pred(p) {
			n++
		}
	}
	return n
}

func (s *Store) CountJobs(pred func(model.Job) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, j := range s.jobs {
		if pred(j) {
			n++
		}
	}
	return n
}

// Unresolved returns open inconsistency records ordered by id.
func (s *Store) Unresolved() []model.Inconsistency {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Inconsistency
	for _, rec := range s.inconsistencies {
		if rec.ResolvedAt == nil {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyUser(u model.User) model.User {
	u.FriendsList = append([]string(nil), u.FriendsList...)
	if u.Profile != nil {
		p := *u.Profile
		p.Skills = append([]string(nil), p.Skills...)
		u.Profile = &p
	}
	return u
}

func copyPortfolio(p model.Portfolio) model.Portfolio {
	p.Tags = append([]string(nil), p.Tags...)
	p.Images = append([]string(nil), p.Images...)
	p.CommentIDs = append([]int64{}, p.CommentIDs...)
	return p
}

func copyJob(j model.Job) model.Job {
	j.JobSkills = append([]string(nil), j.JobSkills...)
	j.ProjectTypes = append([]string(nil), j.ProjectTypes...)
	j.PeopleApplied = append([]int64{}, j.PeopleApplied...)
	return j
}

// Publisher records published events in memory.
type Publisher struct {
	mu     sync.Mutex
	Events []queue.ConsistencyEvent
	Err    error
}

func (p *Publisher) Publish(_ context.Context, _ string, event queue.ConsistencyEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	p.Events = append(p.Events, event)
	return time.Now().Format("20060102150405.000000000"), nil
}

func (p *Publisher) Published() []queue.ConsistencyEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.ConsistencyEvent(nil), p.Events...)
}
