package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"workfolio/internal/model"
	"workfolio/internal/testutil"
)

// fixture wires every service over one in-memory store.
type fixture struct {
	store       *testutil.Store
	pub         *testutil.Publisher
	consistency *ConsistencyManager
	authz       *Authorizer
	users       *UserService
	portfolios  *PortfolioService
	comments    *CommentService
	jobs        *JobService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := zap.NewNop()
	store := testutil.NewStore()
	pub := &testutil.Publisher{}

	users := store.Users()
	portfolios := store.Portfolios()
	comments := store.Comments()
	jobs := store.Jobs()

	consistency := NewConsistencyManager(users, portfolios, comments, jobs, store.Inconsistencies(), pub, log)
	return &fixture{
		store:       store,
		pub:         pub,
		consistency: consistency,
		authz:       NewAuthorizer(users, portfolios, comments, jobs, log),
		users:       NewUserService(users, portfolios, NewCredentialStore(), consistency, log),
		portfolios:  NewPortfolioService(portfolios, comments, users, consistency, log),
		comments:    NewCommentService(comments, portfolios, consistency, log),
		jobs:        NewJobService(jobs, consistency, log),
	}
}

// account inserts a user directly, skipping bcrypt, and returns its principal.
func (f *fixture) account(t *testing.T, username string) *model.Principal {
	t.Helper()
	u := &model.User{Username: username, PasswordHashed: "unused", PhoneNumber: "555-0100"}
	if err := f.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create account %q: %v", username, err)
	}
	return &model.Principal{ID: u.ID, Username: u.Username, SessionID: "sess-" + username}
}

func (f *fixture) portfolio(t *testing.T, p *model.Principal, title string) *model.Portfolio {
	t.Helper()
	pf, err := f.portfolios.Create(context.Background(), p, &model.CreatePortfolioRequest{
		Title:       title,
		Description: "work samples",
		Tags:        "go",
	})
	if err != nil {
		t.Fatalf("create portfolio %q: %v", title, err)
	}
	return pf
}
