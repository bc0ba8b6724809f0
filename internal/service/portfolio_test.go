package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workfolio/internal/model"
)

func strPtr(s string) *string { return &s }

func TestPortfolioService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.account(t, "alice")
	bob := f.account(t, "bob")
	f.portfolio(t, alice, "Alice Works")
	f.portfolio(t, bob, "Bob Works")

	_, err := f.portfolios.Update(ctx, "Alice Works", &model.UpdatePortfolioRequest{Title: strPtr("Bob Works")})
	assert.ErrorIs(t, err, model.ErrPortfolioTitleTaken)

	_, err = f.portfolios.Update(ctx, "Alice Works", &model.UpdatePortfolioRequest{Description: strPtr("  ")})
	assert.ErrorIs(t, err, model.ErrDescriptionRequired)

	updated, err := f.portfolios.Update(ctx, "Alice Works", &model.UpdatePortfolioRequest{
		Title:  strPtr("Alice Portfolio"),
		Tags:   strPtr("one,two,three,four"),
		Images: []*string{strPtr("a"), strPtr("b"), strPtr("c"), strPtr("d")},
		URL:    strPtr("https://alice.dev"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Portfolio", updated.Title)
	assert.Equal(t, "work samples", updated.Description)
	assert.Len(t, updated.Tags, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string(updated.Images))
	require.NotNil(t, updated.URL)
	assert.Equal(t, alice.ID, updated.AuthorID, "author never changes on edit")

	_, err = f.portfolios.GetByTitle(ctx, "Alice Works")
	assert.ErrorIs(t, err, model.ErrPortfolioNotFound)
}

func TestPortfolioService_UpdateImageSlots(t *testing.T) {
	tests := []struct {
		name  string
		slots []*string
		want  []string
	}{
		{"middle slot replaced", []*string{nil, strPtr("new.jpg"), nil}, []string{"a.jpg", "new.jpg", "c.jpg"}},
		{"only first slot sent", []*string{strPtr("x.jpg")}, []string{"x.jpg", "b.jpg", "c.jpg"}},
		{"cleared slot dropped", []*string{nil, strPtr(""), nil}, []string{"a.jpg", "c.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			alice := f.account(t, "alice")
			_, err := f.portfolios.Create(ctx, alice, &model.CreatePortfolioRequest{
				Title:       "Gallery",
				Description: "shots",
				Images:      []string{"a.jpg", "b.jpg", "c.jpg"},
			})
			require.NoError(t, err)

			updated, err := f.portfolios.Update(ctx, "Gallery", &model.UpdatePortfolioRequest{Images: tt.slots})
			require.NoError(t, err)
			assert.Equal(t, tt.want, []string(updated.Images))

			stored, err := f.portfolios.GetByTitle(ctx, "Gallery")
			require.NoError(t, err)
			assert.Equal(t, tt.want, []string(stored.Images))
		})
	}
}

func TestPortfolioService_ViewCommentsInListOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.account(t, "alice")
	bob := f.account(t, "bob")
	f.portfolio(t, alice, "Alice Works")

	var want []string
	for i, who := range []*model.Principal{bob, alice, bob} {
		body := []string{"first", "second", "third"}[i]
		_, err := f.comments.Create(ctx, who, "Alice Works", body)
		require.NoError(t, err)
		want = append(want, body)
	}

	view, err := f.portfolios.View(ctx, "Alice Works")
	require.NoError(t, err)
	require.NotNil(t, view.Author)
	assert.Equal(t, "alice", view.Author.Username)

	var got []string
	for _, c := range view.Comments {
		got = append(got, c.Body)
	}
	assert.Equal(t, want, got)
}

func TestPortfolioService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.account(t, "alice")
	ctx := context.Background()

	_, err := f.portfolios.Create(ctx, nil, &model.CreatePortfolioRequest{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
	_, err = f.portfolios.Create(ctx, alice, &model.CreatePortfolioRequest{Description: "d"})
	assert.ErrorIs(t, err, model.ErrTitleRequired)
	_, err = f.portfolios.Create(ctx, alice, &model.CreatePortfolioRequest{Title: "t"})
	assert.ErrorIs(t, err, model.ErrDescriptionRequired)
}

func TestCommentService_ScopedToPortfolio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.account(t, "alice")
	bob := f.account(t, "bob")
	f.portfolio(t, alice, "Alice Works")
	f.portfolio(t, bob, "Bob Works")

	c, err := f.comments.Create(ctx, bob, "Alice Works", "nice")
	require.NoError(t, err)

	_, err = f.comments.Get(ctx, "Bob Works", c.ID)
	assert.ErrorIs(t, err, model.ErrCommentNotFound)

	updated, err := f.comments.Update(ctx, "Alice Works", c.ID, "very nice")
	require.NoError(t, err)
	assert.Equal(t, "very nice", updated.Body)

	_, err = f.comments.Update(ctx, "Alice Works", c.ID, "")
	assert.ErrorIs(t, err, model.ErrContentRequired)

	_, err = f.comments.Create(ctx, bob, "Missing", "x")
	assert.ErrorIs(t, err, model.ErrPortfolioNotFound)
}

func TestJobService_UpdateAndApply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.account(t, "alice")
	bob := f.account(t, "bob")

	_, err := f.jobs.Create(ctx, alice, &model.JobRequest{JobTitle: "Go Dev", CompanyName: "Acme", JobDescription: "d"})
	require.NoError(t, err)
	_, err = f.jobs.Create(ctx, alice, &model.JobRequest{JobTitle: "SRE", CompanyName: "Acme", JobDescription: "d"})
	require.NoError(t, err)

	_, err = f.jobs.Update(ctx, "Go Dev", &model.JobRequest{JobTitle: "SRE", CompanyName: "Acme", JobDescription: "d"})
	assert.ErrorIs(t, err, model.ErrJobTitleTaken)

	_, err = f.jobs.Create(ctx, alice, &model.JobRequest{JobTitle: "x", JobDescription: "d"})
	assert.ErrorIs(t, err, model.ErrCompanyRequired)

	added, err := f.jobs.Apply(ctx, "Go Dev", bob.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.jobs.Apply(ctx, "Go Dev", bob.ID)
	require.NoError(t, err)
	assert.False(t, added)

	job, err := f.jobs.GetByTitle(ctx, "Go Dev")
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, []int64(job.PeopleApplied))

	require.NoError(t, f.jobs.Delete(ctx, "Go Dev"))
	assert.ErrorIs(t, f.jobs.Delete(ctx, "Go Dev"), model.ErrJobNotFound)
}
