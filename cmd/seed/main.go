// Command seed fills a development database with fake accounts,
// portfolios, comments and job postings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"workfolio/internal/config"
	"workfolio/internal/database"
	"workfolio/internal/logger"
	"workfolio/internal/model"
	"workfolio/internal/queue"
	"workfolio/internal/redis"
	"workfolio/internal/repository"
	"workfolio/internal/service"
)

const seedPassword = "password123"

func main() {
	numUsers := flag.Int("users", 20, "Number of accounts to create")
	numJobs := flag.Int("jobs", 15, "Number of job postings to create")
	numComments := flag.Int("comments", 3, "Comments per portfolio")
	seed := flag.Int64("seed", 0, "Fixed faker seed, 0 for random")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx := context.Background()

	db, err := database.Connect(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		zl.Fatal("failed to apply schema", zap.Error(err))
	}

	rdb, err := redis.NewClient(cfg.RedisURL, zl)
	if err != nil {
		zl.Fatal("failed to create redis client", zap.Error(err))
	}
	defer rdb.Close()

	users := repository.NewUserRepository(db, cfg.DBTimeout)
	portfolios := repository.NewPortfolioRepository(db, cfg.DBTimeout)
	comments := repository.NewCommentRepository(db, cfg.DBTimeout)
	jobs := repository.NewJobRepository(db, cfg.DBTimeout)
	consistency := service.NewConsistencyManager(users, portfolios, comments, jobs,
		repository.NewInconsistencyRepository(db, cfg.DBTimeout), queue.NewPublisher(rdb.Client, zl), zl)

	s := &seeder{
		users:      service.NewUserService(users, portfolios, service.NewCredentialStore(), consistency, zl),
		portfolios: service.NewPortfolioService(portfolios, comments, users, consistency, zl),
		comments:   service.NewCommentService(comments, portfolios, consistency, zl),
		jobs:       service.NewJobService(jobs, consistency, zl),
		log:        zl,
	}
	gofakeit.Seed(*seed)

	principals, err := s.accounts(ctx, *numUsers)
	if err != nil {
		zl.Fatal("account seeding failed", zap.Error(err))
	}
	titles, err := s.portfolioSet(ctx, principals)
	if err != nil {
		zl.Fatal("portfolio seeding failed", zap.Error(err))
	}
	if err := s.commentSet(ctx, principals, titles, *numComments); err != nil {
		zl.Fatal("comment seeding failed", zap.Error(err))
	}
	if err := s.jobSet(ctx, principals, *numJobs); err != nil {
		zl.Fatal("job seeding failed", zap.Error(err))
	}

	zl.Info("seeding complete",
		zap.Int("accounts", len(principals)),
		zap.Int("portfolios", len(titles)),
		zap.String("password", seedPassword))
}

type seeder struct {
	users      *service.UserService
	portfolios *service.PortfolioService
	comments   *service.CommentService
	jobs       *service.JobService
	log        *zap.Logger
}

func (s *seeder) accounts(ctx context.Context, n int) ([]*model.Principal, error) {
	out := make([]*model.Principal, 0, n)
	for len(out) < n {
		u, err := s.users.Register(ctx, &model.RegisterRequest{
			Username:     gofakeit.Username(),
			Password:     seedPassword,
			PhoneNumber:  gofakeit.Phone(),
			Purpose:      gofakeit.RandomString([]string{"Hiring", "Looking for work", "Freelancing"}),
			Experience:   gofakeit.Sentence(10),
			ProfileImage: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
		})
		if errors.Is(err, model.ErrUsernameExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, &model.Principal{ID: u.ID, Username: u.Username})
	}
	return out, nil
}

// portfolioSet gives every second account a portfolio.
func (s *seeder) portfolioSet(ctx context.Context, principals []*model.Principal) ([]string, error) {
	var titles []string
	for i, p := range principals {
		if i%2 == 1 {
			continue
		}
		portfolio, err := s.portfolios.Create(ctx, p, &model.CreatePortfolioRequest{
			Title:       gofakeit.AppName() + " " + gofakeit.Word(),
			Description: gofakeit.Paragraph(1, 3, 12, " "),
			Tags:        strings.Join([]string{gofakeit.ProgrammingLanguage(), gofakeit.HackerNoun(), gofakeit.HackerAdjective()}, ", "),
			Images: []string{
				fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
				fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
			},
			URL: gofakeit.URL(),
		})
		if errors.Is(err, model.ErrPortfolioTitleTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		titles = append(titles, portfolio.Title)
	}
	return titles, nil
}

func (s *seeder) commentSet(ctx context.Context, principals []*model.Principal, titles []string, perPortfolio int) error {
	for _, title := range titles {
		for i := 0; i < perPortfolio; i++ {
			author := principals[gofakeit.Number(0, len(principals)-1)]
			if _, err := s.comments.Create(ctx, author, title, gofakeit.Sentence(12)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) jobSet(ctx context.Context, principals []*model.Principal, n int) error {
	for created := 0; created < n; {
		poster := principals[gofakeit.Number(0, len(principals)-1)]
		rating := gofakeit.Float64Range(1, 5)
		job, err := s.jobs.Create(ctx, poster, &model.JobRequest{
			JobTitle:       gofakeit.JobTitle() + " at " + gofakeit.Company(),
			CompanyName:    gofakeit.Company(),
			CompanyRating:  &rating,
			JobDescription: gofakeit.Paragraph(1, 2, 15, " "),
			JobSkills:      strings.Join([]string{gofakeit.ProgrammingLanguage(), gofakeit.ProgrammingLanguage()}, ", "),
			ProjectTypes:   gofakeit.RandomString([]string{"Contract", "Full time", "Part time"}),
		})
		if errors.Is(err, model.ErrJobTitleTaken) {
			continue
		}
		if err != nil {
			return err
		}
		applicant := principals[gofakeit.Number(0, len(principals)-1)]
		if _, err := s.jobs.Apply(ctx, job.JobTitle, applicant.ID); err != nil {
			return err
		}
		created++
	}
	return nil
}
