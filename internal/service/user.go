package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"workfolio/internal/model"
	"workfolio/internal/repository"
)

// UserService handles accounts, their embedded profile and friends list.
type UserService struct {
	repo        repository.UserRepository
	portfolios  repository.PortfolioRepository
	creds       *CredentialStore
	consistency *ConsistencyManager
	log         *zap.Logger
}

func NewUserService(
	repo repository.UserRepository,
	portfolios repository.PortfolioRepository,
	creds *CredentialStore,
	consistency *ConsistencyManager,
	log *zap.Logger,
) *UserService {
	return &UserService{
		repo:        repo,
		portfolios:  portfolios,
		creds:       creds,
		consistency: consistency,
		log:         log,
	}
}

// Register creates an account. When the signup form carries purpose,
// experience or an image, a profile is seeded from them.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, model.ErrUsernameRequired
	}
	if req.Password == "" {
		return nil, model.ErrPasswordRequired
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		return nil, model.ErrPhoneRequired
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashed, err := s.creds.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       username,
		PasswordHashed: hashed,
		PhoneNumber:    phone,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	purpose := strings.TrimSpace(req.Purpose)
	experience := strings.TrimSpace(req.Experience)
	image := strings.TrimSpace(req.ProfileImage)
	if purpose != "" || experience != "" || image != "" {
		profile := &model.Profile{
			Bio:           experience,
			Purpose:       purpose,
			Skills:        []string{},
			ProfileImage:  image,
			ProfileAuthor: user.ID,
			CreatedAt:     time.Now().UTC(),
		}
		// The account stands on its own; a profile can still be added later.
		if err := s.repo.CreateProfile(ctx, user.ID, profile); err != nil {
			s.log.Warn("signup profile not seeded", zap.Int64("user_id", user.ID), zap.Error(err))
		} else {
			user.Profile = profile
		}
	}

	return user, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Don't reveal whether username exists or not
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.creds.Verify(req.Password, user.PasswordHashed) {
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// View returns the account page: the account and its portfolio, if any.
func (s *UserService) View(ctx context.Context, username string) (*model.AccountView, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	view := &model.AccountView{User: user}
	p, err := s.portfolios.GetByAuthorID(ctx, user.ID)
	switch {
	case err == nil:
		view.Portfolio = p
	case !errors.Is(err, model.ErrPortfolioNotFound):
		return nil, err
	}
	return view, nil
}

// UpdateAccount edits username and phone. Ownership is keyed by id, so a
// rename never changes who owns what.
func (s *UserService) UpdateAccount(ctx context.Context, id int64, req *model.UpdateAccountRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, model.ErrUsernameRequired
		}
		if username != user.Username {
			exists, err := s.repo.ExistsByUsername(ctx, username)
			if err != nil {
				return nil, fmt.Errorf("failed to check username: %w", err)
			}
			if exists {
				return nil, model.ErrUsernameExists
			}
			user.Username = username
		}
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		if phone == "" {
			return nil, model.ErrPhoneRequired
		}
		user.PhoneNumber = phone
	}

	if err := s.repo.UpdateAccount(ctx, user.ID, user.Username, user.PhoneNumber); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword stores a new hash only when the password actually changed.
func (s *UserService) ChangePassword(ctx context.Context, id int64, password string) error {
	if password == "" {
		return model.ErrPasswordRequired
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hashed, changed, err := s.creds.Rehash(user.PasswordHashed, password)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.repo.UpdatePassword(ctx, id, hashed)
}

// AddFriend appends name to the caller's own friends list. No reciprocity,
// duplicates kept, and name need not be an existing account.
func (s *UserService) AddFriend(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ErrFriendRequired
	}
	return s.repo.AppendFriend(ctx, id, name)
}

// CreateProfile adds the one profile an account may have.
func (s *UserService) CreateProfile(ctx context.Context, id int64, req *model.ProfileRequest) (*model.Profile, error) {
	profile := &model.Profile{
		Bio:           strings.TrimSpace(req.Bio),
		Purpose:       strings.TrimSpace(req.Purpose),
		Skills:        model.SplitBounded(req.Skills, model.MaxBoundedItems),
		ProfileImage:  strings.TrimSpace(req.ProfileImage),
		ProfileAuthor: id,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateProfile(ctx, id, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile replaces the editable fields. Author and creation time are kept.
// An empty image field keeps the current image.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, req *model.ProfileRequest) (*model.Profile, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.HasProfile() {
		return nil, model.ErrProfileNotFound
	}

	profile := *user.Profile
	profile.Bio = strings.TrimSpace(req.Bio)
	profile.Purpose = strings.TrimSpace(req.Purpose)
	profile.Skills = model.SplitBounded(req.Skills, model.MaxBoundedItems)
	if img := strings.TrimSpace(req.ProfileImage); img != "" {
		profile.ProfileImage = img
	}

	if err := s.repo.UpdateProfile(ctx, id, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Delete removes the account and cascades to everything it owns.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.consistency.DeleteAccount(ctx, id)
}
