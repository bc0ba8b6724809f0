package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"workfolio/internal/model"
	"workfolio/internal/repository"
)

// =============================================================================
// MOCK REPOSITORY
// =============================================================================
//
// Each test sets only the functions it cares about. Calls to anything else
// hit the embedded nil interface and panic, which flags an unexpected call.

type mockUserRepository struct {
	repository.UserRepository

	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	createProfileFn    func(ctx context.Context, id int64, profile *model.Profile) error

	createCalls         []*model.User
	updatePasswordCalls []string
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) CreateProfile(ctx context.Context, id int64, profile *model.Profile) error {
	if m.createProfileFn != nil {
		return m.createProfileFn(ctx, id, profile)
	}
	return nil
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, _ int64, hashed string) error {
	m.updatePasswordCalls = append(m.updatePasswordCalls, hashed)
	return nil
}

func newUserServiceWithRepo(repo repository.UserRepository) *UserService {
	return NewUserService(repo, nil, NewCredentialStore(), nil, zap.NewNop())
}

// =============================================================================
// REGISTER TESTS
// =============================================================================

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			return nil
		},
	}
	svc := newUserServiceWithRepo(mockRepo)

	req := &model.RegisterRequest{
		Username:    "alice",
		Password:    "securepassword123",
		PhoneNumber: "555-0100",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want %q", user.Username, "alice")
	}
	if user.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}
	if cost, _ := bcrypt.Cost([]byte(user.PasswordHashed)); cost != PasswordCost {
		t.Errorf("bcrypt cost = %d, want %d", cost, PasswordCost)
	}
	if user.HasProfile() {
		t.Error("no profile should be seeded without purpose, experience or image")
	}
	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestUserService_Register_SeedsProfile(t *testing.T) {
	var seeded *model.Profile
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 7
			return nil
		},
		createProfileFn: func(ctx context.Context, id int64, profile *model.Profile) error {
			seeded = profile
			return nil
		},
	}
	svc := newUserServiceWithRepo(mockRepo)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username:    "alice",
		Password:    "pw",
		PhoneNumber: "555-0100",
		Purpose:     "hiring",
		Experience:  "ten years of go",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seeded == nil {
		t.Fatal("expected profile to be seeded")
	}
	if seeded.ProfileAuthor != 7 {
		t.Errorf("profile author = %d, want 7", seeded.ProfileAuthor)
	}
	if seeded.Purpose != "hiring" || seeded.Bio != "ten years of go" {
		t.Errorf("seeded profile = %+v", seeded)
	}
	if !user.HasProfile() {
		t.Error("returned user should carry the seeded profile")
	}
}

func TestUserService_Register_SeedFailureKeepsAccount(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			return nil
		},
		createProfileFn: func(ctx context.Context, id int64, profile *model.Profile) error {
			return errors.New("write failed")
		},
	}
	svc := newUserServiceWithRepo(mockRepo)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "alice", Password: "pw", PhoneNumber: "1", Purpose: "hiring",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.HasProfile() {
		t.Error("profile should be absent when seeding failed")
	}
}

func TestUserService_Register_UsernameExists(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := newUserServiceWithRepo(mockRepo)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "alice", Password: "pw", PhoneNumber: "1",
	})
	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("error = %v, want %v", err, model.ErrUsernameExists)
	}
	if user != nil {
		t.Error("user should be nil when registration fails")
	}
	if len(mockRepo.createCalls) != 0 {
		t.Error("Create should not be called when username exists")
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.RegisterRequest
		wantErr error
	}{
		{"missing username", model.RegisterRequest{Password: "pw", PhoneNumber: "1"}, model.ErrUsernameRequired},
		{"blank username", model.RegisterRequest{Username: "  ", Password: "pw", PhoneNumber: "1"}, model.ErrUsernameRequired},
		{"missing password", model.RegisterRequest{Username: "a", PhoneNumber: "1"}, model.ErrPasswordRequired},
		{"missing phone", model.RegisterRequest{Username: "a", Password: "pw"}, model.ErrPhoneRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{}
			svc := newUserServiceWithRepo(mockRepo)

			_, err := svc.Register(context.Background(), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(mockRepo.createCalls) != 0 {
				t.Error("Create should not be called on invalid input")
			}
		})
	}
}

func TestUserService_Register_CheckUsernameError(t *testing.T) {
	dbError := errors.New("database connection failed")
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return false, dbError
		},
	}
	svc := newUserServiceWithRepo(mockRepo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "alice", Password: "pw", PhoneNumber: "1",
	})
	if !errors.Is(err, dbError) {
		t.Errorf("error should wrap original database error, got %v", err)
	}
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestUserService_Login(t *testing.T) {
	validPassword := "correctpassword"
	validHash, _ := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)

	testUser := &model.User{
		ID:             1,
		Username:       "alice",
		PasswordHashed: string(validHash),
	}
	dbError := errors.New("database error")

	tests := []struct {
		name          string
		password      string
		mockGetByUser func(ctx context.Context, username string) (*model.User, error)
		wantErr       error
	}{
		{
			name:     "successful login",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
		},
		{
			name:     "user not found",
			password: "anypassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, model.ErrUserNotFound
			},
			wantErr: model.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			password: "wrongpassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr: model.ErrInvalidCredentials,
		},
		{
			name:     "database error",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, dbError
			},
			wantErr: dbError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newUserServiceWithRepo(&mockUserRepository{getByUsernameFn: tt.mockGetByUser})

			user, err := svc.Login(context.Background(), &model.LoginRequest{Username: "alice", Password: tt.password})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if user != nil {
					t.Error("expected nil user")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID != testUser.ID {
				t.Errorf("user id = %d, want %d", user.ID, testUser.ID)
			}
		})
	}
}

// =============================================================================
// PASSWORD TESTS
// =============================================================================

func TestUserService_ChangePassword_UnchangedIsNotRewritten(t *testing.T) {
	creds := NewCredentialStore()
	hash, err := creds.Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	mockRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice", PasswordHashed: hash}, nil
		},
	}
	svc := newUserServiceWithRepo(mockRepo)

	if err := svc.ChangePassword(context.Background(), 1, "same-password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mockRepo.updatePasswordCalls) != 0 {
		t.Error("an unchanged password must not be re-hashed or written")
	}

	if err := svc.ChangePassword(context.Background(), 1, "new-password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mockRepo.updatePasswordCalls) != 1 {
		t.Fatalf("UpdatePassword called %d times, want 1", len(mockRepo.updatePasswordCalls))
	}
	if !creds.Verify("new-password", mockRepo.updatePasswordCalls[0]) {
		t.Error("stored hash should verify the new password")
	}
}

func TestUserService_ChangePassword_Empty(t *testing.T) {
	svc := newUserServiceWithRepo(&mockUserRepository{})
	if err := svc.ChangePassword(context.Background(), 1, ""); !errors.Is(err, model.ErrPasswordRequired) {
		t.Errorf("error = %v, want %v", err, model.ErrPasswordRequired)
	}
}

func TestCredentialStore_Rehash(t *testing.T) {
	creds := NewCredentialStore()
	current, _ := creds.Hash("pw")

	if got, changed, _ := creds.Rehash(current, ""); changed || got != current {
		t.Error("empty password should keep the current hash")
	}
	if got, changed, _ := creds.Rehash(current, "pw"); changed || got != current {
		t.Error("matching password should keep the current hash")
	}
	got, changed, err := creds.Rehash(current, "other")
	if err != nil || !changed || got == current {
		t.Errorf("new password should produce a new hash: changed=%v err=%v", changed, err)
	}
}

// =============================================================================
// ACCOUNT AND PROFILE TESTS (in-memory store)
// =============================================================================

func TestUserService_UpdateAccount_RenameConflict(t *testing.T) {
	f := newFixture(t)
	alice := f.account(t, "alice")
	f.account(t, "bob")

	taken := "bob"
	_, err := f.users.UpdateAccount(context.Background(), alice.ID, &model.UpdateAccountRequest{Username: &taken})
	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("error = %v, want %v", err, model.ErrUsernameExists)
	}

	renamed := "alicia"
	user, err := f.users.UpdateAccount(context.Background(), alice.ID, &model.UpdateAccountRequest{Username: &renamed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != alice.ID || user.Username != "alicia" {
		t.Errorf("user = %+v", user)
	}
}

func TestUserService_Profile_SingleAndBounded(t *testing.T) {
	f := newFixture(t)
	alice := f.account(t, "alice")
	ctx := context.Background()

	if _, err := f.users.UpdateProfile(ctx, alice.ID, &model.ProfileRequest{Bio: "x"}); !errors.Is(err, model.ErrProfileNotFound) {
		t.Errorf("update before create: error = %v, want %v", err, model.ErrProfileNotFound)
	}

	profile, err := f.users.CreateProfile(ctx, alice.ID, &model.ProfileRequest{
		Bio:          "builder",
		Skills:       "go, sql, redis, docker",
		ProfileImage: "https://cdn.example.com/a.jpg",
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if len(profile.Skills) != 3 || profile.Skills[2] != "redis" {
		t.Errorf("skills = %v, want first three", profile.Skills)
	}
	if profile.ProfileAuthor != alice.ID {
		t.Errorf("profile author = %d, want %d", profile.ProfileAuthor, alice.ID)
	}

	if _, err := f.users.CreateProfile(ctx, alice.ID, &model.ProfileRequest{Bio: "again"}); !errors.Is(err, model.ErrProfileExists) {
		t.Errorf("second create: error = %v, want %v", err, model.ErrProfileExists)
	}

	updated, err := f.users.UpdateProfile(ctx, alice.ID, &model.ProfileRequest{Bio: "rewritten", Skills: "rust"})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.ProfileImage != "https://cdn.example.com/a.jpg" {
		t.Error("empty image on edit should keep the current image")
	}
	if !updated.CreatedAt.Equal(profile.CreatedAt) || updated.ProfileAuthor != alice.ID {
		t.Error("edit must keep author and creation time")
	}
}

func TestUserService_AddFriend(t *testing.T) {
	f := newFixture(t)
	alice := f.account(t, "alice")
	ctx := context.Background()

	for _, name := range []string{"bob", "bob", "nobody-registered"} {
		if err := f.users.AddFriend(ctx, alice.ID, name); err != nil {
			t.Fatalf("add friend %q: %v", name, err)
		}
	}
	if err := f.users.AddFriend(ctx, alice.ID, " "); !errors.Is(err, model.ErrFriendRequired) {
		t.Errorf("error = %v, want %v", err, model.ErrFriendRequired)
	}

	user, _ := f.users.GetByID(ctx, alice.ID)
	if len(user.FriendsList) != 3 {
		t.Errorf("friends = %v, want duplicates kept", user.FriendsList)
	}
}

func TestUserService_View_WithPortfolio(t *testing.T) {
	f := newFixture(t)
	alice := f.account(t, "alice")
	f.account(t, "bob")
	f.portfolio(t, alice, "Alice Works")

	view, err := f.users.View(context.Background(), "alice")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Portfolio == nil || view.Portfolio.Title != "Alice Works" {
		t.Errorf("portfolio = %+v", view.Portfolio)
	}

	view, err = f.users.View(context.Background(), "bob")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Portfolio != nil {
		t.Error("bob has no portfolio")
	}
}
