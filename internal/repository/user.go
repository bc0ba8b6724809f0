package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"workfolio/internal/model"
)

const userColumns = `id, username, password_hashed, phone_number, friends_list, profile, created_at, updated_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	base
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, timeout time.Duration) UserRepository {
	return &userRepository{base: newBase(db, timeout, "users")}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (username, password_hashed, phone_number, friends_list, profile, created_at, updated_at)
		VALUES ($1, $2, $3, '{}', $4, NOW(), NOW())
		RETURNING id, friends_list, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query, u.Username, u.PasswordHashed, u.PhoneNumber, u.Profile)
	if err := row.Scan(&u.ID, &u.FriendsList, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.ErrUsernameExists
		}
		return r.storeErr(ctx, "insert user", err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u model.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, r.storeErr(ctx, "get user by id", err)
	}
	return &u, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u model.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, r.storeErr(ctx, "get user by username", err)
	}
	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
	if err != nil {
		return false, r.storeErr(ctx, "check username existence", err)
	}
	return exists, nil
}

func (r *userRepository) UpdateAccount(ctx context.Context, id int64, username, phoneNumber string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = $2, phone_number = $3, updated_at = NOW() WHERE id = $1`,
		id, username, phoneNumber)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.ErrUsernameExists
		}
		return r.storeErr(ctx, "update account", err)
	}
	return requireRow(res, model.ErrUserNotFound)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHashed string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hashed = $2, updated_at = NOW() WHERE id = $1`, id, passwordHashed)
	if err != nil {
		return r.storeErr(ctx, "update password", err)
	}
	return requireRow(res, model.ErrUserNotFound)
}

// CreateProfile is a conditional write: the profile IS NULL guard makes the
// existence check and the set a single statement.
func (r *userRepository) CreateProfile(ctx context.Context, id int64, profile *model.Profile) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET profile = $2, updated_at = NOW() WHERE id = $1 AND profile IS NULL`, id, profile)
	if err != nil {
		return r.storeErr(ctx, "create profile", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	return r.missingProfileTarget(ctx, id, model.ErrProfileExists)
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, profile *model.Profile) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET profile = $2, updated_at = NOW() WHERE id = $1 AND profile IS NOT NULL`, id, profile)
	if err != nil {
		return r.storeErr(ctx, "update profile", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	return r.missingProfileTarget(ctx, id, model.ErrProfileNotFound)
}

// missingProfileTarget tells a missing user apart from a failed profile guard.
func (r *userRepository) missingProfileTarget(ctx context.Context, id int64, guardErr error) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id); err != nil {
		return r.storeErr(ctx, "check user existence", err)
	}
	if !exists {
		return model.ErrUserNotFound
	}
	return guardErr
}

// AppendFriend pushes name onto the friends list. Duplicates are kept.
func (r *userRepository) AppendFriend(ctx context.Context, id int64, name string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET friends_list = array_append(friends_list, $2), updated_at = NOW() WHERE id = $1`, id, name)
	if err != nil {
		return r.storeErr(ctx, "append friend", err)
	}
	return requireRow(res, model.ErrUserNotFound)
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return r.storeErr(ctx, "delete user", err)
	}
	return requireRow(res, model.ErrUserNotFound)
}

// requireRow turns a zero-row write into notFound.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
