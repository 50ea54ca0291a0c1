package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/errors"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/pkg/constant"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation   = "23505"
	emailUniqueIndex  = "users_email_key"
	employeeNumberFmt = "%s-%05d"
)

const userSelectColumns = `
		SELECT u.id, u.name, u.email, u.employee_number, u.phone, u.department, u.password_hash,
		       u.active, u.deactivated_at, u.failed_attempts, u.locked_until, u.must_change_password,
		       u.last_login_at, u.created_at, u.updated_at,
		       r.id, r.name, COALESCE(r.permissions, '{}'::jsonb)
		FROM users u
		JOIN roles r ON r.id = u.role_id`

// DBTX is the subset of pgxpool.Pool the repositories need.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.EmployeeNumber, &user.Phone, &user.Department, &user.PasswordHash,
		&user.Active, &user.DeactivatedAt, &user.FailedAttempts, &user.LockedUntil, &user.MustChangePassword,
		&user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
		&user.Role.ID, &user.Role.Name, &user.Role.Permissions,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier matches the identifier against email or employee number,
// ignoring case.
func (r *PostgresRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	query := userSelectColumns + `
		WHERE lower(u.email) = lower($1) OR lower(u.employee_number) = lower($1)
		LIMIT 1`

	user, err := scanUser(r.db.QueryRow(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by identifier: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, userSelectColumns+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := userSelectColumns + `
		WHERE lower(u.email) = lower($1)
		LIMIT 1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRow(ctx,
		`SELECT id, name, COALESCE(permissions, '{}'::jsonb) FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name, &role.Permissions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role %s: %w", name, err)
	}
	return &role, nil
}

func (r *PostgresRepository) NextEmployeeNumber(ctx context.Context) (string, error) {
	var next int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('employee_number_seq')`).Scan(&next); err != nil {
		return "", fmt.Errorf("failed to generate employee number: %w", err)
	}
	return fmt.Sprintf(employeeNumberFmt, constant.EmployeeNumberPrefix, next), nil
}

// Create inserts the user and sets user.ID. Unique violations surface as
// ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, employee_number, phone, department, password_hash,
		                   active, must_change_password, role_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		user.Name, user.Email, user.EmployeeNumber, user.Phone, user.Department, user.PasswordHash,
		user.Active, user.MustChangePassword, user.Role.ID, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == emailUniqueIndex {
				return autherror.ErrEmailAlreadyInUse
			}
			return fmt.Errorf("%w: %s", autherror.ErrConflict, pgErr.ConstraintName)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// RecordFailedLogin increments the counter and stamps the lockout in one
// statement. SET expressions read the pre-update row, so the threshold check
// sees the incremented value through the repeated CASE.
func (r *PostgresRepository) RecordFailedLogin(ctx context.Context, userID int64, policy domain.LockoutPolicy, now time.Time) (int, *time.Time, error) {
	var (
		failed      int
		lockedUntil *time.Time
	)
	err := r.db.QueryRow(ctx, `
		UPDATE users SET
			failed_attempts = CASE
				WHEN $3::boolean AND locked_until <= $2 THEN 1
				ELSE failed_attempts + 1
			END,
			locked_until = CASE
				WHEN (CASE WHEN $3::boolean AND locked_until <= $2 THEN 1 ELSE failed_attempts + 1 END) >= $4 THEN $5
				WHEN $3::boolean AND locked_until <= $2 THEN NULL
				ELSE locked_until
			END,
			updated_at = $2
		WHERE id = $1
		RETURNING failed_attempts, locked_until`,
		userID, now, policy.ResetOnExpiry, policy.MaxAttempts, policy.LockUntil(now),
	).Scan(&failed, &lockedUntil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to record failed login: %w", err)
	}
	return failed, lockedUntil, nil
}

func (r *PostgresRepository) RecordSuccessfulLogin(ctx context.Context, userID int64, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET failed_attempts = 0, locked_until = NULL, last_login_at = $2, updated_at = $2
		WHERE id = $1`, userID, now)
	if err != nil {
		return fmt.Errorf("failed to record successful login: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Unlock(ctx context.Context, userID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET failed_attempts = 0, locked_until = NULL, updated_at = now()
		WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to unlock user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return autherror.ErrNotFound
	}
	return nil
}

// UpdatePassword also clears the must-change-password flag.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, must_change_password = FALSE, updated_at = now()
		WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return autherror.ErrNotFound
	}
	return nil
}
