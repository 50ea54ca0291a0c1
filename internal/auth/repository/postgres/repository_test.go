package postgres_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain"
	repo "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/repository/postgres"
	autherror "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{
	"id", "name", "email", "employee_number", "phone", "department", "password_hash",
	"active", "deactivated_at", "failed_attempts", "locked_until", "must_change_password",
	"last_login_at", "created_at", "updated_at",
	"role_id", "role_name", "permissions",
}

func userRow(id int64, email string, failed int, lockedUntil *time.Time) *pgxmock.Rows {
	department := "Mantenimiento"
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(userColumns).AddRow(
		id, "Ana Torres", email, "EMP-00007", (*string)(nil), &department, "hash",
		true, (*time.Time)(nil), failed, lockedUntil, false,
		(*time.Time)(nil), now, now,
		int64(3), "TECNICO", map[string]bool{"tareas.ver": true},
	)
}

// TestFindByIdentifier covers lookups by email and by employee number.
func TestFindByIdentifier(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(u.email) = lower($1) OR lower(u.employee_number) = lower($1)")).
			WithArgs("EMP-00007").
			WillReturnRows(userRow(7, "tech1@example.com", 2, nil))

		user, err := r.FindByIdentifier(ctx, "EMP-00007")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, 2, user.FailedAttempts)
		assert.Nil(t, user.Phone)
		require.NotNil(t, user.Department)
		assert.Equal(t, "Mantenimiento", *user.Department)
		assert.Equal(t, "TECNICO", user.Role.Name)
		assert.True(t, user.Role.Permissions["tareas.ver"])
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("FROM users u").
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		user, err := r.FindByIdentifier(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("FROM users u").
			WithArgs("tech1@example.com").
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.FindByIdentifier(ctx, "tech1@example.com")
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestGetByIDAndEmail covers the plain profile lookups.
func TestGetByIDAndEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE u.id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(userRow(7, "tech1@example.com", 0, nil))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE u.id = $1")).
		WithArgs(int64(8)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(u.email) = lower($1)")).
		WithArgs("TECH1@example.com").
		WillReturnRows(userRow(7, "tech1@example.com", 0, nil))

	user, err := r.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "tech1@example.com", user.Email)

	user, err = r.GetByID(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = r.GetByEmail(ctx, "TECH1@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoleByName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	mock.ExpectQuery("FROM roles WHERE name").
		WithArgs("SUPERVISOR").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "permissions"}).
			AddRow(int64(2), "SUPERVISOR", map[string]bool{"usuarios.desbloquear": true}))
	mock.ExpectQuery("FROM roles WHERE name").
		WithArgs("GERENTE").
		WillReturnError(pgx.ErrNoRows)

	role, err := r.GetRoleByName(ctx, "SUPERVISOR")
	require.NoError(t, err)
	assert.Equal(t, int64(2), role.ID)
	assert.True(t, role.Permissions["usuarios.desbloquear"])

	role, err = r.GetRoleByName(ctx, "GERENTE")
	require.NoError(t, err)
	assert.Nil(t, role)
}

func TestNextEmployeeNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)

	mock.ExpectQuery("SELECT nextval").
		WillReturnRows(pgxmock.NewRows([]string{"nextval"}).AddRow(int64(42)))

	number, err := r.NextEmployeeNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EMP-00042", number)
}

// TestCreate covers the Create repository method.
func TestCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	r := repo.NewPostgresRepository(mock)

	newUser := func() *domain.User {
		now := time.Now()
		return &domain.User{
			Name:           "Luis Pérez",
			Email:          "luis@example.com",
			EmployeeNumber: "EMP-00012",
			PasswordHash:   "new-hash",
			Active:         true,
			Role:           domain.Role{ID: 3, Name: "TECNICO"},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}
	args := func(u *domain.User) []interface{} {
		return []interface{}{u.Name, u.Email, u.EmployeeNumber, u.Phone, u.Department, u.PasswordHash,
			u.Active, u.MustChangePassword, u.Role.ID, u.CreatedAt, u.UpdatedAt}
	}

	t.Run("success", func(t *testing.T) {
		user := newUser()
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(args(user)...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(12)))

		err := r.Create(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(12), user.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		user := newUser()
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(args(user)...).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		err := r.Create(ctx, user)
		assert.ErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
	})

	t.Run("duplicate employee number", func(t *testing.T) {
		user := newUser()
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(args(user)...).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_employee_number_key"})

		err := r.Create(ctx, user)
		assert.ErrorIs(t, err, autherror.ErrConflict)
		assert.NotErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
	})

	t.Run("database error", func(t *testing.T) {
		user := newUser()
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(args(user)...).
			WillReturnError(fmt.Errorf("db error"))

		err := r.Create(ctx, user)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, autherror.ErrConflict)
	})
}

// TestRecordFailedLogin checks that the policy travels into the single
// UPDATE statement and that its RETURNING values come back untouched.
func TestRecordFailedLogin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	policy := domain.LockoutPolicy{MaxAttempts: 5, Window: 30 * time.Minute}

	t.Run("below threshold", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users SET").
			WithArgs(int64(7), now, false, 5, now.Add(30*time.Minute)).
			WillReturnRows(pgxmock.NewRows([]string{"failed_attempts", "locked_until"}).AddRow(3, (*time.Time)(nil)))

		failed, lockedUntil, err := r.RecordFailedLogin(ctx, 7, policy, now)
		require.NoError(t, err)
		assert.Equal(t, 3, failed)
		assert.Nil(t, lockedUntil)
	})

	t.Run("threshold reached", func(t *testing.T) {
		until := now.Add(30 * time.Minute)
		resetPolicy := policy
		resetPolicy.ResetOnExpiry = true
		mock.ExpectQuery("UPDATE users SET").
			WithArgs(int64(7), now, true, 5, until).
			WillReturnRows(pgxmock.NewRows([]string{"failed_attempts", "locked_until"}).AddRow(5, &until))

		failed, lockedUntil, err := r.RecordFailedLogin(ctx, 7, resetPolicy, now)
		require.NoError(t, err)
		assert.Equal(t, 5, failed)
		require.NotNil(t, lockedUntil)
		assert.Equal(t, until, *lockedUntil)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users SET").
			WithArgs(int64(7), now, false, 5, now.Add(30*time.Minute)).
			WillReturnError(fmt.Errorf("deadlock detected"))

		_, _, err := r.RecordFailedLogin(ctx, 7, policy, now)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSuccessfulLoginAndUnlock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec("SET failed_attempts = 0, locked_until = NULL, last_login_at").
		WithArgs(int64(7), now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("SET failed_attempts = 0, locked_until = NULL, updated_at").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("SET failed_attempts = 0, locked_until = NULL, updated_at").
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, r.RecordSuccessfulLogin(ctx, 7, now))
	require.NoError(t, r.Unlock(ctx, 7))
	assert.ErrorIs(t, r.Unlock(ctx, 99), autherror.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	mock.ExpectExec("SET password_hash = \\$2, must_change_password = FALSE").
		WithArgs(int64(7), "new-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("SET password_hash").
		WithArgs(int64(8), "new-hash").
		WillReturnError(fmt.Errorf("db error"))

	assert.NoError(t, r.UpdatePassword(ctx, 7, "new-hash"))
	assert.Error(t, r.UpdatePassword(ctx, 8, "new-hash"))
}

func TestAuditRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewAuditRepository(mock)
	ctx := context.Background()
	userID := int64(7)

	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(&userID, "LOGIN_FAILED", "failed login attempt 1 of 5", "10.0.0.1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs((*int64)(nil), "LOGIN_FAILED", "unknown identifier", "10.0.0.1").
		WillReturnError(fmt.Errorf("db error"))

	err = r.Record(ctx, domain.AuditEntry{UserID: &userID, Event: "LOGIN_FAILED", Description: "failed login attempt 1 of 5", IPAddress: "10.0.0.1"})
	assert.NoError(t, err)

	err = r.Record(ctx, domain.AuditEntry{Event: "LOGIN_FAILED", Description: "unknown identifier", IPAddress: "10.0.0.1"})
	assert.Error(t, err)
}
