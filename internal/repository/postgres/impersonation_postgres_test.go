package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/repository"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestImpersonationRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImpersonationRepository(db)

	now := time.Now()
	sess := &domain.ImpersonationSession{
		ID:             uuid.New(),
		AdminID:        uuid.New(),
		ImpersonatedID: uuid.New(),
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Hour),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO impersonation_sessions")).
		WithArgs(sess.ID, sess.AdminID, sess.ImpersonatedID, sess.CreatedAt, sess.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), sess)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImpersonationRepositoryGetActiveByID(t *testing.T) {
	t.Run("returns enriched record", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewImpersonationRepository(db)

		id := uuid.New()
		adminID := uuid.New()
		userID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows([]string{
			"id", "admin_id", "impersonated_id", "created_at", "expires_at",
			"admin_email", "user_email", "user_role",
		}).AddRow(id, adminID, userID, now, now.Add(time.Hour),
			"admin@example.com", "user@example.com", "user")

		mock.ExpectQuery(regexp.QuoteMeta("FROM impersonation_sessions s")).
			WithArgs(id, sqlmock.AnyArg()).
			WillReturnRows(rows)

		record, err := repo.GetActiveByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, record.ID)
		assert.Equal(t, adminID, record.AdminID)
		assert.Equal(t, "admin@example.com", record.AdminEmail)
		assert.Equal(t, "user@example.com", record.UserEmail)
		assert.Equal(t, domain.RoleUser, record.UserRole)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing or expired row maps to sentinel", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewImpersonationRepository(db)

		id := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta("FROM impersonation_sessions s")).
			WithArgs(id, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetActiveByID(context.Background(), id)
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	})
}

func TestImpersonationRepositoryActiveExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImpersonationRepository(db)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(id, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ActiveExists(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestImpersonationRepositoryDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImpersonationRepository(db)

	id := uuid.New()

	// Deleting a row that is already gone is still a success.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM impersonation_sessions WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)
	assert.NoError(t, err)
}

func TestImpersonationRepositoryDeleteExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImpersonationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM impersonation_sessions WHERE expires_at <= $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	swept, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, swept)
}

func TestImpersonationRepositoryCountActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImpersonationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM impersonation_sessions")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	total, err := repo.CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
