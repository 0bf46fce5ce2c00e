package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/repository"
	"github.com/fastygo/daymate/repository/repotest"
)

// Set TEST_DATABASE_URL to a disposable database to run these tests.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../assets/migrations/000001_create_tasks.up.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	return pool
}

func TestTaskRepositoryContract(t *testing.T) {
	pool := testPool(t)
	repotest.Run(t, func(t *testing.T) repository.TaskRepository {
		_, err := pool.Exec(context.Background(), `TRUNCATE tasks`)
		require.NoError(t, err)
		return NewTaskRepository(pool)
	})
}

func TestMalformedIDsAreRejectedBeforeQuerying(t *testing.T) {
	repo := NewTaskRepository(nil)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "not-a-uuid")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeMalformedID))
	_, err = repo.Update(ctx, "42", domain.TaskPatch{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeMalformedID))
	_, err = repo.Delete(ctx, "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeMalformedID))

	count, err := repo.CompleteMany(ctx, []string{"nope"})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.True(t, domain.IsDomainError(translateError(&pgconn.PgError{Code: "08006"}), domain.ErrCodeUnavailable))
	assert.True(t, domain.IsDomainError(translateError(&pgconn.PgError{Code: "57P01"}), domain.ErrCodeUnavailable))
	assert.True(t, domain.IsDomainError(translateError(&pgconn.PgError{Code: "23514"}), domain.ErrCodeInternal))
	assert.True(t, domain.IsDomainError(translateError(context.DeadlineExceeded), domain.ErrCodeUnavailable))
	assert.True(t, domain.IsDomainError(translateError(errors.New("boom")), domain.ErrCodeInternal))
}
