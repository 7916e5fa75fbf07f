package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func setupPostgres(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresRepository_Create(t *testing.T) {
	repo, mock := setupPostgres(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO products").
		WithArgs("id-1", "Lamp", "brass", int64(1500), sqlmock.AnyArg(), false, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.Product{
		ID:          "id-1",
		Name:        "Lamp",
		Description: "brass",
		Price:       1500,
		ImageRefs:   []string{"ref-1"},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Get_NotFound(t *testing.T) {
	repo, mock := setupPostgres(t)

	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "image_refs", "is_featured", "created_at", "updated_at"}))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Get(t *testing.T) {
	repo, mock := setupPostgres(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "image_refs", "is_featured", "created_at", "updated_at"}).
		AddRow("id-1", "Lamp", "brass", int64(1500), "{ref-1,ref-2}", true, now, now)

	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("id-1").
		WillReturnRows(rows)

	p, err := repo.Get(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, int64(1500), p.Price)
	assert.Equal(t, []string{"ref-1", "ref-2"}, p.ImageRefs)
	assert.True(t, p.Featured)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Update_NotFound(t *testing.T) {
	repo, mock := setupPostgres(t)

	mock.ExpectExec("UPDATE products").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Product{ID: "missing", Name: "Lamp"})
	assert.ErrorIs(t, err, ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Delete(t *testing.T) {
	repo, mock := setupPostgres(t)

	mock.ExpectExec("DELETE FROM products").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "id-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SetFeatured_NotFound(t *testing.T) {
	repo, mock := setupPostgres(t)

	mock.ExpectExec("UPDATE products SET is_featured").
		WithArgs("missing", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetFeatured(context.Background(), "missing", true)
	assert.ErrorIs(t, err, ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListFeatured(t *testing.T) {
	repo, mock := setupPostgres(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "image_refs", "is_featured", "created_at", "updated_at"}).
		AddRow("id-1", "A", "", int64(100), "{}", true, now, now).
		AddRow("id-2", "B", "", int64(200), "{}", true, now, now)

	mock.ExpectQuery("SELECT (.+) FROM products\\s+WHERE is_featured").
		WillReturnRows(rows)

	products, err := repo.ListFeatured(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "id-1", products[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
