package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productColumns() []string {
	return []string{"id", "name", "slug", "description", "price", "active", "created_at", "updated_at"}
}

func TestRepository_GetBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productColumns()).
			AddRow(1, "The Cathedral and the Bazaar", "the-cathedral-and-the-bazaar", "essays", 1500, true, now, now)

		mock.ExpectQuery("SELECT .* FROM products").
			WithArgs("the-cathedral-and-the-bazaar").
			WillReturnRows(rows)

		mock.ExpectQuery("SELECT .* FROM product_tags").
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "active"}).
				AddRow(2, "Open source", "opensource", true))

		p, err := repo.GetBySlug(context.Background(), "the-cathedral-and-the-bazaar")
		assert.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, uint(1), p.ID)
		assert.Equal(t, 1500, p.Price)
		require.Len(t, p.Tags, 1)
		assert.Equal(t, "opensource", p.Tags[0].Slug)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetBySlug(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productColumns()).
			AddRow(3, "Backgammon for Dummies", "backgammon-for-dummies", "", 2300, true, now, now)

		mock.ExpectQuery("SELECT .* FROM products WHERE id").
			WithArgs(uint(3)).
			WillReturnRows(rows)

		p, err := repo.GetByID(context.Background(), 3, true)
		assert.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "backgammon-for-dummies", p.Slug)
	})

	t.Run("NotFound returns nil", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products WHERE id").
			WithArgs(uint(99)).
			WillReturnError(sql.ErrNoRows)

		p, err := repo.GetByID(context.Background(), 99, true)
		assert.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products WHERE id").
			WillReturnError(errors.New("db error"))

		_, err := repo.GetByID(context.Background(), 3, false)
		assert.Error(t, err)
	})
}

func TestRepository_GetTagBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "slug", "active"}).
			AddRow(2, "Open source", "opensource", true)

		mock.ExpectQuery("SELECT .* FROM product_tags").
			WithArgs("opensource").
			WillReturnRows(rows)

		tag, err := repo.GetTagBySlug(context.Background(), "opensource")
		assert.NoError(t, err)
		require.NotNil(t, tag)
		assert.Equal(t, uint(2), tag.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM product_tags").
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetTagBySlug(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrTagNotFound)
	})
}

func TestRepository_ListByTag(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	limit := uint16(10)
	page := uint16(1)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productColumns()).
			AddRow(1, "A Tale of Two Cities", "a-tale-of-two-cities", "", 700, true, now, now).
			AddRow(2, "Bleak House", "bleak-house", "", 900, true, now, now)

		mock.ExpectQuery("SELECT .* FROM products p JOIN product_tag_links").
			WithArgs(uint(2), limit, 0).
			WillReturnRows(rows)

		products, err := repo.ListByTag(context.Background(), 2, &limit, &page)
		assert.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "A Tale of Two Cities", products[0].Name)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products p JOIN product_tag_links").
			WillReturnError(errors.New("db error"))

		_, err := repo.ListByTag(context.Background(), 2, &limit, &page)
		assert.Error(t, err)
	})
}
