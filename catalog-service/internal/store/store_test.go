package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILLUVRSE/VendorCatalog/catalog-service/internal/models"
)

var productCols = []string{"id", "name", "description", "price", "vendor", "category", "status", "ai_evaluation", "created_at", "updated_at"}

func TestPGStoreInsertProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs(sqlmock.AnyArg(), "Smart Watch", "Fitness tracking", 299.99, "TechCorp", "Electronics", "active", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	st := NewPGStore(db)
	p, err := st.InsertProduct(context.Background(), ProductInput{
		Name:        "Smart Watch",
		Description: "Fitness tracking",
		Price:       299.99,
		Vendor:      "TechCorp",
		Category:    "Electronics",
		AIEvaluation: &models.AIEvaluation{
			Score:       85,
			Decision:    "APPROVED",
			EvaluatedAt: created,
		},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "active", p.Status)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, 85, p.AIEvaluation.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreInsertProductWrapsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).WillReturnError(errors.New("connection reset"))

	_, err = NewPGStore(db).InsertProduct(context.Background(), ProductInput{Name: "Lamp", Description: "Desk lamp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert product")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreListProducts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	newer := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)
	id1, id2 := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(id1.String(), "Smart Watch", "Fitness tracking", 299.99, "TechCorp", "Electronics", "active",
				[]byte(`{"score":85,"decision":"APPROVED","evaluated_at":"2025-03-02T00:00:00Z"}`), newer, newer).
			AddRow(id2.String(), "Desk Lamp", "LED lamp", 39.5, nil, nil, "active", nil, older, older))

	products, err := NewPGStore(db).ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, id1, products[0].ID)
	assert.Equal(t, "TechCorp", products[0].Vendor)
	require.NotNil(t, products[0].AIEvaluation)
	assert.Equal(t, "APPROVED", products[0].AIEvaluation.Decision)
	assert.Equal(t, "", products[1].Category)
	assert.Nil(t, products[1].AIEvaluation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreGetProductNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err = NewPGStore(db).GetProduct(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStoreListsNewestFirst(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	first, err := st.InsertProduct(ctx, ProductInput{Name: "First", Description: "one"})
	require.NoError(t, err)
	second, err := st.InsertProduct(ctx, ProductInput{Name: "Second", Description: "two", Status: models.StatusInactive})
	require.NoError(t, err)

	products, err := st.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, second.ID, products[0].ID)
	assert.Equal(t, first.ID, products[1].ID)
	assert.Equal(t, models.StatusActive, products[1].Status)
	assert.Equal(t, models.StatusInactive, products[0].Status)

	got, err := st.GetProduct(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)

	_, err = st.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
