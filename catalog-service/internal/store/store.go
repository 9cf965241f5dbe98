package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ILLUVRSE/VendorCatalog/catalog-service/internal/models"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	InsertProduct(ctx context.Context, in ProductInput) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error)
	Ping(ctx context.Context) error
}

type ProductInput struct {
	ID           uuid.UUID
	Name         string
	Description  string
	Price        float64
	Vendor       string
	Category     string
	Status       string
	AIEvaluation *models.AIEvaluation
}

// normalize fills the id and status the way both stores expect.
func (in ProductInput) normalize() ProductInput {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	if in.Status == "" {
		in.Status = models.StatusActive
	}
	return in
}

func (in ProductInput) product(createdAt, updatedAt time.Time) models.Product {
	return models.Product{
		ID:           in.ID,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Vendor:       in.Vendor,
		Category:     in.Category,
		Status:       in.Status,
		AIEvaluation: in.AIEvaluation,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const productColumns = `id, name, description, price, vendor, category, status, ai_evaluation, created_at, updated_at`

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func encodeEvaluation(ev *models.AIEvaluation) ([]byte, error) {
	if ev == nil {
		return nil, nil
	}
	return json.Marshal(ev)
}

func (s *PGStore) InsertProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	in = in.normalize()
	evaluation, err := encodeEvaluation(in.AIEvaluation)
	if err != nil {
		return models.Product{}, fmt.Errorf("encode ai evaluation: %w", err)
	}
	query := `
		INSERT INTO products (id, name, description, price, vendor, category, status, ai_evaluation)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := s.db.QueryRowContext(ctx, query,
		in.ID, in.Name, in.Description, in.Price,
		nullString(in.Vendor), nullString(in.Category), in.Status, evaluation,
	).Scan(&createdAt, &updatedAt); err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return in.product(createdAt, updatedAt), nil
}

func (s *PGStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *PGStore) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(sc scanner) (models.Product, error) {
	var (
		p          models.Product
		vendor     sql.NullString
		category   sql.NullString
		evaluation []byte
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &vendor, &category, &p.Status, &evaluation, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Product{}, err
	}
	p.Vendor = vendor.String
	p.Category = category.String
	if len(evaluation) > 0 {
		var ev models.AIEvaluation
		if err := json.Unmarshal(evaluation, &ev); err != nil {
			return models.Product{}, fmt.Errorf("decode ai evaluation: %w", err)
		}
		p.AIEvaluation = &ev
	}
	return p, nil
}
