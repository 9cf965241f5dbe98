package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ILLUVRSE/VendorCatalog/chatbot-service/internal/models"
)

var ErrNotFound = errors.New("not found")

const (
	searchLimit   = 20
	statusActive  = "active"
	statusAll     = "all"
	productsTable = "products"
)

var productColumns = []string{"id", "name", "description", "category", "price", "vendor", "status", "created_at", "updated_at"}

// Filter narrows a catalog search. Status defaults to active; "all" disables it.
type Filter struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Status   string
}

type Repository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *Repository) searchQuery(f Filter) sq.SelectBuilder {
	q := r.builder.Select(productColumns...).From(productsTable)
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where(sq.Or{sq.ILike{"name": pattern}, sq.ILike{"description": pattern}})
	}
	if f.Category != "" {
		q = q.Where(sq.ILike{"category": "%" + f.Category + "%"})
	}
	if f.MinPrice != nil {
		q = q.Where(sq.GtOrEq{"price": *f.MinPrice})
	}
	if f.MaxPrice != nil {
		q = q.Where(sq.LtOrEq{"price": *f.MaxPrice})
	}
	switch f.Status {
	case statusAll:
	case "":
		q = q.Where(sq.Eq{"status": statusActive})
	default:
		q = q.Where(sq.Eq{"status": f.Status})
	}
	return q.OrderBy("name").Limit(searchLimit)
}

func (r *Repository) Search(ctx context.Context, f Filter) ([]models.Product, error) {
	query, args, err := r.searchQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
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
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (models.Product, error) {
	query, args, err := r.builder.Select(productColumns...).From(productsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Product{}, fmt.Errorf("build product query: %w", err)
	}
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	query, args, err := r.builder.Select("DISTINCT category").
		From(productsTable).
		Where(sq.NotEq{"category": nil}).
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) Stats(ctx context.Context) (models.Stats, error) {
	query, args, err := r.builder.Select(
		"COUNT(*) AS total_products",
		"COUNT(DISTINCT category) AS total_categories",
		"MIN(price) AS min_price",
		"MAX(price) AS max_price",
		"AVG(price) AS avg_price",
	).From(productsTable).Where(sq.Eq{"status": statusActive}).ToSql()
	if err != nil {
		return models.Stats{}, fmt.Errorf("build stats query: %w", err)
	}

	var (
		stats       models.Stats
		lo, hi, avg sql.NullFloat64
	)
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&stats.TotalProducts, &stats.TotalCategories, &lo, &hi, &avg); err != nil {
		return models.Stats{}, fmt.Errorf("product stats: %w", err)
	}
	stats.MinPrice, stats.MaxPrice, stats.AvgPrice = lo.Float64, hi.Float64, avg.Float64
	return stats, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(sc scanner) (models.Product, error) {
	var (
		p        models.Product
		category sql.NullString
		vendor   sql.NullString
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.Description, &category, &p.Price, &vendor, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Product{}, err
	}
	p.Category = category.String
	p.Vendor = vendor.String
	return p, nil
}
