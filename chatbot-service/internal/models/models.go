package models

import "time"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	Vendor      string    `json:"vendor,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stats summarises the active part of the catalog.
type Stats struct {
	TotalProducts   int     `json:"total_products"`
	TotalCategories int     `json:"total_categories"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	AvgPrice        float64 `json:"avg_price"`
}

// CatalogData is the catalog context handed to the model and echoed to the client.
type CatalogData struct {
	Products   []Product `json:"products,omitempty"`
	Stats      *Stats    `json:"stats,omitempty"`
	Categories []string  `json:"categories,omitempty"`
}
