package analytics

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

type Repository struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func NewRepository(db *sql.DB, logger *zap.SugaredLogger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) UpdatePopularity(ctx context.Context, weights map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for productID, weight := range weights {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_popularity (product_id, weight)
			VALUES ($1, $2)
			ON CONFLICT (product_id)
			DO UPDATE SET weight = product_popularity.weight + EXCLUDED.weight
		`, productID, weight)

		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetTopProducts(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id
		FROM product_popularity
		ORDER BY weight DESC
		LIMIT $1
	`, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var productIDs []string
	for rows.Next() {
		var productID string
		if err := rows.Scan(&productID); err != nil {
			return nil, err
		}
		productIDs = append(productIDs, productID)
	}

	return productIDs, nil
}
