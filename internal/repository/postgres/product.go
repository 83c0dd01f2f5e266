package postgres

import (
	"context"

	"rental-ledger-backend/internal/domain"
)

type productRepository struct {
	db DBTX
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p := &domain.Product{}
	query := `SELECT id, owner_id, title, price_per_day, deleted_at FROM products WHERE id = $1`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.OwnerID, &p.Title, &p.PricePerDay, &p.DeletedAt); err != nil {
		return nil, convertErr(err)
	}
	return p, nil
}
