package postgres

import (
	"context"

	"rental-ledger-backend/internal/domain"
)

type userRepository struct {
	db DBTX
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, name, role, created_on, deleted_on FROM users WHERE id = $1`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedOn, &u.DeletedOn); err != nil {
		return nil, convertErr(err)
	}
	return u, nil
}
