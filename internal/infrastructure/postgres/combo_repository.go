package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.ComboRepository = (*ComboRepo)(nil)

// ComboRepo implementación de ComboRepository. Los componentes se guardan como
// JSONB: un combo siempre se lee y escribe completo.
type ComboRepo struct {
	q Querier
}

// NewComboRepository construye el adaptador. Pasar pool o tx (Querier).
func NewComboRepository(q Querier) *ComboRepo {
	return &ComboRepo{q: q}
}

func (r *ComboRepo) Create(ctx context.Context, c *entity.Combo) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("marshal combo items: %w", err)
	}
	query := `
		INSERT INTO combos (id, code, name, price, items, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(ctx, query,
		c.ID, c.Code, c.Name, c.Price, items, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert combo: %w", err)
	}
	return nil
}

func (r *ComboRepo) GetByID(ctx context.Context, id string) (*entity.Combo, error) {
	query := `
		SELECT id, code, name, price, items, is_active, created_at, updated_at
		FROM combos WHERE id = $1`
	c, err := scanCombo(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get combo: %w", err)
	}
	return c, nil
}

func (r *ComboRepo) List(ctx context.Context, limit, offset int) ([]*entity.Combo, error) {
	query := `
		SELECT id, code, name, price, items, is_active, created_at, updated_at
		FROM combos ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list combos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Combo
	for rows.Next() {
		c, err := scanCombo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan combo: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCombo(row pgxScanner) (*entity.Combo, error) {
	var c entity.Combo
	var items []byte
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Price, &items, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &c.Items); err != nil {
			return nil, fmt.Errorf("unmarshal combo items: %w", err)
		}
	}
	return &c, nil
}
