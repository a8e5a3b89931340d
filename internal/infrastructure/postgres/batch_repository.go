package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository (usable con pool o tx).
// Las variantes ForUpdate solo tienen sentido dentro de una transacción:
// el lock de fila vive hasta el Commit/Rollback.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, product_id, code, quantity_initial, quantity_current, cost, expiration_date, created_at`

func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ProductID, b.Code, b.QuantityInitial, b.QuantityCurrent,
		b.Cost, b.ExpirationDate, b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	b, err := scanBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

func (r *BatchRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE product_id = $1
		ORDER BY expiration_date, created_at`
	return r.queryBatches(ctx, query, productID)
}

// GetForUpdateByProduct bloquea los lotes con stock del producto, en orden de
// asignación FIFO. El lock serializa asignaciones concurrentes del mismo producto.
func (r *BatchRepo) GetForUpdateByProduct(ctx context.Context, productID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE product_id = $1 AND quantity_current > 0
		ORDER BY expiration_date, created_at
		FOR UPDATE`
	return r.queryBatches(ctx, query, productID)
}

// GetForUpdateByIDs bloquea los lotes indicados (devoluciones a stock).
func (r *BatchRepo) GetForUpdateByIDs(ctx context.Context, ids []string) (map[string]*entity.Batch, error) {
	out := make(map[string]*entity.Batch, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`
	list, err := r.queryBatches(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	for _, b := range list {
		out[b.ID] = b
	}
	return out, nil
}

func (r *BatchRepo) UpdateQuantity(ctx context.Context, id string, quantityCurrent int64) error {
	query := `UPDATE batches SET quantity_current = $2 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, quantityCurrent)
	if err != nil {
		return fmt.Errorf("update batch quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BatchRepo) queryBatches(ctx context.Context, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func scanBatch(row pgxScanner) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.ProductID, &b.Code, &b.QuantityInitial, &b.QuantityCurrent,
		&b.Cost, &b.ExpirationDate, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
