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

var _ repository.DispatchSheetRepository = (*DispatchSheetRepo)(nil)

// DispatchSheetRepo implementación de DispatchSheetRepository. La lista de
// ventas de la hoja se guarda como JSONB: la hoja se arma una vez y el orden
// de sus ventas define el orden de los documentos de liquidación.
type DispatchSheetRepo struct {
	q Querier
}

// NewDispatchSheetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispatchSheetRepository(q Querier) *DispatchSheetRepo {
	return &DispatchSheetRepo{q: q}
}

const sheetColumns = `id, route, driver, date, sale_ids, status, created_at, updated_at`

func (r *DispatchSheetRepo) Create(ctx context.Context, d *entity.DispatchSheet) error {
	saleIDs, err := json.Marshal(d.SaleIDs)
	if err != nil {
		return fmt.Errorf("marshal sheet sale ids: %w", err)
	}
	query := `
		INSERT INTO dispatch_sheets (` + sheetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(ctx, query,
		d.ID, d.Route, d.Driver, d.Date, saleIDs, d.Status, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dispatch sheet: %w", err)
	}
	return nil
}

func (r *DispatchSheetRepo) GetByID(ctx context.Context, id string) (*entity.DispatchSheet, error) {
	query := `SELECT ` + sheetColumns + ` FROM dispatch_sheets WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *DispatchSheetRepo) GetForUpdate(ctx context.Context, id string) (*entity.DispatchSheet, error) {
	query := `SELECT ` + sheetColumns + ` FROM dispatch_sheets WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *DispatchSheetRepo) getOne(ctx context.Context, query, id string) (*entity.DispatchSheet, error) {
	d, err := scanSheet(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch sheet: %w", err)
	}
	return d, nil
}

func (r *DispatchSheetRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.DispatchSheet, error) {
	query := `
		SELECT ` + sheetColumns + ` FROM dispatch_sheets
		WHERE status = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list dispatch sheets: %w", err)
	}
	defer rows.Close()
	var list []*entity.DispatchSheet
	for rows.Next() {
		d, err := scanSheet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dispatch sheet: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *DispatchSheetRepo) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE dispatch_sheets SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update dispatch sheet status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSheet(row pgxScanner) (*entity.DispatchSheet, error) {
	var d entity.DispatchSheet
	var saleIDs []byte
	err := row.Scan(&d.ID, &d.Route, &d.Driver, &d.Date, &saleIDs, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(saleIDs) > 0 {
		if err := json.Unmarshal(saleIDs, &d.SaleIDs); err != nil {
			return nil, fmt.Errorf("unmarshal sheet sale ids: %w", err)
		}
	}
	return &d, nil
}
