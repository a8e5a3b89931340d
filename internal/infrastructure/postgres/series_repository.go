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

var _ repository.DocumentSeriesRepository = (*DocumentSeriesRepo)(nil)

// DocumentSeriesRepo implementación de DocumentSeriesRepository.
// GetActiveForUpdate es el punto de serialización de la numeración: dos
// transacciones que numeran el mismo tipo de documento se encolan en el lock
// de la fila de la serie activa.
type DocumentSeriesRepo struct {
	q Querier
}

// NewDocumentSeriesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentSeriesRepository(q Querier) *DocumentSeriesRepo {
	return &DocumentSeriesRepo{q: q}
}

const seriesColumns = `id, type, series, current_number, is_active, created_at, updated_at`

func (r *DocumentSeriesRepo) Create(ctx context.Context, s *entity.DocumentSeries) error {
	query := `
		INSERT INTO document_series (` + seriesColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Type, s.Series, s.CurrentNumber, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert document series: %w", err)
	}
	return nil
}

func (r *DocumentSeriesRepo) GetActiveForUpdate(ctx context.Context, docType string) (*entity.DocumentSeries, error) {
	query := `
		SELECT ` + seriesColumns + ` FROM document_series
		WHERE type = $1 AND is_active
		FOR UPDATE`
	s, err := scanSeries(r.q.QueryRow(ctx, query, docType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active series: %w", err)
	}
	return s, nil
}

func (r *DocumentSeriesRepo) List(ctx context.Context) ([]*entity.DocumentSeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM document_series ORDER BY type, series`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list document series: %w", err)
	}
	defer rows.Close()
	var list []*entity.DocumentSeries
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document series: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *DocumentSeriesRepo) UpdateNumber(ctx context.Context, id string, currentNumber int64) error {
	// El WHERE exige incremento estricto: un correlativo nunca retrocede.
	query := `
		UPDATE document_series
		SET current_number = $2, updated_at = now()
		WHERE id = $1 AND current_number < $2`
	tag, err := r.q.Exec(ctx, query, id, currentNumber)
	if err != nil {
		return fmt.Errorf("update series number: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *DocumentSeriesRepo) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE document_series SET is_active = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set series active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSeries(row pgxScanner) (*entity.DocumentSeries, error) {
	var s entity.DocumentSeries
	err := row.Scan(&s.ID, &s.Type, &s.Series, &s.CurrentNumber, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
