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

var _ repository.DispatchLiquidationRepository = (*DispatchLiquidationRepo)(nil)

// DispatchLiquidationRepo implementación de DispatchLiquidationRepository.
// Cabecera en dispatch_liquidations, disposiciones en liquidation_documents
// ordenadas por posición; las devoluciones parciales viajan como JSONB.
// Solo hay Create y lecturas: una liquidación nunca se muta.
type DispatchLiquidationRepo struct {
	q Querier
}

// NewDispatchLiquidationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispatchLiquidationRepository(q Querier) *DispatchLiquidationRepo {
	return &DispatchLiquidationRepo{q: q}
}

const liquidationColumns = `id, dispatch_sheet_id, total_cash_collected, total_credit_receivable, total_voided, total_returns_value, created_at, created_by`

const liquidationDocColumns = `liquidation_id, position, sale_id, sale_full_number, action, amount_collected, amount_credit, amount_void, amount_credit_note, void_reason, balance_method, credit_note_series, credit_note_number, returned_items`

func (r *DispatchLiquidationRepo) Create(ctx context.Context, l *entity.DispatchLiquidation) error {
	query := `
		INSERT INTO dispatch_liquidations (` + liquidationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.DispatchSheetID,
		l.TotalCashCollected, l.TotalCreditReceivable, l.TotalVoided, l.TotalReturnsValue,
		l.CreatedAt, nullIfEmpty(l.CreatedBy),
	)
	if err != nil {
		// Una hoja solo puede liquidarse una vez (unique sobre dispatch_sheet_id).
		if isUniqueViolation(err) {
			return domain.ErrDispatchCompleted
		}
		return fmt.Errorf("insert liquidation: %w", err)
	}
	for i := range l.Documents {
		if err := r.insertDocument(ctx, l.ID, i, &l.Documents[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *DispatchLiquidationRepo) insertDocument(ctx context.Context, liquidationID string, position int, d *entity.LiquidationDocument) error {
	returned, err := json.Marshal(d.ReturnedItems)
	if err != nil {
		return fmt.Errorf("marshal returned items: %w", err)
	}
	query := `
		INSERT INTO liquidation_documents (` + liquidationDocColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		liquidationID, position, d.SaleID, d.SaleFullNumber, d.Action,
		d.AmountCollected, d.AmountCredit, d.AmountVoid, d.AmountCreditNote,
		nullIfEmpty(d.VoidReason), nullIfEmpty(d.BalanceMethod),
		nullIfEmpty(d.CreditNoteSeries), d.CreditNoteNumber, returned,
	)
	if err != nil {
		return fmt.Errorf("insert liquidation document: %w", err)
	}
	return nil
}

func (r *DispatchLiquidationRepo) GetByID(ctx context.Context, id string) (*entity.DispatchLiquidation, error) {
	query := `SELECT ` + liquidationColumns + ` FROM dispatch_liquidations WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *DispatchLiquidationRepo) GetByDispatchSheetID(ctx context.Context, sheetID string) (*entity.DispatchLiquidation, error) {
	query := `SELECT ` + liquidationColumns + ` FROM dispatch_liquidations WHERE dispatch_sheet_id = $1`
	return r.getOne(ctx, query, sheetID)
}

func (r *DispatchLiquidationRepo) getOne(ctx context.Context, query, arg string) (*entity.DispatchLiquidation, error) {
	l, err := scanLiquidation(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get liquidation: %w", err)
	}
	if err := r.loadDocuments(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *DispatchLiquidationRepo) loadDocuments(ctx context.Context, l *entity.DispatchLiquidation) error {
	query := `
		SELECT sale_id, sale_full_number, action, amount_collected, amount_credit,
		       amount_void, amount_credit_note, void_reason, balance_method,
		       credit_note_series, credit_note_number, returned_items
		FROM liquidation_documents
		WHERE liquidation_id = $1
		ORDER BY position`
	rows, err := r.q.Query(ctx, query, l.ID)
	if err != nil {
		return fmt.Errorf("query liquidation documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.LiquidationDocument
		var voidReason, balanceMethod, ncSeries *string
		var returned []byte
		err := rows.Scan(
			&d.SaleID, &d.SaleFullNumber, &d.Action, &d.AmountCollected, &d.AmountCredit,
			&d.AmountVoid, &d.AmountCreditNote, &voidReason, &balanceMethod,
			&ncSeries, &d.CreditNoteNumber, &returned,
		)
		if err != nil {
			return fmt.Errorf("scan liquidation document: %w", err)
		}
		d.VoidReason = derefStr(voidReason)
		d.BalanceMethod = derefStr(balanceMethod)
		d.CreditNoteSeries = derefStr(ncSeries)
		if len(returned) > 0 {
			if err := json.Unmarshal(returned, &d.ReturnedItems); err != nil {
				return fmt.Errorf("unmarshal returned items: %w", err)
			}
		}
		l.Documents = append(l.Documents, d)
	}
	return rows.Err()
}

func scanLiquidation(row pgxScanner) (*entity.DispatchLiquidation, error) {
	var l entity.DispatchLiquidation
	var createdBy *string
	err := row.Scan(
		&l.ID, &l.DispatchSheetID,
		&l.TotalCashCollected, &l.TotalCreditReceivable, &l.TotalVoided, &l.TotalReturnsValue,
		&l.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	l.CreatedBy = derefStr(createdBy)
	return &l, nil
}
