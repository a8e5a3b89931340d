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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository. Cabecera en sales, líneas en
// sale_items con asignaciones y componentes como JSONB. Las líneas nunca se
// mutan después de creadas salvo allocation_state.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, order_id, client_id, client_name, client_doc_number, client_address, doc_type, series, number, payment_method, total, balance, payment_status, collection_status, sunat_status, sunat_message, created_at, updated_at`

const saleItemColumns = `id, sale_id, product_id, combo_id, description, quantity, unit_type, quantity_base, unit_price, total_price, components, allocations, allocation_state`

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.OrderID, s.ClientID, s.ClientName, s.ClientDocNumber, nullIfEmpty(s.ClientAddress),
		s.DocType, s.Series, s.Number, s.PaymentMethod, s.Total, s.Balance,
		s.PaymentStatus, s.CollectionStatus, s.SunatStatus, nullIfEmpty(s.SunatMessage),
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	for i := range s.Items {
		if err := r.insertItem(ctx, &s.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SaleRepo) insertItem(ctx context.Context, it *entity.SaleItem) error {
	components, err := json.Marshal(it.Components)
	if err != nil {
		return fmt.Errorf("marshal sale item components: %w", err)
	}
	allocations, err := json.Marshal(it.Allocations)
	if err != nil {
		return fmt.Errorf("marshal sale item allocations: %w", err)
	}
	query := `
		INSERT INTO sale_items (` + saleItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		it.ID, it.SaleID, nullIfEmpty(it.ProductID), nullIfEmpty(it.ComboID),
		it.Description, it.Quantity, it.UnitType, it.QuantityBase,
		it.UnitPrice, it.TotalPrice, components, allocations, it.AllocationState,
	)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate bloquea la venta para mutaciones de saldo/estado dentro de una tx.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *SaleRepo) getOne(ctx context.Context, query, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Sale, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = ANY($1) ORDER BY id`
	list, err := r.querySales(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + ` FROM sales
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	list, err := r.querySales(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales
		SET balance = $2, payment_status = $3, collection_status = $4,
		    sunat_status = $5, sunat_message = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.Balance, s.PaymentStatus, s.CollectionStatus,
		s.SunatStatus, nullIfEmpty(s.SunatMessage), s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SaleRepo) UpdateItemAllocationState(ctx context.Context, itemID, state string) error {
	query := `UPDATE sale_items SET allocation_state = $2 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, itemID, state)
	if err != nil {
		return fmt.Errorf("update sale item allocation state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SaleRepo) querySales(ctx context.Context, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SaleRepo) loadItems(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Sale, len(sales))
	ids := make([]string, 0, len(sales))
	for _, s := range sales {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	query := `
		SELECT ` + saleItemColumns + ` FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("query sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanSaleItem(rows)
		if err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, *it)
		}
	}
	return rows.Err()
}

func scanSale(row pgxScanner) (*entity.Sale, error) {
	var s entity.Sale
	var clientAddress, sunatMessage *string
	err := row.Scan(
		&s.ID, &s.OrderID, &s.ClientID, &s.ClientName, &s.ClientDocNumber, &clientAddress,
		&s.DocType, &s.Series, &s.Number, &s.PaymentMethod, &s.Total, &s.Balance,
		&s.PaymentStatus, &s.CollectionStatus, &s.SunatStatus, &sunatMessage,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.ClientAddress = derefStr(clientAddress)
	s.SunatMessage = derefStr(sunatMessage)
	return &s, nil
}

func scanSaleItem(row pgxScanner) (*entity.SaleItem, error) {
	var it entity.SaleItem
	var productID, comboID *string
	var components, allocations []byte
	err := row.Scan(
		&it.ID, &it.SaleID, &productID, &comboID,
		&it.Description, &it.Quantity, &it.UnitType, &it.QuantityBase,
		&it.UnitPrice, &it.TotalPrice, &components, &allocations, &it.AllocationState,
	)
	if err != nil {
		return nil, err
	}
	it.ProductID = derefStr(productID)
	it.ComboID = derefStr(comboID)
	if len(components) > 0 {
		if err := json.Unmarshal(components, &it.Components); err != nil {
			return nil, fmt.Errorf("unmarshal sale item components: %w", err)
		}
	}
	if len(allocations) > 0 {
		if err := json.Unmarshal(allocations, &it.Allocations); err != nil {
			return nil, fmt.Errorf("unmarshal sale item allocations: %w", err)
		}
	}
	return &it, nil
}
