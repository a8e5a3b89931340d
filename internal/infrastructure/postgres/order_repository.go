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

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository. Cabecera en orders, líneas en
// order_items; asignaciones y componentes de combo viajan como JSONB dentro
// de cada línea.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, client_id, client_name, client_doc_number, client_address, doc_type, payment_method, status, total, created_at, created_by`

const orderItemColumns = `id, order_id, product_id, combo_id, description, quantity, unit_type, required_base, shortfall_base, unit_price, total_price, components, allocations, allocation_state`

func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.ClientID, o.ClientName, o.ClientDocNumber, nullIfEmpty(o.ClientAddress),
		o.DocType, o.PaymentMethod, o.Status, o.Total, o.CreatedAt, nullIfEmpty(o.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for i := range o.Items {
		if err := r.insertItem(ctx, &o.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) insertItem(ctx context.Context, it *entity.OrderItem) error {
	components, err := json.Marshal(it.Components)
	if err != nil {
		return fmt.Errorf("marshal order item components: %w", err)
	}
	allocations, err := json.Marshal(it.Allocations)
	if err != nil {
		return fmt.Errorf("marshal order item allocations: %w", err)
	}
	query := `
		INSERT INTO order_items (` + orderItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		it.ID, it.OrderID, nullIfEmpty(it.ProductID), nullIfEmpty(it.ComboID),
		it.Description, it.Quantity, it.UnitType, it.RequiredBase, it.ShortfallBase,
		it.UnitPrice, it.TotalPrice, components, allocations, it.AllocationState,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) GetForUpdateByIDs(ctx context.Context, ids []string) ([]*entity.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`
	list, err := r.queryOrders(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OrderRepo) ListPending(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`
	list, err := r.queryOrders(ctx, query, entity.OrderStatusPending, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE orders SET status = $2 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) UpdateItemAllocationState(ctx context.Context, itemID, state string) error {
	query := `UPDATE order_items SET allocation_state = $2 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, itemID, state)
	if err != nil {
		return fmt.Errorf("update order item allocation state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) queryOrders(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// loadItems carga las líneas de todos los pedidos en una sola consulta.
func (r *OrderRepo) loadItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	query := `
		SELECT ` + orderItemColumns + ` FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, *it)
		}
	}
	return rows.Err()
}

func scanOrder(row pgxScanner) (*entity.Order, error) {
	var o entity.Order
	var clientAddress, createdBy *string
	err := row.Scan(
		&o.ID, &o.ClientID, &o.ClientName, &o.ClientDocNumber, &clientAddress,
		&o.DocType, &o.PaymentMethod, &o.Status, &o.Total, &o.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	o.ClientAddress = derefStr(clientAddress)
	o.CreatedBy = derefStr(createdBy)
	return &o, nil
}

func scanOrderItem(row pgxScanner) (*entity.OrderItem, error) {
	var it entity.OrderItem
	var productID, comboID *string
	var components, allocations []byte
	err := row.Scan(
		&it.ID, &it.OrderID, &productID, &comboID,
		&it.Description, &it.Quantity, &it.UnitType, &it.RequiredBase, &it.ShortfallBase,
		&it.UnitPrice, &it.TotalPrice, &components, &allocations, &it.AllocationState,
	)
	if err != nil {
		return nil, err
	}
	it.ProductID = derefStr(productID)
	it.ComboID = derefStr(comboID)
	if len(components) > 0 {
		if err := json.Unmarshal(components, &it.Components); err != nil {
			return nil, fmt.Errorf("unmarshal order item components: %w", err)
		}
	}
	if len(allocations) > 0 {
		if err := json.Unmarshal(allocations, &it.Allocations); err != nil {
			return nil, fmt.Errorf("unmarshal order item allocations: %w", err)
		}
	}
	return &it, nil
}
