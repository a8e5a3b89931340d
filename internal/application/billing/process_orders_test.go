package billing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// ── fakes en memoria ──────────────────────────────────────────────────────────

type fakeOrderRepo struct {
	orders map[string]*entity.Order
}

func (f *fakeOrderRepo) Create(_ context.Context, o *entity.Order) error {
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	return f.orders[id], nil
}

func (f *fakeOrderRepo) GetForUpdateByIDs(_ context.Context, ids []string) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, id := range ids {
		if o, ok := f.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListPending(_ context.Context, _, _ int) ([]*entity.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	f.orders[id].Status = status
	return nil
}

func (f *fakeOrderRepo) UpdateItemAllocationState(_ context.Context, itemID, state string) error {
	for _, o := range f.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				o.Items[i].AllocationState = state
			}
		}
	}
	return nil
}

type fakeSaleRepo struct {
	sales map[string]*entity.Sale
}

func (f *fakeSaleRepo) Create(_ context.Context, s *entity.Sale) error {
	f.sales[s.ID] = s
	return nil
}

func (f *fakeSaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeSaleRepo) GetForUpdate(_ context.Context, id string) (*entity.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeSaleRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, id := range ids {
		if s, ok := f.sales[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSaleRepo) List(_ context.Context, _, _ int) ([]*entity.Sale, error) {
	return nil, nil
}

func (f *fakeSaleRepo) Update(_ context.Context, s *entity.Sale) error {
	f.sales[s.ID] = s
	return nil
}

func (f *fakeSaleRepo) UpdateItemAllocationState(_ context.Context, itemID, state string) error {
	for _, s := range f.sales {
		for i := range s.Items {
			if s.Items[i].ID == itemID {
				s.Items[i].AllocationState = state
			}
		}
	}
	return nil
}

type fakeSeriesRepo struct {
	series map[string]*entity.DocumentSeries // por tipo
}

func (f *fakeSeriesRepo) Create(_ context.Context, s *entity.DocumentSeries) error {
	if _, ok := f.series[s.Type]; ok {
		return domain.ErrConflict
	}
	f.series[s.Type] = s
	return nil
}

func (f *fakeSeriesRepo) GetActiveForUpdate(_ context.Context, docType string) (*entity.DocumentSeries, error) {
	s, ok := f.series[docType]
	if !ok || !s.IsActive {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSeriesRepo) List(_ context.Context) ([]*entity.DocumentSeries, error) {
	var out []*entity.DocumentSeries
	for _, s := range f.series {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSeriesRepo) UpdateNumber(_ context.Context, id string, currentNumber int64) error {
	for _, s := range f.series {
		if s.ID == id {
			s.CurrentNumber = currentNumber
		}
	}
	return nil
}

func (f *fakeSeriesRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, s := range f.series {
		if s.ID == id {
			s.IsActive = active
		}
	}
	return nil
}

// fakeBillingTx pasa los fakes directamente; el "rollback" se simula no
// verificando estado intermedio cuando fn falla.
type fakeBillingTx struct {
	orderRepo  *fakeOrderRepo
	saleRepo   *fakeSaleRepo
	seriesRepo *fakeSeriesRepo
}

func (f *fakeBillingTx) RunBilling(ctx context.Context, fn func(
	repository.OrderRepository,
	repository.SaleRepository,
	repository.DocumentSeriesRepository,
) error) error {
	return fn(f.orderRepo, f.saleRepo, f.seriesRepo)
}

func (f *fakeBillingTx) RunSale(ctx context.Context, fn func(repository.SaleRepository) error) error {
	return fn(f.saleRepo)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func newBillingFixture() (*fakeBillingTx, *ProcessOrdersUseCase) {
	tx := &fakeBillingTx{
		orderRepo:  &fakeOrderRepo{orders: map[string]*entity.Order{}},
		saleRepo:   &fakeSaleRepo{sales: map[string]*entity.Sale{}},
		seriesRepo: &fakeSeriesRepo{series: map[string]*entity.DocumentSeries{}},
	}
	uc := NewProcessOrdersUseCase(tx, tx.saleRepo, nil, logger.NewNop())
	return tx, uc
}

func pendingOrder(id, docType string, createdAt time.Time, total string) *entity.Order {
	t, _ := decimal.NewFromString(total)
	return &entity.Order{
		ID:            id,
		ClientID:      "cli-1",
		ClientName:    "Bodega Central",
		DocType:       docType,
		PaymentMethod: entity.PaymentContado,
		Status:        entity.OrderStatusPending,
		Total:         t,
		CreatedAt:     createdAt,
		Items: []entity.OrderItem{{
			ID:           "item-" + id,
			OrderID:      id,
			ProductID:    "prod-1",
			Description:  "Gaseosa 500ml",
			Quantity:     5,
			UnitType:     entity.UnitUnidad,
			RequiredBase: 5,
			UnitPrice:    t,
			TotalPrice:   t,
		}},
	}
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestProcess_NumeracionConsecutivaDesdeElCorrelativo(t *testing.T) {
	tx, uc := newBillingFixture()
	tx.seriesRepo.series[entity.DocTypeBoleta] = &entity.DocumentSeries{
		ID: "ser-b", Type: entity.DocTypeBoleta, Series: "B001",
		CurrentNumber: 100, IsActive: true,
	}

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	ids := []string{"ord-1", "ord-2", "ord-3", "ord-4", "ord-5"}
	for i, id := range ids {
		tx.orderRepo.orders[id] = pendingOrder(id, entity.DocTypeBoleta, base.Add(time.Duration(i)*time.Minute), "10.00")
	}

	resp, err := uc.Process(context.Background(), dto.ProcessOrdersRequest{OrderIDs: ids})
	require.NoError(t, err)
	require.Len(t, resp.Sales, 5, "cada pedido debe emitir exactamente una venta")

	for i, s := range resp.Sales {
		assert.Equal(t, int64(101+i), s.Number, "los números deben ser consecutivos sin huecos")
		assert.Equal(t, "B001", s.Series)
	}
	assert.Equal(t, int64(105), tx.seriesRepo.series[entity.DocTypeBoleta].CurrentNumber,
		"el correlativo persistido debe quedar en el último número emitido")
}

func TestProcess_NumeraPorOrdenDeCreacion(t *testing.T) {
	tx, uc := newBillingFixture()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	tx.orderRepo.orders["ord-nuevo"] = pendingOrder("ord-nuevo", entity.DocTypeBoleta, base.Add(time.Hour), "10.00")
	tx.orderRepo.orders["ord-viejo"] = pendingOrder("ord-viejo", entity.DocTypeBoleta, base, "10.00")

	resp, err := uc.Process(context.Background(), dto.ProcessOrdersRequest{OrderIDs: []string{"ord-nuevo", "ord-viejo"}})
	require.NoError(t, err)
	require.Len(t, resp.Sales, 2)

	assert.Equal(t, "ord-viejo", resp.Sales[0].OrderID, "el pedido más antiguo toma el número menor")
	assert.Equal(t, int64(1), resp.Sales[0].Number)
	assert.Equal(t, int64(2), resp.Sales[1].Number)
}

func TestProcess_SeriesIndependientesPorTipoDeDocumento(t *testing.T) {
	tx, uc := newBillingFixture()
	tx.seriesRepo.series[entity.DocTypeFactura] = &entity.DocumentSeries{
		ID: "ser-f", Type: entity.DocTypeFactura, Series: "F001",
		CurrentNumber: 50, IsActive: true,
	}
	tx.seriesRepo.series[entity.DocTypeBoleta] = &entity.DocumentSeries{
		ID: "ser-b", Type: entity.DocTypeBoleta, Series: "B001",
		CurrentNumber: 7, IsActive: true,
	}

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	tx.orderRepo.orders["ord-f"] = pendingOrder("ord-f", entity.DocTypeFactura, base, "100.00")
	tx.orderRepo.orders["ord-b"] = pendingOrder("ord-b", entity.DocTypeBoleta, base.Add(time.Minute), "20.00")

	resp, err := uc.Process(context.Background(), dto.ProcessOrdersRequest{OrderIDs: []string{"ord-f", "ord-b"}})
	require.NoError(t, err)
	require.Len(t, resp.Sales, 2)

	assert.Equal(t, "F001-51", resp.Sales[0].FullNumber)
	assert.Equal(t, "B001-8", resp.Sales[1].FullNumber)
}

func TestProcess_CreaSeriePorDefectoSiNoExiste(t *testing.T) {
	tx, uc := newBillingFixture()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	tx.orderRepo.orders["ord-1"] = pendingOrder("ord-1", entity.DocTypeBoleta, base, "10.00")

	resp, err := uc.Process(context.Background(), dto.ProcessOrdersRequest{OrderIDs: []string{"ord-1"}})
	require.NoError(t, err)
	require.Len(t, resp.Sales, 1)

	assert.Equal(t, "B001-1", resp.Sales[0].FullNumber, "sin serie configurada arranca la serie por defecto en 1")
	assert.Equal(t, int64(1), tx.seriesRepo.series[entity.DocTypeBoleta].CurrentNumber)
}

func TestProcess_RechazaPedidoYaProcesado(t *testing.T) {
	tx, uc := newBillingFixture()
	o := pendingOrder("ord-1", entity.DocTypeBoleta, time.Now(), "10.00")
	o.Status = entity.OrderStatusProcessed
	tx.orderRepo.orders["ord-1"] = o

	_, err := uc.Process(context.Background(), dto.ProcessOrdersRequest{OrderIDs: []string{"ord-1"}})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, tx.saleRepo.sales, "un lote inválido no debe emitir ninguna venta")
}

func TestProcess_PedidoInexistente(t *testing.T) {
	_, uc := newBillingFixture()

	_, err := uc.Process(context.Background(), dto.ProcessOrdersRequest{OrderIDs: []string{"no-existe"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcess_LoteVacio(t *testing.T) {
	_, uc := newBillingFixture()

	_, err := uc.Process(context.Background(), dto.ProcessOrdersRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcess_VentaHeredaSnapshotDelPedido(t *testing.T) {
	tx, uc := newBillingFixture()
	o := pendingOrder("ord-1", entity.DocTypeFactura, time.Now(), "150.00")
	o.ClientDocNumber = "20100070970"
	o.PaymentMethod = entity.PaymentCredito
	tx.orderRepo.orders["ord-1"] = o

	resp, err := uc.Process(context.Background(), dto.ProcessOrdersRequest{OrderIDs: []string{"ord-1"}})
	require.NoError(t, err)

	sale := tx.saleRepo.sales[resp.Sales[0].SaleID]
	require.NotNil(t, sale)
	assert.Equal(t, entity.DocTypeFactura, sale.DocType, "el tipo de comprobante viene del snapshot, no se re-deriva")
	assert.Equal(t, "20100070970", sale.ClientDocNumber)
	assert.Equal(t, entity.PaymentCredito, sale.PaymentMethod)
	assert.True(t, sale.Balance.Equal(sale.Total), "la venta nace con saldo igual al total")
	assert.Equal(t, entity.SunatStatusPending, sale.SunatStatus)
	assert.Equal(t, entity.OrderStatusProcessed, tx.orderRepo.orders["ord-1"].Status)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, int64(5), sale.Items[0].QuantityBase)
}

func TestRegisterPayment_CobroParcialYTotal(t *testing.T) {
	tx, _ := newBillingFixture()
	uc := NewCollectionsUseCase(tx)
	tx.saleRepo.sales["sale-1"] = &entity.Sale{
		ID: "sale-1", Series: "F001", Number: 10,
		PaymentMethod:    entity.PaymentCredito,
		Total:            decimal.RequireFromString("90.00"),
		Balance:          decimal.RequireFromString("90.00"),
		PaymentStatus:    entity.PaymentStatusPendiente,
		CollectionStatus: entity.CollectionPendiente,
	}

	resp, err := uc.RegisterPayment(context.Background(), "sale-1", dto.RegisterPaymentRequest{
		Amount: decimal.RequireFromString("40.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "50", resp.Balance.String())
	assert.Equal(t, entity.CollectionParcial, resp.CollectionStatus)

	resp, err = uc.RegisterPayment(context.Background(), "sale-1", dto.RegisterPaymentRequest{
		Amount: decimal.RequireFromString("50.00"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Balance.IsZero())
	assert.Equal(t, entity.PaymentStatusPagado, resp.PaymentStatus)
	assert.Equal(t, entity.CollectionCobrado, resp.CollectionStatus)
}

func TestRegisterPayment_RechazaCobroMayorAlSaldo(t *testing.T) {
	tx, _ := newBillingFixture()
	uc := NewCollectionsUseCase(tx)
	tx.saleRepo.sales["sale-1"] = &entity.Sale{
		ID: "sale-1", Series: "F001", Number: 10,
		Total:   decimal.RequireFromString("90.00"),
		Balance: decimal.RequireFromString("30.00"),
	}

	_, err := uc.RegisterPayment(context.Background(), "sale-1", dto.RegisterPaymentRequest{
		Amount: decimal.RequireFromString("30.01"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestRegisterPayment_RechazaMontoNoPositivo(t *testing.T) {
	tx, _ := newBillingFixture()
	uc := NewCollectionsUseCase(tx)

	_, err := uc.RegisterPayment(context.Background(), "sale-1", dto.RegisterPaymentRequest{
		Amount: decimal.Zero,
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}
