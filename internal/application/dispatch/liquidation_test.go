package dispatch

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

type fakeSheetRepo struct {
	sheets map[string]*entity.DispatchSheet
}

func (f *fakeSheetRepo) Create(_ context.Context, d *entity.DispatchSheet) error {
	f.sheets[d.ID] = d
	return nil
}

func (f *fakeSheetRepo) GetByID(_ context.Context, id string) (*entity.DispatchSheet, error) {
	return f.sheets[id], nil
}

func (f *fakeSheetRepo) GetForUpdate(_ context.Context, id string) (*entity.DispatchSheet, error) {
	return f.sheets[id], nil
}

func (f *fakeSheetRepo) ListByStatus(_ context.Context, status string, _, _ int) ([]*entity.DispatchSheet, error) {
	var out []*entity.DispatchSheet
	for _, s := range f.sheets {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSheetRepo) UpdateStatus(_ context.Context, id, status string) error {
	f.sheets[id].Status = status
	return nil
}

type fakeSaleStore struct {
	sales map[string]*entity.Sale
}

func (f *fakeSaleStore) Create(_ context.Context, s *entity.Sale) error {
	f.sales[s.ID] = s
	return nil
}

func (f *fakeSaleStore) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeSaleStore) GetForUpdate(_ context.Context, id string) (*entity.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeSaleStore) GetByIDs(_ context.Context, ids []string) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, id := range ids {
		if s, ok := f.sales[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSaleStore) List(_ context.Context, _, _ int) ([]*entity.Sale, error) { return nil, nil }

func (f *fakeSaleStore) Update(_ context.Context, s *entity.Sale) error {
	f.sales[s.ID] = s
	return nil
}

func (f *fakeSaleStore) UpdateItemAllocationState(_ context.Context, itemID, state string) error {
	for _, s := range f.sales {
		for i := range s.Items {
			if s.Items[i].ID == itemID {
				s.Items[i].AllocationState = state
			}
		}
	}
	return nil
}

type fakeBatchStore struct {
	batches map[string]*entity.Batch
}

func (f *fakeBatchStore) Create(_ context.Context, b *entity.Batch) error {
	f.batches[b.ID] = b
	return nil
}

func (f *fakeBatchStore) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	return f.batches[id], nil
}

func (f *fakeBatchStore) ListByProduct(_ context.Context, productID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range f.batches {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBatchStore) GetForUpdateByProduct(_ context.Context, productID string) ([]*entity.Batch, error) {
	return f.ListByProduct(context.Background(), productID)
}

func (f *fakeBatchStore) GetForUpdateByIDs(_ context.Context, ids []string) (map[string]*entity.Batch, error) {
	out := make(map[string]*entity.Batch)
	for _, id := range ids {
		if b, ok := f.batches[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

func (f *fakeBatchStore) UpdateQuantity(_ context.Context, id string, quantityCurrent int64) error {
	f.batches[id].QuantityCurrent = quantityCurrent
	return nil
}

type fakeSeriesStore struct {
	series map[string]*entity.DocumentSeries
}

func (f *fakeSeriesStore) Create(_ context.Context, s *entity.DocumentSeries) error {
	f.series[s.Type] = s
	return nil
}

func (f *fakeSeriesStore) GetActiveForUpdate(_ context.Context, docType string) (*entity.DocumentSeries, error) {
	s, ok := f.series[docType]
	if !ok || !s.IsActive {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSeriesStore) List(_ context.Context) ([]*entity.DocumentSeries, error) {
	return nil, nil
}

func (f *fakeSeriesStore) UpdateNumber(_ context.Context, id string, currentNumber int64) error {
	for _, s := range f.series {
		if s.ID == id {
			s.CurrentNumber = currentNumber
		}
	}
	return nil
}

func (f *fakeSeriesStore) SetActive(_ context.Context, id string, active bool) error {
	return nil
}

type fakeLiqRepo struct {
	liqs map[string]*entity.DispatchLiquidation
}

func (f *fakeLiqRepo) Create(_ context.Context, l *entity.DispatchLiquidation) error {
	f.liqs[l.ID] = l
	return nil
}

func (f *fakeLiqRepo) GetByID(_ context.Context, id string) (*entity.DispatchLiquidation, error) {
	return f.liqs[id], nil
}

func (f *fakeLiqRepo) GetByDispatchSheetID(_ context.Context, sheetID string) (*entity.DispatchLiquidation, error) {
	for _, l := range f.liqs {
		if l.DispatchSheetID == sheetID {
			return l, nil
		}
	}
	return nil, nil
}

type fakeProductStore struct {
	products map[string]*entity.Product
}

func (f *fakeProductStore) Create(_ context.Context, p *entity.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductStore) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return f.products[id], nil
}

func (f *fakeProductStore) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product)
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeProductStore) List(_ context.Context, _, _ int) ([]*entity.Product, error) {
	return nil, nil
}

func (f *fakeProductStore) Update(_ context.Context, p *entity.Product) error {
	f.products[p.ID] = p
	return nil
}

type fakeLiquidationTx struct {
	sheetRepo  *fakeSheetRepo
	saleRepo   *fakeSaleStore
	batchRepo  *fakeBatchStore
	seriesRepo *fakeSeriesStore
	liqRepo    *fakeLiqRepo
}

func (f *fakeLiquidationTx) RunLiquidation(ctx context.Context, fn func(
	repository.DispatchSheetRepository,
	repository.SaleRepository,
	repository.BatchRepository,
	repository.DocumentSeriesRepository,
	repository.DispatchLiquidationRepository,
) error) error {
	return fn(f.sheetRepo, f.saleRepo, f.batchRepo, f.seriesRepo, f.liqRepo)
}

// ── fixture ───────────────────────────────────────────────────────────────────

type liquidationFixture struct {
	tx *fakeLiquidationTx
	uc *LiquidationUseCase
}

func newLiquidationFixture() *liquidationFixture {
	tx := &fakeLiquidationTx{
		sheetRepo:  &fakeSheetRepo{sheets: map[string]*entity.DispatchSheet{}},
		saleRepo:   &fakeSaleStore{sales: map[string]*entity.Sale{}},
		batchRepo:  &fakeBatchStore{batches: map[string]*entity.Batch{}},
		seriesRepo: &fakeSeriesStore{series: map[string]*entity.DocumentSeries{}},
		liqRepo:    &fakeLiqRepo{liqs: map[string]*entity.DispatchLiquidation{}},
	}
	products := &fakeProductStore{products: map[string]*entity.Product{
		"prod-gaseosa": {ID: "prod-gaseosa", Name: "Gaseosa 500ml", PackageContent: 12},
		"prod-agua":    {ID: "prod-agua", Name: "Agua 625ml", PackageContent: 6},
	}}
	uc := NewLiquidationUseCase(tx, tx.sheetRepo, tx.saleRepo, products, tx.liqRepo, nil, logger.NewNop())
	return &liquidationFixture{tx: tx, uc: uc}
}

// saleOnSheet arma la venta F001-100 de 150.00 con dos líneas:
// Gaseosa 10 base por 60.00 (lote b1) y Agua 6 base por 90.00 (lote b2).
func (fx *liquidationFixture) saleOnSheet(sheetID string) *entity.Sale {
	fx.tx.batchRepo.batches["b1"] = &entity.Batch{
		ID: "b1", ProductID: "prod-gaseosa", Code: "L-001",
		QuantityInitial: 50, QuantityCurrent: 40,
	}
	fx.tx.batchRepo.batches["b2"] = &entity.Batch{
		ID: "b2", ProductID: "prod-agua", Code: "L-002",
		QuantityInitial: 30, QuantityCurrent: 24,
	}
	sale := &entity.Sale{
		ID: "sale-1", DocType: entity.DocTypeFactura, Series: "F001", Number: 100,
		PaymentMethod:    entity.PaymentCredito,
		Total:            decimal.RequireFromString("150.00"),
		Balance:          decimal.RequireFromString("150.00"),
		PaymentStatus:    entity.PaymentStatusPendiente,
		CollectionStatus: entity.CollectionPendiente,
		Items: []entity.SaleItem{
			{
				ID: "item-1", SaleID: "sale-1", ProductID: "prod-gaseosa",
				Description: "Gaseosa 500ml", QuantityBase: 10,
				TotalPrice:      decimal.RequireFromString("60.00"),
				Allocations:     []entity.BatchAllocation{{BatchID: "b1", BatchCode: "L-001", Quantity: 10}},
				AllocationState: entity.AllocationApplied,
			},
			{
				ID: "item-2", SaleID: "sale-1", ProductID: "prod-agua",
				Description: "Agua 625ml", QuantityBase: 6,
				TotalPrice:      decimal.RequireFromString("90.00"),
				Allocations:     []entity.BatchAllocation{{BatchID: "b2", BatchCode: "L-002", Quantity: 6}},
				AllocationState: entity.AllocationApplied,
			},
		},
	}
	fx.tx.saleRepo.sales[sale.ID] = sale
	fx.tx.sheetRepo.sheets[sheetID] = &entity.DispatchSheet{
		ID: sheetID, Route: "Ruta Norte", Driver: "Luis Paredes",
		Date: time.Now(), SaleIDs: []string{sale.ID},
		Status: entity.DispatchStatusPending,
	}
	return sale
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestFinalize_PagadoCierraLaVentaYLaHoja(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	resp, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", dto.FinalizeLiquidationRequest{
		Dispositions: []dto.DispositionRequest{{SaleID: "sale-1", Action: entity.ActionPaid}},
	})
	require.NoError(t, err)

	assert.Equal(t, "150.00", resp.TotalCashCollected.StringFixed(2))
	assert.True(t, resp.TotalCreditReceivable.IsZero())

	sale := fx.tx.saleRepo.sales["sale-1"]
	assert.True(t, sale.Balance.IsZero())
	assert.Equal(t, entity.PaymentStatusPagado, sale.PaymentStatus)
	assert.Equal(t, entity.CollectionCobrado, sale.CollectionStatus)
	assert.Equal(t, entity.DispatchStatusCompleted, fx.tx.sheetRepo.sheets["sheet-1"].Status)
}

func TestFinalize_CreditoDejaElSaldoIntacto(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	resp, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", dto.FinalizeLiquidationRequest{
		Dispositions: []dto.DispositionRequest{{SaleID: "sale-1", Action: entity.ActionCredit}},
	})
	require.NoError(t, err)

	assert.Equal(t, "150.00", resp.TotalCreditReceivable.StringFixed(2))
	sale := fx.tx.saleRepo.sales["sale-1"]
	assert.Equal(t, "150.00", sale.Balance.StringFixed(2))
	assert.Equal(t, entity.PaymentStatusPendiente, sale.PaymentStatus)
}

func TestFinalize_AnulacionDevuelveTodoElStock(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	resp, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", dto.FinalizeLiquidationRequest{
		Dispositions: []dto.DispositionRequest{{
			SaleID: "sale-1", Action: entity.ActionVoid, VoidReason: "cliente cerrado",
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "150.00", resp.TotalVoided.StringFixed(2))
	assert.Equal(t, int64(50), fx.tx.batchRepo.batches["b1"].QuantityCurrent,
		"el lote recupera las 10 unidades vendidas")
	assert.Equal(t, int64(30), fx.tx.batchRepo.batches["b2"].QuantityCurrent)

	sale := fx.tx.saleRepo.sales["sale-1"]
	assert.Equal(t, entity.PaymentStatusAnulado, sale.PaymentStatus)
	assert.True(t, sale.Balance.IsZero())
	for _, item := range sale.Items {
		assert.Equal(t, entity.AllocationReleased, item.AllocationState,
			"las asignaciones liberadas quedan marcadas contra doble liberación")
	}
}

func TestFinalize_AnulacionExigeMotivoDeCincoCaracteres(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	_, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", dto.FinalizeLiquidationRequest{
		Dispositions: []dto.DispositionRequest{{
			SaleID: "sale-1", Action: entity.ActionVoid, VoidReason: "roto",
		}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, entity.DispatchStatusPending, fx.tx.sheetRepo.sheets["sheet-1"].Status,
		"un finalize fallido no debe cerrar la hoja")
	assert.Equal(t, int64(40), fx.tx.batchRepo.batches["b1"].QuantityCurrent,
		"un finalize fallido no debe tocar stock")
}

func TestFinalize_DevolucionParcialContado(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	// Devuelve 5 de las 10 gaseosas: nota de crédito 30.00, saldo 120.00 cobrado.
	resp, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", dto.FinalizeLiquidationRequest{
		Dispositions: []dto.DispositionRequest{{
			SaleID:        "sale-1",
			Action:        entity.ActionPartialReturn,
			BalanceMethod: entity.PaymentContado,
			Returns:       []dto.ReturnLineRequest{{SaleItemID: "item-1", Units: 5}},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "30.00", resp.TotalReturnsValue.StringFixed(2))
	assert.Equal(t, "120.00", resp.TotalCashCollected.StringFixed(2))
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "FC01-1", resp.Documents[0].CreditNote,
		"la nota de crédito recibe número real de la serie por defecto")

	assert.Equal(t, int64(45), fx.tx.batchRepo.batches["b1"].QuantityCurrent,
		"el lote recupera exactamente las 5 unidades devueltas")
	sale := fx.tx.saleRepo.sales["sale-1"]
	assert.True(t, sale.Balance.IsZero())
	assert.Equal(t, entity.PaymentStatusPagado, sale.PaymentStatus)
}

func TestFinalize_DevolucionParcialSaldoACredito(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	resp, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", dto.FinalizeLiquidationRequest{
		Dispositions: []dto.DispositionRequest{{
			SaleID:        "sale-1",
			Action:        entity.ActionPartialReturn,
			BalanceMethod: entity.PaymentCredito,
			Returns:       []dto.ReturnLineRequest{{SaleItemID: "item-2", Units: 2}},
		}},
	})
	require.NoError(t, err)

	// 2 de 6 aguas: reembolso 30.00, saldo 120.00 entero a crédito.
	assert.Equal(t, "30.00", resp.TotalReturnsValue.StringFixed(2))
	assert.Equal(t, "120.00", resp.TotalCreditReceivable.StringFixed(2))
	assert.True(t, resp.TotalCashCollected.IsZero())

	sale := fx.tx.saleRepo.sales["sale-1"]
	assert.Equal(t, "120.00", sale.Balance.StringFixed(2))
	assert.Equal(t, entity.CollectionPendiente, sale.CollectionStatus)
}

func TestFinalize_DevolucionExcedenteNombraProductoYCantidades(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	// 1 caja (12) de un ítem que vendió 10 unidades base.
	_, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", dto.FinalizeLiquidationRequest{
		Dispositions: []dto.DispositionRequest{{
			SaleID:        "sale-1",
			Action:        entity.ActionPartialReturn,
			BalanceMethod: entity.PaymentContado,
			Returns:       []dto.ReturnLineRequest{{SaleItemID: "item-1", Boxes: 1}},
		}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "Gaseosa 500ml")
	assert.Contains(t, err.Error(), "12")
	assert.Contains(t, err.Error(), "10")
}

func TestFinalize_SegundoFinalizeRechazado(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	req := dto.FinalizeLiquidationRequest{
		Dispositions: []dto.DispositionRequest{{SaleID: "sale-1", Action: entity.ActionPaid}},
	}
	_, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", req)
	require.NoError(t, err)

	_, err = fx.uc.Finalize(context.Background(), "user-1", "sheet-1", req)
	assert.ErrorIs(t, err, domain.ErrDispatchCompleted)
	assert.Len(t, fx.tx.liqRepo.liqs, 1, "la liquidación es única por hoja")
}

func TestFinalize_VentaFueraDeLaHoja(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	_, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", dto.FinalizeLiquidationRequest{
		Dispositions: []dto.DispositionRequest{{SaleID: "sale-ajena", Action: entity.ActionPaid}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestFinalize_ReSeleccionLaUltimaDisposicionGana(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	resp, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", dto.FinalizeLiquidationRequest{
		Dispositions: []dto.DispositionRequest{
			{SaleID: "sale-1", Action: entity.ActionCredit},
			{SaleID: "sale-1", Action: entity.ActionPaid},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, entity.ActionPaid, resp.Documents[0].Action)
	assert.Equal(t, "150.00", resp.TotalCashCollected.StringFixed(2))
}

func TestFinalize_SinDisposiciones(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	_, err := fx.uc.Finalize(context.Background(), "user-1", "sheet-1", dto.FinalizeLiquidationRequest{})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestPreview_NoMutaNada(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-1")

	doc, err := fx.uc.PreviewDisposition(context.Background(), dto.DispositionRequest{
		SaleID:        "sale-1",
		Action:        entity.ActionPartialReturn,
		BalanceMethod: entity.PaymentContado,
		Returns:       []dto.ReturnLineRequest{{SaleItemID: "item-1", Units: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, "30.00", doc.AmountCreditNote.StringFixed(2))
	assert.Equal(t, "120.00", doc.AmountCollected.StringFixed(2))
	assert.Empty(t, doc.CreditNote, "la vista previa no asigna número de nota de crédito")

	assert.Equal(t, int64(40), fx.tx.batchRepo.batches["b1"].QuantityCurrent, "la vista previa no toca stock")
	assert.Equal(t, "150.00", fx.tx.saleRepo.sales["sale-1"].Balance.StringFixed(2))
	assert.Equal(t, entity.DispatchStatusPending, fx.tx.sheetRepo.sheets["sheet-1"].Status)
}

func TestCreateSheet_ValidaVentas(t *testing.T) {
	fx := newLiquidationFixture()
	fx.saleOnSheet("sheet-0")

	resp, err := fx.uc.CreateSheet(context.Background(), dto.CreateDispatchRequest{
		Route: "Ruta Sur", Driver: "Ana Torres", Date: "2025-03-10",
		SaleIDs: []string{"sale-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DispatchStatusPending, resp.Status)
	assert.Equal(t, "2025-03-10", resp.Date)

	_, err = fx.uc.CreateSheet(context.Background(), dto.CreateDispatchRequest{
		Route: "Ruta Sur", Driver: "Ana Torres",
		SaleIDs: []string{"no-existe"},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
