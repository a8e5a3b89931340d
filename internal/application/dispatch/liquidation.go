package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/inventory"
	"github.com/jhoicas/Distribucion-api/internal/domain/liquidation"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// LiquidationUseCase maneja el ciclo de vida de las hojas de reparto y su
// liquidación.
//
// La sesión de liquidación es solo de lectura: PreviewDisposition calcula los
// montos de una disposición sin tocar nada. Todo efecto (numeración de notas
// de crédito, devoluciones a stock, estados de venta, cierre de la hoja)
// ocurre recién en Finalize, dentro de una única transacción.
type LiquidationUseCase struct {
	txRunner    LiquidationTxRunner
	sheetRepo   repository.DispatchSheetRepository
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	liqRepo     repository.DispatchLiquidationRepository
	pdfGen      LiquidationPDFGenerator // nil si la impresión está deshabilitada
	log         *logger.Logger
}

// NewLiquidationUseCase construye el caso de uso.
func NewLiquidationUseCase(
	txRunner LiquidationTxRunner,
	sheetRepo repository.DispatchSheetRepository,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	liqRepo repository.DispatchLiquidationRepository,
	pdfGen LiquidationPDFGenerator,
	log *logger.Logger,
) *LiquidationUseCase {
	return &LiquidationUseCase{
		txRunner:    txRunner,
		sheetRepo:   sheetRepo,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		liqRepo:     liqRepo,
		pdfGen:      pdfGen,
		log:         log,
	}
}

// CreateSheet crea una hoja de reparto con las ventas asignadas a la ruta.
func (uc *LiquidationUseCase) CreateSheet(ctx context.Context, in dto.CreateDispatchRequest) (*dto.DispatchSheetResponse, error) {
	if in.Route == "" || in.Driver == "" || len(in.SaleIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	date := time.Now()
	if in.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", in.Date)
		if err != nil {
			return nil, domain.NewValidation("fecha inválida: %q (use YYYY-MM-DD)", in.Date)
		}
	}

	sales, err := uc.saleRepo.GetByIDs(ctx, in.SaleIDs)
	if err != nil {
		return nil, err
	}
	if len(sales) != len(in.SaleIDs) {
		return nil, domain.ErrNotFound
	}
	for _, s := range sales {
		if s.PaymentStatus == entity.PaymentStatusAnulado {
			return nil, domain.NewValidation("la venta %s está anulada y no puede repartirse", s.FullNumber())
		}
	}

	now := time.Now()
	sheet := &entity.DispatchSheet{
		ID:        uuid.New().String(),
		Route:     in.Route,
		Driver:    in.Driver,
		Date:      date,
		SaleIDs:   in.SaleIDs,
		Status:    entity.DispatchStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.sheetRepo.Create(ctx, sheet); err != nil {
		return nil, err
	}
	return toSheetResponse(sheet), nil
}

// GetSheet devuelve una hoja por ID.
func (uc *LiquidationUseCase) GetSheet(ctx context.Context, id string) (*dto.DispatchSheetResponse, error) {
	sheet, err := uc.sheetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sheet == nil {
		return nil, domain.ErrNotFound
	}
	return toSheetResponse(sheet), nil
}

// ListSheets lista hojas por estado.
func (uc *LiquidationUseCase) ListSheets(ctx context.Context, status string, page dto.PageRequest) ([]*dto.DispatchSheetResponse, error) {
	if status == "" {
		status = entity.DispatchStatusPending
	}
	page.DefaultPage()
	sheets, err := uc.sheetRepo.ListByStatus(ctx, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.DispatchSheetResponse, 0, len(sheets))
	for _, s := range sheets {
		out = append(out, toSheetResponse(s))
	}
	return out, nil
}

// PreviewDisposition calcula los montos de una disposición sin persistir
// nada: es la vista previa de la sesión de liquidación.
func (uc *LiquidationUseCase) PreviewDisposition(ctx context.Context, in dto.DispositionRequest) (*dto.LiquidationDocumentResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, in.SaleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	doc, err := uc.buildDocument(ctx, sale, in)
	if err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// Finalize cierra la hoja de reparto aplicando todas las disposiciones en una
// sola transacción. La hoja queda en estado terminal: un segundo finalize
// devuelve ErrDispatchCompleted sin efecto alguno.
//
// Si el operador envía dos disposiciones para la misma venta, la última
// reemplaza a la anterior (re-selección en la sesión).
func (uc *LiquidationUseCase) Finalize(ctx context.Context, userID, sheetID string, in dto.FinalizeLiquidationRequest) (*dto.LiquidationResponse, error) {
	if sheetID == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Dispositions) == 0 {
		return nil, domain.NewValidation("la liquidación requiere al menos una disposición")
	}
	bySale := make(map[string]dto.DispositionRequest, len(in.Dispositions))
	for _, d := range in.Dispositions {
		bySale[d.SaleID] = d // la última gana
	}

	var liq *entity.DispatchLiquidation
	err := uc.txRunner.RunLiquidation(ctx, func(
		sheetRepo repository.DispatchSheetRepository,
		saleRepo repository.SaleRepository,
		batchRepo repository.BatchRepository,
		seriesRepo repository.DocumentSeriesRepository,
		liqRepo repository.DispatchLiquidationRepository,
	) error {
		sheet, err := sheetRepo.GetForUpdate(ctx, sheetID)
		if err != nil {
			return err
		}
		if sheet == nil {
			return domain.ErrNotFound
		}
		if sheet.Status == entity.DispatchStatusCompleted {
			return domain.ErrDispatchCompleted
		}

		inSheet := make(map[string]bool, len(sheet.SaleIDs))
		for _, id := range sheet.SaleIDs {
			inSheet[id] = true
		}
		for saleID := range bySale {
			if !inSheet[saleID] {
				return domain.NewValidation("la venta %s no pertenece a esta hoja de reparto", saleID)
			}
		}

		// Fase 1: calcular todas las disposiciones antes de tocar nada.
		// Cualquier validación que falle aborta sin efectos.
		type disposed struct {
			sale *entity.Sale
			doc  entity.LiquidationDocument
		}
		var all []disposed
		for _, saleID := range sheet.SaleIDs {
			req, ok := bySale[saleID]
			if !ok {
				continue
			}
			sale, err := saleRepo.GetForUpdate(ctx, saleID)
			if err != nil {
				return err
			}
			if sale == nil {
				return domain.ErrNotFound
			}
			doc, err := uc.buildDocument(ctx, sale, req)
			if err != nil {
				return err
			}
			if !liquidation.CheckConservation(doc, sale.Total) {
				return fmt.Errorf("conservación de dinero rota en %s: disposición %s sobre total %s",
					sale.FullNumber(), doc.Action, sale.Total.StringFixed(2))
			}
			all = append(all, disposed{sale: sale, doc: doc})
		}

		// Fase 2: numerar las notas de crédito con el correlativo bloqueado.
		var ncSeries *entity.DocumentSeries
		for i := range all {
			if all[i].doc.Action != entity.ActionPartialReturn {
				continue
			}
			if ncSeries == nil {
				ncSeries, err = billing.LockSeries(ctx, seriesRepo, entity.DocTypeNotaCredito)
				if err != nil {
					return err
				}
			}
			ncSeries.CurrentNumber++
			all[i].doc.CreditNoteSeries = ncSeries.Series
			all[i].doc.CreditNoteNumber = ncSeries.CurrentNumber
		}

		// Fase 3: aplicar efectos (stock, estados de venta).
		now := time.Now()
		for i := range all {
			d := &all[i]
			switch d.doc.Action {
			case entity.ActionVoid:
				if err := uc.returnAllStock(ctx, batchRepo, saleRepo, d.sale); err != nil {
					return err
				}
				d.sale.Balance = decimal.Zero
				d.sale.PaymentStatus = entity.PaymentStatusAnulado
			case entity.ActionPartialReturn:
				if err := uc.returnPartialStock(ctx, batchRepo, d.sale, d.doc.ReturnedItems); err != nil {
					return err
				}
				if d.doc.BalanceMethod == entity.PaymentContado {
					d.sale.Balance = decimal.Zero
					d.sale.PaymentStatus = entity.PaymentStatusPagado
					d.sale.CollectionStatus = entity.CollectionCobrado
				} else {
					d.sale.Balance = d.doc.AmountCredit
					d.sale.CollectionStatus = entity.CollectionPendiente
				}
			case entity.ActionPaid:
				d.sale.Balance = decimal.Zero
				d.sale.PaymentStatus = entity.PaymentStatusPagado
				d.sale.CollectionStatus = entity.CollectionCobrado
			case entity.ActionCredit:
				// El total queda como cuenta por cobrar: saldo intacto.
			}
			d.sale.UpdatedAt = now
			if err := saleRepo.Update(ctx, d.sale); err != nil {
				return err
			}
		}

		// Fase 4: persistir el cierre inmutable y marcar la hoja terminal.
		docs := make([]entity.LiquidationDocument, 0, len(all))
		for _, d := range all {
			docs = append(docs, d.doc)
		}
		totals := liquidation.Totals(docs)
		liq = &entity.DispatchLiquidation{
			ID:                    uuid.New().String(),
			DispatchSheetID:       sheet.ID,
			TotalCashCollected:    totals.TotalCashCollected,
			TotalCreditReceivable: totals.TotalCreditReceivable,
			TotalVoided:           totals.TotalVoided,
			TotalReturnsValue:     totals.TotalReturnsValue,
			Documents:             docs,
			CreatedAt:             now,
			CreatedBy:             userID,
		}
		if err := liqRepo.Create(ctx, liq); err != nil {
			return err
		}
		if ncSeries != nil {
			if err := seriesRepo.UpdateNumber(ctx, ncSeries.ID, ncSeries.CurrentNumber); err != nil {
				return err
			}
		}
		return sheetRepo.UpdateStatus(ctx, sheet.ID, entity.DispatchStatusCompleted)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("dispatch_sheet_id", sheetID).
		Int("disposiciones", len(liq.Documents)).
		Str("cobrado", liq.TotalCashCollected.StringFixed(2)).
		Msg("hoja de reparto liquidada")
	return toLiquidationResponse(liq), nil
}

// GetLiquidation devuelve el cierre de una hoja de reparto.
func (uc *LiquidationUseCase) GetLiquidation(ctx context.Context, sheetID string) (*dto.LiquidationResponse, error) {
	liq, err := uc.liqRepo.GetByDispatchSheetID(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if liq == nil {
		return nil, domain.ErrNotFound
	}
	return toLiquidationResponse(liq), nil
}

// GetLiquidationPDF genera el PDF imprimible del cierre de una hoja.
func (uc *LiquidationUseCase) GetLiquidationPDF(ctx context.Context, sheetID string) ([]byte, error) {
	if uc.pdfGen == nil {
		return nil, domain.NewValidation("la impresión de liquidaciones está deshabilitada")
	}
	sheet, err := uc.sheetRepo.GetByID(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if sheet == nil {
		return nil, domain.ErrNotFound
	}
	liq, err := uc.liqRepo.GetByDispatchSheetID(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if liq == nil {
		return nil, domain.ErrNotFound
	}
	return uc.pdfGen.GenerateLiquidationPDF(ctx, sheet, liq)
}

// buildDocument calcula la disposición de una venta con el reconciliador.
func (uc *LiquidationUseCase) buildDocument(ctx context.Context, sale *entity.Sale, req dto.DispositionRequest) (entity.LiquidationDocument, error) {
	switch req.Action {
	case entity.ActionPaid:
		return liquidation.Paid(sale), nil
	case entity.ActionCredit:
		return liquidation.Credit(sale), nil
	case entity.ActionVoid:
		return liquidation.Void(sale, req.VoidReason)
	case entity.ActionPartialReturn:
		content, err := uc.packageContentFor(ctx, sale)
		if err != nil {
			return entity.LiquidationDocument{}, err
		}
		lines := make([]liquidation.ReturnLine, 0, len(req.Returns))
		for _, r := range req.Returns {
			lines = append(lines, liquidation.ReturnLine{
				SaleItemID: r.SaleItemID,
				Boxes:      r.Boxes,
				Units:      r.Units,
			})
		}
		return liquidation.PartialReturn(sale, content, lines, req.BalanceMethod)
	default:
		return entity.LiquidationDocument{}, domain.NewValidation(
			"acción de liquidación inválida: %q", req.Action)
	}
}

// packageContentFor arma el mapa ProductID -> unidades base por caja de los
// productos de la venta (los combos devuelven por unidad base del componente).
func (uc *LiquidationUseCase) packageContentFor(ctx context.Context, sale *entity.Sale) (map[string]int64, error) {
	var ids []string
	for _, item := range sale.Items {
		if item.ProductID != "" {
			ids = append(ids, item.ProductID)
		}
	}
	content := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return content, nil
	}
	products, err := uc.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, p := range products {
		content[id] = p.PackageContent
	}
	return content, nil
}

// returnAllStock devuelve a los lotes todas las asignaciones de la venta
// (anulación completa). El estado applied/released de cada línea evita la
// doble liberación.
func (uc *LiquidationUseCase) returnAllStock(
	ctx context.Context,
	batchRepo repository.BatchRepository,
	saleRepo repository.SaleRepository,
	sale *entity.Sale,
) error {
	for i := range sale.Items {
		item := &sale.Items[i]
		if item.AllocationState != entity.AllocationApplied || len(item.Allocations) == 0 {
			continue
		}
		batches, err := uc.lockAllocationBatches(ctx, batchRepo, item.Allocations)
		if err != nil {
			return err
		}
		if err := inventory.Release(batches, item.Allocations); err != nil {
			return err
		}
		for _, b := range batches {
			if err := batchRepo.UpdateQuantity(ctx, b.ID, b.QuantityCurrent); err != nil {
				return err
			}
		}
		if err := saleRepo.UpdateItemAllocationState(ctx, item.ID, entity.AllocationReleased); err != nil {
			return err
		}
		item.AllocationState = entity.AllocationReleased
	}
	return nil
}

// returnPartialStock devuelve a los lotes las cantidades de una devolución
// parcial, deshaciendo el consumo FIFO en orden inverso por línea.
func (uc *LiquidationUseCase) returnPartialStock(
	ctx context.Context,
	batchRepo repository.BatchRepository,
	sale *entity.Sale,
	returned []entity.ReturnedItem,
) error {
	itemsByID := make(map[string]*entity.SaleItem, len(sale.Items))
	for i := range sale.Items {
		itemsByID[sale.Items[i].ID] = &sale.Items[i]
	}
	for _, r := range returned {
		item, ok := itemsByID[r.SaleItemID]
		if !ok {
			return domain.ErrNotFound
		}
		if item.AllocationState != entity.AllocationApplied || len(item.Allocations) == 0 {
			continue
		}
		batches, err := uc.lockAllocationBatches(ctx, batchRepo, item.Allocations)
		if err != nil {
			return err
		}
		released, err := inventory.ReleasePartial(batches, item.Allocations, r.QuantityBase)
		if err != nil {
			return err
		}
		for _, rel := range released {
			b := batches[rel.BatchID]
			if err := batchRepo.UpdateQuantity(ctx, b.ID, b.QuantityCurrent); err != nil {
				return err
			}
		}
	}
	return nil
}

func (uc *LiquidationUseCase) lockAllocationBatches(
	ctx context.Context,
	batchRepo repository.BatchRepository,
	allocations []entity.BatchAllocation,
) (map[string]*entity.Batch, error) {
	ids := make([]string, 0, len(allocations))
	for _, a := range allocations {
		ids = append(ids, a.BatchID)
	}
	return batchRepo.GetForUpdateByIDs(ctx, ids)
}

// ── mapeo a DTOs ──────────────────────────────────────────────────────────────

func toSheetResponse(s *entity.DispatchSheet) *dto.DispatchSheetResponse {
	return &dto.DispatchSheetResponse{
		ID:        s.ID,
		Route:     s.Route,
		Driver:    s.Driver,
		Date:      s.Date.Format("2006-01-02"),
		SaleIDs:   s.SaleIDs,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
	}
}

func toDocumentResponse(d entity.LiquidationDocument) dto.LiquidationDocumentResponse {
	resp := dto.LiquidationDocumentResponse{
		SaleID:           d.SaleID,
		SaleFullNumber:   d.SaleFullNumber,
		Action:           d.Action,
		AmountCollected:  d.AmountCollected,
		AmountCredit:     d.AmountCredit,
		AmountVoid:       d.AmountVoid,
		AmountCreditNote: d.AmountCreditNote,
		VoidReason:       d.VoidReason,
		BalanceMethod:    d.BalanceMethod,
		ReturnedItems:    d.ReturnedItems,
	}
	if d.CreditNoteSeries != "" {
		nc := entity.Sale{Series: d.CreditNoteSeries, Number: d.CreditNoteNumber}
		resp.CreditNote = nc.FullNumber()
	}
	return resp
}

func toLiquidationResponse(l *entity.DispatchLiquidation) *dto.LiquidationResponse {
	resp := &dto.LiquidationResponse{
		ID:                    l.ID,
		DispatchSheetID:       l.DispatchSheetID,
		TotalCashCollected:    l.TotalCashCollected,
		TotalCreditReceivable: l.TotalCreditReceivable,
		TotalVoided:           l.TotalVoided,
		TotalReturnsValue:     l.TotalReturnsValue,
		CreatedAt:             l.CreatedAt,
	}
	for _, d := range l.Documents {
		resp.Documents = append(resp.Documents, toDocumentResponse(d))
	}
	return resp
}
