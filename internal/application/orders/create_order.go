package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/inventory"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
	"github.com/jhoicas/Distribucion-api/pkg/sunat"
)

// CreateOrderUseCase crea un pedido y asigna lotes FIFO por vencimiento en
// una sola transacción (planificador de cumplimiento).
//
// Expande cada línea a su demanda en unidades base: producto simple con
// conversión por PackageContent, o combo componente por componente (con
// snapshot de la definición del combo al momento de planear). Un faltante de
// stock no bloquea el pedido (solo se registra y loguea), a diferencia de la
// devolución en liquidación, que sí bloquea cantidades mayores a lo vendido.
type CreateOrderUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	comboRepo   repository.ComboRepository
	clientRepo  repository.ClientRepository
	orderRepo   repository.OrderRepository // solo lecturas; escrituras vía txRunner
	log         *logger.Logger
}

// NewCreateOrderUseCase construye el caso de uso.
func NewCreateOrderUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	comboRepo repository.ComboRepository,
	clientRepo repository.ClientRepository,
	orderRepo repository.OrderRepository,
	log *logger.Logger,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		comboRepo:   comboRepo,
		clientRepo:  clientRepo,
		orderRepo:   orderRepo,
		log:         log,
	}
}

// Create valida el pedido, toma el snapshot del cliente (clasificando el tipo
// de comprobante en ese momento), y asigna lotes dentro de la transacción.
func (uc *CreateOrderUseCase) Create(ctx context.Context, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if in.ClientID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.PaymentMethod != entity.PaymentContado && in.PaymentMethod != entity.PaymentCredito {
		return nil, domain.NewValidation("método de pago inválido: %q (use CONTADO o CREDITO)", in.PaymentMethod)
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, domain.NewValidation("la cantidad de cada línea debe ser mayor a cero")
		}
		if (line.ProductID == "") == (line.ComboID == "") {
			return nil, domain.NewValidation("cada línea debe referenciar un producto o un combo, no ambos")
		}
	}

	// Snapshot del cliente: nombre, documento y dirección se congelan aquí.
	// El tipo de comprobante se clasifica sobre este snapshot y no se
	// re-deriva al procesar (el registro del cliente puede cambiar después).
	client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	docType := entity.DocTypeBoleta
	if sunat.IsRUC(client.DocNumber) {
		docType = entity.DocTypeFactura
	}

	// Resolver catálogo fuera de la transacción (solo lectura). Una
	// referencia desconocida falla el pedido completo, no se omite en silencio.
	items, err := uc.buildItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &entity.Order{
		ID:              uuid.New().String(),
		ClientID:        client.ID,
		ClientName:      client.Name,
		ClientDocNumber: client.DocNumber,
		ClientAddress:   client.Address,
		DocType:         docType,
		PaymentMethod:   in.PaymentMethod,
		Status:          entity.OrderStatusPending,
		Items:           items,
		CreatedAt:       now,
		CreatedBy:       userID,
	}
	total := decimal.Zero
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		total = total.Add(order.Items[i].TotalPrice)
	}
	order.Total = total.Round(2)

	err = uc.txRunner.RunOrder(ctx, func(
		batchRepo repository.BatchRepository,
		orderRepo repository.OrderRepository,
	) error {
		for i := range order.Items {
			if err := uc.allocateItem(ctx, batchRepo, &order.Items[i]); err != nil {
				return err
			}
		}
		return orderRepo.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	for i := range order.Items {
		if order.Items[i].ShortfallBase > 0 {
			uc.log.Warn().
				Str("order_id", order.ID).
				Str("description", order.Items[i].Description).
				Int64("shortfall_base", order.Items[i].ShortfallBase).
				Msg("pedido con faltante de stock")
		}
	}
	return toOrderResponse(order), nil
}

// buildItems expande las líneas del request a líneas de pedido con demanda
// en unidades base y precios resueltos contra el catálogo.
func (uc *CreateOrderUseCase) buildItems(ctx context.Context, lines []dto.OrderLineRequest) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	for _, line := range lines {
		if line.ComboID != "" {
			item, err := uc.buildComboItem(ctx, line)
			if err != nil {
				return nil, err
			}
			items = append(items, *item)
			continue
		}
		item, err := uc.buildProductItem(ctx, line)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (uc *CreateOrderUseCase) buildProductItem(ctx context.Context, line dto.OrderLineRequest) (*entity.OrderItem, error) {
	product, err := uc.productRepo.GetByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	unitType := line.UnitType
	if unitType == "" {
		unitType = entity.UnitUnidad
	}
	if unitType != entity.UnitUnidad && unitType != entity.UnitPaquete {
		return nil, domain.NewValidation("unidad inválida: %q (use UNIDAD o PAQUETE)", unitType)
	}
	unitPrice := line.UnitPrice
	if unitPrice.IsZero() {
		if unitType == entity.UnitPaquete {
			unitPrice = product.PricePackage
		} else {
			unitPrice = product.PriceUnit
		}
	}
	if unitPrice.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	qty := decimal.NewFromInt(line.Quantity)
	return &entity.OrderItem{
		ID:              uuid.New().String(),
		ProductID:       product.ID,
		Description:     product.Name,
		Quantity:        line.Quantity,
		UnitType:        unitType,
		RequiredBase:    product.BaseUnits(line.Quantity, unitType),
		UnitPrice:       unitPrice,
		TotalPrice:      unitPrice.Mul(qty).Round(2),
		AllocationState: entity.AllocationApplied,
	}, nil
}

func (uc *CreateOrderUseCase) buildComboItem(ctx context.Context, line dto.OrderLineRequest) (*entity.OrderItem, error) {
	combo, err := uc.comboRepo.GetByID(ctx, line.ComboID)
	if err != nil {
		return nil, err
	}
	if combo == nil {
		return nil, domain.ErrNotFound
	}
	unitPrice := line.UnitPrice
	if unitPrice.IsZero() {
		unitPrice = combo.Price
	}

	// Snapshot de los componentes: ediciones posteriores del combo no deben
	// alterar pedidos históricos.
	var components []entity.ComboComponent
	var requiredBase int64
	for _, ci := range combo.Items {
		product, err := uc.productRepo.GetByID(ctx, ci.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		components = append(components, entity.ComboComponent{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       ci.Quantity,
			UnitType:       ci.UnitType,
			PackageContent: product.PackageContent,
		})
		requiredBase += line.Quantity * product.BaseUnits(ci.Quantity, ci.UnitType)
	}

	qty := decimal.NewFromInt(line.Quantity)
	return &entity.OrderItem{
		ID:              uuid.New().String(),
		ComboID:         combo.ID,
		Description:     combo.Name,
		Quantity:        line.Quantity,
		RequiredBase:    requiredBase,
		UnitPrice:       unitPrice,
		TotalPrice:      unitPrice.Mul(qty).Round(2),
		Components:      components,
		AllocationState: entity.AllocationApplied,
	}, nil
}

// allocateItem consume lotes para una línea: una llamada al asignador para
// producto simple, una por componente para combos (asignaciones concatenadas
// bajo la línea del combo).
func (uc *CreateOrderUseCase) allocateItem(ctx context.Context, batchRepo repository.BatchRepository, item *entity.OrderItem) error {
	demands := []struct {
		productID string
		required  int64
	}{}
	if item.ComboID != "" {
		for _, comp := range item.Components {
			required := item.Quantity * comp.Quantity
			if comp.UnitType == entity.UnitPaquete {
				required = item.Quantity * comp.Quantity * comp.PackageContent
			}
			demands = append(demands, struct {
				productID string
				required  int64
			}{comp.ProductID, required})
		}
	} else {
		demands = append(demands, struct {
			productID string
			required  int64
		}{item.ProductID, item.RequiredBase})
	}

	for _, d := range demands {
		batches, err := batchRepo.GetForUpdateByProduct(ctx, d.productID)
		if err != nil {
			return err
		}
		allocs, shortfall := inventory.Allocate(batches, d.required)
		for _, b := range batches {
			if err := batchRepo.UpdateQuantity(ctx, b.ID, b.QuantityCurrent); err != nil {
				return err
			}
		}
		item.Allocations = append(item.Allocations, allocs...)
		item.ShortfallBase += shortfall
	}
	return nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:              o.ID,
		ClientID:        o.ClientID,
		ClientName:      o.ClientName,
		ClientDocNumber: o.ClientDocNumber,
		ClientAddress:   o.ClientAddress,
		DocType:         o.DocType,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status,
		Total:           o.Total,
		CreatedAt:       o.CreatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			ComboID:       it.ComboID,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitType:      it.UnitType,
			RequiredBase:  it.RequiredBase,
			ShortfallBase: it.ShortfallBase,
			UnitPrice:     it.UnitPrice,
			TotalPrice:    it.TotalPrice,
			Allocations:   it.Allocations,
		})
	}
	return resp
}

// GetOrder devuelve el detalle de un pedido.
func (uc *CreateOrderUseCase) GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return toOrderResponse(o), nil
}

// ListPending lista los pedidos pendientes de procesar.
func (uc *CreateOrderUseCase) ListPending(ctx context.Context, page dto.PageRequest) ([]*dto.OrderResponse, error) {
	page.DefaultPage()
	list, err := uc.orderRepo.ListPending(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}
