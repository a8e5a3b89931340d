package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/sunat"
)

// UseCase casos de uso del catálogo: productos, combos y clientes.
type UseCase struct {
	productRepo repository.ProductRepository
	comboRepo   repository.ComboRepository
	clientRepo  repository.ClientRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	productRepo repository.ProductRepository,
	comboRepo repository.ComboRepository,
	clientRepo repository.ClientRepository,
) *UseCase {
	return &UseCase{
		productRepo: productRepo,
		comboRepo:   comboRepo,
		clientRepo:  clientRepo,
	}
}

// CreateProduct crea un producto. PackageContent mínimo 1: todo producto se
// vende al menos por unidad.
func (uc *UseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.PackageContent < 1 {
		in.PackageContent = 1
	}
	now := time.Now()
	product := &entity.Product{
		ID:             uuid.New().String(),
		SKU:            in.SKU,
		Name:           in.Name,
		Description:    in.Description,
		PackageContent: in.PackageContent,
		PriceUnit:      in.PriceUnit,
		PricePackage:   in.PricePackage,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetProduct obtiene un producto por ID.
func (uc *UseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// ListProducts lista productos paginados.
func (uc *UseCase) ListProducts(ctx context.Context, page dto.PageRequest) ([]*dto.ProductResponse, error) {
	page.DefaultPage()
	list, err := uc.productRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

// CreateCombo crea un combo validando que todos sus componentes existan.
func (uc *UseCase) CreateCombo(ctx context.Context, in dto.CreateComboRequest) (*dto.ComboResponse, error) {
	if in.Code == "" || in.Name == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	var items []entity.ComboItem
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, domain.NewValidation("la cantidad de cada componente debe ser mayor a cero")
		}
		unitType := it.UnitType
		if unitType == "" {
			unitType = entity.UnitUnidad
		}
		if unitType != entity.UnitUnidad && unitType != entity.UnitPaquete {
			return nil, domain.NewValidation("unidad inválida: %q (use UNIDAD o PAQUETE)", it.UnitType)
		}
		product, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		items = append(items, entity.ComboItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitType:  unitType,
		})
	}
	now := time.Now()
	combo := &entity.Combo{
		ID:        uuid.New().String(),
		Code:      in.Code,
		Name:      in.Name,
		Price:     in.Price,
		Items:     items,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.comboRepo.Create(ctx, combo); err != nil {
		return nil, err
	}
	return toComboResponse(combo), nil
}

// ListCombos lista combos paginados.
func (uc *UseCase) ListCombos(ctx context.Context, page dto.PageRequest) ([]*dto.ComboResponse, error) {
	page.DefaultPage()
	list, err := uc.comboRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ComboResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toComboResponse(c))
	}
	return out, nil
}

// CreateClient registra un cliente validando el documento de identidad:
// RUC de 11 dígitos con dígito verificador correcto, DNI de 8 dígitos.
func (uc *UseCase) CreateClient(ctx context.Context, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if in.Name == "" || in.DocNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.DocType {
	case entity.ClientDocRUC:
		if !sunat.IsRUC(in.DocNumber) {
			return nil, domain.NewValidation("el RUC debe tener 11 dígitos")
		}
		if err := sunat.ValidateRUCCheckDigit(in.DocNumber); err != nil {
			return nil, domain.NewValidation("el RUC %s tiene dígito verificador inválido", in.DocNumber)
		}
	case entity.ClientDocDNI:
		if len(in.DocNumber) != 8 {
			return nil, domain.NewValidation("el DNI debe tener 8 dígitos")
		}
	default:
		return nil, domain.NewValidation("tipo de documento inválido: %q (use RUC o DNI)", in.DocType)
	}

	existing, err := uc.clientRepo.GetByDocNumber(ctx, in.DocNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	client := &entity.Client{
		ID:        uuid.New().String(),
		Name:      in.Name,
		DocType:   in.DocType,
		DocNumber: in.DocNumber,
		Address:   in.Address,
		Phone:     in.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// ListClients lista clientes paginados.
func (uc *UseCase) ListClients(ctx context.Context, page dto.PageRequest) ([]*dto.ClientResponse, error) {
	page.DefaultPage()
	list, err := uc.clientRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClientResponse(c))
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Description:    p.Description,
		PackageContent: p.PackageContent,
		PriceUnit:      p.PriceUnit,
		PricePackage:   p.PricePackage,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
	}
}

func toComboResponse(c *entity.Combo) *dto.ComboResponse {
	resp := &dto.ComboResponse{
		ID:       c.ID,
		Code:     c.Code,
		Name:     c.Name,
		Price:    c.Price,
		IsActive: c.IsActive,
	}
	for _, it := range c.Items {
		resp.Items = append(resp.Items, dto.ComboItemRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitType:  it.UnitType,
		})
	}
	return resp
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		DocType:   c.DocType,
		DocNumber: c.DocNumber,
		Address:   c.Address,
		Phone:     c.Phone,
		IsActive:  c.IsActive,
	}
}
