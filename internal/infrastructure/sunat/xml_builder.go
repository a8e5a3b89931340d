package sunat

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	pkgsunat "github.com/jhoicas/Distribucion-api/pkg/sunat"
)

// Namespaces UBL 2.1 usados por los comprobantes electrónicos SUNAT.
const (
	nsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	nsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	nsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	nsExt     = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
	nsDs      = "http://www.w3.org/2000/09/xmldsig#"
)

// Catálogo 01 SUNAT: tipo de documento.
const (
	codeFactura = "01"
	codeBoleta  = "03"
)

// Catálogo 06 SUNAT: tipo de documento de identidad del adquiriente.
const (
	docSchemeDNI = "1"
	docSchemeRUC = "6"
)

// La tasa de IGV vigente. Los precios del catálogo son finales (IGV incluido);
// el XML desglosa el impuesto hacia atrás a partir del total.
var igvRate = decimal.NewFromFloat(0.18)

var _ billing.SunatDocumentBuilder = (*XMLBuilder)(nil)

// EmitterInfo datos fiscales del emisor que van en todo comprobante.
type EmitterInfo struct {
	RUC          string
	BusinessName string
	Address      string
}

// XMLBuilder construye el XML UBL 2.1 de facturas y boletas (sin firma).
type XMLBuilder struct {
	emitter EmitterInfo
}

// NewXMLBuilder crea el builder con los datos del emisor.
func NewXMLBuilder(emitter EmitterInfo) *XMLBuilder {
	return &XMLBuilder{emitter: emitter}
}

// BuildInvoice genera el documento Invoice UBL 2.1 de la venta.
func (b *XMLBuilder) BuildInvoice(s *entity.Sale) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("sunat: venta nula")
	}
	if s.Series == "" || s.Number == 0 {
		return nil, fmt.Errorf("sunat: la venta %s no tiene serie y número asignados", s.ID)
	}
	typeCode, err := invoiceTypeCode(s.DocType)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="no"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", nsInvoice)
	root.CreateAttr("xmlns:cac", nsCac)
	root.CreateAttr("xmlns:cbc", nsCbc)
	root.CreateAttr("xmlns:ext", nsExt)
	root.CreateAttr("xmlns:ds", nsDs)

	// ext:UBLExtensions como primer hijo: aquí inyecta la firma el OSE.
	extContainer := root.CreateElement("ext:UBLExtensions")
	extContainer.CreateElement("ext:UBLExtension").CreateElement("ext:ExtensionContent")

	root.CreateElement("cbc:UBLVersionID").SetText("2.1")
	root.CreateElement("cbc:CustomizationID").SetText("2.0")
	root.CreateElement("cbc:ID").SetText(s.FullNumber())
	root.CreateElement("cbc:IssueDate").SetText(s.CreatedAt.Format("2006-01-02"))
	root.CreateElement("cbc:IssueTime").SetText(s.CreatedAt.Format("15:04:05"))
	typeEl := root.CreateElement("cbc:InvoiceTypeCode")
	typeEl.CreateAttr("listID", "0101")
	typeEl.SetText(typeCode)
	root.CreateElement("cbc:DocumentCurrencyCode").SetText("PEN")
	root.CreateElement("cbc:LineCountNumeric").SetText(strconv.Itoa(len(s.Items)))

	b.writeSupplier(root)
	b.writeCustomer(root, s)
	b.writePaymentTerms(root, s)

	net := netAmount(s.Total)
	igv := s.Total.Sub(net)
	b.writeTaxTotal(root, net, igv)

	monetary := root.CreateElement("cac:LegalMonetaryTotal")
	writeAmount(monetary, "cbc:LineExtensionAmount", net)
	writeAmount(monetary, "cbc:TaxInclusiveAmount", s.Total)
	writeAmount(monetary, "cbc:PayableAmount", s.Total)

	for i := range s.Items {
		b.writeLine(root, i+1, &s.Items[i])
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func (b *XMLBuilder) writeSupplier(root *etree.Element) {
	party := root.CreateElement("cac:AccountingSupplierParty").CreateElement("cac:Party")

	id := party.CreateElement("cac:PartyIdentification").CreateElement("cbc:ID")
	id.CreateAttr("schemeID", docSchemeRUC)
	id.SetText(b.emitter.RUC)

	legal := party.CreateElement("cac:PartyLegalEntity")
	legal.CreateElement("cbc:RegistrationName").SetText(b.emitter.BusinessName)
	if b.emitter.Address != "" {
		legal.CreateElement("cac:RegistrationAddress").
			CreateElement("cac:AddressLine").
			CreateElement("cbc:Line").SetText(b.emitter.Address)
	}
}

func (b *XMLBuilder) writeCustomer(root *etree.Element, s *entity.Sale) {
	party := root.CreateElement("cac:AccountingCustomerParty").CreateElement("cac:Party")

	scheme := docSchemeDNI
	if pkgsunat.IsRUC(s.ClientDocNumber) {
		scheme = docSchemeRUC
	}
	id := party.CreateElement("cac:PartyIdentification").CreateElement("cbc:ID")
	id.CreateAttr("schemeID", scheme)
	id.SetText(s.ClientDocNumber)

	party.CreateElement("cac:PartyLegalEntity").
		CreateElement("cbc:RegistrationName").SetText(s.ClientName)
}

func (b *XMLBuilder) writePaymentTerms(root *etree.Element, s *entity.Sale) {
	terms := root.CreateElement("cac:PaymentTerms")
	terms.CreateElement("cbc:ID").SetText("FormaPago")
	if s.PaymentMethod == entity.PaymentCredito {
		terms.CreateElement("cbc:PaymentMeansID").SetText("Credito")
		writeAmount(terms, "cbc:Amount", s.Total)
	} else {
		terms.CreateElement("cbc:PaymentMeansID").SetText("Contado")
	}
}

func (b *XMLBuilder) writeTaxTotal(root *etree.Element, net, igv decimal.Decimal) {
	taxTotal := root.CreateElement("cac:TaxTotal")
	writeAmount(taxTotal, "cbc:TaxAmount", igv)

	sub := taxTotal.CreateElement("cac:TaxSubtotal")
	writeAmount(sub, "cbc:TaxableAmount", net)
	writeAmount(sub, "cbc:TaxAmount", igv)

	category := sub.CreateElement("cac:TaxCategory")
	category.CreateElement("cbc:Percent").SetText("18.00")
	category.CreateElement("cbc:TaxExemptionReasonCode").SetText("10") // gravado, operación onerosa

	scheme := category.CreateElement("cac:TaxScheme")
	scheme.CreateElement("cbc:ID").SetText("1000")
	scheme.CreateElement("cbc:Name").SetText("IGV")
	scheme.CreateElement("cbc:TaxTypeCode").SetText("VAT")
}

func (b *XMLBuilder) writeLine(root *etree.Element, num int, it *entity.SaleItem) {
	lineTotal := it.TotalPrice
	lineNet := netAmount(lineTotal)
	lineIGV := lineTotal.Sub(lineNet)

	line := root.CreateElement("cac:InvoiceLine")
	line.CreateElement("cbc:ID").SetText(strconv.Itoa(num))

	qty := line.CreateElement("cbc:InvoicedQuantity")
	qty.CreateAttr("unitCode", "NIU")
	qty.SetText(strconv.FormatInt(it.Quantity, 10))
	writeAmount(line, "cbc:LineExtensionAmount", lineNet)

	taxTotal := line.CreateElement("cac:TaxTotal")
	writeAmount(taxTotal, "cbc:TaxAmount", lineIGV)

	item := line.CreateElement("cac:Item")
	item.CreateElement("cbc:Description").SetText(it.Description)

	price := line.CreateElement("cac:Price")
	unitNet := decimal.Zero
	if it.Quantity > 0 {
		unitNet = lineNet.Div(decimal.NewFromInt(it.Quantity)).Round(2)
	}
	writeAmount(price, "cbc:PriceAmount", unitNet)
}

func invoiceTypeCode(docType string) (string, error) {
	switch docType {
	case entity.DocTypeFactura:
		return codeFactura, nil
	case entity.DocTypeBoleta:
		return codeBoleta, nil
	}
	return "", fmt.Errorf("sunat: tipo de documento %q no es facturable", docType)
}

// netAmount descuenta el IGV de un importe final.
func netAmount(total decimal.Decimal) decimal.Decimal {
	return total.Div(decimal.NewFromInt(1).Add(igvRate)).Round(2)
}

func writeAmount(parent *etree.Element, tag string, amount decimal.Decimal) {
	el := parent.CreateElement(tag)
	el.CreateAttr("currencyID", "PEN")
	el.SetText(amount.StringFixed(2))
}
