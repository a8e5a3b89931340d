package sunat

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/pkg/config"
)

const (
	soapNS   = "http://schemas.xmlsoap.org/soap/envelope/"
	wsseNS   = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	billNS   = "http://service.sunat.gob.pe"
	betaURL  = "https://e-beta.sunat.gob.pe/ol-ti-itcpfegem-beta/billService"
	soapBody = "sendBill"
)

var _ billing.SunatGateway = (*SOAPGateway)(nil)

// SOAPGateway envía comprobantes al servicio de recepción SUNAT (u OSE) vía
// SOAP sendBill. El XML viaja dentro de un ZIP en Base64, con las credenciales
// SOL en el header WS-Security.
type SOAPGateway struct {
	cfg        config.SUNATConfig
	httpClient *http.Client
}

// NewSOAPGateway construye el gateway. El timeout de red es generoso porque
// el servicio de recepción puede tardar varios segundos.
func NewSOAPGateway(cfg config.SUNATConfig) *SOAPGateway {
	return &SOAPGateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type soapEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	XmlnsS  string   `xml:"xmlns:soapenv,attr"`
	XmlnsB  string   `xml:"xmlns:ser,attr"`
	XmlnsW  string   `xml:"xmlns:wsse,attr"`
	Header  soapHeader
	Body    sendBillBody
}

type soapHeader struct {
	XMLName  xml.Name `xml:"soapenv:Header"`
	Security security `xml:"wsse:Security"`
}

type security struct {
	Username string `xml:"wsse:UsernameToken>wsse:Username"`
	Password string `xml:"wsse:UsernameToken>wsse:Password"`
}

type sendBillBody struct {
	XMLName     xml.Name `xml:"soapenv:Body"`
	FileName    string   `xml:"ser:sendBill>fileName"`
	ContentFile string   `xml:"ser:sendBill>contentFile"`
}

type soapResponseEnvelope struct {
	Body struct {
		SendBillResponse *struct {
			ApplicationResponse string `xml:"applicationResponse"`
		} `xml:"sendBillResponse"`
		Fault *struct {
			FaultCode   string `xml:"faultcode"`
			FaultString string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

// Submit empaqueta el XML, lo envía por sendBill y traduce la respuesta a un
// estado SUNAT. Solo devuelve err en fallas de transporte o configuración.
func (g *SOAPGateway) Submit(ctx context.Context, ublXML []byte, docName string) (string, string, error) {
	if g.cfg.RUC == "" {
		return "", "", fmt.Errorf("sunat: RUC del emisor no configurado")
	}
	fileName := g.fileName(docName)
	zipBytes, err := zipDocument(fileName+".xml", ublXML)
	if err != nil {
		return "", "", fmt.Errorf("sunat: empaquetar comprobante: %w", err)
	}

	envelope := soapEnvelope{
		XmlnsS: soapNS,
		XmlnsB: billNS,
		XmlnsW: wsseNS,
		Header: soapHeader{Security: security{
			Username: g.cfg.RUC + g.cfg.Username,
			Password: g.cfg.Password,
		}},
		Body: sendBillBody{
			FileName:    fileName + ".zip",
			ContentFile: base64.StdEncoding.EncodeToString(zipBytes),
		},
	}
	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("sunat: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", "", fmt.Errorf("sunat: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapBody)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", "", fmt.Errorf("sunat: timeout o cancelación: %w", ctx.Err())
		}
		return "", "", fmt.Errorf("sunat: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", "", fmt.Errorf("sunat: leer respuesta: %w", err)
	}
	return parseResponse(rawBody)
}

func (g *SOAPGateway) endpoint() string {
	if g.cfg.Endpoint != "" {
		return g.cfg.Endpoint
	}
	return betaURL
}

// fileName arma el nombre reglamentario RUC-TIPO-SERIE-NUMERO a partir del
// identificador del comprobante (ej. "F001-102").
func (g *SOAPGateway) fileName(docName string) string {
	code := codeBoleta
	if strings.HasPrefix(docName, "F") {
		code = codeFactura
	}
	return g.cfg.RUC + "-" + code + "-" + docName
}

func parseResponse(rawBody []byte) (string, string, error) {
	var envResp soapResponseEnvelope
	if err := xml.Unmarshal(rawBody, &envResp); err != nil {
		return entity.SunatStatusRejected,
			"respuesta SUNAT no parseable: " + truncate(string(rawBody), 300), nil
	}
	if f := envResp.Body.Fault; f != nil {
		return entity.SunatStatusRejected,
			fmt.Sprintf("fault SUNAT [%s]: %s", f.FaultCode, f.FaultString), nil
	}
	if envResp.Body.SendBillResponse != nil {
		// El CDR llega como ZIP Base64; con respuesta sendBill sin fault el
		// comprobante quedó aceptado en recepción.
		return entity.SunatStatusAccepted, "comprobante aceptado por SUNAT", nil
	}
	return entity.SunatStatusRejected, "respuesta SUNAT vacía o inesperada", nil
}

func zipDocument(name string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(content); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// SimulatedGateway acepta todo comprobante sin salir a la red. Es el gateway
// del entorno dev.
type SimulatedGateway struct{}

var _ billing.SunatGateway = (*SimulatedGateway)(nil)

// NewSimulatedGateway crea el gateway simulado.
func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

// Submit simula una aceptación inmediata.
func (g *SimulatedGateway) Submit(_ context.Context, _ []byte, docName string) (string, string, error) {
	return entity.SunatStatusAccepted, "comprobante " + docName + " aceptado (simulado)", nil
}
