package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kitbilling/internal/application/billing"
	"github.com/jhoicas/kitbilling/internal/application/dto"
	"github.com/jhoicas/kitbilling/internal/infrastructure/cache"
	"github.com/jhoicas/kitbilling/internal/infrastructure/memory"
	"github.com/jhoicas/kitbilling/internal/infrastructure/roster"
	"github.com/jhoicas/kitbilling/internal/infrastructure/xmldoc"
	apphttp "github.com/jhoicas/kitbilling/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/kitbilling/pkg/jwt"
)

// newAPI levanta el router completo sobre el store en memoria.
func newAPI(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := zerolog.Nop()
	clients := billing.NewClientUseCase(store.Clients(), time.UTC, log)
	invoices := billing.NewInvoiceUseCase(
		store.Invoices(), store.Clients(),
		billing.NewDateSequenceNumbers(store.Counters(), time.UTC),
		map[string]billing.DocumentRenderer{billing.FormatXML: xmldoc.NewInvoiceRenderer()},
		cache.NewDocumentCache(time.Minute),
		billing.InvoiceConfig{Location: time.UTC, DueDays: 7, BatchWorkers: 2},
		log,
	)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ClientUC:  clients,
		InvoiceUC: invoices,
		RosterUC:  billing.NewRosterUseCase(clients, store.Clients(), roster.NewCSVCodec(), log),
		JWTSecret: testJWTSecret,
	})
	return app, store
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

var newClientBody = map[string]any{
	"clientName":     "Awa Diop",
	"accountName":    "ACC-1",
	"kitNumber":      "KIT-1",
	"originalAmount": map[string]any{"amount": 72, "currency": "EUR"},
	"phones":         []string{"+221 77 000 00 00"},
	"emails":         []string{"awa@example.com"},
	"billingDate":    "2025-12-20",
}

func TestRouter_ClienteYFacturaDeExtremoAExtremo(t *testing.T) {
	app, _ := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/clients", pkgjwt.RoleOperator, newClientBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	client := decode[map[string]any](t, resp)
	clientID, _ := client["id"].(string)
	require.NotEmpty(t, clientID)
	assert.Equal(t, 60000.0, client["billingAmount"].(map[string]any)["amount"])
	assert.Equal(t, testUserID, client["createdBy"])

	resp = call(t, app, http.MethodPost, "/api/invoices", pkgjwt.RoleOperator, map[string]any{
		"clientId":       clientID,
		"originalAmount": map[string]any{"amount": 72, "currency": "EUR"},
		"items":          []map[string]any{{"description": "Abono", "amount": 72, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	inv := decode[map[string]any](t, resp)
	invoiceID, _ := inv["id"].(string)
	assert.Equal(t, "pending", inv["status"])
	assert.Equal(t, 60000.0, inv["amount"])
	assert.Regexp(t, `^\d{8}-001$`, inv["invoiceNumber"])

	resp = call(t, app, http.MethodPut, "/api/invoices/"+invoiceID+"/status", pkgjwt.RoleOperator, map[string]any{"status": "paid"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paid := decode[map[string]any](t, resp)
	assert.Equal(t, "paid", paid["status"])
	assert.NotEmpty(t, paid["paidAt"])

	resp = call(t, app, http.MethodGet, "/api/invoices/"+invoiceID+"/document?format=xml", pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xml")
	doc, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(doc), "<Invoice")

	resp = call(t, app, http.MethodGet, "/api/clients/"+clientID+"/invoices", pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]map[string]any](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, invoiceID, list[0]["id"])
}

func TestRouter_ViewerNoPuedeEscribir(t *testing.T) {
	app, _ := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/clients", pkgjwt.RoleViewer, newClientBody)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodDelete, "/api/invoices/x", pkgjwt.RoleOperator, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/clients", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_ErroresDeDominioAStatusHTTP(t *testing.T) {
	app, store := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/invoices", pkgjwt.RoleOperator, map[string]any{"amount": 10})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "clientId")

	resp = call(t, app, http.MethodGet, "/api/invoices/no-existe", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodDelete, "/api/invoices/no-existe", pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/invoices/x/document?format=docx", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/clients/x/repairs", pkgjwt.RoleOperator, map[string]any{"description": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	store.Fail(io.ErrUnexpectedEOF)
	resp = call(t, app, http.MethodGet, "/api/clients", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body = decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "PERSISTENCE", body.Code)
	assert.NotContains(t, body.Message, io.ErrUnexpectedEOF.Error())
}

func TestRouter_RegistrosDeServicio(t *testing.T) {
	app, _ := newAPI(t)
	resp := call(t, app, http.MethodPost, "/api/clients", pkgjwt.RoleOperator, newClientBody)
	client := decode[dto.ClientResponse](t, resp)

	resp = call(t, app, http.MethodPost, "/api/clients/"+client.ID+"/technical-issues", pkgjwt.RoleOperator,
		dto.CreateRecordRequest{Description: "Sin señal"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	withIssue := decode[dto.ClientResponse](t, resp)
	require.Len(t, withIssue.TechnicalIssues, 1)
	recordID := withIssue.TechnicalIssues[0].ID

	resp = call(t, app, http.MethodPut, "/api/clients/"+client.ID+"/technical-issues/"+recordID+"/status", pkgjwt.RoleOperator,
		dto.UpdateRecordStatusRequest{Status: "resolved"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resolved := decode[dto.ClientResponse](t, resp)
	assert.Equal(t, "resolved", resolved.TechnicalIssues[0].Status)
	assert.NotNil(t, resolved.TechnicalIssues[0].ClosedAt)
	assert.Len(t, resolved.History, 3)
}

func TestRouter_RosterImportExport(t *testing.T) {
	app, _ := newAPI(t)
	csv := "clientName,originalAmount.amount,originalAmount.currency,phones,emails,billingDate\n" +
		"Awa,25000,XOF,+221 77,awa@example.com,2025-12-20\n" +
		"Rota,abc,XOF,+221 77,rota@example.com,2025-12-20\n"

	req := httptest.NewRequest(http.MethodPost, "/api/clients/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleAdmin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.ImportResult](t, resp)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Failed)

	resp = call(t, app, http.MethodGet, "/api/clients/export", pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Total-Count"))
	out, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(out), "Awa")
}
