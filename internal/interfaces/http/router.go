package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kitbilling/internal/application/billing"
	"github.com/jhoicas/kitbilling/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ClientUC  *billing.ClientUseCase
	InvoiceUC *billing.InvoiceUseCase
	RosterUC  *billing.RosterUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
//   - viewer:   lectura y descarga de documentos
//   - operator: altas y cambios de clientes y facturas
//   - admin:    además borrado, facturación masiva e importación
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	read := RequireRole(jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleViewer)
	write := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)
	admin := RequireRole(jwt.RoleAdmin)

	clientHandler := NewClientHandler(deps.ClientUC, deps.InvoiceUC)
	rosterHandler := NewRosterHandler(deps.RosterUC)
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)

	// Clients
	clients := api.Group("/clients")
	clients.Get("/export", read, rosterHandler.Export)
	clients.Post("/import", admin, rosterHandler.Import)
	clients.Post("/", write, clientHandler.Create)
	clients.Get("/", read, clientHandler.List)
	clients.Get("/:id", read, clientHandler.GetByID)
	clients.Patch("/:id", write, clientHandler.Update)
	clients.Put("/:id/kit-status", write, clientHandler.UpdateKitStatus)
	clients.Put("/:id/payment-status", write, clientHandler.UpdatePaymentStatus)
	clients.Get("/:id/invoices", read, clientHandler.ListInvoices)
	clients.Post("/:id/:kind", write, clientHandler.AddRecord)
	clients.Put("/:id/:kind/:recordId/status", write, clientHandler.UpdateRecordStatus)

	// Invoices
	invoices := api.Group("/invoices")
	invoices.Post("/batch", admin, invoiceHandler.Batch)
	invoices.Post("/", write, invoiceHandler.Create)
	invoices.Get("/:id", read, invoiceHandler.GetByID)
	invoices.Patch("/:id", write, invoiceHandler.Update)
	invoices.Put("/:id/status", write, invoiceHandler.UpdateStatus)
	invoices.Delete("/:id", admin, invoiceHandler.Delete)
	invoices.Get("/:id/document", read, invoiceHandler.Document)
}
