package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kitbilling/internal/application/dto"
	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/billing"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

func TestClientCreate_ValoresPorDefectoEHistorial(t *testing.T) {
	f := newFixture(t)

	out, err := f.clients.Create(context.Background(), clientRequest("Awa", "2025-12-20", entity.XOF(25000)), actor)
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, entity.KitStatusActive, out.KitStatus)
	assert.Equal(t, entity.PaymentStatusPending, out.PaymentStatus)
	assert.Equal(t, entity.XOF(25000), out.BillingAmount)
	assert.Equal(t, out.BillingDate, out.ActivationDate)
	assert.Equal(t, "2026-01-20", out.NextBillingDate)
	assert.Equal(t, 5, out.DaysUntilBilling)
	assert.Equal(t, string(billing.DueThisWeek), out.DueWindow)

	require.Len(t, out.History, 1)
	assert.Equal(t, entity.HistoryActionCreate, out.History[0].Action)
	assert.Equal(t, actor, out.History[0].PerformedBy)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), out.History[0].Timestamp)
}

func TestClientCreate_ConvierteNGNConTarifaPlana(t *testing.T) {
	f := newFixture(t)
	req := clientRequest("Chidi", "2025-12-20", entity.Money{Amount: 49000, Currency: entity.CurrencyNGN})

	out, err := f.clients.Create(context.Background(), req, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.XOF(30000), out.BillingAmount)
	assert.Equal(t, entity.CurrencyNGN, out.OriginalAmount.Currency)
}

func TestClientCreate_BillingAmountExplicitoDebeSerXOF(t *testing.T) {
	f := newFixture(t)
	req := clientRequest("Awa", "2025-12-20", entity.XOF(25000))
	req.BillingAmount = &entity.Money{Amount: 40, Currency: entity.CurrencyEUR}

	_, err := f.clients.Create(context.Background(), req, actor)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"billingAmount.currency"}, verr.Fields)
}

func TestClientCreate_CamposRequeridos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.clients.Create(ctx, clientRequest("", "2025-12-20", entity.XOF(1)), actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.clients.Create(ctx, clientRequest("Awa", "2025-12-20", entity.XOF(1)), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.clients.Create(ctx, clientRequest("Awa", "20/12/2025", entity.XOF(1)), actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClientUpdate_RegistraCamposYRecalculaMonto(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "Awa", "2025-12-20")
	ctx := context.Background()

	out, err := f.clients.Update(ctx, c.ID, dto.UpdateClientRequest{
		ClientName:     lo.ToPtr("Awa Diop"),
		OriginalAmount: &entity.Money{Amount: 72, Currency: entity.CurrencyEUR},
	}, "supervisor")
	require.NoError(t, err)

	assert.Equal(t, "Awa Diop", out.ClientName)
	assert.Equal(t, entity.XOF(60000), out.BillingAmount)
	assert.Equal(t, "supervisor", out.UpdatedBy)
	require.Len(t, out.History, 2)
	last := out.History[1]
	assert.Equal(t, entity.HistoryActionUpdate, last.Action)
	assert.Equal(t, "Campos modificados: clientName, originalAmount, billingAmount", last.Details)

	stored, err := f.clients.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 2)
	assert.Equal(t, c.CreatedAt, stored.CreatedAt)
}

func TestClientUpdate_Inexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.clients.Update(context.Background(), "nope", dto.UpdateClientRequest{Notes: lo.ToPtr("x")}, actor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientUpdateKitStatus_AgregaEntradaEspecifica(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "Awa", "2025-12-20")
	ctx := context.Background()

	out, err := f.clients.UpdateKitStatus(ctx, c.ID, entity.KitStatusSuspended, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.KitStatusSuspended, out.KitStatus)
	require.Len(t, out.History, 2)
	assert.Equal(t, entity.HistoryActionUpdateKitStatus, out.History[1].Action)
	assert.Equal(t, "Estado del kit: active → suspended", out.History[1].Details)

	_, err = f.clients.UpdateKitStatus(ctx, c.ID, entity.KitStatus("broken"), actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClientHistory_EntradasIgualesNoSeFusionan(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "Awa", "2025-12-20")
	ctx := context.Background()

	// Reloj fijo: la primera y la tercera entrada tienen el mismo contenido.
	for _, st := range []entity.KitStatus{entity.KitStatusSuspended, entity.KitStatusActive, entity.KitStatusSuspended} {
		_, err := f.clients.UpdateKitStatus(ctx, c.ID, st, actor)
		require.NoError(t, err)
	}

	out, err := f.clients.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, out.History, 4)
	first, third := out.History[1], out.History[3]
	assert.Equal(t, first.Details, third.Details)
	assert.Equal(t, first.Timestamp, third.Timestamp)
	ids := lo.Map(out.History, func(e entity.HistoryEntry, _ int) string { return e.ID })
	assert.Len(t, lo.Uniq(lo.Compact(ids)), 4)
}

func TestClientUpdatePaymentStatus_AgregaEntradaEspecifica(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "Awa", "2025-12-20")

	out, err := f.clients.UpdatePaymentStatus(context.Background(), c.ID, entity.PaymentStatusLate, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusLate, out.PaymentStatus)
	assert.Equal(t, entity.HistoryActionUpdatePaymentStatus, out.History[len(out.History)-1].Action)
}

func TestClientRecords_CierreSellaClosedAt(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "Awa", "2025-12-20")
	ctx := context.Background()

	out, err := f.clients.AddMaintenanceRecord(ctx, c.ID, dto.CreateRecordRequest{Description: "Limpieza de antena"}, actor)
	require.NoError(t, err)
	require.Len(t, out.MaintenanceRecords, 1)
	rec := out.MaintenanceRecords[0]
	assert.Equal(t, entity.MaintenanceScheduled, rec.Status)
	assert.Nil(t, rec.ClosedAt)

	closeAt := time.Date(2026, 1, 17, 14, 0, 0, 0, time.UTC)
	f.setNow(closeAt)
	out, err = f.clients.UpdateRecordStatus(ctx, c.ID, entity.RecordKindMaintenance, rec.ID, entity.MaintenanceCompleted, actor)
	require.NoError(t, err)
	rec = out.MaintenanceRecords[0]
	assert.Equal(t, entity.MaintenanceCompleted, rec.Status)
	require.NotNil(t, rec.ClosedAt)
	assert.Equal(t, closeAt, *rec.ClosedAt)

	out, err = f.clients.UpdateRecordStatus(ctx, c.ID, entity.RecordKindMaintenance, rec.ID, entity.MaintenanceInProgress, actor)
	require.NoError(t, err)
	assert.Nil(t, out.MaintenanceRecords[0].ClosedAt)

	actions := lo.Map(out.History, func(h entity.HistoryEntry, _ int) string { return h.Action })
	assert.Equal(t, []string{
		entity.HistoryActionCreate,
		entity.HistoryActionAddMaintenance,
		entity.HistoryActionUpdateMaintenance,
		entity.HistoryActionUpdateMaintenance,
	}, actions)
}

func TestClientRecords_IncidenciasYReemplazos(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "Awa", "2025-12-20")
	ctx := context.Background()

	out, err := f.clients.AddTechnicalIssue(ctx, c.ID, dto.CreateRecordRequest{Description: "Sin señal"}, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.IssueOpen, out.TechnicalIssues[0].Status)

	out, err = f.clients.AddKitReplacement(ctx, c.ID, dto.CreateRecordRequest{
		Description: "Router dañado",
		Reference:   "SN-445",
		Status:      entity.ReplacementCompleted,
	}, actor)
	require.NoError(t, err)
	require.Len(t, out.KitReplacements, 1)
	assert.Equal(t, "SN-445", out.KitReplacements[0].Reference)
	assert.NotNil(t, out.KitReplacements[0].ClosedAt)
	assert.Equal(t, entity.HistoryActionAddKitReplacement, out.History[len(out.History)-1].Action)
}

func TestClientRecords_ErroresDeEntrada(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "Awa", "2025-12-20")
	ctx := context.Background()

	_, err := f.clients.AddTechnicalIssue(ctx, c.ID, dto.CreateRecordRequest{Description: "x", Status: "scheduled"}, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.clients.AddMaintenanceRecord(ctx, c.ID, dto.CreateRecordRequest{}, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.clients.UpdateRecordStatus(ctx, c.ID, entity.RecordKindTechnicalIssue, "no-existe", entity.IssueClosed, actor)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.clients.UpdateRecordStatus(ctx, c.ID, entity.RecordKind("otro"), "r1", "open", actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClientList_OrdenaPorUrgenciaYFiltraVentana(t *testing.T) {
	f := newFixture(t)
	f.createClient(t, "Hoy", "2025-11-15")    // 0 días
	f.createClient(t, "Mañana", "2025-12-16") // 1 día
	f.createClient(t, "Semana", "2025-12-20") // 5 días
	f.createClient(t, "Mes", "2025-12-01")    // 17 días
	f.createClient(t, "Limite", "2025-12-14") // 30 días
	f.createClient(t, "Lejano", "2026-03-01") // 45 días
	ctx := context.Background()

	all, err := f.clients.List(ctx, dto.ClientListQuery{})
	require.NoError(t, err)
	names := lo.Map(all.Items, func(r *dto.ClientResponse, _ int) string { return r.ClientName })
	assert.Equal(t, []string{"Hoy", "Mañana", "Semana", "Mes", "Limite", "Lejano"}, names)
	assert.Equal(t, 6, all.Page.Total)
	assert.Equal(t, 20, all.Page.Limit)
	assert.Equal(t, []int{0, 1, 5, 17, 30, 45}, lo.Map(all.Items, func(r *dto.ClientResponse, _ int) int { return r.DaysUntilBilling }))
	assert.Equal(t, "", all.Items[5].DueWindow)

	week, err := f.clients.List(ctx, dto.ClientListQuery{Due: "week"})
	require.NoError(t, err)
	assert.Len(t, week.Items, 3)

	month, err := f.clients.Due(ctx, billing.DueThisMonth)
	require.NoError(t, err)
	assert.Len(t, month, 5)

	today, err := f.clients.Due(ctx, billing.DueToday)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "Hoy", today[0].ClientName)

	page, err := f.clients.List(ctx, dto.ClientListQuery{PageRequest: dto.PageRequest{Limit: 2, Offset: 4}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "Limite", page.Items[0].ClientName)

	_, err = f.clients.List(ctx, dto.ClientListQuery{Due: "year"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClientUpdate_FalloDePersistenciaNoAgregaHistorial(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "Awa", "2025-12-20")
	ctx := context.Background()

	f.store.Fail(errors.New("timeout"))
	_, err := f.clients.UpdateKitStatus(ctx, c.ID, entity.KitStatusInactive, actor)
	require.ErrorIs(t, err, domain.ErrPersistence)

	f.store.Fail(nil)
	stored, err := f.clients.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 1)
	assert.Equal(t, entity.KitStatusActive, stored.KitStatus)
}

func TestClientGet_DocumentoCorrupto(t *testing.T) {
	f := newFixture(t)
	f.store.SeedClient(&entity.Client{ID: "roto", ClientName: "Sin fecha", KitStatus: entity.KitStatusActive, PaymentStatus: entity.PaymentStatusPaid})

	_, err := f.clients.Get(context.Background(), "roto")
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
}

func TestClientCreate_MontoQueDesbordaEsInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.clients.Create(context.Background(),
		clientRequest("Enorme", "2025-12-20", entity.Money{Amount: 1e308, Currency: entity.CurrencyEUR}), actor)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"originalAmount.amount"}, verr.Fields)
}
