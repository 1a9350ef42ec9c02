package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
	"github.com/jhoicas/kitbilling/internal/infrastructure/memory"
)

var day = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func newClient(id string) *entity.Client {
	return &entity.Client{
		ID:             id,
		ClientName:     "Cliente " + id,
		OriginalAmount: entity.XOF(1000),
		BillingAmount:  entity.XOF(1000),
		KitStatus:      entity.KitStatusActive,
		PaymentStatus:  entity.PaymentStatusPending,
		BillingDate:    day,
		CreatedAt:      day,
		CreatedBy:      "alta",
		History:        []entity.HistoryEntry{{Timestamp: day, Action: entity.HistoryActionCreate, PerformedBy: "alta"}},
	}
}

func newInvoice(id, number string, createdAt time.Time) *entity.Invoice {
	return &entity.Invoice{
		ID:            id,
		InvoiceNumber: number,
		ClientID:      "c-1",
		Currency:      entity.CurrencyXOF,
		Status:        entity.InvoiceStatusPending,
		CreatedAt:     createdAt,
	}
}

func TestClientRepo_UpdateAgregaHistorialYConservaAlta(t *testing.T) {
	s := memory.NewStore()
	repo := s.Clients()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newClient("c-1")))

	changed := newClient("c-1")
	changed.CreatedBy = "otro"
	changed.History = nil
	changed.KitStatus = entity.KitStatusSuspended
	entry := entity.HistoryEntry{Timestamp: day.Add(time.Hour), Action: entity.HistoryActionUpdateKitStatus, PerformedBy: "op"}
	require.NoError(t, repo.Update(ctx, changed, entry))

	got, err := repo.GetByID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, entity.KitStatusSuspended, got.KitStatus)
	assert.Equal(t, "alta", got.CreatedBy)
	require.Len(t, got.History, 2)
	assert.Equal(t, entity.HistoryActionUpdateKitStatus, got.History[1].Action)

	assert.ErrorIs(t, repo.Update(ctx, newClient("c-9"), entry), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Create(ctx, newClient("c-1")), domain.ErrDuplicate)
}

func TestClientRepo_DevuelveCopias(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.Clients().Create(ctx, newClient("c-1")))

	got, err := s.Clients().GetByID(ctx, "c-1")
	require.NoError(t, err)
	got.Phones = append(got.Phones, "+221")
	got.History[0].Action = "MUTADO"

	again, err := s.Clients().GetByID(ctx, "c-1")
	require.NoError(t, err)
	assert.Empty(t, again.Phones)
	assert.Equal(t, entity.HistoryActionCreate, again.History[0].Action)

	missing, err := s.Clients().GetByID(ctx, "c-9")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInvoiceRepo_NumeroUnicoEInmutable(t *testing.T) {
	s := memory.NewStore()
	repo := s.Invoices()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newInvoice("i-1", "20260115-001", day)))
	assert.ErrorIs(t, repo.Create(ctx, newInvoice("i-2", "20260115-001", day)), domain.ErrDuplicate)

	changed := newInvoice("i-1", "20260115-099", day)
	changed.Status = entity.InvoiceStatusPaid
	require.NoError(t, repo.Update(ctx, changed))

	got, err := repo.GetByID(ctx, "i-1")
	require.NoError(t, err)
	assert.Equal(t, "20260115-001", got.InvoiceNumber)
	assert.Equal(t, entity.InvoiceStatusPaid, got.Status)

	require.NoError(t, repo.Delete(ctx, "i-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "i-1"), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, changed), domain.ErrNotFound)
}

func TestInvoiceRepo_ListaPorClienteMasRecientePrimero(t *testing.T) {
	s := memory.NewStore()
	repo := s.Invoices()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newInvoice("i-1", "A", day.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newInvoice("i-2", "B", day.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newInvoice("i-3", "C", day)))
	other := newInvoice("i-4", "D", day)
	other.ClientID = "c-2"
	require.NoError(t, repo.Create(ctx, other))

	list, err := repo.ListByClient(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"i-2", "i-3", "i-1"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestCounterRepo_SiembraConFacturasDelDia(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	s.SeedInvoice(newInvoice("i-1", "20260115-001", day.Add(time.Hour)))
	s.SeedInvoice(newInvoice("i-2", "20260115-002", day.Add(2*time.Hour)))

	next, err := s.Counters().Next(ctx, "20260115", day)
	require.NoError(t, err)
	assert.EqualValues(t, 3, next)

	next, err = s.Counters().Next(ctx, "20260116", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, next)
}

func TestCounterRepo_ConcurrenteSinHuecos(t *testing.T) {
	s := memory.NewStore()
	const n = 50
	got := make([]int64, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Counters().Next(context.Background(), "20260115", day)
			assert.NoError(t, err)
			got[i] = v
		}()
	}
	wg.Wait()
	assert.ElementsMatch(t, seq(n), got)
}

func seq(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

func TestStore_FailYContextoCancelado(t *testing.T) {
	s := memory.NewStore()
	boom := errors.New("caído")
	s.Fail(boom)
	_, err := s.Clients().List(context.Background())
	assert.ErrorIs(t, err, boom)

	s.Fail(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Invoices().GetByID(ctx, "i-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_DocumentoCorruptoAlLeer(t *testing.T) {
	s := memory.NewStore()
	bad := newInvoice("i-1", "X", day)
	bad.Status = "draft"
	s.SeedInvoice(bad)

	_, err := s.Invoices().GetByID(context.Background(), "i-1")
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
}
