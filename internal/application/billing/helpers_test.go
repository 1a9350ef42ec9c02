package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kitbilling/internal/application/billing"
	"github.com/jhoicas/kitbilling/internal/application/dto"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
	"github.com/jhoicas/kitbilling/internal/infrastructure/cache"
	"github.com/jhoicas/kitbilling/internal/infrastructure/memory"
)

const actor = "operador-1"

// stubRenderer cuenta las llamadas y puede fallar a pedido.
type stubRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
	last  *billing.RenderInput
}

func (r *stubRenderer) Render(_ context.Context, in *billing.RenderInput) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = in
	if r.err != nil {
		return nil, r.err
	}
	return []byte("doc:" + in.Invoice.InvoiceNumber), nil
}

func (r *stubRenderer) ContentType() string { return "application/pdf" }
func (r *stubRenderer) Extension() string   { return billing.FormatPDF }

func (r *stubRenderer) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *stubRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// fixture casos de uso conectados al store en memoria con reloj fijo en UTC.
type fixture struct {
	store    *memory.Store
	clients  *billing.ClientUseCase
	invoices *billing.InvoiceUseCase
	renderer *stubRenderer
	cache    *cache.DocumentCache

	mu  sync.Mutex
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewStore(),
		renderer: &stubRenderer{},
		cache:    cache.NewDocumentCache(time.Minute),
		now:      time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.now
	}
	numbers := billing.NewDateSequenceNumbers(f.store.Counters(), time.UTC)
	f.clients = billing.NewClientUseCase(f.store.Clients(), time.UTC, zerolog.Nop()).WithClock(clock)
	f.invoices = billing.NewInvoiceUseCase(
		f.store.Invoices(), f.store.Clients(), numbers,
		map[string]billing.DocumentRenderer{billing.FormatPDF: f.renderer},
		f.cache,
		billing.InvoiceConfig{Location: time.UTC, DueDays: 3, BatchWorkers: 4, Organization: billing.Organization{Name: "Kit Satellite"}},
		zerolog.Nop(),
	).WithClock(clock)
	return f
}

func (f *fixture) setNow(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func clientRequest(name, billingDate string, original entity.Money) dto.CreateClientRequest {
	return dto.CreateClientRequest{
		ClientName:     name,
		AccountName:    "ACC-" + name,
		KitNumber:      "KIT-" + name,
		OriginalAmount: original,
		Phones:         []string{"+221 77 000 00 00"},
		Emails:         []string{"contacto@example.com"},
		BillingDate:    billingDate,
	}
}

func (f *fixture) createClient(t *testing.T, name, billingDate string) *dto.ClientResponse {
	t.Helper()
	out, err := f.clients.Create(context.Background(), clientRequest(name, billingDate, entity.XOF(25000)), actor)
	require.NoError(t, err)
	return out
}
