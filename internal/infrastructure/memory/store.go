// Package memory implementa los repositorios en memoria. Se usa en tests y con
// STORE_DRIVER=memory para levantar la API sin base de datos.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
	"github.com/jhoicas/kitbilling/internal/domain/repository"
	"github.com/jhoicas/kitbilling/pkg/validator"
)

var (
	_ repository.ClientRepository         = (*ClientRepo)(nil)
	_ repository.InvoiceRepository        = (*InvoiceRepo)(nil)
	_ repository.InvoiceCounterRepository = (*CounterRepo)(nil)
)

// Store colecciones en memoria protegidas por un único mutex: cada operación es atómica
// sobre su documento, igual que en los stores reales.
type Store struct {
	mu       sync.Mutex
	clients  map[string]*entity.Client
	invoices map[string]*entity.Invoice
	counters map[string]int64
	failErr  error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		clients:  make(map[string]*entity.Client),
		invoices: make(map[string]*entity.Invoice),
		counters: make(map[string]int64),
	}
}

// Fail hace que todas las operaciones siguientes devuelvan err (nil restablece).
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// SeedClient guarda el cliente tal cual, sin validar ni agregar historial.
func (s *Store) SeedClient(c *entity.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = copyClient(c)
}

// SeedInvoice guarda la factura tal cual.
func (s *Store) SeedInvoice(inv *entity.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = copyInvoice(inv)
}

// Clients devuelve el repositorio de clientes sobre este store.
func (s *Store) Clients() *ClientRepo { return &ClientRepo{s: s} }

// Invoices devuelve el repositorio de facturas sobre este store.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{s: s} }

// Counters devuelve el repositorio de contadores sobre este store.
func (s *Store) Counters() *CounterRepo { return &CounterRepo{s: s} }

// lock toma el mutex y devuelve el error inyectado, si hay.
func (s *Store) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.failErr != nil {
		err := s.failErr
		s.mu.Unlock()
		return err
	}
	return nil
}

// ── Clientes ─────────────────────────────────────────────────────────────────

// ClientRepo implementación en memoria de ClientRepository.
type ClientRepo struct{ s *Store }

// Create guarda el cliente; asigna ID si viene vacío.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	if err := r.s.lock(ctx); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := r.s.clients[c.ID]; exists {
		return domain.ErrDuplicate
	}
	r.s.clients[c.ID] = copyClient(c)
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	if err := validator.ValidateStored("cliente", id, c); err != nil {
		return nil, err
	}
	return copyClient(c), nil
}

// List devuelve todos los clientes.
func (r *ClientRepo) List(ctx context.Context) ([]*entity.Client, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	list := make([]*entity.Client, 0, len(r.s.clients))
	for id, c := range r.s.clients {
		if err := validator.ValidateStored("cliente", id, c); err != nil {
			return nil, err
		}
		list = append(list, copyClient(c))
	}
	return list, nil
}

// Update reemplaza los campos y agrega entry al historial almacenado.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client, entry entity.HistoryEntry) error {
	if err := r.s.lock(ctx); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	stored, ok := r.s.clients[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := copyClient(c)
	next.History = append(slices.Clone(stored.History), entry)
	next.CreatedAt, next.CreatedBy = stored.CreatedAt, stored.CreatedBy
	r.s.clients[c.ID] = next
	return nil
}

// ── Facturas ─────────────────────────────────────────────────────────────────

// InvoiceRepo implementación en memoria de InvoiceRepository.
type InvoiceRepo struct{ s *Store }

// Create guarda la factura; el número de factura es único.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if err := r.s.lock(ctx); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	for _, other := range r.s.invoices {
		if other.ID == inv.ID || other.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	if err := validator.ValidateStored("factura", id, inv); err != nil {
		return nil, err
	}
	return copyInvoice(inv), nil
}

// Update reemplaza el documento; ID y número son inmutables.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	if err := r.s.lock(ctx); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	stored, ok := r.s.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := copyInvoice(inv)
	next.InvoiceNumber = stored.InvoiceNumber
	next.CreatedAt, next.CreatedBy = stored.CreatedAt, stored.CreatedBy
	r.s.invoices[inv.ID] = next
	return nil
}

// Delete borra la factura; domain.ErrNotFound si no existe.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if err := r.s.lock(ctx); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.invoices, id)
	return nil
}

// ListByClient facturas del cliente, createdAt descendente.
func (r *InvoiceRepo) ListByClient(ctx context.Context, clientID string) ([]*entity.Invoice, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	list := lo.FilterMap(lo.Values(r.s.invoices), func(inv *entity.Invoice, _ int) (*entity.Invoice, bool) {
		return copyInvoice(inv), inv.ClientID == clientID
	})
	sortNewestFirst(list)
	return list, nil
}

func (s *Store) countSince(since time.Time) int64 {
	return int64(lo.CountBy(lo.Values(s.invoices), func(inv *entity.Invoice) bool {
		return !inv.CreatedAt.Before(since)
	}))
}

// ── Contadores ───────────────────────────────────────────────────────────────

// CounterRepo contador diario en memoria.
type CounterRepo struct{ s *Store }

// Next incrementa el contador de dayKey, sembrándolo con las facturas creadas desde since.
func (r *CounterRepo) Next(ctx context.Context, dayKey string, since time.Time) (int64, error) {
	if err := r.s.lock(ctx); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()
	last, ok := r.s.counters[dayKey]
	if !ok {
		last = r.s.countSince(since)
	}
	last++
	r.s.counters[dayKey] = last
	return last, nil
}
