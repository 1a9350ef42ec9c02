package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
	"github.com/jhoicas/kitbilling/internal/domain/repository"
	"github.com/jhoicas/kitbilling/pkg/validator"
)

var (
	_ repository.InvoiceRepository        = (*InvoiceRepo)(nil)
	_ repository.InvoiceCounterRepository = (*CounterRepo)(nil)
)

// InvoiceRepo facturas en la colección "invoices". El número de factura se reserva en
// "invoiceNumbers/{número}" dentro de la misma transacción que crea la factura.
type InvoiceRepo struct {
	fs *firestore.Client
}

// NewInvoiceRepository construye el adaptador.
func NewInvoiceRepository(fs *firestore.Client) *InvoiceRepo {
	return &InvoiceRepo{fs: fs}
}

func (r *InvoiceRepo) col() *firestore.CollectionRef {
	return r.fs.Collection(invoicesCollection)
}

type numberReservation struct {
	InvoiceID string `firestore:"invoiceId"`
}

// Create crea la factura y reserva su número; ErrDuplicate si el número ya existe.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		numberRef := r.fs.Collection(invoiceNumbersCollection).Doc(inv.InvoiceNumber)
		if err := tx.Create(numberRef, numberReservation{InvoiceID: inv.ID}); err != nil {
			return err
		}
		return tx.Create(r.col().Doc(inv.ID), inv)
	})
	return mapError("crear factura", err)
}

// GetByID devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, mapError("obtener factura", err)
	}
	return decodeInvoice(snap)
}

// Update reemplaza el documento conservando número y datos de creación.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	ref := r.col().Doc(inv.ID)
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var stored entity.Invoice
		if err := snap.DataTo(&stored); err != nil {
			return err
		}
		next := *inv
		next.InvoiceNumber = stored.InvoiceNumber
		next.CreatedAt, next.CreatedBy = stored.CreatedAt, stored.CreatedBy
		return tx.Set(ref, &next)
	})
	return mapError("actualizar factura", err)
}

// Delete borra la factura y libera su número.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	ref := r.col().Doc(id)
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var stored entity.Invoice
		if err := snap.DataTo(&stored); err != nil {
			return err
		}
		if err := tx.Delete(ref); err != nil {
			return err
		}
		if stored.InvoiceNumber == "" {
			return nil
		}
		return tx.Delete(r.fs.Collection(invoiceNumbersCollection).Doc(stored.InvoiceNumber))
	})
	return mapError("eliminar factura", err)
}

// ListByClient facturas del cliente, createdAt descendente.
func (r *InvoiceRepo) ListByClient(ctx context.Context, clientID string) ([]*entity.Invoice, error) {
	it := r.col().Where("clientId", "==", clientID).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()
	var list []*entity.Invoice
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapError("listar facturas", err)
		}
		inv, err := decodeInvoice(snap)
		if err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, nil
}

func decodeInvoice(snap *firestore.DocumentSnapshot) (*entity.Invoice, error) {
	var inv entity.Invoice
	if err := snap.DataTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: factura %s: %w", domain.ErrCorruptRecord, snap.Ref.ID, err)
	}
	inv.ID = snap.Ref.ID
	if err := validator.ValidateStored("factura", inv.ID, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// ── Contador diario ──────────────────────────────────────────────────────────

// CounterRepo contador diario en "invoiceCounters/{YYYYMMDD}".
type CounterRepo struct {
	fs *firestore.Client
}

// NewCounterRepository construye el adaptador.
func NewCounterRepository(fs *firestore.Client) *CounterRepo {
	return &CounterRepo{fs: fs}
}

type counterDoc struct {
	LastNumber int64 `firestore:"lastNumber"`
}

// Next incrementa el contador en una transacción. La primera vez del día lo siembra con las
// facturas creadas desde since; Firestore reintenta la transacción si otro proceso escribió antes.
func (r *CounterRepo) Next(ctx context.Context, dayKey string, since time.Time) (int64, error) {
	ref := r.fs.Collection(countersCollection).Doc(dayKey)
	var next int64
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var c counterDoc
			if err := snap.DataTo(&c); err != nil {
				return err
			}
			next = c.LastNumber + 1
		case isNotFound(err):
			q := r.fs.Collection(invoicesCollection).Where("createdAt", ">=", since).Select()
			docs, err := tx.Documents(q).GetAll()
			if err != nil {
				return err
			}
			next = int64(len(docs)) + 1
		default:
			return err
		}
		return tx.Set(ref, counterDoc{LastNumber: next})
	})
	if err != nil {
		return 0, mapError("siguiente número "+dayKey, err)
	}
	return next, nil
}
