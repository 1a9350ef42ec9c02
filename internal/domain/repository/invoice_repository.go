package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	// Create persiste la factura y asigna ID si viene vacío. domain.ErrDuplicate si el número ya existe.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// Update reemplaza el documento completo (último en escribir gana); domain.ErrNotFound si no existe.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// Delete borra definitivamente; domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
	// ListByClient ordena por createdAt descendente.
	ListByClient(ctx context.Context, clientID string) ([]*entity.Invoice, error)
}

// InvoiceCounterRepository secuencia diaria de numeración.
type InvoiceCounterRepository interface {
	// Next incrementa atómicamente el contador de dayKey y devuelve el valor asignado.
	// Si el contador no existe se siembra con las facturas creadas desde since, de modo
	// que el primer valor es ese conteo + 1.
	Next(ctx context.Context, dayKey string, since time.Time) (int64, error)
}
