package repository

import (
	"context"

	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	// Create persiste el cliente (con su historial inicial) y asigna ID si viene vacío.
	Create(ctx context.Context, client *entity.Client) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	List(ctx context.Context) ([]*entity.Client, error)
	// Update escribe los campos del cliente y agrega entry al historial en una sola escritura
	// del documento. Las entradas previas del historial no se tocan. domain.ErrNotFound si no existe.
	Update(ctx context.Context, client *entity.Client, entry entity.HistoryEntry) error
}
