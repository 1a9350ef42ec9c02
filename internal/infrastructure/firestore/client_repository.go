package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/jhoicas/kitbilling/internal/domain/entity"
	"github.com/jhoicas/kitbilling/internal/domain/repository"
	"github.com/jhoicas/kitbilling/pkg/validator"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo clientes en la colección "clients".
type ClientRepo struct {
	fs *firestore.Client
}

// NewClientRepository construye el adaptador.
func NewClientRepository(fs *firestore.Client) *ClientRepo {
	return &ClientRepo{fs: fs}
}

func (r *ClientRepo) col() *firestore.CollectionRef {
	return r.fs.Collection(clientsCollection)
}

// Create crea el documento; falla si el ID ya existe.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.col().Doc(c.ID).Create(ctx, c)
	return mapError("crear cliente", err)
}

// GetByID devuelve (nil, nil) si el documento no existe.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, mapError("obtener cliente", err)
	}
	return decodeClient(snap)
}

// List devuelve todos los clientes.
func (r *ClientRepo) List(ctx context.Context) ([]*entity.Client, error) {
	it := r.col().OrderBy("clientName", firestore.Asc).Documents(ctx)
	defer it.Stop()
	var list []*entity.Client
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapError("listar clientes", err)
		}
		c, err := decodeClient(snap)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, nil
}

// Update escribe los campos del cliente y agrega entry al arreglo history en la misma
// escritura. Si el documento no existe Firestore responde NotFound.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client, entry entity.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	updates := []firestore.Update{
		{Path: "clientName", Value: c.ClientName},
		{Path: "accountName", Value: c.AccountName},
		{Path: "kitNumber", Value: c.KitNumber},
		{Path: "location", Value: c.Location},
		{Path: "originalAmount", Value: c.OriginalAmount},
		{Path: "billingAmount", Value: c.BillingAmount},
		{Path: "kitStatus", Value: c.KitStatus},
		{Path: "paymentStatus", Value: c.PaymentStatus},
		{Path: "phones", Value: c.Phones},
		{Path: "emails", Value: c.Emails},
		{Path: "whatsapp", Value: c.WhatsApp},
		{Path: "notes", Value: c.Notes},
		{Path: "activationDate", Value: c.ActivationDate},
		{Path: "billingDate", Value: c.BillingDate},
		{Path: "maintenanceRecords", Value: c.MaintenanceRecords},
		{Path: "technicalIssues", Value: c.TechnicalIssues},
		{Path: "kitReplacements", Value: c.KitReplacements},
		{Path: "history", Value: firestore.ArrayUnion(entry)},
		{Path: "updatedAt", Value: c.UpdatedAt},
		{Path: "updatedBy", Value: c.UpdatedBy},
	}
	_, err := r.col().Doc(c.ID).Update(ctx, updates)
	return mapError("actualizar cliente", err)
}

func decodeClient(snap *firestore.DocumentSnapshot) (*entity.Client, error) {
	var c entity.Client
	if err := snap.DataTo(&c); err != nil {
		return nil, mapError("decodificar cliente", err)
	}
	c.ID = snap.Ref.ID
	if err := validator.ValidateStored("cliente", c.ID, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
