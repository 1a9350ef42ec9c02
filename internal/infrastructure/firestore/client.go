// Package firestore implementa los repositorios sobre Cloud Firestore: un documento por
// cliente y por factura, con el historial del cliente como arreglo dentro del documento.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/pkg/config"
)

// Colecciones.
const (
	clientsCollection        = "clients"
	invoicesCollection       = "invoices"
	invoiceNumbersCollection = "invoiceNumbers" // reserva de números únicos
	countersCollection       = "invoiceCounters"
)

// NewClient abre el cliente de Firestore del proyecto configurado.
// Sin archivo de credenciales se usan las credenciales por defecto del entorno.
func NewClient(ctx context.Context, cfg config.FirestoreConfig) (*firestore.Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore: project id requerido")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var (
		client *firestore.Client
		err    error
	)
	if cfg.DatabaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, cfg.ProjectID, cfg.DatabaseID, opts...)
	} else {
		client, err = firestore.NewClient(ctx, cfg.ProjectID, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("firestore: crear cliente: %w", err)
	}
	return client, nil
}

// mapError traduce los códigos gRPC a errores de dominio.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return domain.ErrNotFound
	case codes.AlreadyExists:
		return domain.ErrDuplicate
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrDuplicate) {
		return err
	}
	return fmt.Errorf("firestore %s: %w", op, err)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
