package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
	"github.com/jhoicas/kitbilling/internal/domain/repository"
	"github.com/jhoicas/kitbilling/pkg/validator"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository (usable con pool o tx).
// Cada cliente es una fila: registros asociados e historial viven en columnas JSONB de la
// misma fila, así el cambio de campos y la nueva entrada de historial son un único UPDATE.
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientColumns = `id, client_name, account_name, kit_number, location,
	original_amount, original_currency, billing_amount, billing_currency,
	kit_status, payment_status, phones, emails, whatsapp, notes,
	activation_date, billing_date, maintenance_records, technical_issues, kit_replacements,
	history, created_at, updated_at, created_by, updated_by`

// Create persiste un nuevo cliente con su historial inicial.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO billing_clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.ClientName, c.AccountName, c.KitNumber, c.Location,
		toNumeric(c.OriginalAmount.Amount), c.OriginalAmount.Currency,
		toNumeric(c.BillingAmount.Amount), c.BillingAmount.Currency,
		c.KitStatus, c.PaymentStatus, nonNil(c.Phones), nonNil(c.Emails),
		nullIfEmpty(c.WhatsApp), nullIfEmpty(c.Notes),
		nullDate(c.ActivationDate), c.BillingDate,
		nonNil(c.MaintenanceRecords), nonNil(c.TechnicalIssues), nonNil(c.KitReplacements),
		nonNil(c.History), c.CreatedAt, c.UpdatedAt, c.CreatedBy, c.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID; (nil, nil) si no existe.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM billing_clients WHERE id = $1`
	c, err := scanClient(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	if err := validator.ValidateStored("cliente", c.ID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List devuelve todos los clientes.
func (r *ClientRepo) List(ctx context.Context) ([]*entity.Client, error) {
	rows, err := r.q.Query(ctx, `SELECT `+clientColumns+` FROM billing_clients ORDER BY client_name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		if err := validator.ValidateStored("cliente", c.ID, c); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza los campos y agrega entry al historial en el mismo UPDATE.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client, entry entity.HistoryEntry) error {
	query := `
		UPDATE billing_clients SET
			client_name = $2, account_name = $3, kit_number = $4, location = $5,
			original_amount = $6, original_currency = $7, billing_amount = $8, billing_currency = $9,
			kit_status = $10, payment_status = $11, phones = $12, emails = $13, whatsapp = $14, notes = $15,
			activation_date = $16, billing_date = $17,
			maintenance_records = $18, technical_issues = $19, kit_replacements = $20,
			history = history || $21::jsonb,
			updated_at = $22, updated_by = $23
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.ClientName, c.AccountName, c.KitNumber, c.Location,
		toNumeric(c.OriginalAmount.Amount), c.OriginalAmount.Currency,
		toNumeric(c.BillingAmount.Amount), c.BillingAmount.Currency,
		c.KitStatus, c.PaymentStatus, nonNil(c.Phones), nonNil(c.Emails),
		nullIfEmpty(c.WhatsApp), nullIfEmpty(c.Notes),
		nullDate(c.ActivationDate), c.BillingDate,
		nonNil(c.MaintenanceRecords), nonNil(c.TechnicalIssues), nonNil(c.KitReplacements),
		[]entity.HistoryEntry{entry},
		c.UpdatedAt, c.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*entity.Client, error) {
	var (
		c                       entity.Client
		original, billingAmount decimal.Decimal
		whatsapp, notes         *string
		activation              *time.Time
	)
	err := row.Scan(
		&c.ID, &c.ClientName, &c.AccountName, &c.KitNumber, &c.Location,
		&original, &c.OriginalAmount.Currency, &billingAmount, &c.BillingAmount.Currency,
		&c.KitStatus, &c.PaymentStatus, &c.Phones, &c.Emails, &whatsapp, &notes,
		&activation, &c.BillingDate, &c.MaintenanceRecords, &c.TechnicalIssues, &c.KitReplacements,
		&c.History, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy, &c.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	c.OriginalAmount.Amount = fromNumeric(original)
	c.BillingAmount.Amount = fromNumeric(billingAmount)
	if whatsapp != nil {
		c.WhatsApp = *whatsapp
	}
	if notes != nil {
		c.Notes = *notes
	}
	if activation != nil {
		c.ActivationDate = *activation
	}
	return &c, nil
}

// nonNil evita escribir NULL en columnas JSONB/arrays NOT NULL.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
