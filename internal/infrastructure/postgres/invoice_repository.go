package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
	"github.com/jhoicas/kitbilling/internal/domain/repository"
	"github.com/jhoicas/kitbilling/pkg/validator"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, invoice_number, client_id, original_amount, original_currency,
	amount, currency, items, notes, status, due_date, paid_at,
	created_at, updated_at, created_by, updated_by`

// Create persiste la factura. El número de factura es UNIQUE.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	originalAmount, originalCurrency := splitMoney(inv.OriginalAmount)
	query := `
		INSERT INTO billing_invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.ClientID, originalAmount, originalCurrency,
		toNumeric(inv.Amount), inv.Currency, nonNil(inv.Items), nullIfEmpty(inv.Notes),
		inv.Status, inv.DueDate, inv.PaidAt,
		inv.CreatedAt, inv.UpdatedAt, inv.CreatedBy, inv.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID; (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM billing_invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := validator.ValidateStored("factura", inv.ID, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Update reescribe los campos mutables. invoice_number y created_* no se tocan.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	originalAmount, originalCurrency := splitMoney(inv.OriginalAmount)
	query := `
		UPDATE billing_invoices SET
			client_id = $2, original_amount = $3, original_currency = $4,
			amount = $5, currency = $6, items = $7, notes = $8,
			status = $9, due_date = $10, paid_at = $11,
			updated_at = $12, updated_by = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.ClientID, originalAmount, originalCurrency,
		toNumeric(inv.Amount), inv.Currency, nonNil(inv.Items), nullIfEmpty(inv.Notes),
		inv.Status, inv.DueDate, inv.PaidAt,
		inv.UpdatedAt, inv.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la factura por ID.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM billing_invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByClient facturas del cliente, la más reciente primero.
func (r *InvoiceRepo) ListByClient(ctx context.Context, clientID string) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM billing_invoices
		WHERE client_id = $1 ORDER BY created_at DESC, invoice_number DESC`
	rows, err := r.q.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		if err := validator.ValidateStored("factura", inv.ID, inv); err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv              entity.Invoice
		originalAmount   decimal.NullDecimal
		originalCurrency *string
		amount           decimal.Decimal
		notes            *string
	)
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &originalAmount, &originalCurrency,
		&amount, &inv.Currency, &inv.Items, &notes, &inv.Status, &inv.DueDate, &inv.PaidAt,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.CreatedBy, &inv.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	inv.Amount = fromNumeric(amount)
	if originalAmount.Valid && originalCurrency != nil {
		inv.OriginalAmount = &entity.Money{
			Amount:   fromNumeric(originalAmount.Decimal),
			Currency: entity.Currency(*originalCurrency),
		}
	}
	if notes != nil {
		inv.Notes = *notes
	}
	return &inv, nil
}

func splitMoney(m *entity.Money) (*decimal.Decimal, *string) {
	if m == nil {
		return nil, nil
	}
	amount := toNumeric(m.Amount)
	currency := string(m.Currency)
	return &amount, &currency
}
