package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/jhoicas/kitbilling/internal/application/dto"
	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/billing"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
	"github.com/jhoicas/kitbilling/internal/domain/repository"
	"github.com/jhoicas/kitbilling/pkg/validator"
)

// InvoiceConfig parámetros de facturación.
type InvoiceConfig struct {
	Location     *time.Location // zona en la que se cuentan los días
	DueDays      int            // vencimiento por defecto: hoy + DueDays
	BatchWorkers int            // clientes procesados en paralelo en facturación masiva
	Organization Organization
}

// InvoiceUseCase ciclo de vida de la factura: alta, numeración, cambios de estado, borrado y documentos.
type InvoiceUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	numbers     NumberGenerator
	renderers   map[string]DocumentRenderer
	cache       DocumentCache
	cfg         InvoiceConfig
	log         zerolog.Logger
	now         func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. cache puede ser nil.
func NewInvoiceUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	numbers NumberGenerator,
	renderers map[string]DocumentRenderer,
	cache DocumentCache,
	cfg InvoiceConfig,
	log zerolog.Logger,
) *InvoiceUseCase {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 1
	}
	if cache == nil {
		cache = noCache{}
	}
	return &InvoiceUseCase{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		numbers:     numbers,
		renderers:   renderers,
		cache:       cache,
		cfg:         cfg,
		log:         log.With().Str("component", "invoices").Logger(),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *InvoiceUseCase) WithClock(now func() time.Time) *InvoiceUseCase {
	uc.now = now
	return uc
}

func (uc *InvoiceUseCase) today() time.Time {
	return billing.StartOfDay(uc.now().In(uc.cfg.Location))
}

// Create valida, numera y persiste una factura nueva en estado pending.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest, actorID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.create(ctx, in, actorID)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(inv), nil
}

func (uc *InvoiceUseCase) create(ctx context.Context, in dto.CreateInvoiceRequest, actorID string) (*entity.Invoice, error) {
	if err := domain.RequireFields("clientId", in.ClientID, "actorId", actorID); err != nil {
		return nil, err
	}
	if err := validator.ValidateRequest(in); err != nil {
		return nil, err
	}

	client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, uc.persistenceError("obtener cliente", err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.ClientID)
	}

	now := uc.now()
	dueDate := billing.StartOfDay(now.In(uc.cfg.Location)).AddDate(0, 0, uc.cfg.DueDays)
	if in.DueDate != "" {
		if dueDate, err = time.ParseInLocation(dto.DateLayout, in.DueDate, uc.cfg.Location); err != nil {
			return nil, domain.NewValidationError("dueDate")
		}
	}

	inv := &entity.Invoice{
		ID:        uuid.NewString(),
		ClientID:  in.ClientID,
		Amount:    in.Amount,
		Currency:  lo.Ternary(in.Currency == "", entity.SettlementCurrency, in.Currency),
		Items:     toItems(in.Items),
		Notes:     in.Notes,
		Status:    entity.InvoiceStatusPending,
		DueDate:   dueDate,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actorID,
		UpdatedBy: actorID,
	}
	if in.OriginalAmount != nil {
		original := *in.OriginalAmount
		inv.OriginalAmount = &original
		inv.Amount = billing.Convert(original.Amount, original.Currency)
		inv.Currency = entity.SettlementCurrency
		if !entity.IsFinite(inv.Amount) {
			return nil, domain.NewValidationError("originalAmount.amount")
		}
	}

	if inv.InvoiceNumber, err = uc.numbers.Next(ctx, now); err != nil {
		return nil, uc.persistenceError("numerar factura", err)
	}
	if err := uc.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, uc.persistenceError("crear factura", err)
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("client_id", inv.ClientID).
		Float64("amount", inv.Amount).
		Str("actor_id", actorID).
		Msg("factura creada")
	return inv, nil
}

// Get devuelve la factura con su estado efectivo.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if err := domain.RequireFields("id", id); err != nil {
		return nil, err
	}
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(inv), nil
}

// ListForClient facturas del cliente, la más reciente primero.
func (uc *InvoiceUseCase) ListForClient(ctx context.Context, clientID string) ([]*dto.InvoiceResponse, error) {
	if err := domain.RequireFields("clientId", clientID); err != nil {
		return nil, err
	}
	list, err := uc.invoiceRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, uc.persistenceError("listar facturas", err)
	}
	return lo.Map(list, func(inv *entity.Invoice, _ int) *dto.InvoiceResponse {
		return uc.toResponse(inv)
	}), nil
}

// Update aplica un parche parcial. El monto no se recalcula desde originalAmount.
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, patch dto.UpdateInvoiceRequest, actorID string) (*dto.InvoiceResponse, error) {
	if err := domain.RequireFields("id", id, "actorId", actorID); err != nil {
		return nil, err
	}
	if err := validator.ValidateRequest(patch); err != nil {
		return nil, err
	}
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()

	if patch.ClientID != nil {
		inv.ClientID = *patch.ClientID
	}
	if patch.OriginalAmount != nil {
		original := *patch.OriginalAmount
		inv.OriginalAmount = &original
		if patch.Amount == nil {
			uc.log.Warn().
				Str("invoice_id", inv.ID).
				Float64("amount", inv.Amount).
				Float64("original_amount", original.Amount).
				Str("original_currency", string(original.Currency)).
				Msg("originalAmount cambió sin amount: el monto facturado no se recalcula")
		}
	}
	if patch.Amount != nil {
		inv.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		inv.Currency = *patch.Currency
	}
	if patch.Items != nil {
		inv.Items = toItems(*patch.Items)
	}
	if patch.Notes != nil {
		inv.Notes = *patch.Notes
	}
	if patch.DueDate != nil {
		due, err := time.ParseInLocation(dto.DateLayout, *patch.DueDate, uc.cfg.Location)
		if err != nil {
			return nil, domain.NewValidationError("dueDate")
		}
		inv.DueDate = due
	}
	if patch.Status != nil {
		uc.logTransition(inv.ID, billing.ApplyStatus(inv, *patch.Status, actorID, now))
	}
	inv.UpdatedAt = now
	inv.UpdatedBy = actorID

	if err := uc.save(ctx, inv); err != nil {
		return nil, err
	}
	return uc.toResponse(inv), nil
}

// UpdateStatus cambia el estado de la factura. Pasar a paid sella paidAt.
func (uc *InvoiceUseCase) UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus, actorID string) (*dto.InvoiceResponse, error) {
	if err := domain.RequireFields("id", id, "status", string(status), "actorId", actorID); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("status")
	}
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.logTransition(inv.ID, billing.ApplyStatus(inv, status, actorID, uc.now()))
	if err := uc.save(ctx, inv); err != nil {
		return nil, err
	}
	return uc.toResponse(inv), nil
}

// Delete borra la factura definitivamente y descarta sus documentos generados.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	if err := domain.RequireFields("id", id); err != nil {
		return err
	}
	if err := uc.invoiceRepo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return err
		}
		return uc.persistenceError("eliminar factura", err)
	}
	uc.cache.Evict(id)
	uc.log.Info().Str("invoice_id", id).Msg("factura eliminada")
	return nil
}

func (uc *InvoiceUseCase) load(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, uc.persistenceError("obtener factura", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, id)
	}
	return inv, nil
}

func (uc *InvoiceUseCase) save(ctx context.Context, inv *entity.Invoice) error {
	if err := uc.invoiceRepo.Update(ctx, inv); err != nil {
		if isNotFound(err) {
			return err
		}
		return uc.persistenceError("actualizar factura", err)
	}
	// el documento generado ya no refleja la factura
	uc.cache.Evict(inv.ID)
	return nil
}

func (uc *InvoiceUseCase) logTransition(invoiceID string, change billing.StatusChange) {
	if change.Kind == billing.TransitionUnusual {
		uc.log.Warn().
			Str("invoice_id", invoiceID).
			Str("from", string(change.From)).
			Str("to", string(change.To)).
			Msg("transición de estado inusual")
	}
	if change.StalePaidAt {
		uc.log.Warn().
			Str("invoice_id", invoiceID).
			Str("status", string(change.To)).
			Msg("la factura conserva paidAt de un pago anterior")
	}
}

func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{Invoice: inv, EffectiveStatus: billing.EffectiveStatus(inv, uc.today())}
}

// persistenceError registra la causa y devuelve la categoría estable.
func (uc *InvoiceUseCase) persistenceError(op string, err error) error {
	uc.log.Error().Err(err).Str("op", op).Msg("error de persistencia")
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func toItems(items []dto.InvoiceItemRequest) []entity.InvoiceItem {
	return lo.Map(items, func(it dto.InvoiceItemRequest, _ int) entity.InvoiceItem {
		return entity.InvoiceItem{Description: it.Description, Amount: it.Amount, Quantity: it.Quantity}
	})
}
