package billing

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
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

// ClientUseCase alta y mantenimiento de clientes. Toda mutación agrega exactamente una
// entrada al historial en la misma escritura que el cambio de campos.
type ClientUseCase struct {
	repo repository.ClientRepository
	loc  *time.Location
	log  zerolog.Logger
	now  func() time.Time
}

// NewClientUseCase construye el caso de uso; loc es la zona de cobro.
func NewClientUseCase(repo repository.ClientRepository, loc *time.Location, log zerolog.Logger) *ClientUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ClientUseCase{
		repo: repo,
		loc:  loc,
		log:  log.With().Str("component", "clients").Logger(),
		now:  time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ClientUseCase) WithClock(now func() time.Time) *ClientUseCase {
	uc.now = now
	return uc
}

func (uc *ClientUseCase) today() time.Time {
	return billing.StartOfDay(uc.now().In(uc.loc))
}

// Create da de alta un cliente con su entrada CREATE en el historial.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.CreateClientRequest, actorID string) (*dto.ClientResponse, error) {
	if err := domain.RequireFields("clientName", in.ClientName, "actorId", actorID); err != nil {
		return nil, err
	}
	if err := validator.ValidateRequest(in); err != nil {
		return nil, err
	}
	billingDate, err := parseDate(in.BillingDate, "billingDate")
	if err != nil {
		return nil, err
	}
	activationDate := billingDate
	if in.ActivationDate != "" {
		if activationDate, err = parseDate(in.ActivationDate, "activationDate"); err != nil {
			return nil, err
		}
	}
	billingAmount, err := resolveBillingAmount(in.OriginalAmount, in.BillingAmount)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	c := &entity.Client{
		ID:             uuid.NewString(),
		ClientName:     strings.TrimSpace(in.ClientName),
		AccountName:    in.AccountName,
		KitNumber:      in.KitNumber,
		Location:       in.Location,
		OriginalAmount: in.OriginalAmount,
		BillingAmount:  billingAmount,
		KitStatus:      lo.Ternary(in.KitStatus == "", entity.KitStatusActive, in.KitStatus),
		PaymentStatus:  lo.Ternary(in.PaymentStatus == "", entity.PaymentStatusPending, in.PaymentStatus),
		Phones:         in.Phones,
		Emails:         in.Emails,
		WhatsApp:       in.WhatsApp,
		Notes:          in.Notes,
		ActivationDate: activationDate,
		BillingDate:    billingDate,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      actorID,
		UpdatedBy:      actorID,
	}
	c.History = []entity.HistoryEntry{
		newEntry(now, entity.HistoryActionCreate, actorID, "Cliente creado"),
	}

	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, uc.persistenceError("crear cliente", err)
	}
	uc.log.Info().Str("client_id", c.ID).Str("actor_id", actorID).Msg("cliente creado")
	return uc.toResponse(c, uc.today()), nil
}

// Get devuelve el cliente con su próxima fecha de cobro.
func (uc *ClientUseCase) Get(ctx context.Context, id string) (*dto.ClientResponse, error) {
	if err := domain.RequireFields("id", id); err != nil {
		return nil, err
	}
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(c, uc.today()), nil
}

// List devuelve los clientes ordenados por urgencia de cobro (los más próximos primero),
// opcionalmente filtrados por ventana: today, week o month.
func (uc *ClientUseCase) List(ctx context.Context, q dto.ClientListQuery) (*dto.ClientListResponse, error) {
	q.DefaultPage()
	if err := validator.ValidateRequest(q); err != nil {
		return nil, err
	}

	all, err := uc.repo.List(ctx)
	if err != nil {
		return nil, uc.persistenceError("listar clientes", err)
	}
	today := uc.today()
	items := lo.Map(all, func(c *entity.Client, _ int) *dto.ClientResponse {
		return uc.toResponse(c, today)
	})
	if q.Due != "" {
		window := billing.DueWindow(q.Due)
		items = lo.Filter(items, func(r *dto.ClientResponse, _ int) bool {
			return window.Contains(r.DaysUntilBilling)
		})
	}
	slices.SortStableFunc(items, func(a, b *dto.ClientResponse) int {
		return cmp.Or(
			cmp.Compare(a.DaysUntilBilling, b.DaysUntilBilling),
			cmp.Compare(strings.ToLower(a.ClientName), strings.ToLower(b.ClientName)),
		)
	})

	total := len(items)
	start := min(q.Offset, total)
	end := min(start+q.Limit, total)
	return &dto.ClientListResponse{
		Items: items[start:end],
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Due devuelve todos los clientes dentro de la ventana indicada, más urgentes primero.
func (uc *ClientUseCase) Due(ctx context.Context, window billing.DueWindow) ([]*dto.ClientResponse, error) {
	if !window.IsValid() {
		return nil, domain.NewValidationError("due")
	}
	all, err := uc.repo.List(ctx)
	if err != nil {
		return nil, uc.persistenceError("listar clientes", err)
	}
	today := uc.today()
	due := lo.FilterMap(all, func(c *entity.Client, _ int) (*dto.ClientResponse, bool) {
		r := uc.toResponse(c, today)
		return r, window.Contains(r.DaysUntilBilling)
	})
	slices.SortStableFunc(due, func(a, b *dto.ClientResponse) int {
		return cmp.Compare(a.DaysUntilBilling, b.DaysUntilBilling)
	})
	return due, nil
}

// Update aplica un parche campo a campo y registra los campos modificados en el historial.
// Si cambia originalAmount sin billingAmount, el monto de cobro se recalcula en XOF.
func (uc *ClientUseCase) Update(ctx context.Context, id string, patch dto.UpdateClientRequest, actorID string) (*dto.ClientResponse, error) {
	if err := domain.RequireFields("id", id, "actorId", actorID); err != nil {
		return nil, err
	}
	if err := validator.ValidateRequest(patch); err != nil {
		return nil, err
	}
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var changed []string
	set := func(field string, apply func()) {
		apply()
		changed = append(changed, field)
	}
	if patch.ClientName != nil {
		set("clientName", func() { c.ClientName = strings.TrimSpace(*patch.ClientName) })
	}
	if patch.AccountName != nil {
		set("accountName", func() { c.AccountName = *patch.AccountName })
	}
	if patch.KitNumber != nil {
		set("kitNumber", func() { c.KitNumber = *patch.KitNumber })
	}
	if patch.Location != nil {
		set("location", func() { c.Location = *patch.Location })
	}
	if patch.OriginalAmount != nil || patch.BillingAmount != nil {
		original := lo.FromPtrOr(patch.OriginalAmount, c.OriginalAmount)
		billingAmount, err := resolveBillingAmount(original, patch.BillingAmount)
		if err != nil {
			return nil, err
		}
		if patch.OriginalAmount != nil {
			set("originalAmount", func() { c.OriginalAmount = original })
		}
		set("billingAmount", func() { c.BillingAmount = billingAmount })
	}
	if patch.Phones != nil {
		set("phones", func() { c.Phones = *patch.Phones })
	}
	if patch.Emails != nil {
		set("emails", func() { c.Emails = *patch.Emails })
	}
	if patch.WhatsApp != nil {
		set("whatsapp", func() { c.WhatsApp = *patch.WhatsApp })
	}
	if patch.Notes != nil {
		set("notes", func() { c.Notes = *patch.Notes })
	}
	if patch.ActivationDate != nil {
		d, err := parseDate(*patch.ActivationDate, "activationDate")
		if err != nil {
			return nil, err
		}
		set("activationDate", func() { c.ActivationDate = d })
	}
	if patch.BillingDate != nil {
		d, err := parseDate(*patch.BillingDate, "billingDate")
		if err != nil {
			return nil, err
		}
		set("billingDate", func() { c.BillingDate = d })
	}

	details := "Sin cambios de campos"
	if len(changed) > 0 {
		details = "Campos modificados: " + strings.Join(changed, ", ")
	}
	return uc.apply(ctx, c, entity.HistoryActionUpdate, actorID, details)
}

// UpdateKitStatus cambia el estado del kit (acción UPDATE_KIT_STATUS).
func (uc *ClientUseCase) UpdateKitStatus(ctx context.Context, id string, status entity.KitStatus, actorID string) (*dto.ClientResponse, error) {
	if err := domain.RequireFields("id", id, "status", string(status), "actorId", actorID); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("status")
	}
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	details := fmt.Sprintf("Estado del kit: %s → %s", c.KitStatus, status)
	c.KitStatus = status
	return uc.apply(ctx, c, entity.HistoryActionUpdateKitStatus, actorID, details)
}

// UpdatePaymentStatus cambia el estado de pago (acción UPDATE_PAYMENT_STATUS).
func (uc *ClientUseCase) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus, actorID string) (*dto.ClientResponse, error) {
	if err := domain.RequireFields("id", id, "status", string(status), "actorId", actorID); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("status")
	}
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	details := fmt.Sprintf("Estado de pago: %s → %s", c.PaymentStatus, status)
	c.PaymentStatus = status
	return uc.apply(ctx, c, entity.HistoryActionUpdatePaymentStatus, actorID, details)
}

// apply sella updatedAt/updatedBy y persiste el cliente junto con una entrada de historial.
func (uc *ClientUseCase) apply(ctx context.Context, c *entity.Client, action, actorID, details string) (*dto.ClientResponse, error) {
	now := uc.now()
	c.UpdatedAt = now
	c.UpdatedBy = actorID
	entry := newEntry(now, action, actorID, details)

	if err := uc.repo.Update(ctx, c, entry); err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, uc.persistenceError("actualizar cliente", err)
	}
	c.History = append(c.History, entry)
	uc.log.Info().Str("client_id", c.ID).Str("action", action).Str("actor_id", actorID).Msg("cliente actualizado")
	return uc.toResponse(c, uc.today()), nil
}

func (uc *ClientUseCase) load(ctx context.Context, id string) (*entity.Client, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, uc.persistenceError("obtener cliente", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	return c, nil
}

func (uc *ClientUseCase) toResponse(c *entity.Client, today time.Time) *dto.ClientResponse {
	next := billing.NextBillingDate(c.BillingDate, today)
	days := billing.DaysUntil(next, today)
	return &dto.ClientResponse{
		Client:           c,
		NextBillingDate:  next.Format(dto.DateLayout),
		DaysUntilBilling: days,
		DueWindow:        string(billing.Classify(days)),
	}
}

func (uc *ClientUseCase) persistenceError(op string, err error) error {
	uc.log.Error().Err(err).Str("op", op).Msg("error de persistencia")
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func newEntry(at time.Time, action, actorID, details string) entity.HistoryEntry {
	return entity.HistoryEntry{ID: uuid.NewString(), Timestamp: at, Action: action, PerformedBy: actorID, Details: details}
}

// resolveBillingAmount usa el monto en XOF recibido o lo calcula desde el monto original.
func resolveBillingAmount(original entity.Money, billingAmount *entity.Money) (entity.Money, error) {
	if billingAmount == nil {
		xof := billing.Convert(original.Amount, original.Currency)
		if !entity.IsFinite(xof) {
			return entity.Money{}, domain.NewValidationError("originalAmount.amount")
		}
		return entity.XOF(xof), nil
	}
	if billingAmount.Currency != entity.SettlementCurrency {
		return entity.Money{}, domain.NewValidationError("billingAmount.currency")
	}
	return *billingAmount, nil
}

// parseDate interpreta una fecha calendario; se guarda a medianoche UTC.
func parseDate(value, field string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field)
	}
	return d, nil
}
