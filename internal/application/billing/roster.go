package billing

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/jhoicas/kitbilling/internal/application/dto"
	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
	"github.com/jhoicas/kitbilling/internal/domain/repository"
)

const listSeparator = ";"

// RosterCodec serializa el roster tabular.
type RosterCodec interface {
	Encode(w io.Writer, rows []*dto.RosterRow) error
	Decode(r io.Reader) ([]*dto.RosterRow, error)
}

// RosterUseCase importación y exportación masiva de clientes.
type RosterUseCase struct {
	clients *ClientUseCase
	repo    repository.ClientRepository
	codec   RosterCodec
	log     zerolog.Logger
}

// NewRosterUseCase construye el caso de uso. Las altas pasan por ClientUseCase.Create.
func NewRosterUseCase(clients *ClientUseCase, repo repository.ClientRepository, codec RosterCodec, log zerolog.Logger) *RosterUseCase {
	return &RosterUseCase{
		clients: clients,
		repo:    repo,
		codec:   codec,
		log:     log.With().Str("component", "roster").Logger(),
	}
}

// WithCodec copia del caso de uso con otro codec (p.ej. CSV en Latin-1 o con otro separador).
func (uc *RosterUseCase) WithCodec(codec RosterCodec) *RosterUseCase {
	cp := *uc
	cp.codec = codec
	return &cp
}

// Export escribe todos los clientes ordenados por nombre.
func (uc *RosterUseCase) Export(ctx context.Context, w io.Writer) (int, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("exportar roster: listar clientes")
		return 0, fmt.Errorf("%w: listar clientes: %w", domain.ErrPersistence, err)
	}
	slices.SortStableFunc(list, func(a, b *entity.Client) int {
		return cmp.Compare(strings.ToLower(a.ClientName), strings.ToLower(b.ClientName))
	})
	rows := lo.Map(list, func(c *entity.Client, _ int) *dto.RosterRow { return toRosterRow(c) })
	if err := uc.codec.Encode(w, rows); err != nil {
		return 0, fmt.Errorf("exportar roster: %w", err)
	}
	return len(rows), nil
}

// Import da de alta cada fila como cliente nuevo (con su entrada CREATE). Es best-effort:
// una fila inválida se cuenta y se reporta sin detener el resto. La columna id se ignora.
func (uc *RosterUseCase) Import(ctx context.Context, r io.Reader, actorID string) (*dto.ImportResult, error) {
	if err := domain.RequireFields("actorId", actorID); err != nil {
		return nil, err
	}
	rows, err := uc.codec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: roster ilegible: %w", domain.ErrInvalidInput, err)
	}

	res := &dto.ImportResult{}
	for i, row := range rows {
		err := uc.importRow(ctx, row, actorID)
		if err == nil {
			res.Imported++
			continue
		}
		res.Failed++
		res.Errors = append(res.Errors, dto.ImportRowError{Row: i + 1, Message: err.Error()})
		if errors.Is(err, domain.ErrPersistence) {
			uc.log.Error().Err(err).Int("row", i+1).Msg("importar roster: error de persistencia")
		}
	}
	uc.log.Info().Int("imported", res.Imported).Int("failed", res.Failed).Str("actor_id", actorID).Msg("roster importado")
	return res, nil
}

func (uc *RosterUseCase) importRow(ctx context.Context, row *dto.RosterRow, actorID string) error {
	req, err := fromRosterRow(row)
	if err != nil {
		return err
	}
	_, err = uc.clients.Create(ctx, req, actorID)
	return err
}

func toRosterRow(c *entity.Client) *dto.RosterRow {
	return &dto.RosterRow{
		ID:                     c.ID,
		ClientName:             c.ClientName,
		AccountName:            c.AccountName,
		KitNumber:              c.KitNumber,
		KitStatus:              string(c.KitStatus),
		PaymentStatus:          string(c.PaymentStatus),
		OriginalAmount:         formatAmount(c.OriginalAmount.Amount),
		OriginalAmountCurrency: string(c.OriginalAmount.Currency),
		BillingAmount:          formatAmount(c.BillingAmount.Amount),
		Phones:                 strings.Join(c.Phones, listSeparator),
		Emails:                 strings.Join(c.Emails, listSeparator),
		WhatsApp:               c.WhatsApp,
		ActivationDate:         formatDate(c.ActivationDate),
		BillingDate:            formatDate(c.BillingDate),
		Notes:                  c.Notes,
	}
}

func fromRosterRow(row *dto.RosterRow) (dto.CreateClientRequest, error) {
	req := dto.CreateClientRequest{
		ClientName:     strings.TrimSpace(row.ClientName),
		AccountName:    strings.TrimSpace(row.AccountName),
		KitNumber:      strings.TrimSpace(row.KitNumber),
		KitStatus:      entity.KitStatus(strings.TrimSpace(row.KitStatus)),
		PaymentStatus:  entity.PaymentStatus(strings.TrimSpace(row.PaymentStatus)),
		Phones:         splitList(row.Phones),
		Emails:         splitList(row.Emails),
		WhatsApp:       strings.TrimSpace(row.WhatsApp),
		ActivationDate: strings.TrimSpace(row.ActivationDate),
		BillingDate:    strings.TrimSpace(row.BillingDate),
		Notes:          row.Notes,
	}

	amount, err := parseAmount(row.OriginalAmount)
	if err != nil {
		return req, domain.NewValidationError("originalAmount.amount")
	}
	currency := strings.ToUpper(strings.TrimSpace(row.OriginalAmountCurrency))
	req.OriginalAmount = entity.Money{Amount: amount, Currency: entity.Currency(lo.Ternary(currency == "", string(entity.SettlementCurrency), currency))}

	if strings.TrimSpace(row.BillingAmount) != "" {
		xof, err := parseAmount(row.BillingAmount)
		if err != nil {
			return req, domain.NewValidationError("billingAmount.amount")
		}
		req.BillingAmount = lo.ToPtr(entity.XOF(xof))
	}
	return req, nil
}

func splitList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, listSeparator), func(v string, _ int) string {
		return strings.TrimSpace(v)
	}))
}

// parseAmount acepta coma decimal ("72,50") además de punto. Rechaza "Inf" y "NaN".
func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	if !entity.IsFinite(v) {
		return 0, fmt.Errorf("monto no finito: %q", s)
	}
	return v, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}
