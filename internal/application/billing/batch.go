package billing

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"

	"github.com/jhoicas/kitbilling/internal/application/dto"
	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// SubscriptionItemDescription descripción de la línea de abono mensual.
const SubscriptionItemDescription = "Abono mensual kit satelital"

// BatchGenerate crea y genera el documento de la factura de abono de cada cliente.
// Cada cliente se procesa de forma independiente: un fallo se cuenta y el lote continúa.
func (uc *InvoiceUseCase) BatchGenerate(ctx context.Context, clientIDs []string, actorID string) (*dto.BatchResult, error) {
	if err := domain.RequireFields("actorId", actorID); err != nil {
		return nil, err
	}
	ids := lo.Uniq(lo.Compact(clientIDs))
	if len(ids) == 0 {
		return nil, domain.NewValidationError("clientIds")
	}

	outcomes := make([]dto.BatchOutcome, len(ids))
	p := pool.New().WithMaxGoroutines(uc.cfg.BatchWorkers)
	for i, id := range ids {
		p.Go(func() {
			outcomes[i] = uc.generateForClient(ctx, id, actorID)
		})
	}
	p.Wait()

	res := &dto.BatchResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Error == "" {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
	uc.log.Info().
		Int("clients", len(ids)).
		Int("succeeded", res.Succeeded).
		Int("failed", res.Failed).
		Str("actor_id", actorID).
		Msg("facturación masiva finalizada")
	return res, nil
}

func (uc *InvoiceUseCase) generateForClient(ctx context.Context, clientID, actorID string) (out dto.BatchOutcome) {
	out.ClientID = clientID
	defer func() {
		if r := recover(); r != nil {
			out.Error = fmt.Sprintf("panic: %v", r)
			uc.log.Error().Str("client_id", clientID).Interface("panic", r).Msg("facturación masiva: panic en cliente")
		}
	}()

	client, err := uc.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		out.Error = uc.persistenceError("obtener cliente", err).Error()
		return out
	}
	if client == nil {
		out.Error = fmt.Errorf("%w: cliente %s", domain.ErrNotFound, clientID).Error()
		return out
	}

	amount := client.BillingAmount.Amount
	inv, err := uc.create(ctx, dto.CreateInvoiceRequest{
		ClientID: clientID,
		Amount:   amount,
		Currency: entity.SettlementCurrency,
		Items: []dto.InvoiceItemRequest{{
			Description: SubscriptionItemDescription,
			Amount:      amount,
			Quantity:    1,
		}},
	}, actorID)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.InvoiceID = inv.ID
	out.InvoiceNumber = inv.InvoiceNumber

	renderer, ok := uc.renderers[FormatPDF]
	if !ok {
		return out
	}
	if _, err := uc.render(ctx, inv, FormatPDF, renderer); err != nil {
		out.Error = err.Error()
	}
	return out
}
