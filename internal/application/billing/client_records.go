package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jhoicas/kitbilling/internal/application/dto"
	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// recordRules estados válidos, estado inicial, estados de cierre y acciones de historial por tipo.
type recordRules struct {
	initial      string
	statuses     []string
	closing      []string
	addAction    string
	updateAction string
	label        string
}

var rulesByKind = map[entity.RecordKind]recordRules{
	entity.RecordKindMaintenance: {
		initial:      entity.MaintenanceScheduled,
		statuses:     []string{entity.MaintenanceScheduled, entity.MaintenanceInProgress, entity.MaintenanceCompleted, entity.MaintenanceCancelled},
		closing:      []string{entity.MaintenanceCompleted, entity.MaintenanceCancelled},
		addAction:    entity.HistoryActionAddMaintenance,
		updateAction: entity.HistoryActionUpdateMaintenance,
		label:        "Mantenimiento",
	},
	entity.RecordKindTechnicalIssue: {
		initial:      entity.IssueOpen,
		statuses:     []string{entity.IssueOpen, entity.IssueInProgress, entity.IssueResolved, entity.IssueClosed},
		closing:      []string{entity.IssueResolved, entity.IssueClosed},
		addAction:    entity.HistoryActionAddTechnicalIssue,
		updateAction: entity.HistoryActionUpdateTechnicalIssue,
		label:        "Incidencia técnica",
	},
	entity.RecordKindKitReplacement: {
		initial:      entity.ReplacementRequested,
		statuses:     []string{entity.ReplacementRequested, entity.ReplacementInTransit, entity.ReplacementCompleted, entity.ReplacementCancelled},
		closing:      []string{entity.ReplacementCompleted, entity.ReplacementCancelled},
		addAction:    entity.HistoryActionAddKitReplacement,
		updateAction: entity.HistoryActionUpdateKitReplacement,
		label:        "Reemplazo de kit",
	},
}

// AddMaintenanceRecord registra un mantenimiento (ADD_MAINTENANCE).
func (uc *ClientUseCase) AddMaintenanceRecord(ctx context.Context, clientID string, in dto.CreateRecordRequest, actorID string) (*dto.ClientResponse, error) {
	return uc.addRecord(ctx, clientID, entity.RecordKindMaintenance, in, actorID)
}

// AddTechnicalIssue registra una incidencia técnica (ADD_TECHNICAL_ISSUE).
func (uc *ClientUseCase) AddTechnicalIssue(ctx context.Context, clientID string, in dto.CreateRecordRequest, actorID string) (*dto.ClientResponse, error) {
	return uc.addRecord(ctx, clientID, entity.RecordKindTechnicalIssue, in, actorID)
}

// AddKitReplacement registra un reemplazo de kit (ADD_KIT_REPLACEMENT).
func (uc *ClientUseCase) AddKitReplacement(ctx context.Context, clientID string, in dto.CreateRecordRequest, actorID string) (*dto.ClientResponse, error) {
	return uc.addRecord(ctx, clientID, entity.RecordKindKitReplacement, in, actorID)
}

func (uc *ClientUseCase) addRecord(ctx context.Context, clientID string, kind entity.RecordKind, in dto.CreateRecordRequest, actorID string) (*dto.ClientResponse, error) {
	if err := domain.RequireFields("id", clientID, "description", in.Description, "actorId", actorID); err != nil {
		return nil, err
	}
	rules := rulesByKind[kind]
	status := lo.Ternary(in.Status == "", rules.initial, in.Status)
	if !lo.Contains(rules.statuses, status) {
		return nil, domain.NewValidationError("status")
	}
	c, err := uc.load(ctx, clientID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	rec := entity.ServiceRecord{
		ID:          uuid.NewString(),
		Kind:        kind,
		Description: strings.TrimSpace(in.Description),
		Reference:   in.Reference,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if lo.Contains(rules.closing, status) {
		rec.ClosedAt = &now
	}
	c.SetRecords(kind, append(c.Records(kind), rec))
	details := fmt.Sprintf("%s %s agregado: %s", rules.label, rec.ID, rec.Description)
	return uc.apply(ctx, c, rules.addAction, actorID, details)
}

// UpdateRecordStatus cambia el estado de un registro asociado (UPDATE_MAINTENANCE,
// UPDATE_TECHNICAL_ISSUE o UPDATE_KIT_REPLACEMENT).
func (uc *ClientUseCase) UpdateRecordStatus(ctx context.Context, clientID string, kind entity.RecordKind, recordID, status, actorID string) (*dto.ClientResponse, error) {
	if err := domain.RequireFields("id", clientID, "recordId", recordID, "status", status, "actorId", actorID); err != nil {
		return nil, err
	}
	rules, ok := rulesByKind[kind]
	if !ok {
		return nil, domain.NewValidationError("kind")
	}
	if !lo.Contains(rules.statuses, status) {
		return nil, domain.NewValidationError("status")
	}
	c, err := uc.load(ctx, clientID)
	if err != nil {
		return nil, err
	}

	records := c.Records(kind)
	_, idx, found := lo.FindIndexOf(records, func(r entity.ServiceRecord) bool { return r.ID == recordID })
	if !found {
		return nil, fmt.Errorf("%w: registro %s", domain.ErrNotFound, recordID)
	}
	now := uc.now()
	rec := &records[idx]
	previous := rec.Status
	rec.Status = status
	rec.UpdatedAt = now
	if lo.Contains(rules.closing, status) {
		rec.ClosedAt = &now
	} else {
		rec.ClosedAt = nil
	}
	details := fmt.Sprintf("%s %s: %s → %s", rules.label, rec.ID, previous, status)
	return uc.apply(ctx, c, rules.updateAction, actorID, details)
}
