// Package bootstrap arma los casos de uso sobre el store configurado. Lo comparten la API y el CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/kitbilling/internal/application/billing"
	domainbilling "github.com/jhoicas/kitbilling/internal/domain/billing"
	"github.com/jhoicas/kitbilling/internal/domain/repository"
	"github.com/jhoicas/kitbilling/internal/infrastructure/cache"
	infrafs "github.com/jhoicas/kitbilling/internal/infrastructure/firestore"
	"github.com/jhoicas/kitbilling/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/kitbilling/internal/infrastructure/pdf"
	"github.com/jhoicas/kitbilling/internal/infrastructure/postgres"
	"github.com/jhoicas/kitbilling/internal/infrastructure/roster"
	"github.com/jhoicas/kitbilling/internal/infrastructure/xmldoc"
	"github.com/jhoicas/kitbilling/pkg/config"
	"github.com/jhoicas/kitbilling/pkg/logger"
)

// Services casos de uso listos para usar.
type Services struct {
	Clients  *billing.ClientUseCase
	Invoices *billing.InvoiceUseCase
	Roster   *billing.RosterUseCase
}

// stores repositorios de un mismo adaptador.
type stores struct {
	clients  repository.ClientRepository
	invoices repository.InvoiceRepository
	counters repository.InvoiceCounterRepository
}

// New abre el store indicado por cfg.Store.Driver y construye los casos de uso.
// El close devuelto libera las conexiones; siempre es seguro llamarlo.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, func(), error) {
	loc, err := cfg.Billing.Location()
	if err != nil {
		return nil, func() {}, err
	}

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, func() {}, err
	}

	numbers, err := billing.NewNumberGenerator(domainbilling.NumberingScheme(cfg.Billing.Numbering), st.counters, loc)
	if err != nil {
		closeStore()
		return nil, func() {}, err
	}

	renderers := map[string]billing.DocumentRenderer{
		billing.FormatPDF: infrapdf.NewInvoiceRenderer(),
		billing.FormatXML: xmldoc.NewInvoiceRenderer(),
	}
	org := billing.Organization{
		Name:    cfg.Organization.Name,
		Address: cfg.Organization.Address,
		Phone:   cfg.Organization.Phone,
		Email:   cfg.Organization.Email,
		TaxID:   cfg.Organization.TaxID,
	}

	clients := billing.NewClientUseCase(st.clients, loc, log.Zerolog())
	invoices := billing.NewInvoiceUseCase(
		st.invoices, st.clients, numbers, renderers,
		cache.NewDocumentCache(cfg.Documents.CacheTTL),
		billing.InvoiceConfig{
			Location:     loc,
			DueDays:      cfg.Billing.DueDays,
			BatchWorkers: cfg.Billing.BatchWorkers,
			Organization: org,
		},
		log.Zerolog(),
	)
	return &Services{
		Clients:  clients,
		Invoices: invoices,
		Roster:   billing.NewRosterUseCase(clients, st.clients, roster.NewCSVCodec(), log.Zerolog()),
	}, closeStore, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (stores, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return stores{}, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return stores{}, nil, err
		}
		log.Info().Str("driver", config.DriverPostgres).Msg("store abierto")
		return stores{
			clients:  postgres.NewClientRepository(pool),
			invoices: postgres.NewInvoiceRepository(pool),
			counters: postgres.NewCounterRepository(pool),
		}, pool.Close, nil

	case config.DriverFirestore:
		fs, err := infrafs.NewClient(ctx, cfg.Firestore)
		if err != nil {
			return stores{}, nil, err
		}
		log.Info().Str("driver", config.DriverFirestore).Str("project", cfg.Firestore.ProjectID).Msg("store abierto")
		return stores{
			clients:  infrafs.NewClientRepository(fs),
			invoices: infrafs.NewInvoiceRepository(fs),
			counters: infrafs.NewCounterRepository(fs),
		}, func() { _ = fs.Close() }, nil

	case config.DriverMemory:
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return stores{clients: s.Clients(), invoices: s.Invoices(), counters: s.Counters()}, func() {}, nil
	}
	return stores{}, nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
}
