package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/kitbilling/internal/bootstrap"
	"github.com/jhoicas/kitbilling/pkg/config"
	"github.com/jhoicas/kitbilling/pkg/logger"
)

const version = "1.0.0"

// cliActor actor por defecto en el historial cuando no se indica --actor.
const cliActor = "billingctl"

// app estado compartido por los subcomandos; se arma en PersistentPreRunE.
var app struct {
	cfg      *config.Config
	log      *logger.Logger
	svc      *bootstrap.Services
	closeFns []func()
}

var rootCmd = &cobra.Command{
	Use:   "billingctl",
	Short: "Operaciones de facturación de kits satelitales por línea de comandos",
	Long: `billingctl opera sobre el mismo store que la API (STORE_DRIVER, DATABASE_URL,
FIRESTORE_PROJECT_ID, ...): importa y exporta el roster de clientes, lanza la
facturación masiva, lista los cobros próximos y emite tokens de acceso.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(*cobra.Command, []string) {
		for _, fn := range app.closeFns {
			fn()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("actor", cliActor, "Actor registrado en historial y facturas")
}

// loadConfig carga configuración y logger (a stderr para no mezclar con la salida de datos).
func loadConfig(*cobra.Command, []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Out: os.Stderr})
	return nil
}

// openServices carga configuración y abre el store.
func openServices(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd, args); err != nil {
		return err
	}
	svc, closeStore, err := bootstrap.New(cmd.Context(), app.cfg, app.log)
	if err != nil {
		return err
	}
	app.svc = svc
	app.closeFns = append(app.closeFns, closeStore)
	return nil
}

func actorFlag(cmd *cobra.Command) string {
	actor, _ := cmd.Flags().GetString("actor")
	return actor
}
