package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/jhoicas/kitbilling/internal/application/dto"
	domainbilling "github.com/jhoicas/kitbilling/internal/domain/billing"
	"github.com/jhoicas/kitbilling/pkg/jwt"
)

var dueCmd = &cobra.Command{
	Use:   "due [today|week|month]",
	Short: "Listar clientes con cobro próximo",
	Example: `  billingctl due week
  billingctl due today --ids | xargs billingctl batch`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domainbilling.DueToday), string(domainbilling.DueThisWeek), string(domainbilling.DueThisMonth)},
	PreRunE:   openServices,
	RunE:      runDue,
}

var batchCmd = &cobra.Command{
	Use:   "batch [clientId...]",
	Short: "Facturación masiva de abonos",
	Long: `Crea la factura de abono de cada cliente y genera su PDF. Con --due se
facturan todos los clientes de la ventana indicada. Un fallo en un cliente
no detiene el lote.`,
	Example: `  billingctl batch 3f1c... 9a2b...
  billingctl batch --due today`,
	PreRunE: openServices,
	RunE:    runBatch,
}

var tokenCmd = &cobra.Command{
	Use:     "token [userId]",
	Short:   "Emitir un token JWT para la API",
	Example: `  billingctl token maria --role operator`,
	Args:    cobra.ExactArgs(1),
	PreRunE: loadConfig,
	RunE:    runToken,
}

func init() {
	rootCmd.AddCommand(dueCmd, batchCmd, tokenCmd)

	dueCmd.Flags().Bool("ids", false, "Imprimir solo los IDs")
	batchCmd.Flags().String("due", "", "Facturar la ventana today|week|month en lugar de IDs explícitos")
	tokenCmd.Flags().String("role", jwt.RoleOperator, "admin | operator | viewer")
}

func runDue(cmd *cobra.Command, args []string) error {
	due, err := app.svc.Clients.Due(cmd.Context(), domainbilling.DueWindow(args[0]))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if idsOnly, _ := cmd.Flags().GetBool("ids"); idsOnly {
		for _, c := range due {
			fmt.Fprintln(out, c.ID)
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLIENTE\tPRÓXIMO COBRO\tDÍAS\tMONTO XOF\tPAGO")
	for _, c := range due {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.0f\t%s\n",
			c.ID, c.ClientName, c.NextBillingDate, c.DaysUntilBilling, c.BillingAmount.Amount, c.PaymentStatus)
	}
	return tw.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := app.log.WithComponent("batch")
	ids := args
	if window, _ := cmd.Flags().GetString("due"); window != "" {
		due, err := app.svc.Clients.Due(cmd.Context(), domainbilling.DueWindow(window))
		if err != nil {
			return err
		}
		ids = append(ids, lo.Map(due, func(c *dto.ClientResponse, _ int) string { return c.ID })...)
	}
	if len(ids) == 0 {
		return errors.New("no hay clientes para facturar: indique IDs o --due")
	}

	res, err := app.svc.Invoices.BatchGenerate(cmd.Context(), ids, actorFlag(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, o := range res.Outcomes {
		if o.Error != "" {
			fmt.Fprintf(out, "ERROR  %s  %s\n", o.ClientID, o.Error)
			continue
		}
		fmt.Fprintf(out, "OK     %s  %s\n", o.ClientID, o.InvoiceNumber)
	}
	fmt.Fprintf(out, "facturados: %d, con error: %d\n", res.Succeeded, res.Failed)
	log.Info().Int("succeeded", res.Succeeded).Int("failed", res.Failed).Msg("lote finalizado")
	if res.Failed > 0 && res.Succeeded == 0 {
		return fmt.Errorf("ningún cliente pudo facturarse")
	}
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	role, _ := cmd.Flags().GetString("role")
	if !lo.Contains([]string{jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleViewer}, role) {
		return fmt.Errorf("rol desconocido: %q", role)
	}
	tok, err := jwt.Generate(app.cfg.JWT.Secret, args[0], role, app.cfg.JWT.Issuer, app.cfg.JWT.Expiration)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
