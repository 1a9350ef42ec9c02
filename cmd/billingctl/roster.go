package main

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jhoicas/kitbilling/internal/infrastructure/roster"
)

var importCmd = &cobra.Command{
	Use:   "import [archivo.csv]",
	Short: "Importar clientes desde un roster CSV",
	Long: `Da de alta cada fila del CSV como cliente nuevo. Las filas inválidas se
reportan y no detienen la importación. La columna id se ignora.`,
	Example: `  billingctl import clientes.csv
  billingctl import export_excel.csv --latin1 --comma ';'`,
	Args:    cobra.ExactArgs(1),
	PreRunE: openServices,
	RunE:    runImport,
}

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Exportar el roster de clientes a CSV",
	Example: `  billingctl export -o clientes.csv`,
	Args:    cobra.NoArgs,
	PreRunE: openServices,
	RunE:    runExport,
}

func init() {
	rootCmd.AddCommand(importCmd, exportCmd)

	importCmd.Flags().Bool("latin1", false, "El archivo viene en ISO-8859-1 (Excel en Windows)")
	importCmd.Flags().String("comma", ",", "Separador de columnas")
	exportCmd.Flags().StringP("output", "o", "", "Archivo de salida (por defecto stdout)")
}

func runImport(cmd *cobra.Command, args []string) error {
	log := app.log.WithComponent("import")

	latin1, _ := cmd.Flags().GetBool("latin1")
	comma, _ := cmd.Flags().GetString("comma")
	if utf8.RuneCountInString(comma) != 1 {
		return fmt.Errorf("--comma debe ser un único carácter")
	}
	sep, _ := utf8.DecodeRuneInString(comma)

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("abrir roster: %w", err)
	}
	defer f.Close()

	codec := &roster.CSVCodec{Latin1: latin1, Comma: sep}
	res, err := app.svc.Roster.WithCodec(codec).Import(cmd.Context(), f, actorFlag(cmd))
	if err != nil {
		return err
	}
	log.Info().Int("imported", res.Imported).Int("failed", res.Failed).Str("file", args[0]).Msg("roster procesado")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "importados: %d, con error: %d\n", res.Imported, res.Failed)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  fila %d: %s\n", e.Row, e.Message)
	}
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("output")
	var w io.Writer = cmd.OutOrStdout()
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("crear archivo: %w", err)
		}
		defer f.Close()
		w = f
	}

	n, err := app.svc.Roster.Export(cmd.Context(), w)
	if err != nil {
		return err
	}
	app.log.Info().Int("clients", n).Str("output", path).Msg("roster exportado")
	return nil
}
