package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/diewo77/go-workhours/internal/events"
	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/spf13/cobra"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Preview, close or export a month from the command line",
	Example: `  # Show what October 2025 would invoice
  workhours invoice preview --month 2025-10

  # Close it as user 1
  workhours invoice close --month 2025-10 --actor 1

  # Write the CSV with Japanese headers
  workhours invoice export --month 2025-10 --lang ja --out oct.csv`,
}

var invoicePreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the month's aggregated hours as JSON",
	RunE:  runInvoicePreview,
}

var invoiceCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "Persist the month as a numbered invoice",
	RunE:  runInvoiceClose,
}

var invoiceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the month as CSV",
	RunE:  runInvoiceExport,
}

func init() {
	invoiceCmd.PersistentFlags().String("month", "", "month to process, YYYY-MM")
	_ = invoiceCmd.MarkPersistentFlagRequired("month")
	invoiceCloseCmd.Flags().Uint("actor", 0, "user id recorded as the closer")
	invoiceExportCmd.Flags().String("lang", "", "header language (defaults to DEFAULT_LANG)")
	invoiceExportCmd.Flags().StringP("out", "o", "", "output file (defaults to the suggested filename)")

	invoiceCmd.AddCommand(invoicePreviewCmd, invoiceCloseCmd, invoiceExportCmd)
}

// withServices opens the database and runs fn against a wired service graph.
func withServices(publish bool, fn func(*Services) error) error {
	conn, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(conn)

	var publisher events.Publisher = events.Nop{}
	if publish {
		if publisher, err = newPublisher(); err != nil {
			return fmt.Errorf("connect to broker: %w", err)
		}
		defer publisher.Close()
	}
	return fn(NewServices(conn, cfg, publisher, func(uint) {}))
}

func runInvoicePreview(cmd *cobra.Command, _ []string) error {
	month, _ := cmd.Flags().GetString("month")
	return withServices(false, func(s *Services) error {
		preview, err := s.Aggregator.Preview(cmd.Context(), month)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(preview)
	})
}

func runInvoiceClose(cmd *cobra.Command, _ []string) error {
	month, _ := cmd.Flags().GetString("month")
	actor, _ := cmd.Flags().GetUint("actor")
	return withServices(true, func(s *Services) error {
		inv, err := s.Closer.Close(cmd.Context(), month, actor)
		if err != nil {
			return err
		}
		log := logger.WithComponent("invoice")
		log.Info().
			Str(logger.FieldInvoiceNo, inv.InvoiceNumber).
			Str(logger.FieldMonth, month).
			Msg("month closed")
		fmt.Fprintln(cmd.OutOrStdout(), inv.InvoiceNumber)
		return nil
	})
}

func runInvoiceExport(cmd *cobra.Command, _ []string) error {
	month, _ := cmd.Flags().GetString("month")
	lang, _ := cmd.Flags().GetString("lang")
	out, _ := cmd.Flags().GetString("out")
	if lang == "" {
		lang = cfg.Invoice.DefaultLang
	}
	return withServices(false, func(s *Services) error {
		export, err := s.Exporter.ExportCSV(cmd.Context(), month, lang)
		if err != nil {
			return err
		}
		if out == "-" {
			_, err = cmd.OutOrStdout().Write(export.Body)
			return err
		}
		if out == "" {
			out = export.Filename
		}
		if err := os.WriteFile(out, export.Body, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	})
}
