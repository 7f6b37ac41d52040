package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/recurring"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Facturación recurrente",
	}
	cmd.AddCommand(recurringRunCmd())
	return cmd
}

func recurringRunCmd() *cobra.Command {
	var companyID, nowFlag string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Genera las facturas de las reglas vencidas (todas las empresas por defecto)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := parseNow(nowFlag)
			if err != nil {
				return err
			}
			e, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			gen := recurring.NewGenerator(e.repos.Tx, e.repos.Recurring, e.repos.Clients,
				recurring.WithLogger(e.log.Component("recurring")))
			res, err := gen.GenerateDue(cmd.Context(), companyID, now)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fecha %s: %d reglas evaluadas, %d facturas generadas, %d omitidas, %d con error\n",
				res.RunDate, res.Evaluated, len(res.Generated), res.Skipped, len(res.Failed))
			for _, g := range res.Generated {
				fmt.Fprintf(out, "  #%d %s %s (próxima %s)\n", g.InvoiceNumber, g.ClientName, g.Amount.StringFixed(2), g.NextDate)
			}
			if len(res.Failed) > 0 {
				return fmt.Errorf("%d reglas fallaron: %v", len(res.Failed), res.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&companyID, "company", "", "limitar a una empresa")
	cmd.Flags().StringVar(&nowFlag, "now", "", "fecha de corrida YYYY-MM-DD (por defecto hoy)")
	return cmd
}

// parseNow interpreta --now; vacío = ahora.
func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := recurrence.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now: se espera YYYY-MM-DD: %w", err)
	}
	return t, nil
}
