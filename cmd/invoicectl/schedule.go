package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Calculadora de fechas de facturación recurrente",
	}
	cmd.AddCommand(scheduleNextCmd())
	return cmd
}

// maxScheduleCount tope de --count.
const maxScheduleCount = 1000

func scheduleNextCmd() *cobra.Command {
	var start, frequency, nowFlag string
	var count int
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Muestra la próxima fecha de generación",
		Example: `  invoicectl schedule next --start 2024-01-31 --frequency monthly --now 2024-01-31
  invoicectl schedule next --start 2024-01-01 --frequency quarterly --count 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dates, unknown, err := nextDates(start, frequency, nowFlag, count)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if unknown {
				fmt.Fprintf(out, "frecuencia %q desconocida: se usa mensual\n", frequency)
			}
			for _, d := range dates {
				fmt.Fprintln(out, d)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "fecha de inicio YYYY-MM-DD")
	cmd.Flags().StringVar(&frequency, "frequency", string(recurrence.Monthly), "daily | weekly | monthly | quarterly | yearly")
	cmd.Flags().StringVar(&nowFlag, "now", "", "fecha de referencia YYYY-MM-DD (por defecto hoy)")
	cmd.Flags().IntVar(&count, "count", 1, fmt.Sprintf("cuántas fechas sucesivas mostrar (máximo %d)", maxScheduleCount))
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

// nextDates encadena NextInvoiceDate count veces usando cada resultado como nueva fecha de referencia.
func nextDates(start, frequency, nowFlag string, count int) ([]string, bool, error) {
	s, err := recurrence.ParseDate(start)
	if err != nil {
		return nil, false, fmt.Errorf("--start: se espera YYYY-MM-DD: %w", err)
	}
	now, err := parseNow(nowFlag)
	if err != nil {
		return nil, false, err
	}
	if count < 1 {
		count = 1
	}
	if count > maxScheduleCount {
		return nil, false, fmt.Errorf("--count: máximo %d fechas", maxScheduleCount)
	}
	freq, ok := recurrence.ParseFrequency(frequency)
	dates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		next := recurrence.NextInvoiceDate(s, freq, now)
		dates = append(dates, next.Format(recurrence.DateLayout))
		now = next
	}
	return dates, !ok, nil
}
