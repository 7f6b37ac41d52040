package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
	"github.com/jhoicas/InvoiceFlow-api/pkg/money"
)

func totalsCmd() *cobra.Command {
	var items []string
	var tax string
	cmd := &cobra.Command{
		Use:     "totals",
		Short:   "Calcula subtotal, impuesto y total de una lista de líneas",
		Example: `  invoicectl totals --item 1:2500 --item 1:5000 --tax 0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lines, err := parseItems(items)
			if err != nil {
				return err
			}
			rate, err := decimal.NewFromString(tax)
			if err != nil {
				return fmt.Errorf("--tax: %w", err)
			}
			if !invoicing.ValidTaxRate(rate) {
				return fmt.Errorf("--tax debe estar entre 0 y 100")
			}
			t := invoicing.Compute(lines, rate)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "subtotal  %s\n", money.Format(t.Subtotal))
			fmt.Fprintf(out, "impuesto  %s (%s%%)\n", money.Format(t.TaxAmount), rate.String())
			fmt.Fprintf(out, "total     %s\n", money.Format(t.Total))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&items, "item", nil, "línea cantidad:precio (repetible)")
	cmd.Flags().StringVar(&tax, "tax", "0", "tasa de impuesto en porcentaje")
	return cmd
}

// parseItems convierte "cantidad:precio" en líneas del calculador.
func parseItems(raw []string) ([]invoicing.LineItem, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("indica al menos un --item cantidad:precio")
	}
	items := make([]invoicing.LineItem, 0, len(raw))
	for _, r := range raw {
		qty, price, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf("item %q: se espera cantidad:precio", r)
		}
		q, err := decimal.NewFromString(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("item %q: cantidad: %w", r, err)
		}
		p, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil {
			return nil, fmt.Errorf("item %q: precio: %w", r, err)
		}
		items = append(items, invoicing.LineItem{Quantity: q, UnitPrice: p})
	}
	return items, nil
}
