// Package pdf genera el PDF de una factura con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + contacto   │  N° Factura + Fechas + Estado │
//	│  FACTURAR A: nombre / email / dirección                      │
//	│  TABLA: Descripción | Cant | P.Unit | Total                  │
//	│  TOTALES: Subtotal / Impuesto / Total / Pagado / Saldo       │
//	│  PAGOS (si hay)                                              │
//	│  NOTAS + QR del enlace compartido (si hay)                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
	"github.com/jhoicas/InvoiceFlow-api/pkg/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 37, Green: 99, Blue: 235}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorGreen   = &props.Color{Red: 22, Green: 163, Blue: 74}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	fmt *money.Formatter
}

// NewMarotoPDFGenerator construye el generador. f nil usa el formato por defecto ($1,234.56).
func NewMarotoPDFGenerator(f *money.Formatter) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{fmt: f}
}

func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	if g.fmt == nil {
		return money.Format(d)
	}
	return g.fmt.Format(d)
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, doc appbilling.InvoiceDocument) ([]byte, error) {
	inv, company := doc.Invoice, doc.Company
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Invoice #%d", inv.InvoiceNumber), true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(inv, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(billToRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(doc.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(inv))

	if len(doc.Payments) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(g.paymentRows(doc.Payments)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(inv, doc.Link)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(inv *entity.Invoice, company *entity.Company) core.Row {
	due := appbilling.FormatDate(inv.DueDate)
	return row.New(24).Add(
		col.New(7).Add(
			text.New(nonEmpty(company.Name, "InvoiceFlow"), props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(company.Address, ""), props.Text{Size: 8, Top: 9, Color: colorGray}),
			text.New(joinNonEmpty(company.Email, company.Phone), props.Text{Size: 8, Top: 14, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("#"+strconv.FormatInt(inv.InvoiceNumber, 10), props.Text{
				Style: fontstyle.Bold, Size: 13, Align: align.Right, Top: 6,
			}),
			text.New("Date: "+inv.CreatedAt.Format(recurrence.DateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Due: "+nonEmpty(due, "—"), props.Text{
				Size: 8, Align: align.Right, Top: 17, Color: colorGray,
			}),
			text.New(statusLabel(inv.Status), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 21, Color: statusColor(inv.Status),
			}),
		),
	)
}

func billToRow(inv *entity.Invoice) core.Row {
	return row.New(18).Add(
		col.New(12).Add(
			text.New("BILL TO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(inv.ClientName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(joinNonEmpty(inv.ClientEmail, inv.ClientAddress), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Description", 6, align.Left),
		h("Qty", 2, align.Center),
		h("Unit price", 2, align.Right),
		h("Amount", 2, align.Right),
	)
}

func (g *MarotoPDFGenerator) itemRows(items []*entity.InvoiceItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(7).Add(
			col.New(6).Add(text.New(nonEmpty(it.Description, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(it.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.money(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(invoicing.LineTotal(it.LineItem())), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		))
	}
	return rows
}

func (g *MarotoPDFGenerator) totalsRow(inv *entity.Invoice) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grand := func(s string, top float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: top,
		})
	}

	return row.New(30).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("Tax ("+inv.TaxRate.String()+"%):", 6),
			label("Total:", 11),
			label("Paid:", 17),
			label("Balance due:", 22),
		),
		col.New(3).Add(
			value(g.money(inv.Subtotal), 1),
			value(g.money(inv.TaxAmount), 6),
			grand(g.money(inv.Amount), 11),
			value(g.money(inv.AmountPaid), 17),
			grand(g.money(inv.Outstanding()), 22),
		),
	)
}

func (g *MarotoPDFGenerator) paymentRows(payments []*entity.Payment) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("PAYMENTS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	for _, p := range payments {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(p.Date.Format(recurrence.DateLayout), props.Text{Size: 8, Color: colorGray})),
			col.New(3).Add(text.New(p.Method, props.Text{Size: 8, Color: colorGray})),
			col.New(3).Add(text.New(p.Reference, props.Text{Size: 8, Color: colorGray})),
			col.New(3).Add(text.New(g.money(p.Amount), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

func footerRows(inv *entity.Invoice, link string) []core.Row {
	var rows []core.Row
	if inv.Notes != "" {
		rows = append(rows, row.New(12).Add(col.New(12).Add(
			text.New("NOTES", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(inv.Notes, props.Text{Size: 8, Top: 6, Color: colorGray}),
		)))
	}
	if link != "" {
		rows = append(rows, row.New(40).Add(
			col.New(3).Add(code.NewQr(link, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("View this invoice online:", props.Text{Size: 8, Top: 6, Left: 3, Color: colorGray}),
				text.New(link, props.Text{Size: 8, Top: 12, Left: 3, Color: colorPrimary}),
			),
		))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New("Thank you for your business.", props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 2}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusLabel(s invoicing.Status) string {
	switch s {
	case invoicing.StatusPaid:
		return "PAID"
	case invoicing.StatusPartial:
		return "PARTIALLY PAID"
	case invoicing.StatusOverdue:
		return "OVERDUE"
	case invoicing.StatusDraft:
		return "DRAFT"
	default:
		return "PENDING"
	}
}

func statusColor(s invoicing.Status) *props.Color {
	if s == invoicing.StatusPaid {
		return colorGreen
	}
	return colorGray
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func joinNonEmpty(a, b string) string {
	switch {
	case a != "" && b != "":
		return a + "   |   " + b
	case a != "":
		return a
	default:
		return b
	}
}
