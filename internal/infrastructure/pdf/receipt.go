// Package pdf genera el comprobante de un pedido para recoger.
//
// Layout de la página A5:
//
//	┌──────────────────────────────────────────┐
//	│  Punto de venta        │  Pedido #12345  │
//	│  ──────────────────────────────────────  │
//	│  Cliente / pago / estado / hora estimada │
//	│  ──────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Total │
//	│  ──────────────────────────────────────  │
//	│  TOTAL                        $ 12.500   │
//	│  QR con el ID del pedido                 │
//	└──────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

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
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sabanapos/pedidos-api/internal/application/ordering"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

var _ ordering.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ── Paleta ───────────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var paymentLabels = map[string]string{
	entity.PaymentCard:    "Tarjeta",
	entity.PaymentBalance: "Saldo",
	entity.PaymentCash:    "Efectivo",
}

// ReceiptGenerator comprobante en PDF con Maroto v2. Las horas se muestran en loc.
type ReceiptGenerator struct {
	loc     *time.Location
	printer *message.Printer
}

// NewReceiptGenerator construye el generador. loc nil = America/Bogota (o UTC si no está la base de zonas).
func NewReceiptGenerator(loc *time.Location) *ReceiptGenerator {
	if loc == nil {
		var err error
		if loc, err = time.LoadLocation("America/Bogota"); err != nil {
			loc = time.UTC
		}
	}
	return &ReceiptGenerator{loc: loc, printer: message.NewPrinter(language.Spanish)}
}

// Render genera el PDF del pedido y devuelve sus bytes.
func (g *ReceiptGenerator) Render(o *entity.Order) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Pedido #%d", o.OrderNumber), true).
		WithAuthor(o.LocationName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.detailsRow(o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableRows(o.Products)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(o.TotalAmount))
	m.AddRows(qrRow(o.ID))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ────────────────────────────────────────────────────────────────

func (g *ReceiptGenerator) headerRow(o *entity.Order) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(o.LocationName, props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1}),
			text.New("Comprobante de pedido", props.Text{Size: 8, Top: 8, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("Pedido #%d", o.OrderNumber), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New(o.CreatedAt.In(g.loc).Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func (g *ReceiptGenerator) detailsRow(o *entity.Order) core.Row {
	pay := paymentLabels[o.PaymentMethod]
	if pay == "" {
		pay = o.PaymentMethod
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("Cliente: "+o.UserEmail, props.Text{Size: 8, Top: 1}),
			text.New(fmt.Sprintf("Pago: %s   |   Estado: %s", pay, o.Status), props.Text{Size: 8, Top: 6}),
			text.New("Recoger desde: "+o.EstimatedPickupTime.In(g.loc).Format("15:04"), props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 11, Color: colorPrimary,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *ReceiptGenerator) tableRows(lines []entity.OrderLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			col.New(2).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(g.money(l.UnitPrice*int64(l.Quantity)), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func (g *ReceiptGenerator) totalRow(total int64) core.Row {
	return row.New(10).Add(
		col.New(7).Add(text.New("TOTAL", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(5).Add(text.New(g.money(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

func qrRow(orderID string) core.Row {
	return row.New(36).Add(
		col.New(4).Add(code.NewQr(orderID, props.Rect{Percent: 90, Center: true})),
		col.New(8).Add(text.New("Presenta este código al recoger tu pedido.", props.Text{
			Size: 8, Top: 12, Left: 3, Color: colorGray,
		})),
	)
}

// money formato en pesos colombianos: 25000 → "$ 25.000".
func (g *ReceiptGenerator) money(v int64) string {
	return g.printer.Sprintf("$ %d", v)
}
