// Package export renders order snapshots into spreadsheet-compatible files.
// It is pure: no storage, no network, just formatting over already-loaded data.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"shekinah-backend/internal/domain"
)

// ErrNoOrders is returned instead of producing an empty file.
var ErrNoOrders = errors.New("no orders to export")

const dateLayout = "02/01/2006 15:04"

// reportTemplate is an HTML table with Excel vendor hints; spreadsheet
// applications open it as a styled sheet when saved with an .xls extension.
var reportTemplate = template.Must(template.New("report").Parse(`<html xmlns:x="urn:schemas-microsoft-com:office:excel">
<head>
<meta http-equiv="content-type" content="text/html; charset=UTF-8"/>
<style>
  body { font-family: Arial, sans-serif; }
  table { border-collapse: collapse; width: 100%; }
  th { background-color: #1e3a8a; color: white; border: 1px solid #000000; padding: 10px; text-align: center; font-weight: bold; font-size: 14px; }
  td { border: 1px solid #cccccc; padding: 8px; text-align: left; vertical-align: middle; font-size: 12px; }
  .text-center { text-align: center; }
  .money { text-align: right; font-weight: bold; color: #059669; }
  .status-paid { background-color: #dcfce7; color: #166534; font-weight: bold; text-align: center; }
  .status-pending { background-color: #fef9c3; color: #854d0e; font-weight: bold; text-align: center; }
  .status-cancelled { background-color: #f3f4f6; color: #374151; text-align: center; text-decoration: line-through; }
</style>
</head>
<body>
<h2 style="text-align: center; color: #1e3a8a;">Reporte de Ventas - Shekinah Motor's</h2>
<br/>
<table border="1">
<thead>
<tr>
  <th>ID Pedido</th>
  <th>Fecha</th>
  <th>Cliente</th>
  <th>Dirección</th>
  <th>Productos</th>
  <th>Método Pago</th>
  <th>Estado</th>
  <th>Total (S/)</th>
</tr>
</thead>
<tbody>
{{range .}}<tr>
  <td class="text-center" style="mso-number-format:'@'">{{.ID}}</td>
  <td class="text-center">{{.Date}}</td>
  <td>{{.Customer}}</td>
  <td>{{.Address}}</td>
  <td>{{.Items}}</td>
  <td class="text-center">{{.Payment}}</td>
  <td class="{{.StatusClass}}">{{.StatusText}}</td>
  <td class="money">{{.Total}}</td>
</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type reportRow struct {
	ID          string
	Date        string
	Customer    string
	Address     string
	Items       template.HTML
	Payment     string
	StatusClass string
	StatusText  string
	Total       string
}

// ExcelReport renders the full order history as Excel-flavored HTML markup
// with styled status cells.
func ExcelReport(orders []domain.Order) ([]byte, error) {
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}

	rows := make([]reportRow, 0, len(orders))
	for _, o := range orders {
		class, text := statusCell(o.Status)
		rows = append(rows, reportRow{
			ID:          o.ID,
			Date:        o.Date.Format(dateLayout),
			Customer:    o.CustomerName,
			Address:     o.CustomerAddress,
			Items:       itemsCell(o.Items),
			Payment:     o.PaymentMethod,
			StatusClass: class,
			StatusText:  text,
			Total:       o.Total.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, rows); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WeeklyCSV renders the orders of the last 7 days as comma-separated rows.
func WeeklyCSV(orders []domain.Order, now time.Time) ([]byte, error) {
	cutoff := now.AddDate(0, 0, -7)
	var recent []domain.Order
	for _, o := range orders {
		if !o.Date.Before(cutoff) {
			recent = append(recent, o)
		}
	}
	if len(recent) == 0 {
		return nil, ErrNoOrders
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ID Pedido", "Fecha", "Cliente", "Dirección", "Productos", "Total (S/)", "Método Pago", "Estado"}); err != nil {
		return nil, err
	}
	for _, o := range recent {
		items := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			items = append(items, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
		}
		record := []string{
			o.ID,
			o.Date.Format(dateLayout),
			o.CustomerName,
			o.CustomerAddress,
			strings.Join(items, " | "),
			o.Total.StringFixed(2),
			o.PaymentMethod,
			string(o.Status),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReportFilename embeds the current date into the full-report filename.
func ReportFilename(now time.Time) string {
	return fmt.Sprintf("Shekinah_Reporte_%s.xls", now.Format("2006-01-02"))
}

// WeeklyFilename embeds the current date into the weekly CSV filename.
func WeeklyFilename(now time.Time) string {
	return fmt.Sprintf("Reporte_Semanal_Shekinah_%s.csv", now.Format("2006-01-02"))
}

// itemsCell joins item lines with in-cell line breaks, escaping the
// user-supplied names individually.
func itemsCell(items []domain.OrderItem) template.HTML {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		line := fmt.Sprintf("• %dx %s", item.Quantity, template.HTMLEscapeString(item.Name))
		lines = append(lines, line)
	}
	return template.HTML(strings.Join(lines, "<br style='mso-data-placement:same-cell;' />"))
}

func statusCell(status domain.OrderStatus) (class, text string) {
	switch status {
	case domain.StatusPaid:
		return "status-paid", "PAGADO"
	case domain.StatusShipped:
		return "status-paid", "ENVIADO"
	case domain.StatusCancelled:
		return "status-cancelled", "CANCELADO"
	default:
		return "status-pending", "PENDIENTE"
	}
}
