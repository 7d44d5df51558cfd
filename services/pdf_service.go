package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/gino-rizzo/ginos-pizza-api/models"
)

// RenderOrderPDF lays out a single-order receipt document. The layout is
// deliberately plain: order header, customer block, item lines, summary.
func RenderOrderPDF(order models.Order) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Order %s", order.OrderNum), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, fmt.Sprintf("Order %s", order.OrderNum))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Ordered: %s", order.TimeOrdered))
	pdf.Ln(6)
	if order.OrderUpdateStatus == models.UpdateStatusChkRecExist {
		pdf.SetTextColor(200, 0, 0)
		pdf.Cell(0, 6, "CUSTOMER UPDATE PENDING")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Customer")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range customerLines(order) {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Items")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.Items {
		line := fmt.Sprintf("%s x %s", item.Qty, item.Name)
		if item.Modifier != "" {
			line += fmt.Sprintf(" (%s)", item.Modifier)
		}
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	if len(order.Items) == 0 {
		pdf.Cell(0, 5, "(no items)")
		pdf.Ln(5)
	}

	if order.OrderSummary != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, order.OrderSummary, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render order %s: %w", order.OrderNum, err)
	}
	return buf.Bytes(), nil
}

func customerLines(order models.Order) []string {
	lines := []string{}
	if order.CustomerName != "" {
		lines = append(lines, order.CustomerName)
	}
	if order.Phone != "" || order.Email != "" {
		lines = append(lines, strings.TrimSpace(order.Phone+"  "+order.Email))
	}
	if order.Address != "" {
		lines = append(lines, order.Address)
	}
	cityLine := strings.TrimSpace(strings.Join([]string{order.City, order.State, order.Zip}, " "))
	if cityLine != "" {
		lines = append(lines, cityLine)
	}
	if len(lines) == 0 {
		lines = append(lines, "(walk-in / phone order)")
	}
	return lines
}
