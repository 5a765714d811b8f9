package infra

// pdf.go — invoice receipt generation using go-pdf/fpdf.
// Renders an A5 receipt with the billed user, line item table
// (product name, unit price, quantity, subtotal) and a bold total.
// The output file is saved to storagePath/invoice_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"invoicer/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateInvoicePDF writes a PDF receipt for an invoice and returns the
// absolute path to the generated file. storagePath is created if needed.
func GenerateInvoicePDF(inv *model.Invoice, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("invoice_%s.pdf", inv.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Invoice", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, inv.ID.String(), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 8)
	if inv.User != nil {
		pdf.CellFormat(contentW, 5, "Billed to: "+inv.User.FullName, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, inv.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	// ── Items header ─────────────────────────────────────────────────────────
	col1 := contentW * 0.44 // product name
	col2 := contentW * 0.20 // unit price
	col3 := contentW * 0.12 // qty
	col4 := contentW * 0.24 // subtotal

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 5, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col4, 5, "Subtotal", "B", 1, "R", false, 0, "")

	// ── Item rows ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, item := range inv.Items {
		name := ""
		unit := ""
		if item.Product != nil {
			name = item.Product.Name
			unit = "$" + item.Product.Price.StringFixed(2)
		}
		if len(name) > 28 {
			name = name[:27] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, unit, "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 5, "$"+item.Subtotal().StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1+col2+col3, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "$"+inv.Total().StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
