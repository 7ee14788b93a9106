// Package report は顧客向けの帳票（PDF）を生成する
package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/payment"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
)

// Statement は予約の入金明細書の内容
type Statement struct {
	Reservation *reservation.Reservation
	Package     *tourpackage.Package
	Payments    []*payment.Payment
	Balance     reservation.Balance
	IssuedAt    time.Time
}

var statusLabels = map[reservation.Status]string{
	reservation.StatusDraft:          "Borrador",
	reservation.StatusPendingPayment: "Pendiente de pago",
	reservation.StatusConfirmed:      "Confirmada",
	reservation.StatusInService:      "En servicio",
	reservation.StatusCompleted:      "Completada",
	reservation.StatusCancelled:      "Cancelada",
}

// RenderStatement は入金明細書をPDFで返す
func RenderStatement(s Statement) ([]byte, error) {
	if s.Reservation == nil {
		return nil, errors.New("予約が指定されていません")
	}
	if s.IssuedAt.IsZero() {
		s.IssuedAt = time.Now()
	}
	res := s.Reservation

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Estado de cuenta "+res.Number, false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ESTADO DE CUENTA")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		"Reserva      : " + res.Number,
		"Cliente      : " + res.ClientID,
		"Estado       : " + statusLabel(res.Status),
		"Personas     : " + fmt.Sprintf("%d", res.Headcount),
		"Emitido      : " + s.IssuedAt.Format("2006-01-02 15:04"),
	}
	if s.Package != nil {
		lines = append(lines,
			"Paquete      : "+s.Package.Name,
			"Destino      : "+s.Package.Destination,
			fmt.Sprintf("Duración     : %d días", s.Package.DurationDays),
		)
	}
	for _, l := range lines {
		pdf.Cell(0, 7, tr(l))
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(40, 8, "Fecha", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, tr("Método"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(75, 8, "Notas", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Monto", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if len(s.Payments) == 0 {
		pdf.CellFormat(190, 8, "Sin pagos registrados", "1", 1, "C", false, 0, "")
	}
	for _, p := range s.Payments {
		pdf.CellFormat(40, 7, p.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, string(p.Method), "1", 0, "L", false, 0, "")
		pdf.CellFormat(75, 7, tr(truncate(p.Notes, 40)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, money(p.Amount.StringFixed(2)), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	totals := [][2]string{
		{"Total", s.Balance.Total.StringFixed(2)},
		{"Pagado", s.Balance.Paid.StringFixed(2)},
		{"Saldo", s.Balance.Outstanding().StringFixed(2)},
	}
	for _, t := range totals {
		pdf.CellFormat(150, 8, t[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, money(t[1]), "", 1, "R", false, 0, "")
	}

	if res.Status == reservation.StatusPendingPayment {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, tr("La reserva se confirma al registrar al menos el 30% del total."), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF生成に失敗: %w", err)
	}
	return buf.Bytes(), nil
}

func statusLabel(s reservation.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func money(v string) string {
	return "S/ " + v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
