package groupticket

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/money"
	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
)

// Manifest формирует PDF со списком пассажиров партии для передачи агенту
func (s *Service) Manifest(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	batch, passengers, err := s.loadWithPassengers(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, err := buildManifestPDF(batch, passengers)
	if err != nil {
		s.logger.Error("Failed to render manifest", map[string]interface{}{
			"group_ticket_id": id,
			"error":           err.Error(),
		})
		return nil, "", fmt.Errorf("failed to render manifest: %w", err)
	}

	s.logger.Info("Manifest generated", map[string]interface{}{
		"group_ticket_id": id,
		"passengers":      len(passengers),
	})

	filename := fmt.Sprintf("manifest_%s_%s.pdf",
		batch.DepartureDate.Format(domain.DateLayout), safeFilenamePart(batch.GroupName))

	return data, filename, nil
}

func buildManifestPDF(b *domain.GroupTicketBatch, passengers []*domain.Passenger) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Passenger manifest", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "PASSENGER MANIFEST")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		"Group    : " + b.GroupName,
		"Agent    : " + orDash(b.AgentName),
		"Dates    : " + b.DepartureDate.Format(domain.DateLayout) + " - " + b.ReturnDate.Format(domain.DateLayout),
		"Outbound : " + legLine(b.Outbound),
		"Return   : " + legLine(b.Return),
		fmt.Sprintf("Tickets  : %d total, %d assigned, %d remaining",
			b.TicketCount, b.AssignedCount(), b.RemainingTickets),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	widths := []float64{10, 62, 32, 28, 30, 28}
	headers := []string{"#", "Name", "Passport", "PNR", "Phone", "Status"}

	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for i, p := range passengers {
		row := []string{
			fmt.Sprintf("%d", i+1),
			p.FullName,
			p.PassportNumber,
			orDash(p.PNR),
			p.Phone,
			string(p.Status),
		}
		for j, cell := range row {
			pdf.CellFormat(widths[j], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(passengers) == 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "No passengers assigned yet.")
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Average cost per ticket: "+money.FormatCurrency(float64(b.AverageCostPerTicket)))
	pdf.Ln(6)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func legLine(l domain.FlightLeg) string {
	parts := make([]string, 0, 4)
	for _, v := range []string{l.Airline, l.FlightNumber, l.Time, l.Route} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " / ")
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func safeFilenamePart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "group"
	}
	return b.String()
}
