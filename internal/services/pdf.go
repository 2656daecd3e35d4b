package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"eventflow/internal/models"
)

// PDFService renders printable ticket stubs
type PDFService struct {
	clock Clock
}

// NewPDFService creates a new PDF service
func NewPDFService(clock Clock) *PDFService {
	if clock == nil {
		clock = time.Now
	}
	return &PDFService{clock: clock}
}

// GenerateTicketPDF renders a single page PDF for a ticket. qrURL is printed
// as text; the page carries no image.
func (s *PDFService) GenerateTicketPDF(ticket *models.Ticket, qrURL string) []byte {
	stream := s.formatContentForPDF(s.generateTicketContent(ticket, qrURL))

	objects := []string{
		"<<\n/Type /Catalog\n/Pages 2 0 R\n>>",
		"<<\n/Type /Pages\n/Kids [3 0 R]\n/Count 1\n>>",
		"<<\n/Type /Page\n/Parent 2 0 R\n/MediaBox [0 0 612 792]\n/Contents 4 0 R\n/Resources <<\n/Font <<\n/F1 5 0 R\n/F2 6 0 R\n>>\n>>\n>>",
		fmt.Sprintf("<<\n/Length %d\n>>\nstream\n%s\nendstream", len(stream), stream),
		"<<\n/Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica\n>>",
		"<<\n/Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica-Bold\n>>",
	}

	var buffer bytes.Buffer
	buffer.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buffer.Len()
		fmt.Fprintf(&buffer, "%d 0 obj\n%s\nendobj\n\n", i+1, obj)
	}

	xref := buffer.Len()
	fmt.Fprintf(&buffer, "xref\n0 %d\n", len(objects)+1)
	buffer.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buffer, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buffer, "trailer\n<<\n/Size %d\n/Root 1 0 R\n>>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buffer.Bytes()
}

func (s *PDFService) generateTicketContent(ticket *models.Ticket, qrURL string) string {
	var content strings.Builder

	content.WriteString("EVENT TICKET\n")
	content.WriteString("============\n\n")

	fmt.Fprintf(&content, "Event: %s\n", ticket.EventTitle)
	fmt.Fprintf(&content, "Date: %s at %s\n", ticket.EventDate.Format("Monday, January 2, 2006"), ticket.EventTime)
	fmt.Fprintf(&content, "Venue: %s\n", ticket.Venue)
	if ticket.SeatInfo != "" {
		fmt.Fprintf(&content, "Seat: %s\n", ticket.SeatInfo)
	}
	if ticket.EntryGate != "" {
		fmt.Fprintf(&content, "Entry: %s\n", ticket.EntryGate)
	}
	content.WriteString("\n")

	content.WriteString("ORDER DETAILS\n")
	content.WriteString("-------------\n")
	fmt.Fprintf(&content, "Ticket ID: %s\n", ticket.ID)
	fmt.Fprintf(&content, "Order ID: %s\n", ticket.OrderID)
	fmt.Fprintf(&content, "Type: %s x %d\n", ticket.TicketType, ticket.Quantity)
	fmt.Fprintf(&content, "Total: $%s\n", models.FormatAmount(ticket.Total()))
	fmt.Fprintf(&content, "Purchased: %s\n", ticket.PurchaseDate.Format("January 2, 2006"))
	fmt.Fprintf(&content, "Status: %s\n", ticketStatusDisplay(ticket.Status))
	content.WriteString("\n")

	content.WriteString("IMPORTANT INFORMATION\n")
	content.WriteString("=====================\n")
	content.WriteString("Please present this ticket at the event entrance\n")
	fmt.Fprintf(&content, "QR code: %s\n", qrURL)
	fmt.Fprintf(&content, "Generated on: %s\n", s.clock().Format("January 2, 2006 at 3:04 PM"))

	return content.String()
}

func (s *PDFService) formatContentForPDF(content string) string {
	var stream strings.Builder

	stream.WriteString("BT\n")
	stream.WriteString("50 750 Td\n")

	currentFont := ""
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		font := "/F1 10 Tf"
		if isPDFHeading(line) {
			font = "/F2 14 Tf"
		}
		if font != currentFont {
			stream.WriteString(font + "\n")
			currentFont = font
		}

		fmt.Fprintf(&stream, "(%s) Tj\n", escapePDFString(line))
		if line == "" {
			stream.WriteString("0 -8 Td\n")
		} else {
			stream.WriteString("0 -12 Td\n")
		}
	}

	stream.WriteString("ET")
	return stream.String()
}

func isPDFHeading(line string) bool {
	switch line {
	case "EVENT TICKET", "ORDER DETAILS", "IMPORTANT INFORMATION":
		return true
	}
	return false
}

func ticketStatusDisplay(status models.TicketStatus) string {
	switch status {
	case models.TicketValid:
		return "VALID - Ready to use"
	case models.TicketUsed:
		return "USED - Already scanned"
	case models.TicketExpired:
		return "EXPIRED - No longer valid"
	default:
		return string(status)
	}
}

// escapePDFString escapes special characters for a PDF literal string.
// Only ASCII survives the standard fonts; anything else becomes '?'.
func escapePDFString(str string) string {
	var b strings.Builder
	for _, r := range str {
		switch {
		case r == '\\' || r == '(' || r == ')':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\r':
		case r > 126 || r < 32:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
