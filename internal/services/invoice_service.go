package services

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"tracker/internal/domain"
	"tracker/internal/repositories"
	"tracker/internal/utils"

	"github.com/hashicorp/go-hclog"
	"github.com/phpdave11/gofpdf"
)

// InvoiceService renders the PDF invoice of a project: every stopped session
// billed at the project's hourly rate, plus an optional tax rate.
type InvoiceService struct {
	Projects repositories.ProjectRepository
	Clients  repositories.ClientRepository
	Tasks    repositories.TaskRepository
	Sessions repositories.SessionRepository
	TaxRates repositories.TaxRateRepository
	Logger   hclog.Logger
	Now      func() time.Time
	Loader   func(ctx context.Context, userID, projectID int64, taxRateID domain.Option[domain.PositiveInteger]) (invoiceData, error)
}

// Invoice is a rendered document ready to be served.
type Invoice struct {
	PDF      []byte
	Filename string
}

type invoiceLine struct {
	Task   string
	Hours  float64
	Amount float64
}

type invoiceData struct {
	ProjectID   int64
	ProjectName string
	ClientName  string
	ClientEmail string
	CountryCode string
	HourlyRate  float64
	Lines       []invoiceLine
	TaxLabel    string
	TaxRate     float64
	IssuedAt    time.Time
}

func (d invoiceData) subtotal() float64 {
	var sum float64
	for _, l := range d.Lines {
		sum += l.Amount
	}
	return roundCents(sum)
}

func (d invoiceData) tax() float64 { return roundCents(d.subtotal() * d.TaxRate) }

func (d invoiceData) total() float64 { return roundCents(d.subtotal() + d.tax()) }

func (s InvoiceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s InvoiceService) Generate(ctx context.Context, requestID string, userID, projectID int64, taxRateID domain.Option[domain.PositiveInteger]) (Invoice, error) {
	load := s.Loader
	if load == nil {
		load = s.load
	}
	data, err := load(ctx, userID, projectID, taxRateID)
	if err != nil {
		return Invoice{}, err
	}
	utils.LogEvent(s.Logger, requestID, "invoice", "generate", "project_id="+strconv.FormatInt(projectID, 10))
	doc, filename, err := buildInvoicePDF(data)
	if err != nil {
		return Invoice{}, domain.Internal("render invoice", err)
	}
	return Invoice{PDF: doc, Filename: filename}, nil
}

func (s InvoiceService) load(ctx context.Context, userID, projectID int64, taxRateID domain.Option[domain.PositiveInteger]) (invoiceData, error) {
	found, err := s.Projects.Find(ctx, userID, projectID)
	if err != nil {
		return invoiceData{}, err
	}
	project, ok := found.Get()
	if !ok {
		return invoiceData{}, domain.NotFound("project")
	}
	foundClient, err := s.Clients.Find(ctx, userID, project.ClientID.Int64())
	if err != nil {
		return invoiceData{}, err
	}
	client, ok := foundClient.Get()
	if !ok {
		return invoiceData{}, domain.NotFound("client")
	}

	data := invoiceData{
		ProjectID:   projectID,
		ProjectName: project.Name.String(),
		ClientName:  client.Name(),
		CountryCode: client.CountryCode.String(),
		HourlyRate:  project.HourlyRate.Float64(),
		IssuedAt:    s.now(),
	}
	if email, ok := client.Email.Get(); ok {
		data.ClientEmail = email.String()
	}
	if id, ok := taxRateID.Get(); ok {
		foundRate, err := s.TaxRates.Find(ctx, userID, id.Int64())
		if err != nil {
			return invoiceData{}, err
		}
		rate, ok := foundRate.Get()
		if !ok {
			return invoiceData{}, domain.NotFound("tax rate")
		}
		data.TaxLabel = rate.Label.String()
		data.TaxRate = rate.Value.Float64()
	}

	tasks, err := s.Tasks.ForProject(ctx, projectID)
	if err != nil {
		return invoiceData{}, err
	}
	sessions, err := s.Sessions.ForProject(ctx, projectID)
	if err != nil {
		return invoiceData{}, err
	}
	worked := make(map[int64]time.Duration, len(tasks))
	for _, ss := range sessions {
		if ss.IsOpen() {
			continue
		}
		worked[ss.TaskID.Int64()] += ss.Duration(data.IssuedAt)
	}
	for _, t := range tasks {
		d, ok := worked[t.ID.Int64()]
		if !ok {
			continue
		}
		hours := math.Round(d.Hours()*100) / 100
		data.Lines = append(data.Lines, invoiceLine{
			Task:   t.Name.String(),
			Hours:  hours,
			Amount: roundCents(hours * data.HourlyRate),
		})
	}
	return data, nil
}

func buildInvoicePDF(d invoiceData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	number := invoiceNumber(d)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice no : "+number)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date       : "+d.IssuedAt.Format("2006-01-02"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Bill to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, safe(d.ClientName, "-")+" ("+safe(d.CountryCode, "-")+")")
	pdf.Ln(7)
	if d.ClientEmail != "" {
		pdf.Cell(0, 7, d.ClientEmail)
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Project: "+safe(d.ProjectName, "-"))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(100, 7, "Task", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Hours", "B", 0, "R", false, 0, "")
	pdf.CellFormat(50, 7, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if len(d.Lines) == 0 {
		pdf.CellFormat(180, 7, "No time logged.", "", 1, "L", false, 0, "")
	}
	for _, l := range d.Lines {
		pdf.CellFormat(100, 7, l.Task, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, strconv.FormatFloat(l.Hours, 'f', 2, 64), "", 0, "R", false, 0, "")
		pdf.CellFormat(50, 7, formatAmount(l.Amount), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.Cell(0, 6, "Hourly rate: "+formatAmount(d.HourlyRate))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Subtotal: "+formatAmount(d.subtotal()))
	pdf.Ln(6)
	if d.TaxLabel != "" {
		pdf.Cell(0, 6, fmt.Sprintf("%s (%s%%): %s", d.TaxLabel, strconv.FormatFloat(d.TaxRate*100, 'f', -1, 64), formatAmount(d.tax())))
		pdf.Ln(6)
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+formatAmount(d.total()))
	pdf.Ln(8)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("INVOICE_%s_%s.pdf", number, safeFilenamePart(d.ProjectName))
	return buf.Bytes(), filename, nil
}

func invoiceNumber(d invoiceData) string {
	return fmt.Sprintf("%d-%s", d.ProjectID, d.IssuedAt.Format("20060102"))
}

func roundCents(v float64) float64 { return math.Round(v*100) / 100 }

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

// formatAmount renders v with two decimals and thousands separators.
func formatAmount(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := strconv.FormatInt(cents/100, 10)
	var out []byte
	for i := 0; i < len(whole); i++ {
		out = append(out, whole[i])
		pos := len(whole) - i - 1
		if pos > 0 && pos%3 == 0 {
			out = append(out, ',')
		}
	}
	s := fmt.Sprintf("%s.%02d", out, cents%100)
	if neg {
		return "-" + s
	}
	return s
}
