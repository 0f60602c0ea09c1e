/*
Package paystub renders paystub PDFs for approved payroll records.

PURPOSE:
  Implements payrun.StubGenerator. One PDF per employee per run, written
  under a configurable output directory. Generation is a downstream
  side effect of approval: a rendering failure is reported on the run,
  it never rolls the approval back.

USAGE:
  gen := paystub.NewPDFGenerator("./data/stubs", source)
  engine := payrun.NewEngine(st, rules, ledger, source,
      payrun.WithStubGenerator(gen))
*/
package paystub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/employees"
	"github.com/maplepay/payroll-engine/payrun"
)

// PDFGenerator writes one A4 paystub PDF per record.
type PDFGenerator struct {
	outDir string
	source employees.Source
}

var _ payrun.StubGenerator = (*PDFGenerator)(nil)

func NewPDFGenerator(outDir string, source employees.Source) *PDFGenerator {
	return &PDFGenerator{outDir: outDir, source: source}
}

// Generate renders the paystub for one record to
// <outDir>/<pay date>/<employee id>.pdf.
func (g *PDFGenerator) Generate(ctx context.Context, run *payrun.PayrollRun, rec payrun.PayrollRecord) error {
	name := rec.EmployeeID
	if snap, err := g.source.Snapshot(ctx, rec.EmployeeID, run.PayDate); err == nil && snap.Name != "" {
		name = snap.Name
	}

	dir := filepath.Join(g.outDir, run.PayDate.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create stub directory: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Pay Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", name, rec.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Pay period: %s to %s",
		run.PeriodStart.Format("2006-01-02"), run.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Pay date: %s", run.PayDate.Format("2006-01-02")))
	pdf.Ln(12)

	res := rec.Result
	g.section(pdf, "Earnings", []line{
		{"Regular", res.RegularEarnings},
		{"Overtime", res.OvertimeEarnings},
		{"Statutory holiday pay", res.HolidayPay},
		{"Holiday premium", res.HolidayPremium},
		{"Vacation pay", res.VacationPaid},
		{"Other earnings", res.OtherEarnings},
		{"Gross pay", res.Gross},
	})
	g.section(pdf, "Deductions", []line{
		{"Pre-tax deductions", res.PreTaxDeductions},
		{"CPP", res.CPPBase},
		{"CPP2", res.CPP2},
		{"EI", res.EI},
		{"Federal income tax", res.FederalTax},
		{"Provincial income tax", res.ProvincialTax},
		{"Total deductions", res.TotalDeductions},
	})
	g.section(pdf, "Net pay", []line{
		{"Net pay", res.NetPay},
	})
	g.section(pdf, "Year to date", []line{
		{"Gross", res.NewYtd.Gross},
		{"CPP", res.NewYtd.CPPBase},
		{"CPP2", res.NewYtd.CPP2},
		{"EI", res.NewYtd.EI},
		{"Federal income tax", res.NewYtd.FederalTax},
		{"Provincial income tax", res.NewYtd.ProvincialTax},
	})

	path := filepath.Join(dir, rec.EmployeeID+".pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write paystub %s: %w", path, err)
	}
	return nil
}

type line struct {
	label  string
	amount decimal.Decimal
}

func (g *PDFGenerator) section(pdf *gofpdf.Fpdf, title string, lines []line) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range lines {
		if l.amount.IsZero() && l.label != "Net pay" && l.label != "Gross pay" && l.label != "Total deductions" {
			continue
		}
		pdf.Cell(120, 6, l.label)
		pdf.CellFormat(40, 6, "$"+l.amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}
	pdf.Ln(4)
}
