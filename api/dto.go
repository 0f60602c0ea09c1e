/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts travel as JSON strings ("1234.56") via decimal's marshaller so
  clients never see float artifacts.

SEE ALSO:
  - handlers.go: Uses these types
  - payrun/types.go: Domain model behind RunDTO/RecordDTO
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/payrun"
	"github.com/maplepay/payroll-engine/statutory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CreateRunRequest asks for the run covering a pay date. Idempotent: the
// existing run is returned when one already covers the date.
type CreateRunRequest struct {
	PayDate string `json:"pay_date"` // ISO date
}

// UpdateRecordRequest carries manual edits for one record. Absent fields
// are left untouched.
type UpdateRecordRequest struct {
	RegularHours       *decimal.Decimal `json:"regular_hours,omitempty"`
	HolidayHoursWorked *decimal.Decimal `json:"holiday_hours_worked,omitempty"`
	OtherEarnings      *decimal.Decimal `json:"other_earnings,omitempty"`
	PreTaxDeductions   *decimal.Decimal `json:"pre_tax_deductions,omitempty"`
	PayVacationLumpSum *bool            `json:"pay_vacation_lump_sum,omitempty"`
}

// RevertRequest controls revert-to-draft behavior for manual edits.
type RevertRequest struct {
	DiscardEdits bool `json:"discard_edits"`
}

// CalculateRequest previews statutory calculations for a pay date without
// creating or touching any run.
type CalculateRequest struct {
	PayDate     string   `json:"pay_date"`               // ISO date
	EmployeeIDs []string `json:"employee_ids,omitempty"` // empty = all eligible
}

// CalculateResponse is the preview result.
type CalculateResponse struct {
	PayDate string      `json:"pay_date"`
	Totals  TotalsDTO   `json:"totals"`
	Results []ResultDTO `json:"results"`
}

// RunDTO represents a payroll run in API responses.
type RunDTO struct {
	ID          string      `json:"id"`
	PayDate     string      `json:"pay_date"`
	PeriodStart string      `json:"period_start"`
	PeriodEnd   string      `json:"period_end"`
	Status      string      `json:"status"`
	Version     int         `json:"version"`
	PaystubNote string      `json:"paystub_note,omitempty"`
	Totals      TotalsDTO   `json:"totals"`
	Records     []RecordDTO `json:"records,omitempty"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
}

// RunSummaryDTO is the list view: no records.
type RunSummaryDTO struct {
	ID      string    `json:"id"`
	PayDate string    `json:"pay_date"`
	Status  string    `json:"status"`
	Totals  TotalsDTO `json:"totals"`
}

// TotalsDTO represents run totals.
type TotalsDTO struct {
	Employees    int             `json:"employees"`
	Gross        decimal.Decimal `json:"gross"`
	Deductions   decimal.Decimal `json:"deductions"`
	Net          decimal.Decimal `json:"net"`
	EmployerCost decimal.Decimal `json:"employer_cost"`
}

// RecordDTO represents one employee's record within a run.
type RecordDTO struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	IsModified bool      `json:"is_modified"`
	Result     ResultDTO `json:"result"`
}

// ResultDTO represents one statutory calculation result.
type ResultDTO struct {
	EmployeeID string `json:"employee_id"`

	RegularEarnings  decimal.Decimal `json:"regular_earnings"`
	OvertimeEarnings decimal.Decimal `json:"overtime_earnings"`
	HolidayPay       decimal.Decimal `json:"holiday_pay"`
	HolidayPremium   decimal.Decimal `json:"holiday_premium"`
	VacationPaid     decimal.Decimal `json:"vacation_paid"`
	VacationAccrued  decimal.Decimal `json:"vacation_accrued"`
	OtherEarnings    decimal.Decimal `json:"other_earnings"`
	Gross            decimal.Decimal `json:"gross"`

	PreTaxDeductions decimal.Decimal `json:"pre_tax_deductions"`
	CPP              decimal.Decimal `json:"cpp"`
	CPP2             decimal.Decimal `json:"cpp2"`
	EI               decimal.Decimal `json:"ei"`
	FederalTax       decimal.Decimal `json:"federal_tax"`
	ProvincialTax    decimal.Decimal `json:"provincial_tax"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`

	NetPay decimal.Decimal `json:"net_pay"`

	EmployerCPP  decimal.Decimal `json:"employer_cpp"`
	EmployerEI   decimal.Decimal `json:"employer_ei"`
	EmployerCost decimal.Decimal `json:"employer_cost"`

	NewYtd YtdDTO `json:"new_ytd"`

	Anomalies []string `json:"anomalies,omitempty"`
}

// YtdDTO represents a year-to-date position.
type YtdDTO struct {
	Gross               decimal.Decimal `json:"gross"`
	PensionableEarnings decimal.Decimal `json:"pensionable_earnings"`
	InsurableEarnings   decimal.Decimal `json:"insurable_earnings"`
	CPP                 decimal.Decimal `json:"cpp"`
	CPP2                decimal.Decimal `json:"cpp2"`
	EI                  decimal.Decimal `json:"ei"`
	FederalTax          decimal.Decimal `json:"federal_tax"`
	ProvincialTax       decimal.Decimal `json:"provincial_tax"`
}

// RulesDTO is the rule inspection view for one jurisdiction and pay date.
type RulesDTO struct {
	Jurisdiction   string `json:"jurisdiction"`
	Year           int    `json:"year"`
	Edition        string `json:"edition"`
	FederalBPA     decimal.Decimal `json:"federal_bpa"`
	ProvincialBPA  decimal.Decimal `json:"provincial_bpa"`
	CPPYMPE        decimal.Decimal `json:"cpp_ympe"`
	CPPYAMPE       decimal.Decimal `json:"cpp_yampe"`
	EIMaxInsurable decimal.Decimal `json:"ei_max_insurable"`
	HolidayFormula string `json:"holiday_formula"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toResultDTO(res statutory.Result) ResultDTO {
	return ResultDTO{
		EmployeeID:       res.EmployeeID,
		RegularEarnings:  res.RegularEarnings,
		OvertimeEarnings: res.OvertimeEarnings,
		HolidayPay:       res.HolidayPay,
		HolidayPremium:   res.HolidayPremium,
		VacationPaid:     res.VacationPaid,
		VacationAccrued:  res.VacationAccrued,
		OtherEarnings:    res.OtherEarnings,
		Gross:            res.Gross,
		PreTaxDeductions: res.PreTaxDeductions,
		CPP:              res.CPPBase,
		CPP2:             res.CPP2,
		EI:               res.EI,
		FederalTax:       res.FederalTax,
		ProvincialTax:    res.ProvincialTax,
		TotalDeductions:  res.TotalDeductions,
		NetPay:           res.NetPay,
		EmployerCPP:      res.EmployerCPP,
		EmployerEI:       res.EmployerEI,
		EmployerCost:     res.EmployerCost,
		NewYtd:           toYtdDTO(res.NewYtd),
		Anomalies:        res.Anomalies,
	}
}

func toYtdDTO(s statutory.YtdState) YtdDTO {
	return YtdDTO{
		Gross:               s.Gross,
		PensionableEarnings: s.PensionableEarnings,
		InsurableEarnings:   s.InsurableEarnings,
		CPP:                 s.CPPBase,
		CPP2:                s.CPP2,
		EI:                  s.EI,
		FederalTax:          s.FederalTax,
		ProvincialTax:       s.ProvincialTax,
	}
}

func toTotalsDTO(t payrun.RunTotals) TotalsDTO {
	return TotalsDTO{
		Employees:    t.Employees,
		Gross:        t.Gross,
		Deductions:   t.Deductions,
		Net:          t.Net,
		EmployerCost: t.EmployerCost,
	}
}

func toRecordDTO(rec payrun.PayrollRecord) RecordDTO {
	return RecordDTO{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		IsModified: rec.IsModified,
		Result:     toResultDTO(rec.Result),
	}
}

func toRunDTO(run *payrun.PayrollRun) RunDTO {
	dto := RunDTO{
		ID:          run.ID,
		PayDate:     run.PayDate.Format("2006-01-02"),
		PeriodStart: run.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   run.PeriodEnd.Format("2006-01-02"),
		Status:      string(run.Status),
		Version:     run.Version,
		PaystubNote: run.PaystubNote,
		Totals:      toTotalsDTO(run.Totals),
		CreatedAt:   run.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   run.UpdatedAt.Format(time.RFC3339),
	}
	for _, rec := range run.Records {
		dto.Records = append(dto.Records, toRecordDTO(rec))
	}
	return dto
}

func toRunSummaryDTO(run *payrun.PayrollRun) RunSummaryDTO {
	return RunSummaryDTO{
		ID:      run.ID,
		PayDate: run.PayDate.Format("2006-01-02"),
		Status:  string(run.Status),
		Totals:  toTotalsDTO(run.Totals),
	}
}
