package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"affordability-assessment/internal/domain"
)

const (
	SheetSummary     = "Summary"
	SheetApplicants  = "Applicants"
	SheetExpenditure = "Expenditure"
	SheetSecured     = "Secured"
	SheetUnsecured   = "Unsecured"
)

var reportSheets = []string{SheetSummary, SheetApplicants, SheetExpenditure, SheetSecured, SheetUnsecured}

// sheetWriter appends rows to one sheet and formats money cells.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	row    int
	bold   int
	money  int
	totals int
}

func (w *sheetWriter) header(cols ...string) error {
	if err := w.write(toAny(cols)...); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), w.row)
	return w.f.SetCellStyle(w.sheet, fmt.Sprintf("A%d", w.row), last, w.bold)
}

// write stores a row; decimals become numbers with the money format applied.
func (w *sheetWriter) write(values ...any) error {
	w.row++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			return err
		}
		if d, ok := v.(decimal.Decimal); ok {
			if err := w.f.SetCellFloat(w.sheet, cell, d.InexactFloat64(), 2, 64); err != nil {
				return err
			}
			if err := w.f.SetCellStyle(w.sheet, cell, cell, w.money); err != nil {
				return err
			}
			continue
		}
		if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (w *sheetWriter) total(label string, col int, value decimal.Decimal) error {
	values := make([]any, col)
	values[0] = label
	for i := 1; i < col-1; i++ {
		values[i] = ""
	}
	values[col-1] = value
	if err := w.write(values...); err != nil {
		return err
	}
	first := fmt.Sprintf("A%d", w.row)
	last, _ := excelize.CoordinatesToCellName(col, w.row)
	return w.f.SetCellStyle(w.sheet, first, last, w.totals)
}

func (w *sheetWriter) blank() {
	w.row++
}

func toAny(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

// BuildWorkbook renders the affordability report for one session. onSheet, when set, is
// called after each sheet is finished.
func BuildWorkbook(sess *Session, onSheet func(done, total int, sheet string)) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range reportSheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Creator: fmt.Sprintf("user_%d", sess.UserID),
		Title:   "Affordability assessment " + sess.Assessment.BrokerRef,
	})

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	totals, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return nil, err
	}

	writers := map[string]func(*sheetWriter, *Session) error{
		SheetSummary:     writeSummary,
		SheetApplicants:  writeApplicants,
		SheetExpenditure: writeExpenditure,
		SheetSecured:     writeSecured,
		SheetUnsecured:   writeUnsecured,
	}

	for i, name := range reportSheets {
		w := &sheetWriter{f: f, sheet: name, bold: bold, money: money, totals: totals}
		if err := writers[name](w, sess); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		_ = f.SetColWidth(name, "A", "A", 36)
		_ = f.SetColWidth(name, "B", "H", 18)
		if onSheet != nil {
			onSheet(i+1, len(reportSheets), name)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSummary(w *sheetWriter, sess *Session) error {
	a, s := sess.Assessment, sess.Summary

	rows := [][]any{
		{"Broker reference", a.BrokerRef},
		{"Applicants", len(s.Applicants.Items)},
		{"Loan amount", a.LoanDetails.Amount},
		{"Loan term (months)", a.LoanDetails.Term},
		{"Total net monthly income", s.Applicants.TotalNetMonthlyIncome},
		{"Monthly expenditure", s.Household.Total},
		{"Secured repayments kept", s.SecuredCredit.TotalMonthlyRepaymentKept},
		{"Unsecured repayments remaining", s.UnsecuredCredit.TotalRemainingMonthlyRepayments},
	}

	if err := w.header("Item", "Value"); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.write(r...); err != nil {
			return err
		}
	}
	if err := w.total("Disposable monthly income", 2, s.DisposableMonthlyIncome); err != nil {
		return err
	}

	if len(sess.Errors) == 0 {
		return nil
	}
	w.blank()
	if err := w.header("Incomplete field", "Message"); err != nil {
		return err
	}
	for _, path := range sess.Errors.Fields() {
		if err := w.write(path, sess.Errors[path]); err != nil {
			return err
		}
	}
	return nil
}

func writeApplicants(w *sheetWriter, sess *Session) error {
	if err := w.header("Name", "Date of birth", "Age", "Retirement age", "Years to retirement", "Occupation", "Net monthly income"); err != nil {
		return err
	}

	for _, ap := range sess.Assessment.Applicants.Items {
		if ap == nil {
			continue
		}
		dob := ""
		if ap.DOB != nil {
			dob = ap.DOB.Format("2006-01-02")
		}
		age, years := "", ""
		if v, ok := ap.Age(); ok {
			age = fmt.Sprint(v)
		}
		if v, ok := ap.YearsUntilRetirement(); ok {
			years = fmt.Sprint(v)
		}
		if err := w.write(
			ap.FullName(), dob, age, ap.RetirementAge, years,
			ap.MonthlyIncome.Occupation, ap.MonthlyIncome.TotalNetMonthlyIncome(),
		); err != nil {
			return err
		}
	}

	return w.total("Total", 7, sess.Summary.Applicants.TotalNetMonthlyIncome)
}

func writeExpenditure(w *sheetWriter, sess *Session) error {
	exp := &sess.Assessment.Household.MonthlyExpenditure
	groups := []struct {
		name  string
		bag   domain.ExpenseBag
		total decimal.Decimal
	}{
		{"Essentials", exp.Essentials.Bag(), exp.Essentials.Total()},
		{"Living expenses", exp.LivingExpenses.Bag(), exp.LivingExpenses.Total()},
		{"Travel expenses", exp.TravelExpenses.Bag(), exp.TravelExpenses.Total()},
	}

	hh := sess.Assessment.Household
	if err := w.write("Dependants 19 or over", hh.NumberOfDependants19OrOver); err != nil {
		return err
	}
	if err := w.write("Dependants 18 or under", hh.NumberOfDependants18OrUnder); err != nil {
		return err
	}
	if err := w.write("Number of cars", exp.TravelExpenses.NumberOfCars); err != nil {
		return err
	}
	w.blank()

	if err := w.header("Expense", "Monthly value", "Description"); err != nil {
		return err
	}
	for _, g := range groups {
		keys := make([]string, 0, len(g.bag))
		for k := range g.bag {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			item := g.bag[k]
			if err := w.write(item.Name, item.Value, item.Description); err != nil {
				return err
			}
		}
		if err := w.total(g.name, 2, g.total); err != nil {
			return err
		}
		w.blank()
	}

	return w.total("Total monthly expenditure", 2, exp.Total())
}

func writeSecured(w *sheetWriter, sess *Session) error {
	sc := &sess.Assessment.SecuredCredit
	if err := w.header("Creditor", "Charge type", "Arrears", "Balance", "Monthly repayment", "To be repaid"); err != nil {
		return err
	}
	for _, item := range sc.Items {
		if item == nil {
			continue
		}
		if err := w.write(item.Creditor, item.ChargeType, item.Arrears, item.Balance, item.MonthlyRepayment, yesNo(item.ToBeRepayed)); err != nil {
			return err
		}
	}
	w.blank()

	sum := sess.Summary.SecuredCredit
	for _, r := range []struct {
		label string
		value decimal.Decimal
	}{
		{"Total balance", sum.TotalBalance},
		{"Balance to be repaid", sum.TotalBalanceToBeRepayed},
		{"Balance remaining", sum.TotalBalanceRemaining},
		{"Monthly repayment remaining", sum.TotalMonthlyRepaymentRemaining},
	} {
		if err := w.total(r.label, 2, r.value); err != nil {
			return err
		}
	}
	return nil
}

func writeUnsecured(w *sheetWriter, sess *Session) error {
	a := sess.Assessment
	if err := w.header("Applicant", "Creditor", "Type", "Group", "Balance", "Monthly repayment", "To be repaid"); err != nil {
		return err
	}
	for _, item := range a.UnsecuredCredit.Items {
		if item == nil {
			continue
		}
		owner := ""
		if ap := a.Applicants.FindApplicant(item.ApplicantID); ap != nil {
			owner = ap.FullName()
		}
		typeName, group := "Unknown", ""
		if t, ok := domain.LookupUnsecuredCreditType(item.CreditType); ok {
			typeName, group = t.Name, t.SubType.String()
		}
		if err := w.write(owner, item.Creditor, typeName, group, item.Balance, item.MonthlyRepayment, yesNo(item.ToBeRepayed)); err != nil {
			return err
		}
	}
	w.blank()

	sum := sess.Summary.UnsecuredCredit
	for _, r := range []struct {
		label string
		value decimal.Decimal
	}{
		{"Balance to be repaid", sum.TotalToBeRepayedBalance},
		{"Balance remaining", sum.TotalRemainingBalance},
		{"Monthly repayments remaining", sum.TotalRemainingMonthlyRepayments},
	} {
		if err := w.total(r.label, 2, r.value); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
