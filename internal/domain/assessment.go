package domain

import "github.com/shopspring/decimal"

// FullAssessment is the root of one affordability assessment.
type FullAssessment struct {
	BrokerRef       string                    `json:"brokerRef"`
	Applicants      ApplicantCollection       `json:"applicants"`
	Household       Household                 `json:"household"`
	LoanDetails     LoanDetails               `json:"loanDetails"`
	SecuredCredit   SecuredCreditCollection   `json:"securedCredit"`
	UnsecuredCredit UnsecuredCreditCollection `json:"unsecuredCredit"`
}

func NewFullAssessment() *FullAssessment {
	return &FullAssessment{
		Household: NewHousehold(),
	}
}

// RemoveApplicant removes the applicant and cascades into the unsecured credit items.
func (a *FullAssessment) RemoveApplicant(applicant *Applicant) []*Applicant {
	return a.Applicants.RemoveApplicant(applicant, &a.UnsecuredCredit)
}

func (a *FullAssessment) Validate() ValidationErrors {
	return Validate(a)
}

// Summary is a point-in-time copy of every derived figure of an assessment.
type Summary struct {
	BrokerRef       string                 `json:"brokerRef"`
	Applicants      ApplicantsSummary      `json:"applicants"`
	Household       HouseholdSummary       `json:"household"`
	SecuredCredit   SecuredCreditSummary   `json:"securedCredit"`
	UnsecuredCredit UnsecuredCreditSummary `json:"unsecuredCredit"`

	// DisposableMonthlyIncome is income left after expenditure, the secured repayments that
	// are kept and the remaining unsecured repayments.
	DisposableMonthlyIncome decimal.Decimal `json:"disposableMonthlyIncome"`
}

type ApplicantSummary struct {
	ID                    int64           `json:"id"`
	FullName              string          `json:"fullName"`
	DisplayName           string          `json:"displayName"`
	Age                   *int            `json:"age"`
	YearsUntilRetirement  *int            `json:"numberOfYearsUntilRetirement"`
	TotalNetMonthlyIncome decimal.Decimal `json:"totalNetMonthlyIncome"`
}

type ApplicantsSummary struct {
	Items                 []ApplicantSummary `json:"items"`
	HasApplicants         bool               `json:"hasApplicants"`
	CanAddApplicant       bool               `json:"canAddApplicant"`
	TotalNetMonthlyIncome decimal.Decimal    `json:"totalNetMonthlyIncome"`
}

type HouseholdSummary struct {
	EssentialsTotal     decimal.Decimal `json:"essentialsTotal"`
	LivingExpensesTotal decimal.Decimal `json:"livingExpensesTotal"`
	TravelExpensesTotal decimal.Decimal `json:"travelExpensesTotal"`
	Total               decimal.Decimal `json:"total"`
}

type SecuredCreditSummary struct {
	ItemsToBeRepayed int `json:"itemsToBeRepayed"`

	TotalArrears          decimal.Decimal `json:"totalArrears"`
	TotalBalance          decimal.Decimal `json:"totalBalance"`
	TotalMonthlyRepayment decimal.Decimal `json:"totalMonthlyRepayment"`

	TotalArrearsToBeRepayed          decimal.Decimal `json:"totalArrearsToBeRepayed"`
	TotalBalanceToBeRepayed          decimal.Decimal `json:"totalBalanceToBeRepayed"`
	TotalMonthlyRepaymentToBeRepayed decimal.Decimal `json:"totalMonthlyRepaymentToBeRepayed"`

	TotalArrearsRemaining          decimal.Decimal `json:"totalArrearsRemaining"`
	TotalBalanceRemaining          decimal.Decimal `json:"totalBalanceRemaining"`
	TotalMonthlyRepaymentRemaining decimal.Decimal `json:"totalMonthlyRepaymentRemaining"`

	// TotalMonthlyRepaymentKept covers the items the applicants go on paying.
	TotalMonthlyRepaymentKept decimal.Decimal `json:"totalMonthlyRepaymentKept"`
}

type UnsecuredCreditSummary struct {
	CCJAndDefaults     int `json:"ccjAndDefaults"`
	IVAAndBankruptcies int `json:"ivaAndBankruptcies"`
	Credits            int `json:"credits"`
	ItemsToBeRepayed   int `json:"itemsToBeRepayed"`

	TotalCCJAndDefaultsBalance               decimal.Decimal `json:"totalCCJAndDefaultsBalance"`
	TotalCCJAndDefaultsMonthlyRepayments     decimal.Decimal `json:"totalCCJAndDefaultsMonthlyRepayments"`
	TotalIVAAndBankruptciesBalance           decimal.Decimal `json:"totalIVAAndBankruptciesBalance"`
	TotalIVAAndBankruptciesMonthlyRepayments decimal.Decimal `json:"totalIVAAndBankruptciesMonthlyRepayments"`
	TotalCreditBalance                       decimal.Decimal `json:"totalCreditBalance"`
	TotalCreditMonthlyRepayments             decimal.Decimal `json:"totalCreditMonthlyRepayments"`
	TotalToBeRepayedBalance                  decimal.Decimal `json:"totalToBeRepayedBalance"`
	TotalRemainingBalance                    decimal.Decimal `json:"totalRemainingBalance"`
	TotalRemainingMonthlyRepayments          decimal.Decimal `json:"totalRemainingMonthlyRepayments"`
}

func optionalInt(v int, ok bool) *int {
	if !ok {
		return nil
	}
	return &v
}

func (a *FullAssessment) Summary() Summary {
	at := now()

	applicants := ApplicantsSummary{
		Items:                 make([]ApplicantSummary, 0, len(a.Applicants.Items)),
		HasApplicants:         a.Applicants.HasApplicants(),
		CanAddApplicant:       a.Applicants.CanAddApplicant(),
		TotalNetMonthlyIncome: a.Applicants.TotalNetMonthlyIncome(),
	}
	for _, ap := range a.Applicants.Items {
		if ap == nil {
			continue
		}
		applicants.Items = append(applicants.Items, ApplicantSummary{
			ID:                    ap.ID,
			FullName:              ap.FullName(),
			DisplayName:           ap.DisplayNameAt(at),
			Age:                   optionalInt(ap.AgeAt(at)),
			YearsUntilRetirement:  optionalInt(ap.YearsUntilRetirementAt(at)),
			TotalNetMonthlyIncome: ap.MonthlyIncome.TotalNetMonthlyIncome(),
		})
	}

	exp := &a.Household.MonthlyExpenditure
	household := HouseholdSummary{
		EssentialsTotal:     exp.Essentials.Total(),
		LivingExpensesTotal: exp.LivingExpenses.Total(),
		TravelExpensesTotal: exp.TravelExpenses.Total(),
		Total:               exp.Total(),
	}

	sc := &a.SecuredCredit
	secured := SecuredCreditSummary{
		ItemsToBeRepayed:                 len(sc.ItemsToBeRepayed()),
		TotalArrears:                     sc.TotalArrears(),
		TotalBalance:                     sc.TotalBalance(),
		TotalMonthlyRepayment:            sc.TotalMonthlyRepayment(),
		TotalArrearsToBeRepayed:          sc.TotalArrearsToBeRepayed(),
		TotalBalanceToBeRepayed:          sc.TotalBalanceToBeRepayed(),
		TotalMonthlyRepaymentToBeRepayed: sc.TotalMonthlyRepaymentToBeRepayed(),
		TotalArrearsRemaining:            sc.TotalArrearsRemaining(),
		TotalBalanceRemaining:            sc.TotalBalanceRemaining(),
		TotalMonthlyRepaymentRemaining:   sc.TotalMonthlyRepaymentRemaining(),
		TotalMonthlyRepaymentKept:        sc.TotalMonthlyRepayment().Sub(sc.TotalMonthlyRepaymentToBeRepayed()),
	}

	uc := &a.UnsecuredCredit
	unsecured := UnsecuredCreditSummary{
		CCJAndDefaults:                           len(uc.CCJAndDefaults()),
		IVAAndBankruptcies:                       len(uc.IVAAndBankruptcies()),
		Credits:                                  len(uc.Credits()),
		ItemsToBeRepayed:                         len(uc.ItemsToBeRepayed()),
		TotalCCJAndDefaultsBalance:               uc.TotalCCJAndDefaultsBalance(),
		TotalCCJAndDefaultsMonthlyRepayments:     uc.TotalCCJAndDefaultsMonthlyRepayments(),
		TotalIVAAndBankruptciesBalance:           uc.TotalIVAAndBankruptciesBalance(),
		TotalIVAAndBankruptciesMonthlyRepayments: uc.TotalIVAAndBankruptciesMonthlyRepayments(),
		TotalCreditBalance:                       uc.TotalCreditBalance(),
		TotalCreditMonthlyRepayments:             uc.TotalCreditMonthlyRepayments(),
		TotalToBeRepayedBalance:                  uc.TotalToBeRepayedBalance(),
		TotalRemainingBalance:                    uc.TotalRemainingBalance(),
		TotalRemainingMonthlyRepayments:          uc.TotalRemainingMonthlyRepayments(),
	}

	disposable := applicants.TotalNetMonthlyIncome.
		Sub(household.Total).
		Sub(secured.TotalMonthlyRepaymentKept).
		Sub(unsecured.TotalRemainingMonthlyRepayments)

	return Summary{
		BrokerRef:               a.BrokerRef,
		Applicants:              applicants,
		Household:               household,
		SecuredCredit:           secured,
		UnsecuredCredit:         unsecured,
		DisposableMonthlyIncome: disposable,
	}
}
