package domain

import "github.com/shopspring/decimal"

type Household struct {
	NumberOfDependants19OrOver  int                `json:"numberOfDependants19OrOver" validate:"required"`
	NumberOfDependants18OrUnder int                `json:"numberOfDependants18OrUnder" validate:"required"`
	MonthlyExpenditure          MonthlyExpenditure `json:"monthlyExpenditure"`
}

// NewHousehold returns a household whose expense items carry their catalogue labels.
func NewHousehold() Household {
	var h Household
	h.Relabel()
	return h
}

// Relabel resets every expense name and description to the catalogue text, leaving
// values untouched. Call it after decoding client supplied data.
func (h *Household) Relabel() {
	h.MonthlyExpenditure.Essentials.relabel()
	h.MonthlyExpenditure.LivingExpenses.relabel()
	h.MonthlyExpenditure.TravelExpenses.relabel()
}

type MonthlyExpenditure struct {
	Essentials     Essentials     `json:"essentials"`
	LivingExpenses LivingExpenses `json:"livingExpenses"`
	TravelExpenses TravelExpenses `json:"travelExpenses"`
}

func (m *MonthlyExpenditure) Total() decimal.Decimal {
	return m.Essentials.Total().
		Add(m.LivingExpenses.Total()).
		Add(m.TravelExpenses.Total())
}

type Essentials struct {
	RentOrServiceChange           ExpenseItem `json:"rentOrServiceChange"`
	PensionLifeInsuranceMortgage  ExpenseItem `json:"pensionLifeInsuranceMortgage"`
	BuildingsAndContentsInsurance ExpenseItem `json:"buildingsAndContentsInsurance"`
	CouncilTax                    ExpenseItem `json:"councilTax"`
	GasElectricHeating            ExpenseItem `json:"gasElectricHeating"`
	Water                         ExpenseItem `json:"water"`
	Shopping                      ExpenseItem `json:"shopping"`
	MedicalCare                   ExpenseItem `json:"medicalCare"`
}

func (e *Essentials) Bag() ExpenseBag {
	return ExpenseBag{
		"rentOrServiceChange":           &e.RentOrServiceChange,
		"pensionLifeInsuranceMortgage":  &e.PensionLifeInsuranceMortgage,
		"buildingsAndContentsInsurance": &e.BuildingsAndContentsInsurance,
		"councilTax":                    &e.CouncilTax,
		"gasElectricHeating":            &e.GasElectricHeating,
		"water":                         &e.Water,
		"shopping":                      &e.Shopping,
		"medicalCare":                   &e.MedicalCare,
	}
}

func (e *Essentials) Total() decimal.Decimal {
	return TotalExpenses(e.Bag())
}

func (e *Essentials) relabel() {
	e.RentOrServiceChange.relabel("Shared Ownership Rent / Ground Rent / Service Charge", "")
	e.PensionLifeInsuranceMortgage.relabel("Pension / Life Insurance / Mortgage Repayment Vehicle", "")
	e.BuildingsAndContentsInsurance.relabel("Buildings & Contents Insurance", "")
	e.CouncilTax.relabel("Council Tax", "")
	e.GasElectricHeating.relabel("Gas, Electricity, Heating Fuels", "")
	e.Water.relabel("Water", "")
	e.Shopping.relabel("Shopping",
		"(food, toiletries, nappies, cleaning materials, cigarettes, tobacco, papers, lottery, alcohol, etc)")
	e.MedicalCare.relabel("Costs for Medical / Care Assistance",
		"(TV licence, TV rental, sky/cable subscription, telephone landline, broadband, mobile telephones)")
}

type LivingExpenses struct {
	TVInternetPhone      ExpenseItem `json:"tvInternetPhone"`
	Entertainment        ExpenseItem `json:"entertainment"`
	Clothing             ExpenseItem `json:"clothing"`
	ChildRelatedExpenses ExpenseItem `json:"childRelatedExpenses"`
	OtherExpenses        ExpenseItem `json:"otherExpenses"`
}

func (l *LivingExpenses) Bag() ExpenseBag {
	return ExpenseBag{
		"tvInternetPhone":      &l.TVInternetPhone,
		"entertainment":        &l.Entertainment,
		"clothing":             &l.Clothing,
		"childRelatedExpenses": &l.ChildRelatedExpenses,
		"otherExpenses":        &l.OtherExpenses,
	}
}

func (l *LivingExpenses) Total() decimal.Decimal {
	return TotalExpenses(l.Bag())
}

func (l *LivingExpenses) relabel() {
	l.TVInternetPhone.relabel("TV, Internet, Sky/Cable, Telephone, Mobile", "")
	l.Entertainment.relabel("Entertainment & Recreation",
		"(socialising, eating out, holidays, weekend trips, gym membership, etc)")
	l.Clothing.relabel("Clothing", "")
	l.ChildRelatedExpenses.relabel("Child Related Expenses",
		"(child maintenance, child care / nursery / school fees, school meals, children's activities, etc)")
	l.OtherExpenses.relabel("Other Expenses", "")
}

// TravelExpenses also records the number of cars, which is not an expense and is never
// summed.
type TravelExpenses struct {
	NumberOfCars        int         `json:"numberOfCars"`
	CarExpenses         ExpenseItem `json:"carExpenses"`
	OtherTravelExpenses ExpenseItem `json:"otherTravelExpenses"`
}

func (t *TravelExpenses) Bag() ExpenseBag {
	return ExpenseBag{
		"carExpenses":         &t.CarExpenses,
		"otherTravelExpenses": &t.OtherTravelExpenses,
	}
}

func (t *TravelExpenses) Total() decimal.Decimal {
	return TotalExpenses(t.Bag())
}

func (t *TravelExpenses) relabel() {
	t.CarExpenses.relabel("Car Expenses", "(tax, fuel, insurance, MOT, etc for all cars)")
	t.OtherTravelExpenses.relabel("Other Travel Expenses", "(rail, bus, taxi, tube, other)")
}
