package domain

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Record validation tool
var mValidate *validator.Validate

const (
	tagRequired                  = "required"
	tagOtherIncomeDescriptionReq = "other_income_description_required"
	tagOtherIncomeDescriptionNil = "other_income_description_blank"
)

var tagMessages = map[string]string{
	tagOtherIncomeDescriptionReq: "Other income description is required",
	tagOtherIncomeDescriptionNil: "Other income description should be blank",
}

func init() {
	mValidate = validator.New()

	mValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimals are validated as plain numbers so that "required" rejects zero
	mValidate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	mValidate.RegisterStructValidation(otherIncomeStructLevelValidation, OtherIncome{})
	mValidate.RegisterStructValidation(expenseItemStructLevelValidation, ExpenseItem{})
}

func decimalValue(v reflect.Value) interface{} {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}

// ValidationErrors maps a dotted field path to the first message reported for it.
type ValidationErrors map[string]string

func (e ValidationErrors) Has(path string) bool {
	_, ok := e[path]
	return ok
}

// Fields returns the failing paths in sorted order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for path := range e {
		fields = append(fields, path)
	}
	sort.Strings(fields)
	return fields
}

// Error flattens the collected messages into a single line.
func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, path := range e.Fields() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", path, e[path]))
	}
	return strings.Join(msgs, " |")
}

// Validate runs every validator across the record tree of rec, which must be a struct
// or a pointer to one. Failures are returned as data; an empty map means valid.
func Validate(rec interface{}) ValidationErrors {
	vErrs := ValidationErrors{}

	err := mValidate.Struct(rec)
	if err == nil {
		return vErrs
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		vErrs[""] = err.Error()
		return vErrs
	}

	for _, fe := range fieldErrs {
		path := trimRoot(fe.Namespace())
		if _, exists := vErrs[path]; exists {
			continue
		}
		vErrs[path] = fieldMessage(fe)
	}

	return vErrs
}

// trimRoot drops the leading struct type name the validator puts in every namespace.
func trimRoot(ns string) string {
	if idx := strings.IndexByte(ns, '.'); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	if fe.Tag() == tagRequired {
		// expense items report their display name as the param
		if fe.Param() != "" {
			return fe.Param() + " is required"
		}
		return fe.Field() + " is required"
	}
	return fe.Error()
}

func otherIncomeStructLevelValidation(sl validator.StructLevel) {
	oi, ok := sl.Current().Interface().(OtherIncome)
	if !ok {
		panic("otherIncomeStructLevelValidation registered to a type other than OtherIncome")
	}

	hasAmount := !oi.Amount.IsZero()
	hasDescription := oi.Description != ""

	if hasAmount && !hasDescription {
		sl.ReportError(oi.Description, "description", "Description", tagOtherIncomeDescriptionReq, "")
	}
	if !hasAmount && hasDescription {
		sl.ReportError(oi.Description, "description", "Description", tagOtherIncomeDescriptionNil, "")
	}
}

func expenseItemStructLevelValidation(sl validator.StructLevel) {
	item, ok := sl.Current().Interface().(ExpenseItem)
	if !ok {
		panic("expenseItemStructLevelValidation registered to a type other than ExpenseItem")
	}

	if item.Value.IsZero() {
		label := item.Name
		if label == "" {
			label = "value"
		}
		sl.ReportError(item.Value, "value", "Value", tagRequired, label)
	}
}
