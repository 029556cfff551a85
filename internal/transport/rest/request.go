package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"affordability-assessment/internal/domain"
)

const maxBodyBytes = 1 << 20

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &ValidationError{Message: "invalid JSON body"}
	}
	return nil
}

type brokerRefRequest struct {
	BrokerRef string `json:"broker_ref"`
}

// applicantRequest mirrors domain.Applicant but takes the date of birth as a plain date.
type applicantRequest struct {
	FirstName     string               `json:"firstName"`
	LastName      string               `json:"lastName"`
	DOB           any                  `json:"dob"`
	RetirementAge int                  `json:"retirementAge"`
	MonthlyIncome domain.MonthlyIncome `json:"monthlyIncome"`
}

func (req applicantRequest) toDomain() (domain.Applicant, error) {
	dob, err := toDatePtr(req.DOB)
	if err != nil {
		return domain.Applicant{}, &ValidationError{Message: "dob must be YYYY-MM-DD or empty"}
	}
	if req.RetirementAge < 0 {
		return domain.Applicant{}, &ValidationError{Message: "retirementAge must not be negative"}
	}
	return domain.Applicant{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		DOB:           dob,
		RetirementAge: req.RetirementAge,
		MonthlyIncome: req.MonthlyIncome,
	}, nil
}

func toDatePtr(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return &parsed, nil
		}
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, &ValidationError{Message: "invalid type for date field"}
	}
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, &ValidationError{Message: name + " must be an integer"}
	}
	return v, nil
}

func int64Param(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, &ValidationError{Message: name + " must be an integer"}
	}
	return v, nil
}
