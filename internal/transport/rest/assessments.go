package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"affordability-assessment/internal/domain"
	"affordability-assessment/internal/logger"
	"affordability-assessment/internal/service"
	"affordability-assessment/internal/transport/auth"
)

// writeServiceError maps service sentinels onto response codes; anything else is logged
// and reported as an internal error.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		ErrorBadRequest(w, vErr.Message)
	case errors.Is(err, service.ErrAssessmentNotFound):
		ErrorNotFound(w, "assessment not found")
	case errors.Is(err, service.ErrApplicantNotFound):
		ErrorNotFound(w, "applicant not found")
	case errors.Is(err, service.ErrCreditItemNotFound):
		ErrorNotFound(w, "credit item not found")
	case errors.Is(err, service.ErrReportNotFound):
		ErrorNotFound(w, "report not found")
	case errors.Is(err, service.ErrApplicantLimit):
		ErrorConflict(w, "no more applicants can be added")
	default:
		logger.Errorf("[HTTP] %s error: %v", op, err)
		ErrorInternal(w, "failed to "+op)
	}
}

// userAndID returns false after writing a response when the caller is not authenticated.
func userAndID(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return 0, "", false
	}
	return userID, chi.URLParam(r, "id"), true
}

func (h *Handler) createAssessment(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	var req brokerRefRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, "create assessment", err)
		return
	}

	sess, err := h.assessments.Create(r.Context(), userID, req.BrokerRef)
	if err != nil {
		writeServiceError(w, "create assessment", err)
		return
	}

	SuccessCreated(w, "Assessment created", sess)
}

func (h *Handler) listAssessments(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	list, err := h.assessments.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "list assessments", err)
		return
	}

	Success(w, "", list)
}

func (h *Handler) getAssessment(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	sess, err := h.assessments.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "get assessment", err)
		return
	}

	Success(w, "", sess)
}

func (h *Handler) deleteAssessment(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	if err := h.assessments.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, "delete assessment", err)
		return
	}

	Success(w, "Assessment deleted", nil)
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	sess, err := h.assessments.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "get summary", err)
		return
	}

	Success(w, "", sess.Summary)
}

func (h *Handler) getValidation(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	sess, err := h.assessments.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "validate assessment", err)
		return
	}

	Success(w, "", map[string]any{
		"valid":  len(sess.Errors) == 0,
		"errors": sess.Errors,
	})
}

func (h *Handler) setBrokerRef(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	var req brokerRefRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, "update broker reference", err)
		return
	}

	sess, err := h.assessments.SetBrokerRef(r.Context(), userID, id, req.BrokerRef)
	if err != nil {
		writeServiceError(w, "update broker reference", err)
		return
	}

	Success(w, "Broker reference updated", sess)
}

func (h *Handler) setHousehold(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	var req domain.Household
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, "update household", err)
		return
	}

	sess, err := h.assessments.SetHousehold(r.Context(), userID, id, req)
	if err != nil {
		writeServiceError(w, "update household", err)
		return
	}

	Success(w, "Household updated", sess)
}

func (h *Handler) setLoanDetails(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	var req domain.LoanDetails
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, "update loan details", err)
		return
	}
	if req.Term < 0 || req.Amount.IsNegative() {
		ErrorBadRequest(w, "loan amount and term must not be negative")
		return
	}

	sess, err := h.assessments.SetLoanDetails(r.Context(), userID, id, req)
	if err != nil {
		writeServiceError(w, "update loan details", err)
		return
	}

	Success(w, "Loan details updated", sess)
}

func (h *Handler) addApplicant(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	var req applicantRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, "add applicant", err)
		return
	}
	input, err := req.toDomain()
	if err != nil {
		writeServiceError(w, "add applicant", err)
		return
	}

	sess, applicantID, err := h.assessments.AddApplicant(r.Context(), userID, id, &input)
	if err != nil {
		writeServiceError(w, "add applicant", err)
		return
	}

	SuccessCreated(w, "Applicant added", map[string]any{
		"applicant_id": applicantID,
		"session":      sess,
	})
}

func (h *Handler) updateApplicant(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}
	applicantID, err := int64Param(r, "applicantID")
	if err != nil {
		writeServiceError(w, "update applicant", err)
		return
	}

	var req applicantRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, "update applicant", err)
		return
	}
	input, err := req.toDomain()
	if err != nil {
		writeServiceError(w, "update applicant", err)
		return
	}

	sess, err := h.assessments.UpdateApplicant(r.Context(), userID, id, applicantID, input)
	if err != nil {
		writeServiceError(w, "update applicant", err)
		return
	}

	Success(w, "Applicant updated", sess)
}

func (h *Handler) removeApplicant(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}
	applicantID, err := int64Param(r, "applicantID")
	if err != nil {
		writeServiceError(w, "remove applicant", err)
		return
	}

	sess, err := h.assessments.RemoveApplicant(r.Context(), userID, id, applicantID)
	if err != nil {
		writeServiceError(w, "remove applicant", err)
		return
	}

	Success(w, "Applicant removed", sess)
}

func (h *Handler) creditTypes(w http.ResponseWriter, r *http.Request) {
	out := make([]map[string]any, 0, len(domain.UnsecuredCreditTypes))
	for _, t := range domain.UnsecuredCreditTypes {
		out = append(out, map[string]any{
			"code":     t.Code,
			"name":     t.Name,
			"sub_type": t.SubType.String(),
		})
	}
	Success(w, "", out)
}
