package rest

import (
	"net/http"

	"affordability-assessment/internal/domain"
)

func (h *Handler) addUnsecuredCredit(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	var req domain.UnsecuredCreditItem
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, "add unsecured credit", err)
		return
	}

	sess, err := h.assessments.AddUnsecuredCredit(r.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(w, "add unsecured credit", err)
		return
	}

	SuccessCreated(w, "Unsecured credit added", sess)
}

func (h *Handler) updateUnsecuredCredit(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}
	index, err := intParam(r, "index")
	if err != nil {
		writeServiceError(w, "update unsecured credit", err)
		return
	}

	var req domain.UnsecuredCreditItem
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, "update unsecured credit", err)
		return
	}

	sess, err := h.assessments.UpdateUnsecuredCredit(r.Context(), userID, id, index, req)
	if err != nil {
		writeServiceError(w, "update unsecured credit", err)
		return
	}

	Success(w, "Unsecured credit updated", sess)
}

func (h *Handler) removeUnsecuredCredit(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}
	index, err := intParam(r, "index")
	if err != nil {
		writeServiceError(w, "remove unsecured credit", err)
		return
	}

	sess, err := h.assessments.RemoveUnsecuredCredit(r.Context(), userID, id, index)
	if err != nil {
		writeServiceError(w, "remove unsecured credit", err)
		return
	}

	Success(w, "Unsecured credit removed", sess)
}

func (h *Handler) addSecuredCredit(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	var req domain.SecuredCreditItem
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, "add secured credit", err)
		return
	}

	sess, err := h.assessments.AddSecuredCredit(r.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(w, "add secured credit", err)
		return
	}

	SuccessCreated(w, "Secured credit added", sess)
}

func (h *Handler) updateSecuredCredit(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}
	index, err := intParam(r, "index")
	if err != nil {
		writeServiceError(w, "update secured credit", err)
		return
	}

	var req domain.SecuredCreditItem
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, "update secured credit", err)
		return
	}

	sess, err := h.assessments.UpdateSecuredCredit(r.Context(), userID, id, index, req)
	if err != nil {
		writeServiceError(w, "update secured credit", err)
		return
	}

	Success(w, "Secured credit updated", sess)
}

func (h *Handler) removeSecuredCredit(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}
	index, err := intParam(r, "index")
	if err != nil {
		writeServiceError(w, "remove secured credit", err)
		return
	}

	sess, err := h.assessments.RemoveSecuredCredit(r.Context(), userID, id, index)
	if err != nil {
		writeServiceError(w, "remove secured credit", err)
		return
	}

	Success(w, "Secured credit removed", sess)
}
