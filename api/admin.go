package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/opptakhq/opptak/internal/admission"
	"github.com/opptakhq/opptak/pkg/apperr"
	"github.com/opptakhq/opptak/pkg/models"
	"github.com/opptakhq/opptak/pkg/repository"
)

type AdminHandler struct {
	apps       repository.ApplicationRepo
	users      repository.UserRepo
	committees repository.CommitteeRepo
	periods    repository.PeriodRepo
	resolver   *admission.Resolver
	sentinels  admission.Sentinels
}

func NewAdminHandler(ar repository.ApplicationRepo, ur repository.UserRepo, cr repository.CommitteeRepo, pr repository.PeriodRepo, resolver *admission.Resolver, sentinels admission.Sentinels) *AdminHandler {
	return &AdminHandler{
		apps:       ar,
		users:      ur,
		committees: cr,
		periods:    pr,
		resolver:   resolver,
		sentinels:  sentinels,
	}
}

// requireMainBoard authorizes admin operations. Main board membership is
// required explicitly; election committee membership alone does not qualify.
func (h *AdminHandler) requireMainBoard(r *http.Request) (int64, error) {
	userID, err := callerID(r)
	if err != nil {
		return 0, err
	}
	memberships, err := h.resolver.Resolve(r.Context(), userID)
	if err != nil {
		return 0, err
	}
	for _, id := range memberships {
		if id == h.sentinels.MainBoard {
			return userID, nil
		}
	}
	return 0, apperr.New(apperr.KindForbidden, "main board membership required")
}

// Wipe deletes all applications, statuses and admission periods, removes
// every user except the caller and closes admissions on every committee.
// The five steps are independent; a mid-way failure is surfaced and not
// rolled back.
func (h *AdminHandler) Wipe(w http.ResponseWriter, r *http.Request) {
	caller, err := h.requireMainBoard(r)
	if err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	if err := h.apps.DeleteAllApplications(ctx); err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to delete applications", err))
		return
	}
	if err := h.apps.DeleteAllStatuses(ctx); err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to delete statuses", err))
		return
	}
	if err := h.periods.DeleteAllPeriods(ctx); err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to delete admission periods", err))
		return
	}
	if err := h.users.DeleteUsersExcept(ctx, caller); err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to delete users", err))
		return
	}
	if err := h.committees.CloseAllAdmissions(ctx); err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to close admissions", err))
		return
	}

	h.resolver.Invalidate(ctx)

	writeJSON(w, map[string]string{"message": "all admission data wiped"}, http.StatusOK)
}

type createPeriodRequest struct {
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}

// CreateAdmissionPeriod opens a submission window.
func (h *AdminHandler) CreateAdmissionPeriod(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireMainBoard(r); err != nil {
		respondError(w, err)
		return
	}

	var req createPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperr.New(apperr.KindBadRequest, "invalid request body"))
		return
	}

	var errs []string
	starts, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		errs = append(errs, paramError("body", "startsAt", req.StartsAt, "must be an RFC3339 timestamp"))
	}
	ends, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		errs = append(errs, paramError("body", "endsAt", req.EndsAt, "must be an RFC3339 timestamp"))
	}
	if len(errs) > 0 {
		respondParamErrors(w, errs)
		return
	}
	if !ends.After(starts) {
		respondError(w, apperr.New(apperr.KindBadRequest, "admission period must end after it starts"))
		return
	}

	p := &models.AdmissionPeriod{StartsAt: starts.UTC().UnixMilli(), EndsAt: ends.UTC().UnixMilli()}
	id, err := h.periods.CreatePeriod(r.Context(), p)
	if err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to create admission period", err))
		return
	}
	p.ID = id

	writeJSON(w, p, http.StatusOK)
}
