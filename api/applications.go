package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/gorilla/mux"
	"github.com/qri-io/jsonschema"

	"github.com/opptakhq/opptak/internal/admission"
	"github.com/opptakhq/opptak/internal/jobs"
	"github.com/opptakhq/opptak/pkg/apperr"
	"github.com/opptakhq/opptak/pkg/models"
	"github.com/opptakhq/opptak/pkg/repository"
)

type ApplicationsHandler struct {
	apps       repository.ApplicationRepo
	committees repository.CommitteeRepo
	periods    repository.PeriodRepo
	resolver   *admission.Resolver
	sentinels  admission.Sentinels
	queue      *jobs.Repository   // optional, nil disables notifications
	formSchema *jsonschema.Schema // optional, nil disables field validation
}

func NewApplicationsHandler(ar repository.ApplicationRepo, cr repository.CommitteeRepo, pr repository.PeriodRepo, resolver *admission.Resolver, sentinels admission.Sentinels, queue *jobs.Repository, formSchema *jsonschema.Schema) *ApplicationsHandler {
	return &ApplicationsHandler{
		apps:       ar,
		committees: cr,
		periods:    pr,
		resolver:   resolver,
		sentinels:  sentinels,
		queue:      queue,
		formSchema: formSchema,
	}
}

// Response projections. The list view intentionally omits the status value;
// only the detail view carries it.

type committeeView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type statusRefView struct {
	Committee int64 `json:"committee"`
}

type statusView struct {
	ID        int64  `json:"id"`
	Committee int64  `json:"committee"`
	Value     string `json:"value"`
}

type listApplicationView struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Created    int64           `json:"created"`
	Committees []committeeView `json:"committees"`
	Statuses   []statusRefView `json:"statuses"`
}

type applicationView struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Created    int64           `json:"created"`
	Committees []committeeView `json:"committees"`
	Statuses   []statusView    `json:"statuses"`
}

type listResponse struct {
	Applications []listApplicationView `json:"applications"`
	Pagination   admission.Pagination  `json:"pagination"`
}

func toCommitteeViews(refs []models.CommitteeRef) []committeeView {
	out := make([]committeeView, 0, len(refs))
	for _, c := range refs {
		out = append(out, committeeView(c))
	}
	return out
}

func toListApplicationView(a models.Application) listApplicationView {
	v := listApplicationView{
		ID:         a.ID,
		Name:       a.Name,
		Created:    a.Created,
		Committees: toCommitteeViews(a.Committees),
		Statuses:   make([]statusRefView, 0, len(a.Statuses)),
	}
	for _, s := range a.Statuses {
		v.Statuses = append(v.Statuses, statusRefView{Committee: s.CommitteeID})
	}
	return v
}

func toApplicationView(a *models.Application) applicationView {
	v := applicationView{
		ID:         a.ID,
		Name:       a.Name,
		Created:    a.Created,
		Committees: toCommitteeViews(a.Committees),
		Statuses:   make([]statusView, 0, len(a.Statuses)),
	}
	for _, s := range a.Statuses {
		v.Statuses = append(v.Statuses, statusView{ID: s.ID, Committee: s.CommitteeID, Value: string(s.Value)})
	}
	return v
}

// parseListQuery validates the listing parameters, collecting every violation
// instead of stopping at the first.
func parseListQuery(values url.Values) (admission.ListQuery, []string) {
	var (
		q    admission.ListQuery
		errs []string
	)

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			errs = append(errs, paramError("query", "page", raw, "must be a positive integer"))
		} else {
			q.Page = page
		}
	}

	q.Name = values.Get("name")

	for _, raw := range values["committee"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, paramError("query", "committee", raw, "must be an integer"))
			continue
		}
		q.Committees = append(q.Committees, id)
	}

	if raw := values.Get("status"); raw != "" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			errs = append(errs, paramError("query", "status", raw, "must be a valid status value"))
		} else {
			q.Status = status
		}
	}

	if raw := values.Get("sort"); raw != "" {
		if !admission.ValidSort(raw) {
			errs = append(errs, paramError("query", "sort", raw, "must be one of name_asc, name_desc, date_asc, date_desc"))
		} else {
			q.Sort = raw
		}
	}

	return q, errs
}

func (h *ApplicationsHandler) scopeFor(r *http.Request) (admission.Scope, error) {
	userID, err := callerID(r)
	if err != nil {
		return admission.Scope{}, err
	}
	memberships, err := h.resolver.Resolve(r.Context(), userID)
	if err != nil {
		return admission.Scope{}, err
	}
	return admission.ScopeFor(h.sentinels, memberships), nil
}

func (h *ApplicationsHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeFor(r)
	if err != nil {
		respondError(w, err)
		return
	}

	q, errs := parseListQuery(r.URL.Query())
	if len(errs) > 0 {
		respondParamErrors(w, errs)
		return
	}

	apps, total, err := h.apps.ListApplications(r.Context(), scope, q)
	if err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to list applications", err))
		return
	}

	resp := listResponse{
		Applications: make([]listApplicationView, 0, len(apps)),
		Pagination:   admission.Paginate(total, q.Page),
	}
	for i := range apps {
		admission.Redact(scope, &apps[i])
		resp.Applications = append(resp.Applications, toListApplicationView(apps[i]))
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *ApplicationsHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeFor(r)
	if err != nil {
		respondError(w, err)
		return
	}

	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondParamErrors(w, []string{paramError("path", "id", raw, "must be an integer")})
		return
	}

	app, err := h.apps.GetApplication(r.Context(), id)
	if err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to load application", err))
		return
	}
	if app == nil {
		respondError(w, apperr.New(apperr.KindNotFound, "application not found"))
		return
	}

	if err := admission.Authorize(scope, app.CommitteeIDs()); err != nil {
		respondError(w, err)
		return
	}
	admission.Redact(scope, app)

	writeJSON(w, toApplicationView(app), http.StatusOK)
}

type updateStatusRequest struct {
	Value string `json:"value"`
}

// UpdateStatus records a committee's review decision for one application.
// The caller must sit on that committee; the election committee may update
// any entry.
func (h *ApplicationsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeFor(r)
	if err != nil {
		respondError(w, err)
		return
	}

	vars := mux.Vars(r)
	var errs []string
	appID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		errs = append(errs, paramError("path", "id", vars["id"], "must be an integer"))
	}
	committeeID, err := strconv.ParseInt(vars["committee"], 10, 64)
	if err != nil {
		errs = append(errs, paramError("path", "committee", vars["committee"], "must be an integer"))
	}
	if len(errs) > 0 {
		respondParamErrors(w, errs)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperr.New(apperr.KindBadRequest, "invalid request body"))
		return
	}
	value, ok := models.ParseStatus(req.Value)
	if !ok {
		respondParamErrors(w, []string{paramError("body", "value", req.Value, "must be a valid status value")})
		return
	}

	app, err := h.apps.GetApplication(r.Context(), appID)
	if err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to load application", err))
		return
	}
	if app == nil {
		respondError(w, apperr.New(apperr.KindNotFound, "application not found"))
		return
	}

	if scope.Role != admission.RoleElection && !scope.IsMember(committeeID) {
		respondError(w, apperr.New(apperr.KindForbidden, "you cannot review for this committee"))
		return
	}

	var statusID int64
	for _, s := range app.Statuses {
		if s.CommitteeID == committeeID {
			statusID = s.ID
			break
		}
	}
	if statusID == 0 {
		respondError(w, apperr.New(apperr.KindNotFound, "application has no status for this committee"))
		return
	}

	if err := h.apps.UpdateStatusValue(r.Context(), statusID, value); err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to update status", err))
		return
	}

	app, err = h.apps.GetApplication(r.Context(), appID)
	if err != nil || app == nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to load application", err))
		return
	}
	admission.Redact(scope, app)
	writeJSON(w, toApplicationView(app), http.StatusOK)
}

type submitRequest struct {
	Name       string          `json:"name"`
	Committees []int64         `json:"committees"`
	Fields     json.RawMessage `json:"fields,omitempty"`
}

func (h *ApplicationsHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperr.New(apperr.KindBadRequest, "invalid request body"))
		return
	}

	var errs []string
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errs = append(errs, paramError("body", "name", req.Name, "is required"))
	}
	if len(req.Committees) == 0 {
		errs = append(errs, paramError("body", "committees", "", "at least one committee is required"))
	}
	if h.formSchema != nil && len(req.Fields) > 0 {
		keyErrs, err := h.formSchema.ValidateBytes(r.Context(), req.Fields)
		if err != nil {
			respondError(w, apperr.Wrap(apperr.KindBadRequest, "invalid form fields", err))
			return
		}
		for _, ke := range keyErrs {
			errs = append(errs, paramError("body", "fields", ke.PropertyPath, ke.Message))
		}
	}
	if len(errs) > 0 {
		respondParamErrors(w, errs)
		return
	}

	ctx := r.Context()
	submitted := time.Now().UTC().UnixMilli()

	active, err := h.periods.PeriodActiveAt(ctx, submitted)
	if err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to check admission period", err))
		return
	}
	if !active {
		respondError(w, apperr.New(apperr.KindForbidden, "no admission period is active"))
		return
	}

	committees, err := h.committees.GetCommittees(ctx, req.Committees)
	if err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to load committees", err))
		return
	}
	known := make(map[int64]models.Committee, len(committees))
	for _, c := range committees {
		known[c.ID] = c
	}
	for _, id := range req.Committees {
		c, ok := known[id]
		if !ok {
			respondError(w, apperr.Newf(apperr.KindBadRequest, "unknown committee %d", id))
			return
		}
		if !c.AcceptsAdmissions {
			respondError(w, apperr.New(apperr.KindBadRequest, "a committee the application was sent to is closed"))
			return
		}
	}

	// statuses first; a failure here leaves no application behind
	statusIDs, err := h.apps.CreateStatuses(ctx, req.Committees, models.StatusPending)
	if err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to create statuses", err))
		return
	}

	appID, err := h.apps.CreateApplication(ctx, req.Name, submitted, statusIDs)
	if err != nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to create application", err))
		return
	}

	if h.queue != nil {
		for _, cid := range req.Committees {
			payload, _ := json.Marshal(jobs.NotifyPayload{ApplicationID: appID, CommitteeID: cid, Applicant: req.Name})
			j := &jobs.Job{Type: jobs.TypeNotifyCommittee, Payload: payload, Priority: 100, MaxAttempts: 3}
			if _, err := h.queue.Enqueue(ctx, j); err != nil {
				// notification is best-effort; the submission stands
				logger.Warn("failed to enqueue committee notification", slog.Any("err", err))
			}
		}
	}

	app, err := h.apps.GetApplication(ctx, appID)
	if err != nil || app == nil {
		respondError(w, apperr.Wrap(apperr.KindInternal, "failed to load created application", err))
		return
	}

	writeJSON(w, toApplicationView(app), http.StatusOK)
}
