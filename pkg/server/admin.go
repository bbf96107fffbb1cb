package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hearthline/cligate/pkg/health"
	"github.com/hearthline/cligate/pkg/jobmanager"
	"github.com/hearthline/cligate/pkg/provider"
	"github.com/hearthline/cligate/pkg/wireadapter"
)

// adminAPI implements the HTTP surface for spec.md §6's admin operations:
// listProviders/listModels, provider.checkAuthStatus/checkRateLimits/
// startLoginJob, jobManager.listJobs/getJob, tracker.snapshot/snapshotModel.
type adminAPI struct {
	registry *provider.Registry
	tracker  *health.Tracker
	jobs     *jobmanager.Manager
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, wireadapter.NewInvalidRequestError(message, "", wireadapter.CodeModelNotFound))
}

// providerSummary is the listProviders() response shape: a provider id
// alongside the model ids it owns.
type providerSummary struct {
	ID     string   `json:"id"`
	Models []string `json:"models"`
}

func (a *adminAPI) listProviders(w http.ResponseWriter, r *http.Request) {
	ids := a.registry.ListProviders()
	out := make([]providerSummary, 0, len(ids))
	for _, id := range ids {
		p, ok := a.registry.GetProvider(id)
		if !ok {
			continue
		}
		var models []string
		for _, m := range p.Binding().Models {
			models = append(models, m.ID)
		}
		out = append(out, providerSummary{ID: id, Models: models})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *adminAPI) providerStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := a.registry.GetProvider(id)
	if !ok {
		writeNotFound(w, "unknown provider: "+id)
		return
	}
	writeJSON(w, http.StatusOK, p.CheckAuthStatus(r.Context()))
}

func (a *adminAPI) providerRateLimit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := a.registry.GetProvider(id)
	if !ok {
		writeNotFound(w, "unknown provider: "+id)
		return
	}
	writeJSON(w, http.StatusOK, p.CheckRateLimits(r.Context()))
}

func (a *adminAPI) providerLogin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := a.registry.GetProvider(id)
	if !ok {
		writeNotFound(w, "unknown provider: "+id)
		return
	}
	jobID, err := p.StartLoginJob(a.jobs)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, wireadapter.NewInvalidRequestError(err.Error(), "loginCommand", "missing_login_command"))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

func (a *adminAPI) listJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, a.jobs.ListJobs(limit))
}

func (a *adminAPI) getJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	summary, logs, ok := a.jobs.GetJob(id)
	if !ok {
		writeNotFound(w, "unknown job: "+id)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		jobmanager.JobSummary
		Logs []string `json:"logs"`
	}{summary, logs})
}

func (a *adminAPI) healthSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.tracker.Snapshot())
}

func (a *adminAPI) healthSnapshotModel(w http.ResponseWriter, r *http.Request) {
	model := r.PathValue("model")
	writeJSON(w, http.StatusOK, a.tracker.SnapshotModel(model))
}
