package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"oembed/internal/lookup"
	"oembed/internal/metrics"
	"oembed/pkg/oembed"
)

const maxRequestBody = 1 << 20

type EndpointResponse struct {
	URL     string   `json:"url"`
	Schemes []string `json:"schemes"`
	Formats []string `json:"formats,omitempty"`
}

type ProviderResponse struct {
	Name      string             `json:"provider_name"`
	URL       string             `json:"provider_url"`
	Endpoints []EndpointResponse `json:"endpoints"`
}

type MatchResponse struct {
	URL         string `json:"url"`
	Provider    string `json:"provider_name"`
	ProviderURL string `json:"provider_url"`
	Endpoint    string `json:"endpoint"`
	Scheme      string `json:"scheme"`
}

type BatchRequest struct {
	URLs      []string `json:"urls"`
	MaxWidth  int      `json:"maxwidth,omitempty"`
	MaxHeight int      `json:"maxheight,omitempty"`
}

type JobResponse struct {
	ID          string      `json:"id"`
	Status      JobStatus   `json:"status"`
	Progress    int         `json:"progress"`
	Total       int         `json:"total"`
	Results     []JobResult `json:"results"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   string      `json:"created_at"`
	StartedAt   *string     `json:"started_at,omitempty"`
	CompletedAt *string     `json:"completed_at,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": s.svc.Schema().Len(),
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	providers := lookup.FilterProviders(s.svc.Schema().Providers(), r.URL.Query().Get("filter"))
	out := make([]ProviderResponse, len(providers))
	for i, p := range providers {
		out[i] = ProviderResponse{Name: p.Name, URL: p.URL, Endpoints: make([]EndpointResponse, len(p.Endpoints))}
		for j, e := range p.Endpoints {
			out[i].Endpoints[j] = EndpointResponse{URL: e.URL, Schemes: e.Schemes, Formats: e.Formats}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	m, ok := s.svc.Match(target)
	if !ok {
		writeError(w, http.StatusNotFound, "no provider for url")
		return
	}
	writeJSON(w, http.StatusOK, MatchResponse{
		URL:         target,
		Provider:    m.Provider.Name,
		ProviderURL: m.Provider.URL,
		Endpoint:    m.Endpoint.URL,
		Scheme:      m.Scheme,
	})
}

func (s *Server) handleOEmbed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	target := q.Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	opts, err := s.parseOptions(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := s.svc.LookupWithOptions(r.Context(), target, opts)
	switch res.Status {
	case lookup.StatusUnsupported:
		writeError(w, http.StatusNotFound, "no provider for url")
	case lookup.StatusFailed:
		var encErr *oembed.EncodeError
		if errors.As(res.Err, &encErr) {
			writeError(w, http.StatusBadRequest, res.Err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, fmt.Sprintf("%s: %v", res.Provider, res.Err))
	default:
		w.Header().Set("X-OEmbed-Provider", res.Provider)
		writeJSON(w, http.StatusOK, res.Response)
	}
}

// parseOptions reads maxwidth and maxheight, falling back to the service
// defaults.
func (s *Server) parseOptions(q url.Values) (oembed.Options, error) {
	opts := s.svc.Options()
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"maxwidth", &opts.MaxWidth},
		{"maxheight", &opts.MaxHeight},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return oembed.Options{}, fmt.Errorf("%s must be a non-negative integer", p.name)
		}
		*p.dst = n
	}
	return opts, nil
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls is required")
		return
	}
	if len(req.URLs) > s.config.MaxBatchURLs {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d urls per batch", s.config.MaxBatchURLs))
		return
	}
	for i, u := range req.URLs {
		if strings.TrimSpace(u) == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("urls[%d] is empty", i))
			return
		}
	}
	if req.MaxWidth < 0 || req.MaxHeight < 0 {
		writeError(w, http.StatusBadRequest, "maxwidth and maxheight must be non-negative")
		return
	}

	opts := s.svc.Options()
	if req.MaxWidth > 0 {
		opts.MaxWidth = req.MaxWidth
	}
	if req.MaxHeight > 0 {
		opts.MaxHeight = req.MaxHeight
	}

	job := s.jobMgr.CreateJob(req.URLs, opts)
	s.logger.Info("Created job %s for %d URLs", job.ID, len(req.URLs))

	go s.processJob(job)

	writeJSON(w, http.StatusAccepted, s.jobToResponse(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jobs := s.jobMgr.ListJobs()
	responses := make([]*JobResponse, len(jobs))
	for i, job := range jobs {
		responses[i] = s.jobToResponse(job)
	}
	writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request) {
	// /api/jobs/{id} or /api/jobs/{id}/cancel
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "job ID required")
		return
	}

	jobID := parts[0]

	if r.Method == http.MethodGet && len(parts) == 1 {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.jobToResponse(job))
		return
	}

	if r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "cancel" {
		err := s.jobMgr.CancelJob(jobID)
		switch {
		case errors.Is(err, ErrJobNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrJobFinished):
			writeError(w, http.StatusConflict, err.Error())
		default:
			s.logger.Info("Cancelled job %s", jobID)
			writeJSON(w, http.StatusOK, map[string]string{"status": string(StatusCancelled)})
		}
		return
	}

	writeError(w, http.StatusBadRequest, "invalid request")
}

func (s *Server) processJob(job *Job) {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Cancel = cancel
		if j.Status == StatusPending {
			j.Status = StatusRunning
		} else {
			// Cancelled before it started.
			cancel()
		}
	})

	s.logger.Info("Starting job %s", job.ID)

	failed := 0
	for _, u := range job.URLs {
		if ctx.Err() != nil {
			break
		}
		res := s.svc.LookupWithOptions(ctx, u, job.Options)
		if res.Status == lookup.StatusFailed && ctx.Err() != nil {
			break
		}
		if res.Status == lookup.StatusFailed {
			failed++
		}
		recorded := false
		s.jobMgr.UpdateJob(job.ID, func(j *Job) {
			recorded = j.addResult(toJobResult(res))
		})
		if !recorded {
			break
		}
	}

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		if j.Status != StatusRunning {
			return
		}
		switch {
		case ctx.Err() != nil:
			j.Status = StatusCancelled
		case failed == len(j.URLs):
			j.Status = StatusFailed
			j.Error = fmt.Sprintf("all %d lookups failed", failed)
		default:
			j.Status = StatusCompleted
		}
	})

	s.logger.Info("Job %s finished (%d/%d failed)", job.ID, failed, len(job.URLs))
}

func toJobResult(res lookup.Result) JobResult {
	out := JobResult{
		URL:      res.URL,
		Status:   res.Status,
		Provider: res.Provider,
		Response: res.Response,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

func (s *Server) jobToResponse(job *Job) *JobResponse {
	resp := &JobResponse{
		ID:        job.ID,
		Status:    job.Status,
		Progress:  job.Progress(),
		Total:     job.Total(),
		Results:   job.Results,
		Error:     job.Error,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	}
	if resp.Results == nil {
		resp.Results = []JobResult{}
	}

	if job.StartedAt != nil {
		started := job.StartedAt.Format(time.RFC3339)
		resp.StartedAt = &started
	}

	if job.CompletedAt != nil {
		completed := job.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &completed
	}

	return resp
}
