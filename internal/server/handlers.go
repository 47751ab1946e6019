package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/internal/pipeline"
	"github.com/smegrowth/profiler-cli/internal/store"
	"github.com/smegrowth/profiler-cli/pkg/strategy"
)

// errorResponse is the uniform error envelope. Stage is set for pipeline
// failures so clients can tell a gateway outage from bad input.
type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg, stage string) {
	writeJSON(w, status, errorResponse{Error: msg, Stage: stage})
}

// writePipelineError maps a pipeline failure onto an HTTP status with the
// originating stage in the envelope.
func writePipelineError(w http.ResponseWriter, err error) {
	stage := string(pipeline.FailedStage(err))
	status := http.StatusInternalServerError
	if stage == string(pipeline.StageExtract) {
		status = http.StatusBadGateway
	}
	writeError(w, status, err.Error(), stage)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStrategyHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.strategy.Health(r.Context()))
}

func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	var form model.FormData
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	if strings.TrimSpace(form.BusinessName) == "" || strings.TrimSpace(form.Description) == "" {
		writeError(w, http.StatusBadRequest, "business_name and description are required", "")
		return
	}

	sub, err := s.store.CreateSubmission(r.Context(), form)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	filter := store.SubmissionFilter{
		Status: model.SubmissionStatus(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	if filter.Status != "" && !model.ValidSubmissionStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, "unknown status filter", "")
		return
	}

	subs, err := s.store.ListSubmissions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if subs == nil {
		subs = []model.FormSubmission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleSubmissionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.SubmissionStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := s.store.GetSubmission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleUpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.SubmissionStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	if !model.ValidSubmissionStatus(body.Status) {
		writeError(w, http.StatusBadRequest, "unknown status", "")
		return
	}

	if err := s.store.UpdateSubmissionStatus(r.Context(), chi.URLParam(r, "id"), body.Status); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(body.Status)})
}

func (s *Server) handleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSubmission(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildRequest triggers a profile build from a stored submission or an
// inline form. Exactly one of the two must be set.
type buildRequest struct {
	SubmissionID string          `json:"submission_id,omitempty"`
	Form         *model.FormData `json:"form,omitempty"`
}

func (s *Server) handleBuildProfile(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	if (req.SubmissionID == "") == (req.Form == nil) {
		writeError(w, http.StatusBadRequest, "provide exactly one of submission_id or form", "")
		return
	}

	form := model.FormData{}
	if req.Form != nil {
		form = *req.Form
	} else {
		sub, err := s.store.GetSubmission(r.Context(), req.SubmissionID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		form = sub.FormData
	}

	profile, err := s.builder.Build(r.Context(), form)
	if err != nil {
		if req.SubmissionID != "" {
			s.markSubmission(r, req.SubmissionID, model.SubmissionStatusFailed)
		}
		writePipelineError(w, err)
		return
	}

	rec, err := s.store.SaveProfile(r.Context(), req.SubmissionID, profile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if req.SubmissionID != "" {
		s.markSubmission(r, req.SubmissionID, model.SubmissionStatusProcessed)
	}

	if s.autoStrategy {
		if _, err := s.strategy.Generate(r.Context(), strategy.GenerateRequest{SMEProfile: profileAsMap(profile)}); err != nil {
			// Strategy generation is best-effort when automatic; the
			// profile build already succeeded.
			zap.L().Warn("server: auto strategy generation failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var form model.FormData
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	if strings.TrimSpace(form.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required", "")
		return
	}
	writeJSON(w, http.StatusOK, s.builder.Analyze(form))
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListProfiles(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if records == nil {
		records = []model.ProfileRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProfile(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerateStrategy(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp, err := s.strategy.Generate(r.Context(), strategy.GenerateRequest{
		SMEProfile: profileAsMap(rec.Profile),
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// helpers

func (s *Server) markSubmission(r *http.Request, id string, status model.SubmissionStatus) {
	if err := s.store.UpdateSubmissionStatus(r.Context(), id, status); err != nil {
		zap.L().Warn("server: update submission status",
			zap.String("submission_id", id),
			zap.Error(err),
		)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found", "")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error(), "")
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// profileAsMap round-trips the typed profile through JSON for the strategy
// payload, which is schemaless on the wire.
func profileAsMap(p *model.BusinessProfile) map[string]any {
	raw, err := json.Marshal(p)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}
