package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smegrowth/profiler-cli/internal/config"
	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/internal/pipeline"
	"github.com/smegrowth/profiler-cli/internal/store"
	"github.com/smegrowth/profiler-cli/internal/vocab"
	"github.com/smegrowth/profiler-cli/pkg/strategy"
	"github.com/smegrowth/profiler-cli/pkg/textgen"
)

type stubGateway struct {
	response string
	err      error
}

func (g *stubGateway) Generate(context.Context, string, string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type stubStrategy struct {
	generateErr error
	healthy     bool
	calls       int
}

func (s *stubStrategy) Generate(context.Context, strategy.GenerateRequest) (*strategy.GenerateResponse, error) {
	s.calls++
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &strategy.GenerateResponse{StrategyID: "st-1"}, nil
}

func (s *stubStrategy) FromSubmission(context.Context, string) (*strategy.GenerateResponse, error) {
	return &strategy.GenerateResponse{StrategyID: "st-2"}, nil
}

func (s *stubStrategy) Health(context.Context) strategy.HealthStatus {
	return strategy.HealthStatus{Reachable: s.healthy}
}

func modelResponse() string {
	raw, _ := json.Marshal(map[string]any{
		"business_identity":    map[string]any{},
		"resources":            map[string]any{},
		"goals":                map[string]any{},
		"target_audience":      map[string]any{},
		"platform_preferences": map[string]any{},
	})
	return string(raw)
}

func newTestServer(t *testing.T, gw textgen.Client, strat strategy.Client) (*Server, store.Store) {
	t.Helper()
	st := store.NewMemory()
	builder := pipeline.NewBuilder(vocab.New(), gw, "LKR")
	cfg := &config.Config{}
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.Burst = 1000
	return New(st, builder, strat, cfg), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &stubGateway{response: modelResponse()}, &stubStrategy{healthy: true})
	rec := doJSON(t, s.Router(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s.Router(), http.MethodGet, "/api/v1/strategy/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reachable":true`)
}

func TestSubmitFormValidation(t *testing.T) {
	s, _ := newTestServer(t, &stubGateway{response: modelResponse()}, &stubStrategy{})
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/forms/submit", model.FormData{BusinessName: "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/forms/submit", model.FormData{
		BusinessName: "Perera Bakery",
		Description:  "Small bakery in Colombo",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var sub model.FormSubmission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, model.SubmissionStatusSubmitted, sub.Status)
}

func TestSubmissionCRUD(t *testing.T) {
	s, st := newTestServer(t, &stubGateway{response: modelResponse()}, &stubStrategy{})
	router := s.Router()

	sub, err := st.CreateSubmission(context.Background(), model.FormData{BusinessName: "A", Description: "d"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/forms/submissions/"+sub.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/forms/submissions/"+sub.ID+"/status", map[string]string{"status": "processed"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/forms/submissions?status=processed", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var subs []model.FormSubmission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
	assert.Len(t, subs, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/forms/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/forms/submissions/"+sub.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/forms/submissions/"+sub.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildProfileFromSubmission(t *testing.T) {
	s, st := newTestServer(t, &stubGateway{response: modelResponse()}, &stubStrategy{})
	router := s.Router()

	sub, err := st.CreateSubmission(context.Background(), model.FormData{
		BusinessName: "Serenity Spa",
		Description:  "Small spa in Galle. Budget 30k. Prefer Facebook and Instagram.",
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/profiles/build", buildRequest{SubmissionID: sub.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var saved model.ProfileRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, "Beauty & Personal Care", saved.Profile.BusinessIdentity.BusinessType)
	assert.Equal(t, "Galle", saved.Profile.BusinessIdentity.Location)
	assert.Equal(t, "LKR 30,000", saved.Profile.Resources.MonthlyBudget)

	got, err := st.GetSubmission(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusProcessed, got.Status)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/profiles/"+saved.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildProfileRequiresExactlyOneSource(t *testing.T) {
	s, _ := newTestServer(t, &stubGateway{response: modelResponse()}, &stubStrategy{})
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/profiles/build", buildRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/profiles/build", buildRequest{
		SubmissionID: "x",
		Form:         &model.FormData{Description: "d"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuildProfileGatewayFailure(t *testing.T) {
	gw := &stubGateway{err: &textgen.Error{Kind: textgen.KindTimeout, Message: "generation exceeded 45s"}}
	s, st := newTestServer(t, gw, &stubStrategy{})
	router := s.Router()

	sub, err := st.CreateSubmission(context.Background(), model.FormData{BusinessName: "A", Description: "a bakery"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/profiles/build", buildRequest{SubmissionID: sub.ID})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var envelope errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "extract_llm", envelope.Stage)

	got, err := st.GetSubmission(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusFailed, got.Status)
}

func TestAnalyzeEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &stubGateway{response: modelResponse()}, &stubStrategy{})

	rec := doJSON(t, s.Router(), http.MethodPost, "/api/v1/profiles/analyze", model.FormData{
		Description: "Small bakery in Colombo, budget 25k, we use FB",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var a model.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, "Food & Beverage", a.BusinessType)
	assert.Equal(t, "LKR 25,000", a.Budget)
	assert.Equal(t, []string{"Facebook"}, a.Platforms)
}

func TestGenerateStrategyForProfile(t *testing.T) {
	strat := &stubStrategy{}
	s, st := newTestServer(t, &stubGateway{response: modelResponse()}, strat)
	router := s.Router()

	rec, err := st.SaveProfile(context.Background(), "", model.NewBusinessProfile())
	require.NoError(t, err)

	res := doJSON(t, router, http.MethodPost, "/api/v1/profiles/"+rec.ID+"/strategy", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 1, strat.calls)
	assert.Contains(t, res.Body.String(), "st-1")
}
