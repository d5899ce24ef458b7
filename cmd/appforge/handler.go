package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/m-mizutani/appforge"
)

type apiError struct {
	Error string `json:"error"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, apiError{Error: msg})
}

// writeResult answers 502 when the model exchange failed, or 400 when the
// request itself was rejected by the orchestrator.
func (s *server) writeResult(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		if errors.Is(err, appforge.ErrInvalidParameter) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var input extractIntentInput
	if !s.decodeBody(w, r, &input) {
		return
	}
	if input.Prompt == nil {
		s.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	intent, err := s.orchestrator.ExtractIntent(r.Context(), *input.Prompt)
	s.writeResult(w, r, intent, err)
}

func (s *server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var input generatePlanInput
	if !s.decodeBody(w, r, &input) {
		return
	}
	if isAbsent(input.Intent) {
		s.writeError(w, http.StatusBadRequest, "intent is required")
		return
	}

	plan, err := s.orchestrator.GeneratePlan(r.Context(), input.Intent)
	s.writeResult(w, r, plan, err)
}

func (s *server) handleCode(w http.ResponseWriter, r *http.Request) {
	var input generateCodeInput
	if !s.decodeBody(w, r, &input) {
		return
	}
	if isAbsent(input.Plan) {
		s.writeError(w, http.StatusBadRequest, "plan is required")
		return
	}

	code, err := s.orchestrator.GenerateCode(r.Context(), input.Plan, input.Context)
	s.writeResult(w, r, code, err)
}

func (s *server) handleTests(w http.ResponseWriter, r *http.Request) {
	var input generateTestsInput
	if !s.decodeBody(w, r, &input) {
		return
	}
	if isAbsent(input.Code) {
		s.writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	tests, err := s.orchestrator.GenerateTests(r.Context(), input.Code)
	s.writeResult(w, r, tests, err)
}

func (s *server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	var input runInput
	if !s.decodeBody(w, r, &input) {
		return
	}
	if input.Prompt == nil {
		s.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	var options []appforge.PipelineOption
	if input.SkipTests {
		options = append(options, appforge.WithSkipTests())
	}

	result, err := s.orchestrator.RunPipeline(r.Context(), *input.Prompt, options...)
	s.writeResult(w, r, result, err)
}
