// Package api exposes the prediction service over HTTP: request
// validation, routing, CORS, and the JSON response envelope. Everything
// behind the envelope is delegated to the ml package.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ipl-predictor/internal/cfg"
	"ipl-predictor/internal/features"
	"ipl-predictor/internal/ml"
	"ipl-predictor/internal/storage"
)

// Metrics is the subset of metrics the transport layer reports.
type Metrics interface {
	ValidationFailuresInc()
}

// Server is the HTTP front of the predictor.
type Server struct {
	settings  cfg.Settings
	predictor *ml.Predictor
	store     *storage.Store // optional audit log
	metrics   Metrics        // optional
	server    *http.Server
	origins   map[string]struct{}
}

// NewServer wires the prediction API. store and metrics may be nil.
func NewServer(settings cfg.Settings, predictor *ml.Predictor, store *storage.Store, metrics Metrics) *Server {
	s := &Server{
		settings:  settings,
		predictor: predictor,
		store:     store,
		metrics:   metrics,
		origins:   make(map[string]struct{}, len(settings.AllowedOrigins)),
	}
	for _, o := range settings.AllowedOrigins {
		s.origins[o] = struct{}{}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/predict", s.handlePredict)
	mux.HandleFunc("/api/predict/batch", s.handlePredictBatch)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", settings.APIPort),
		Handler:      s.cors(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: settings.RESTTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting prediction API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			if _, ok := s.origins[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status":  "error",
			"message": "Endpoint not found",
			"available_endpoints": map[string]string{
				"/":                  "GET - API info",
				"/api/health":        "GET - Health check",
				"/api/predict":       "POST - Make prediction",
				"/api/predict/batch": "POST - Make batch prediction",
			},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "IPL Match Prediction API is running",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"/api/predict":       "POST - Make match prediction",
			"/api/predict/batch": "POST - Make batch prediction",
			"/api/health":        "GET - Health check",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	modelExists := true
	if _, err := os.Stat(s.settings.ModelPath); err != nil {
		modelExists = false
	}
	if _, err := os.Stat(ml.SidecarPath(s.settings.ModelPath)); err != nil {
		modelExists = false
	}

	status := "healthy"
	code := http.StatusOK
	if !modelExists {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	_, cached := s.predictor.Cached()
	writeJSON(w, code, map[string]any{
		"status":       status,
		"model_loaded": cached,
		"model_exists": modelExists,
		"model_path":   s.settings.ModelPath,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "No JSON data provided", nil)
		return
	}

	validated, err := validateRequest(data)
	if err != nil {
		s.rejectValidation(w, err)
		return
	}

	result, err := s.predictor.PredictOne(validated, s.settings.ModelPath)
	if err != nil {
		s.writePredictionError(w, err)
		return
	}

	s.audit(validated, result)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "success",
		"prediction":       result.Text,
		"win_probability":  result.WinProbability,
		"loss_probability": result.LossProbability,
		"confidence":       confidence(result),
		"input_data":       validated,
	})
}

func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var batch []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil || len(batch) == 0 {
		writeError(w, http.StatusBadRequest, "Expected a non-empty JSON array of inputs", nil)
		return
	}

	validated := make([]map[string]any, len(batch))
	for i, data := range batch {
		v, err := validateRequest(data)
		if err != nil {
			s.rejectValidation(w, fmt.Errorf("input %d: %w", i, err))
			return
		}
		validated[i] = v
	}

	results, err := s.predictor.PredictMany(validated, s.settings.ModelPath)
	if err != nil {
		s.writePredictionError(w, err)
		return
	}

	out := make([]map[string]any, len(results))
	for i, result := range results {
		s.audit(validated[i], result)
		out[i] = map[string]any{
			"prediction":       result.Text,
			"win_probability":  result.WinProbability,
			"loss_probability": result.LossProbability,
			"confidence":       confidence(result),
			"input_data":       validated[i],
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"predictions": out,
	})
}

// rejectValidation reports a pre-inference rejection.
func (s *Server) rejectValidation(w http.ResponseWriter, err error) {
	if s.metrics != nil {
		s.metrics.ValidationFailuresInc()
	}

	var missingErr *features.MissingFeatureError
	if errors.As(err, &missingErr) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Missing required fields: %s", strings.Join(missingErr.Columns, ", ")),
			map[string]any{"required_fields": requiredFields})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error(), nil)
}

// writePredictionError maps predictor failures onto the error envelope.
// Validation-class errors surface as 400s; model and estimator problems
// are server-side failures and never degrade into a stub prediction.
func (s *Server) writePredictionError(w http.ResponseWriter, err error) {
	var notFound *ml.ModelNotFoundError
	var loadErr *ml.ModelLoadError
	var valErr *ml.ValidationError
	var missingErr *features.MissingFeatureError

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusInternalServerError,
			"Model file not found. Please train the model first.",
			map[string]any{"details": fmt.Sprintf("Expected model at: %s", notFound.Path)})
	case errors.As(err, &loadErr):
		log.Error().Err(err).Msg("model artifact load failed")
		writeError(w, http.StatusInternalServerError,
			"Model artifact could not be loaded",
			map[string]any{"details": loadErr.Error()})
	case errors.As(err, &valErr):
		s.rejectValidation(w, err)
	case errors.As(err, &missingErr):
		s.rejectValidation(w, err)
	default:
		log.Error().Err(err).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, "Prediction failed", nil)
	}
}

// audit appends the served prediction to the storage log, if configured.
func (s *Server) audit(input map[string]any, result ml.Result) {
	if s.store == nil {
		return
	}
	rec := storage.PredictionRecord{
		Timestamp:       time.Now().UTC(),
		Input:           input,
		Label:           result.Label,
		WinProbability:  result.WinProbability,
		LossProbability: result.LossProbability,
		ModelPath:       s.settings.ModelPath,
	}
	if err := s.store.StorePrediction(rec); err != nil {
		log.Warn().Err(err).Msg("failed to store prediction audit record")
	}
}

func confidence(r ml.Result) float64 {
	return math.Round(math.Max(r.WinProbability, r.LossProbability)*10000) / 100
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

func writeError(w http.ResponseWriter, code int, message string, extra map[string]any) {
	body := map[string]any{
		"status":  "error",
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
