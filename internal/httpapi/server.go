package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classifyd/internal/engine"
	"classifyd/internal/labels"
	"classifyd/internal/manager"
	"classifyd/internal/preprocess"
	"classifyd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	LookupModel(id string) (types.Model, bool)
	Status() types.StatusResponse
	Load(path string) (reused bool, err error)
	RunInference(ctx context.Context, imageBytes []byte) (*types.InferenceResult, error)
	LoadLabelsFile(path string) (int, error)
	LoadLabelsContent(content string) (int, error)
	LastResult() *types.InferenceResult
	Ready() bool
}

// statusForError maps core error kinds to HTTP status codes. The mapping
// lives only here; the core never sees HTTP.
func statusForError(err error) int {
	switch {
	case manager.IsModelNotFound(err):
		return http.StatusNotFound
	case preprocess.IsInvalidImage(err):
		return http.StatusBadRequest
	case labels.IsLabelsLoading(err):
		return http.StatusBadRequest
	case manager.IsModelLoading(err), manager.IsSessionCreation(err):
		return http.StatusUnprocessableEntity
	case manager.IsInference(err), engine.IsOutputProcessing(err):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func NewMux(svc Service) http.Handler {
	rec := &errorRecorder{}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	// fail records the error for GET /error/last and writes the JSON payload.
	fail := func(w http.ResponseWriter, status int, err error) {
		rec.record(err.Error())
		writeJSONError(w, status, err.Error())
	}

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.ModelsResponse{Models: svc.ListModels()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Post("/models/load", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.LoadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		path := req.Path
		if path == "" {
			if req.ID == "" {
				writeJSONError(w, http.StatusBadRequest, "id or path is required")
				return
			}
			mdl, ok := svc.LookupModel(req.ID)
			if !ok {
				fail(w, http.StatusNotFound, manager.ErrModelNotFound(req.ID))
				return
			}
			path = mdl.Path
		}
		reused, err := svc.Load(path)
		if err != nil {
			fail(w, statusForError(err), err)
			return
		}
		if zlog != nil {
			zlog.Info().Str("path", path).Bool("reused", reused).Msg("model load")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.LoadResponse{Path: path, Reused: reused})
	})

	r.Post("/labels", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		ct := strings.ToLower(r.Header.Get("Content-Type"))
		var (
			count int
			err   error
		)
		if strings.HasPrefix(ct, "application/json") {
			var req types.LabelsRequest
			if derr := json.NewDecoder(r.Body).Decode(&req); derr != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if req.Path == "" {
				writeJSONError(w, http.StatusBadRequest, "path is required")
				return
			}
			count, err = svc.LoadLabelsFile(req.Path)
		} else {
			// Plain-text body: the content itself is the label list.
			body, rerr := io.ReadAll(r.Body)
			if rerr != nil {
				writeJSONError(w, http.StatusBadRequest, "failed to read request body")
				return
			}
			count, err = svc.LoadLabelsContent(string(body))
		}
		if err != nil {
			fail(w, statusForError(err), err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.LabelsResponse{Count: count})
	})

	r.Post("/infer", func(w http.ResponseWriter, r *http.Request) {
		imageBytes, err := readImageBody(w, r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo {
			if zlog != nil {
				z := zlog.Info().Str("path", r.URL.Path).Int("bytes", len(imageBytes))
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Msg("infer start")
			} else {
				log.Printf("infer start path=%s bytes=%d", r.URL.Path, len(imageBytes))
			}
		}
		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		result, err := svc.RunInference(joinedCtx, imageBytes)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusForError(err)
			fail(w, status, err)
			if lvl >= LevelInfo {
				if zlog != nil {
					z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
					if rid := middleware.GetReqID(r.Context()); rid != "" {
						z = z.Str("request_id", rid)
					}
					z.Err(err).Msg("infer end")
				} else {
					log.Printf("infer end status=%d dur=%s err=%v", status, time.Since(start), err)
				}
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
		if lvl >= LevelInfo {
			if zlog != nil {
				z := zlog.Info().Str("status", "200").Dur("dur", time.Since(start)).Bool("classification", result.IsClassification)
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Msg("infer end")
			} else {
				log.Printf("infer end status=200 dur=%s", time.Since(start))
			}
		}
	})

	r.Get("/result/last", func(w http.ResponseWriter, r *http.Request) {
		res := svc.LastResult()
		if res == nil {
			writeJSONError(w, http.StatusNotFound, "no inference result available")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	})

	r.Get("/error/last", func(w http.ResponseWriter, r *http.Request) {
		msg, ok := rec.last()
		if !ok {
			writeJSONError(w, http.StatusNotFound, "no error recorded")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("no model loaded"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// readImageBody extracts image bytes from either a multipart form (field
// "image") or a raw request body, enforcing the configured body limit.
func readImageBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, errBadRequest("failed to parse multipart form")
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, errBadRequest("no image file provided, use 'image' as the form field name")
		}
		defer file.Close()
		b, err := io.ReadAll(file)
		if err != nil {
			return nil, errBadRequest("failed to read image file")
		}
		return b, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errBadRequest("failed to read request body")
	}
	if len(b) == 0 {
		return nil, errBadRequest("empty request body")
	}
	return b, nil
}

type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }
