package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"railgen/internal/codec"
	"railgen/internal/domain"
	"railgen/internal/loader"
	"railgen/internal/repository"
	"railgen/internal/scenario"
	"railgen/internal/service"
)

// maxScriptSize bounds YAML scripts posted to /api/generate.
const maxScriptSize = 4 << 20

// ErrorResponse is the body of every error answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ScenarioInfo describes a built-in script
type ScenarioInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// GenerationHandler handles generation API requests
type GenerationHandler struct {
	svc *service.GenerationService
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(svc *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// Register mounts the API routes on mux.
func (h *GenerationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/scenarios", h.ListScenarios)
	mux.HandleFunc("POST /api/generate/{name}", h.GenerateScenario)
	mux.HandleFunc("POST /api/generate", h.GenerateScript)
	mux.HandleFunc("GET /api/runs", h.ListRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.GetRun)
	mux.HandleFunc("GET /api/runs/{id}/infra", h.GetRunInfra)
	mux.HandleFunc("POST /api/runs/{id}/import", h.ImportRun)
}

// ListScenarios returns the built-in scripts
func (h *GenerationHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scripts := scenario.All()
	infos := make([]ScenarioInfo, 0, len(scripts))
	for _, s := range scripts {
		info := ScenarioInfo{Name: s.Name()}
		if d, ok := s.(scenario.Described); ok {
			info.Description = d.Description()
		}
		infos = append(infos, info)
	}
	h.writeJSON(w, infos, http.StatusOK)
}

// GenerateScenario runs a built-in script
func (h *GenerationHandler) GenerateScenario(w http.ResponseWriter, r *http.Request) {
	script, err := scenario.Lookup(r.PathValue("name"))
	if err != nil {
		h.writeError(w, "Unknown scenario", err.Error(), http.StatusNotFound)
		return
	}
	h.generate(w, r, script)
}

// GenerateScript runs a YAML topology script sent as the request body
func (h *GenerationHandler) GenerateScript(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxScriptSize+1))
	if err != nil {
		h.writeError(w, "Failed to read script", err.Error(), http.StatusBadRequest)
		return
	}
	if len(data) > maxScriptSize {
		h.writeError(w, "Script too large", "", http.StatusRequestEntityTooLarge)
		return
	}

	script, err := loader.ParseScript(data)
	if err != nil {
		h.writeError(w, "Invalid script", err.Error(), http.StatusBadRequest)
		return
	}
	if script.Name() == "" {
		h.writeError(w, "Invalid script", "the script needs a name", http.StatusBadRequest)
		return
	}
	h.generate(w, r, script)
}

func (h *GenerationHandler) generate(w http.ResponseWriter, r *http.Request, script scenario.Script) {
	gen, err := h.svc.Generate(r.Context(), script)
	if err != nil {
		log.Printf("Failed to generate %s: %v", script.Name(), err)
		h.writeError(w, "Generation failed", err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, gen.Run, http.StatusCreated)
}

// ListRuns returns recorded runs, newest first
func (h *GenerationHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, "Invalid limit", v, http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.svc.History(r.Context(), r.URL.Query().Get("script"), limit)
	if err != nil {
		log.Printf("Failed to list runs: %v", err)
		h.writeError(w, "Failed to list runs", err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*repository.Run{}
	}
	h.writeJSON(w, runs, http.StatusOK)
}

// GetRun returns a single run
func (h *GenerationHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, run, http.StatusOK)
}

// GetRunInfra streams the RailJSON document written by a run
func (h *GenerationHandler) GetRunInfra(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}

	f, err := os.Open(filepath.Join(run.OutputDir, codec.InfraFileName))
	if err != nil {
		h.writeError(w, "Generation not on disk", err.Error(), http.StatusGone)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+codec.InfraFileName)
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("Failed to send %s: %v", f.Name(), err)
	}
}

// ImportRun imports a run into the infrastructure service
func (h *GenerationHandler) ImportRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, "Invalid run ID", err.Error(), http.StatusBadRequest)
		return
	}

	run, err := h.svc.ImportRun(r.Context(), id)
	if err != nil {
		log.Printf("Failed to import run %s: %v", id, err)
		h.writeError(w, "Import failed", err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, run, http.StatusOK)
}

func (h *GenerationHandler) lookupRun(w http.ResponseWriter, r *http.Request) (*repository.Run, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, "Invalid run ID", err.Error(), http.StatusBadRequest)
		return nil, false
	}

	run, err := h.svc.Run(r.Context(), id)
	if err != nil {
		h.writeError(w, "Failed to get run", err.Error(), statusFor(err))
		return nil, false
	}
	return run, true
}

// invalidTopology lists the errors caused by the script rather than the server.
var invalidTopology = []error{
	domain.ErrDuplicateIdentifier,
	domain.ErrOutOfBounds,
	domain.ErrEndpointConsumed,
	domain.ErrArityMismatch,
	domain.ErrUnknownVariant,
	domain.ErrSelfLink,
	domain.ErrUnknownTrack,
	loader.ErrInvalidScript,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, scenario.ErrUnknownScenario):
		return http.StatusNotFound
	case errors.Is(err, service.ErrImportDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrInvalidName):
		return http.StatusBadRequest
	}
	for _, target := range invalidTopology {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// Helper methods

func (h *GenerationHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *GenerationHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
