package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cwbudde/qevo/internal/store"
)

func postRun(t *testing.T, s *Server, config JobConfig) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.handleRuns(w, req)
	return w
}

// waitForState polls until the job leaves the pending/running states.
func waitForState(t *testing.T, s *Server, jobID string) Job {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, exists := s.jobManager.GetJob(jobID)
		if exists && job.State != StatePending && job.State != StateRunning {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Job did not finish in time")
	return Job{}
}

func TestServer_CreateRun(t *testing.T) {
	s := NewServer(":0", nil)

	// Same budget as the worker tests: 100 iterations barely move sigma at
	// these scalers and would leave the final elite target far from the
	// optimum.
	w := postRun(t, s, JobConfig{
		Problem:        "quadratic",
		Dims:           2,
		Iterations:     2000,
		SampleSize:     10,
		EliteLevel:     4,
		SigmaScaler:    1.005,
		MuScaler:       20,
		SavingInterval: 100,
		Seed:           42,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}

	finished := waitForState(t, s, job.ID)
	if finished.State != StateCompleted {
		t.Errorf("Expected completed state, got %s (%s)", finished.State, finished.Error)
	}
	if finished.BestCost > 0.01 {
		t.Errorf("Expected convergence on the quadratic, got cost %g", finished.BestCost)
	}
}

func TestServer_CreateRunValidation(t *testing.T) {
	s := NewServer(":0", nil)

	tests := []struct {
		name   string
		config JobConfig
	}{
		{"missing problem", JobConfig{Dims: 2, Iterations: 10}},
		{"sample size not above elite", JobConfig{Problem: "sphere", Dims: 2, SampleSize: 4, EliteLevel: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := postRun(t, s, tt.config); w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestServer_CreateRunBadJSON(t *testing.T) {
	s := NewServer(":0", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	s.handleRuns(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServer_CreateRunDefaults(t *testing.T) {
	s := NewServer(":0", nil)

	w := postRun(t, s, JobConfig{Problem: "sphere", Iterations: 10})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if job.Config.Dims != 2 || job.Config.SampleSize != 10 || job.Config.EliteLevel != 4 {
		t.Errorf("Defaults not applied: %+v", job.Config)
	}
}

func TestServer_ListRuns(t *testing.T) {
	s := NewServer(":0", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	s.handleRuns(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var jobs []Job
	if err := json.NewDecoder(w.Body).Decode(&jobs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("Expected empty job list, got %d", len(jobs))
	}
}

func TestServer_RunStatus(t *testing.T) {
	s := NewServer(":0", nil)
	job := s.jobManager.CreateJob(testJobConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+job.ID+"/status", nil)
	w := httptest.NewRecorder()
	s.handleRunsWithID(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var status map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if status["id"] != job.ID {
		t.Errorf("Expected job ID %s, got %v", job.ID, status["id"])
	}
	if status["state"] != string(StatePending) {
		t.Errorf("Expected pending state, got %v", status["state"])
	}
}

func TestServer_RunStatusNotFound(t *testing.T) {
	s := NewServer(":0", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/nonexistent/status", nil)
	w := httptest.NewRecorder()
	s.handleRunsWithID(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestServer_ArchiveWithoutStore(t *testing.T) {
	s := NewServer(":0", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/some-run/archive", nil)
	w := httptest.NewRecorder()
	s.handleRunsWithID(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 when persistence is disabled, got %d", w.Code)
	}
}

func TestServer_ArchiveRoundTrip(t *testing.T) {
	runStore, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	s := NewServer(":0", runStore)

	archive := &store.Archive{
		CostH:      []float64{5, 0.1},
		PosHistory: [][2][]float64{{{0}, {1}}, {{2.9}, {0.01}}},
		Time:       []float64{0, 100},
	}
	if err := runStore.SaveArchive("run-1", archive); err != nil {
		t.Fatalf("SaveArchive failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1/archive", nil)
	w := httptest.NewRecorder()
	s.handleRunsWithID(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var got store.Archive
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode archive: %v", err)
	}
	if len(got.CostH) != 2 || got.CostH[1] != 0.1 {
		t.Errorf("Archive round-trip failed: %+v", got)
	}

	// Unknown run still 404s
	req = httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-2/archive", nil)
	w = httptest.NewRecorder()
	s.handleRunsWithID(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for missing archive, got %d", w.Code)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := NewServer(":0", nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	s.handleRuns(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	s := NewServer(":0", nil)
	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Preflight should not reach the inner handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers on preflight response")
	}
}
