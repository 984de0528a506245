package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wesellis/pulse-activity-tracker/internal/engine"
	"github.com/wesellis/pulse-activity-tracker/internal/store"
)

// Server exposes the engine over HTTP for the web UI and integrations. The
// store supplies samples and tasks; every request runs the engine fresh.
type Server struct {
	store *store.Store
	prefs engine.Preferences
}

func NewServer(store *store.Store, prefs engine.Preferences) *Server {
	return &Server{
		store: store,
		prefs: prefs,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for local development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/activities", s.handleListActivities)
		r.Post("/activities", s.handleCreateActivity)
		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)
		r.Get("/energy-profile", s.handleEnergyProfile)
		r.Get("/debt", s.handleDebt)
		r.Get("/stats", s.handleStats)
		r.Post("/plan", s.handlePlan)
	})

	return r
}

// lookbackDays reads the ?days query parameter, defaulting to the engine's
// standard lookback window.
func lookbackDays(r *http.Request) int {
	days := engine.DefaultLookbackDays
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	return days
}

func (s *Server) samplesForWindow(r *http.Request) ([]engine.ActivitySample, int, error) {
	days := lookbackDays(r)
	samples, err := s.store.ListSamplesSince(time.Now().AddDate(0, 0, -days))
	return samples, days, err
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": "1.0.0",
	})
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	samples, _, err := s.samplesForWindow(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, samples)
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var sample engine.ActivitySample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now()
	}

	if err := s.store.SaveSample(sample); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, sample)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var task engine.CompensationTask
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if task.ID == "" {
		task.ID = "task-" + time.Now().Format("20060102150405")
	}

	if err := s.store.SaveTask(task); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteTask(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted", "id": id})
}

func (s *Server) handleEnergyProfile(w http.ResponseWriter, r *http.Request) {
	samples, _, err := s.samplesForWindow(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var analyzer engine.EnergyProfileAnalyzer
	respondJSON(w, http.StatusOK, analyzer.AnalyzeEnergyPatterns(samples))
}

type debtResponse struct {
	Debt        engine.TimeDebt `json:"debt"`
	Projections map[int]float64 `json:"projections,omitempty"`
}

func (s *Server) handleDebt(w http.ResponseWriter, r *http.Request) {
	samples, days, err := s.samplesForWindow(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	calc := engine.TimeDebtCalculator{WeeklyTargetHours: s.prefs.WeeklyTargetHours}
	debt := calc.CalculateCurrentDebt(time.Now(), samples, days)

	resp := debtResponse{Debt: debt}
	if v := r.URL.Query().Get("ahead"); v != "" {
		if ahead, err := strconv.Atoi(v); err == nil && ahead > 0 {
			resp.Projections = calc.ProjectFutureDebt(debt, ahead)
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	samples, _, err := s.samplesForWindow(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, engine.SummarizeProductivity(samples))
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	samples, _, err := s.samplesForWindow(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	tasks, err := s.store.ListTasks()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	e := engine.NewCompensationEngine(s.prefs, nil)
	respondJSON(w, http.StatusOK, e.AnalyzeAndCompensate(time.Now(), samples, tasks))
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
