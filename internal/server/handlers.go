package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lawnchairsociety/shipyard/internal/cache"
	"github.com/lawnchairsociety/shipyard/internal/database"
	"github.com/lawnchairsociety/shipyard/internal/export"
	"github.com/lawnchairsociety/shipyard/internal/logger"
	"github.com/lawnchairsociety/shipyard/internal/ship"
)

// MaxSeedLength bounds seeds accepted from clients.
const MaxSeedLength = 128

type historyEntry struct {
	ID        int64     `json:"id"`
	Seed      string    `json:"seed"`
	VisitedAt time.Time `json:"visited_at"`
}

type catalogEntry struct {
	Seed          string    `json:"seed"`
	Fingerprint   string    `json:"fingerprint"`
	TotalMass     float64   `json:"total_mass"`
	TotalLength   float64   `json:"total_length"`
	ThrusterCount int       `json:"thruster_count"`
	PodShape      string    `json:"pod_shape"`
	DeckShape     string    `json:"deck_shape"`
	GeneratedAt   time.Time `json:"generated_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":   "ok",
		"uptime":   s.GetUptime().Round(time.Second).String(),
		"sessions": s.SessionCount(),
	}
	if s.db != nil {
		if err := s.db.DB().PingContext(r.Context()); err != nil {
			logger.Warning("Health check database ping failed", "error", err)
			status["status"] = "degraded"
			respondJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleShip(w http.ResponseWriter, r *http.Request) {
	seed, ok := seedParam(w, r)
	if !ok {
		return
	}
	s.serveSnapshot(w, r, seed)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshot(w, r, ship.FreshSeed())
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request, seed string) {
	data, err := s.snapshotJSON(r.Context(), seed)
	if err != nil {
		logger.Error("Failed to encode ship", "seed", seed, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to encode ship")
		return
	}
	s.recordVisit(seed)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Ship-Seed", seed)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	seed, ok := seedParam(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sh := ship.Generate(seed)
	var buf bytes.Buffer
	if err := export.Write(&buf, format, sh); err != nil {
		logger.Error("Failed to export ship", "seed", seed, "format", format, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to export ship")
		return
	}
	s.recordVisit(seed)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+url.PathEscape(seed)+"."+string(format)+`"`)
	w.Header().Set("X-Ship-Seed", sh.Seed)
	w.Header().Set("X-Ship-Fingerprint", sh.Fingerprint())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondError(w, http.StatusServiceUnavailable, "history unavailable")
		return
	}
	limit, ok := limitParam(w, r, s.cfg.Generator.HistoryLimit)
	if !ok {
		return
	}

	visits, err := s.db.RecentVisits(limit)
	if err != nil {
		logger.Error("Failed to load history", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	entries := make([]historyEntry, 0, len(visits))
	for _, v := range visits {
		entries = append(entries, historyEntry{ID: v.ID, Seed: v.Seed, VisitedAt: v.VisitedAt.UTC()})
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	limit, ok := limitParam(w, r, s.cfg.Generator.HistoryLimit)
	if !ok {
		return
	}

	records, err := s.db.ListShips(limit)
	if err != nil {
		logger.Error("Failed to list ships", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list ships")
		return
	}

	entries := make([]catalogEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, catalogEntry{
			Seed:          rec.Seed,
			Fingerprint:   rec.Fingerprint,
			TotalMass:     rec.TotalMass,
			TotalLength:   rec.TotalLength,
			ThrusterCount: rec.ThrusterCount,
			PodShape:      rec.PodShape,
			DeckShape:     rec.DeckShape,
			GeneratedAt:   rec.GeneratedAt.UTC(),
		})
	}
	respondJSON(w, http.StatusOK, entries)
}

// snapshotJSON returns the encoded snapshot for seed, generating and
// cataloguing it on a cache miss. Cache failures degrade to generation.
func (s *Server) snapshotJSON(ctx context.Context, seed string) ([]byte, error) {
	data, err := s.cache.Get(ctx, seed)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warning("Cache read failed", "seed", seed, "error", err)
	}

	snap := ship.Generate(seed).Snapshot()
	data, err = json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, seed, data); err != nil {
		logger.Warning("Cache write failed", "seed", seed, "error", err)
	}
	s.catalog(snap)
	return data, nil
}

func (s *Server) catalog(snap ship.Snapshot) {
	if s.db == nil {
		return
	}
	rec, err := database.NewShipRecord(snap, time.Now())
	if err == nil {
		err = s.db.SaveShip(rec)
	}
	if err != nil {
		logger.Error("Failed to catalog ship", "seed", snap.Seed, "error", err)
	}
}

func (s *Server) recordVisit(seed string) {
	if s.db == nil {
		return
	}
	if _, err := s.db.RecordVisit(seed, time.Now()); err != nil {
		logger.Error("Failed to record visit", "seed", seed, "error", err)
		return
	}
	if keep := s.cfg.Generator.HistoryLimit; keep > 0 {
		if _, err := s.db.PruneHistory(keep); err != nil {
			logger.Warning("Failed to prune history", "error", err)
		}
	}
}

// seedParam reads the {seed} path segment. chi matches against RawPath when
// the request carries one, so only then is the segment still escaped. Blank
// seeds resolve to the seed the generator will actually use.
func seedParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	seed := chi.URLParam(r, "seed")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(seed)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid seed")
			return "", false
		}
		seed = unescaped
	}
	if seed == "" {
		respondError(w, http.StatusBadRequest, "invalid seed")
		return "", false
	}
	if len(seed) > MaxSeedLength {
		respondError(w, http.StatusBadRequest, "seed too long")
		return "", false
	}
	return ship.NormalizeSeed(seed), true
}

// limitParam reads ?limit=N, defaulting to and capped at ceiling.
func limitParam(w http.ResponseWriter, r *http.Request, ceiling int) (int, bool) {
	if ceiling <= 0 {
		ceiling = 100
	}
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return ceiling, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return min(n, ceiling), true
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON", "error", err)
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
