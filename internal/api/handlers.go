package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"social-graph-atlas/internal/apperr"
	"social-graph-atlas/internal/frame"
	"social-graph-atlas/internal/models"
)

const defaultTimeframeDays = 30

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"service": "social-graph-atlas",
		"status":  "ok",
		"version": Version,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.st.GetStats(r.Context())
	if err != nil {
		writeError(w, apperr.Internal("load stats", err))
		return
	}
	writeJSON(w, st)
}

type collectRequest struct {
	Username string `json:"username"`
	UserID   string `json:"user_id"`
	MaxPages int    `json:"max_pages"`
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Username == "" && req.UserID == "" {
		writeError(w, apperr.Validation("username or user_id is required", map[string]string{"username": "required unless user_id given"}))
		return
	}

	result, err := s.collector.RunCollection(r.Context(), req.Username, req.UserID, req.MaxPages)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"run_id":             result.Run.ID,
		"user_id":            result.EgoID,
		"followers_count":    result.FollowersCount,
		"following_count":    result.FollowingCount,
		"follower_interval":  result.FollowersInterval,
		"following_interval": result.FollowingInterval,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseLimitOffset(r, 20)
	runs, err := s.st.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, apperr.Internal("list runs", err))
		return
	}
	writeJSON(w, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, apperr.Validation("invalid run id", map[string]string{"id": "must be an integer"}))
		return
	}
	run, err := s.st.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, apperr.NotFound("run not found"))
		return
	}
	writeJSON(w, run)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := parseLimitOffset(r, 20)
	kind := models.SnapshotKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = models.KindFollowers
	}
	snaps, err := s.st.ListSnapshots(r.Context(), kind, limit)
	if err != nil {
		writeError(w, apperr.Internal("list snapshots", err))
		return
	}
	writeJSON(w, snaps)
}

func (s *Server) handleListIntervals(w http.ResponseWriter, r *http.Request) {
	limit := parseLimitOffset(r, 20)
	intervals, err := s.st.ListIntervals(r.Context(), limit)
	if err != nil {
		writeError(w, apperr.Internal("list intervals", err))
		return
	}
	writeJSON(w, intervals)
}

func (s *Server) handleListIntervalEvents(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, apperr.Validation("invalid interval id", map[string]string{"id": "must be an integer"}))
		return
	}
	kind := models.FollowEventKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = models.FollowNew
	}
	events, err := s.st.ListFollowEvents(r.Context(), id, kind)
	if err != nil {
		writeError(w, apperr.Internal("list follow events", err))
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	limit := parseLimitOffset(r, 50)
	search := r.URL.Query().Get("search")
	accounts, err := s.st.ListAccounts(r.Context(), search, limit, 0)
	if err != nil {
		writeError(w, apperr.Internal("list accounts", err))
		return
	}
	writeJSON(w, accounts)
}

func (s *Server) handlePositionHistory(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, apperr.Validation("account_id is required", map[string]string{"account_id": "required"}))
		return
	}
	limit := parseLimitOffset(r, 100)
	history, err := s.st.ListPositionHistory(r.Context(), accountID, limit)
	if err != nil {
		writeError(w, apperr.Internal("list position history", err))
		return
	}
	writeJSON(w, history)
}

func timeframeWindow(r *http.Request) int {
	if v := r.URL.Query().Get("timeframe_window"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultTimeframeDays
}

func (s *Server) handleListFrames(w http.ResponseWriter, r *http.Request) {
	limit := parseLimitOffset(r, 20)
	frames, err := s.st.ListFrames(r.Context(), timeframeWindow(r), limit)
	if err != nil {
		writeError(w, apperr.Internal("list frames", err))
		return
	}
	writeJSON(w, frames)
}

func (s *Server) handleLatestFrame(w http.ResponseWriter, r *http.Request) {
	f, err := s.st.GetLatestFrame(r.Context(), timeframeWindow(r))
	if err != nil {
		writeError(w, apperr.NotFound("no frame built yet"))
		return
	}
	w.Write(f.Payload)
}

func (s *Server) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["interval_id"], 10, 64)
	if err != nil {
		writeError(w, apperr.Validation("invalid interval id", map[string]string{"interval_id": "must be an integer"}))
		return
	}
	f, err := s.st.GetFrame(r.Context(), id, timeframeWindow(r))
	if err != nil {
		writeError(w, apperr.NotFound("frame not found"))
		return
	}
	w.Write(f.Payload)
}

// handleGraph returns the latest frame for timeframe_window, or an empty
// frame structure if none has been built yet.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	f, err := s.st.GetLatestFrame(r.Context(), timeframeWindow(r))
	if err != nil {
		writeJSON(w, frame.Payload{TimeframeDays: timeframeWindow(r)})
		return
	}
	w.Write(f.Payload)
}

type buildFrameRequest struct {
	IntervalID    *int64 `json:"interval_id"`
	TimeframeDays int    `json:"timeframe_days"`
	EgoID         string `json:"ego_id"`
}

func (s *Server) handleBuildFrame(w http.ResponseWriter, r *http.Request) {
	var req buildFrameRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	intervalID := req.IntervalID
	if intervalID == nil {
		latest, err := s.st.GetLatestInterval(r.Context())
		if err != nil {
			writeError(w, apperr.NotFound("no interval to build a frame for"))
			return
		}
		intervalID = &latest.ID
	}

	egoID := req.EgoID
	if egoID == "" {
		runs, err := s.st.ListRuns(r.Context(), 1)
		if err != nil || len(runs) == 0 || runs[0].EgoAccountID == "" {
			writeError(w, apperr.Validation("ego_id is required: no prior run to infer it from", map[string]string{"ego_id": "required"}))
			return
		}
		egoID = runs[0].EgoAccountID
	}

	f, err := s.builder.Build(r.Context(), *intervalID, req.TimeframeDays, egoID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Write(f.Payload)
}

func (s *Server) handleTimelineFrames(w http.ResponseWriter, r *http.Request) {
	limit := parseLimitOffset(r, 50)
	frames, err := s.st.ListFrames(r.Context(), timeframeWindow(r), limit)
	if err != nil {
		writeError(w, apperr.Internal("list frames", err))
		return
	}
	writeJSON(w, frames)
}

func (s *Server) handleTimelineInterpolate(w http.ResponseWriter, r *http.Request) {
	fromID, err := strconv.ParseInt(r.URL.Query().Get("from_interval_id"), 10, 64)
	if err != nil {
		writeError(w, apperr.Validation("invalid from_interval_id", map[string]string{"from_interval_id": "must be an integer"}))
		return
	}
	toID, err := strconv.ParseInt(r.URL.Query().Get("to_interval_id"), 10, 64)
	if err != nil {
		writeError(w, apperr.Validation("invalid to_interval_id", map[string]string{"to_interval_id": "must be an integer"}))
		return
	}
	progress := 0.0
	if v := r.URL.Query().Get("progress"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			progress = p
		}
	}
	tw := timeframeWindow(r)

	fa, err := s.st.GetFrame(r.Context(), fromID, tw)
	if err != nil {
		writeError(w, apperr.NotFound("from frame not found"))
		return
	}
	fb, err := s.st.GetFrame(r.Context(), toID, tw)
	if err != nil {
		writeError(w, apperr.NotFound("to frame not found"))
		return
	}

	var pa, pb frame.Payload
	if err := json.Unmarshal(fa.Payload, &pa); err != nil {
		writeError(w, apperr.Internal("unmarshal from frame", err))
		return
	}
	if err := json.Unmarshal(fb.Payload, &pb); err != nil {
		writeError(w, apperr.Internal("unmarshal to frame", err))
		return
	}

	writeJSON(w, frame.Interpolate(pa, pb, progress))
}
