package api

import "github.com/gorilla/mux"

func registerBaseRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/", s.handleRoot).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats", s.handleStats).Methods("GET", "OPTIONS")
}

func registerCollectionRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/collect", s.handleCollect).Methods("POST", "OPTIONS")
	r.HandleFunc("/runs", s.handleListRuns).Methods("GET", "OPTIONS")
	r.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET", "OPTIONS")
}

func registerQueryRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/snapshots", s.handleListSnapshots).Methods("GET", "OPTIONS")
	r.HandleFunc("/intervals", s.handleListIntervals).Methods("GET", "OPTIONS")
	r.HandleFunc("/intervals/{id}/events", s.handleListIntervalEvents).Methods("GET", "OPTIONS")
	r.HandleFunc("/accounts", s.handleListAccounts).Methods("GET", "OPTIONS")
	r.HandleFunc("/positions/history", s.handlePositionHistory).Methods("GET", "OPTIONS")
}

func registerFrameRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/frames", s.handleListFrames).Methods("GET", "OPTIONS")
	r.HandleFunc("/frames/latest", s.handleLatestFrame).Methods("GET", "OPTIONS")
	r.HandleFunc("/frames/build", s.handleBuildFrame).Methods("POST", "OPTIONS")
	r.HandleFunc("/frames/{interval_id}", s.handleGetFrame).Methods("GET", "OPTIONS")
	r.HandleFunc("/graph", s.handleGraph).Methods("GET", "OPTIONS")
}

func registerTimelineRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/timeline/frames", s.handleTimelineFrames).Methods("GET", "OPTIONS")
	r.HandleFunc("/timeline/interpolate", s.handleTimelineInterpolate).Methods("GET", "OPTIONS")
}
