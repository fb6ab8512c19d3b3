package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/sidecast/sidecast/go/internal/engagement"
	"github.com/sidecast/sidecast/go/internal/models"
)

func setupServer(cfg *Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	registerRoutes(mux, services)
	services.WSHandler.RegisterRoutes(mux)
	setupHealthCheck(mux)

	handler := c.Handler(mux)

	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, services *Services) {
	// Timeline clock and contents
	mux.HandleFunc("GET /timeline/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"current_video_time": services.Timeline.CurrentVideoTime(),
			"live_video_time":    services.Timeline.LiveVideoTime(),
			"display_time":       services.Timeline.DisplayTime(),
			"is_live":            services.Timeline.IsLive(),
			"time_behind_live":   services.Timeline.TimeBehindLive(),
			"match_phase":        services.Timeline.CurrentMatchPhase(),
		})
	})

	mux.HandleFunc("POST /timeline/video-time", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Seconds float64 `json:"seconds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		services.Timeline.UpdateVideoTime(req.Seconds)
		services.VideoSync.UpdateVideoTime(int(req.Seconds))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /timeline/live-time", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Seconds float64 `json:"seconds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		services.Timeline.UpdateLiveTime(req.Seconds)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /timeline/go-live", func(w http.ResponseWriter, r *http.Request) {
		services.Timeline.GoToLive()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /timeline/export", func(w http.ResponseWriter, r *http.Request) {
		data, err := services.Timeline.ExportEvents()
		if err != nil {
			log.Error().Err(err).Msg("failed to export timeline")
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("POST /timeline/import", func(w http.ResponseWriter, r *http.Request) {
		var body json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := services.Timeline.ImportEvents(body); err != nil {
			log.Error().Err(err).Msg("failed to import timeline")
			http.Error(w, "import failed", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Simulation control
	mux.HandleFunc("POST /simulation/start", func(w http.ResponseWriter, r *http.Request) {
		services.Simulation.StartSimulation()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /simulation/pause", func(w http.ResponseWriter, r *http.Request) {
		services.Simulation.PauseSimulation()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /simulation/stop", func(w http.ResponseWriter, r *http.Request) {
		services.Simulation.StopSimulation()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /simulation/reset", func(w http.ResponseWriter, r *http.Request) {
		services.Simulation.ResetSimulation()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /simulation/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"minute":  services.Simulation.CurrentMinute(),
			"playing": services.Simulation.IsPlaying(),
			"score":   services.Simulation.CurrentScore(),
		})
	})

	// Engagement
	mux.HandleFunc("POST /engagement/load", func(w http.ResponseWriter, r *http.Request) {
		var bc models.BroadcastContext
		if err := json.NewDecoder(r.Body).Decode(&bc); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if bc.BroadcastID == "" {
			http.Error(w, "broadcastId is required", http.StatusBadRequest)
			return
		}
		services.Engagement.LoadEngagement(r.Context(), bc)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /engagement/polls", func(w http.ResponseWriter, r *http.Request) {
		bc := broadcastFromQuery(r)
		if bc.BroadcastID == "" {
			http.Error(w, "broadcast_id is required", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("active") == "true" {
			writeJSON(w, services.Engagement.ActivePolls(bc))
			return
		}
		writeJSON(w, services.Engagement.Polls(bc))
	})

	mux.HandleFunc("GET /engagement/contests", func(w http.ResponseWriter, r *http.Request) {
		bc := broadcastFromQuery(r)
		if bc.BroadcastID == "" {
			http.Error(w, "broadcast_id is required", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("active") == "true" {
			writeJSON(w, services.Engagement.ActiveContests(bc))
			return
		}
		writeJSON(w, services.Engagement.Contests(bc))
	})

	mux.HandleFunc("POST /engagement/polls/{id}/vote", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BroadcastID string `json:"broadcastId"`
			OptionID    string `json:"optionId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		bc := models.BroadcastContext{BroadcastID: req.BroadcastID}
		pollID := r.PathValue("id")
		err := services.Engagement.VoteInPoll(r.Context(), pollID, req.OptionID, bc)
		if err != nil {
			writeEngagementError(w, err)
			return
		}
		// Push the locally bumped tallies to other viewers of this broadcast
		if results, ok := services.Engagement.PollResults(pollID); ok {
			if err := services.Publisher.PublishPollResults(context.Background(), bc.BroadcastID, results); err != nil {
				log.Error().Err(err).Str("poll_id", pollID).Msg("failed to publish poll results")
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /engagement/contests/{id}/participate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BroadcastID string            `json:"broadcastId"`
			Answers     map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		bc := models.BroadcastContext{BroadcastID: req.BroadcastID}
		err := services.Engagement.ParticipateInContest(r.Context(), r.PathValue("id"), req.Answers, bc)
		if err != nil {
			writeEngagementError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func broadcastFromQuery(r *http.Request) models.BroadcastContext {
	return models.BroadcastContext{BroadcastID: r.URL.Query().Get("broadcast_id")}
}

func writeEngagementError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engagement.ErrPollNotFound), errors.Is(err, engagement.ErrContestNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engagement.ErrPollClosed):
		status = http.StatusGone
	case errors.Is(err, engagement.ErrAlreadyVoted):
		status = http.StatusConflict
	case errors.Is(err, engagement.ErrVoteFailed), errors.Is(err, engagement.ErrParticipationFailed):
		status = http.StatusBadGateway
	}
	http.Error(w, err.Error(), status)
}
