package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/upaura/music-app/internal/config"
	"github.com/upaura/music-app/internal/midiout"
	"github.com/upaura/music-app/internal/patterns"
	"github.com/upaura/music-app/internal/preset"
	"github.com/upaura/music-app/internal/sequencer"
	"github.com/upaura/music-app/internal/stream"
	"github.com/upaura/music-app/internal/synth"
)

func main() {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("beatd starting up...")

	// Pattern store: REST collaborator when configured, in-memory otherwise
	var store sequencer.Store
	if cfg.PatternAPIURL != "" {
		client := patterns.NewClient(cfg.PatternAPIURL, cfg.PatternAPIToken)
		healthCtx, healthCancel := context.WithTimeout(ctx, 5*time.Minute)
		defer healthCancel()
		if err := client.WaitForHealthy(healthCtx); err != nil {
			log.Fatalf("Pattern service not available: %v", err)
		}
		store = client
	} else {
		log.Println("Pattern service not configured (set PATTERN_API_URL to persist beats)")
		store = patterns.NewMemStore()
	}

	// Preset library
	library, err := preset.Load(cfg.PresetDir)
	if err != nil {
		log.Fatalf("Preset library: %v", err)
	}
	log.Printf("Loaded %d presets", len(library.All()))

	// Sequencer engine
	engine := sequencer.NewEngine(sequencer.EngineConfig{
		Store:  store,
		Tempo:  cfg.Tempo,
		Volume: cfg.Volume,
	})
	go engine.Run(ctx)

	// Broadcasters: fan out PCM frames and step events to all listeners
	frames := stream.NewBroadcaster[[]int16](150)
	go frames.Run(ctx, engine.Frames())

	steps := stream.NewBroadcaster[sequencer.StepEvent](32)
	go steps.Run(ctx, engine.Steps())

	// MIDI out (optional -- mirrors drum hits to hardware)
	if cfg.MIDIPort != "" {
		sink, err := midiout.Open(cfg.MIDIPort)
		if err != nil {
			log.Printf("MIDI not available: %v", err)
		} else {
			defer sink.Close()
			engine.AddTrigger(sink)
			log.Printf("MIDI connected: %s (drum hits mirrored)", sink.Port())
		}
	} else {
		log.Println("MIDI not configured (set BEAT_MIDI_PORT to drive hardware)")
	}

	webrtcHandler := stream.NewWebRTCHandler(frames)

	// HTTP routes
	mux := http.NewServeMux()

	// Audio and event streams
	mux.Handle("/stream", stream.NewHTTPHandler(frames, cfg.StreamBitrate))
	mux.Handle("/offer", webrtcHandler)
	mux.Handle("/api/steps", stream.NewEventsHandler(steps))

	// API endpoints
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		st := engine.Status()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"state":            st.State,
			"step":             st.Step,
			"tempo":            st.Tempo,
			"grid":             st.Grid,
			"voices":           st.Voices,
			"tracks":           synth.TrackNames(),
			"stream_listeners": frames.ListenerCount(),
			"webrtc_peers":     webrtcHandler.PeerCount(),
		})
	})

	mux.HandleFunc("/api/grid/toggle", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Track int `json:"track"`
			Step  int `json:"step"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		value, applied, err := engine.ToggleCell(req.Track, req.Step)
		if err != nil {
			apiError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"track":   req.Track,
			"step":    req.Step,
			"value":   value,
			"applied": applied,
		})
	})

	mux.HandleFunc("/api/grid/clear", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		engine.Clear()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	mux.HandleFunc("/api/transport/play", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		engine.Play()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "state": "playing"})
	})

	mux.HandleFunc("/api/transport/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		engine.Stop()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "state": "stopped"})
	})

	mux.HandleFunc("/api/transport/tempo", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Tempo int `json:"tempo"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Tempo == 0 {
			http.Error(w, "invalid tempo", http.StatusBadRequest)
			return
		}
		effective := engine.SetTempo(req.Tempo)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "tempo": effective})
	})

	mux.HandleFunc("/api/patterns", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			pats, err := engine.Patterns(r.Context())
			if err != nil {
				apiError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"patterns": pats})
		case http.MethodPost:
			var req struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request", http.StatusBadRequest)
				return
			}
			saved, err := engine.Save(r.Context(), req.Name)
			if err != nil {
				apiError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"message": "Pattern saved successfully",
				"pattern": saved,
			})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/patterns/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/patterns/")

		if r.Method == http.MethodPost && strings.HasSuffix(rest, "/load") {
			id, err := strconv.Atoi(strings.TrimSuffix(rest, "/load"))
			if err != nil {
				http.Error(w, "invalid pattern id", http.StatusBadRequest)
				return
			}
			p, err := engine.LoadSaved(r.Context(), id)
			if err != nil {
				apiError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"ok": true, "pattern": p})
			return
		}

		if r.Method == http.MethodDelete {
			id, err := strconv.Atoi(rest)
			if err != nil {
				http.Error(w, "invalid pattern id", http.StatusBadRequest)
				return
			}
			if err := engine.DeleteSaved(r.Context(), id); err != nil {
				apiError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"message": "Pattern deleted"})
			return
		}

		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/api/presets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"presets": library.All()})
	})

	mux.HandleFunc("/api/presets/load", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "invalid preset name", http.StatusBadRequest)
			return
		}
		p, ok := library.Find(req.Name)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "preset not found"})
			return
		}
		if err := engine.LoadPattern(p.Pattern()); err != nil {
			apiError(w, err)
			return
		}
		log.Printf("Preset loaded: %s (%d BPM)", p.Name, p.Tempo)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "name": p.Name, "tempo": p.Tempo})
	})

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "healthy",
			"service":   "beat-builder",
			"version":   "1.0.0",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: withCORS(mux)}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		server.Close()
	}()

	log.Printf("beatd live on %s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
}

// apiError maps sequencer error types onto HTTP statuses and writes the
// message the way the pattern service does.
func apiError(w http.ResponseWriter, err error) {
	var (
		outOfRange *sequencer.OutOfRangeError
		invalid    *sequencer.ValidationError
		malformed  *sequencer.MalformedPatternError
		notFound   *sequencer.NotFoundError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &outOfRange), errors.As(err, &invalid), errors.As(err, &malformed):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	default:
		log.Printf("API error: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// withCORS lets the collaboration frontend, served from its own origin,
// call the API directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
