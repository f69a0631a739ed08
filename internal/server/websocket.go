package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/shipyard/internal/logger"
	"github.com/lawnchairsociety/shipyard/internal/mesh"
	"github.com/lawnchairsociety/shipyard/internal/ship"
	"github.com/lawnchairsociety/shipyard/internal/throttle"
	"github.com/lawnchairsociety/shipyard/internal/viewer"
)

// sessionError is sent instead of a reply when a line is refused.
type sessionError struct {
	Error       string `json:"error"`
	WaitSeconds int    `json:"wait_seconds,omitempty"`
}

func writeSessionError(client Client, reason string, wait int) {
	data, _ := json.Marshal(sessionError{Error: reason, WaitSeconds: wait})
	client.Write(data)
}

// sessionReply is sent after every seed a viewer submits.
type sessionReply struct {
	Snapshot    ship.Snapshot `json:"snapshot"`
	LiveBuffers int           `json:"live_buffers"`
	Triangles   int           `json:"triangles"`
	Shown       int           `json:"shown"`
}

// handleWebSocketUpgrade upgrades an HTTP connection to a viewer session.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	if s.isShuttingDown() {
		http.Error(w, "Server is shutting down.", http.StatusServiceUnavailable)
		return
	}

	clientIP := getRealIP(r, s.cfg.RateLimit.TrustProxy)

	// Check connection limits before upgrading
	if !s.connLimiter.TryAcquire(clientIP) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.Server.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		s.connLimiter.Release(clientIP)
		return
	}

	s.mu.Lock()
	s.sessions[wsConn] = struct{}{}
	s.mu.Unlock()

	go s.handleWebSocketConnection(wsConn, clientIP)
}

func (s *Server) handleWebSocketConnection(wsConn *websocket.Conn, clientIP string) {
	defer func() {
		s.mu.Lock()
		delete(s.sessions, wsConn)
		s.mu.Unlock()
		s.connLimiter.Release(clientIP)
	}()

	client := NewWebSocketClient(wsConn, s.cfg.Server.MaxMessageSize)
	defer client.Close()

	s.handleSession(client)
}

// handleSession shows one ship per line received. Each session owns its own
// scene and slot, so the previous ship is released as soon as the next is shown.
func (s *Server) handleSession(client Client) {
	log := logger.With("session").With("remote_addr", client.RemoteAddr())
	log.Info("Viewer connected")

	scene := mesh.NewScene()
	slot := viewer.NewSlot(scene)
	tracker := throttle.NewTracker(s.cfg.ThrottleConfig())
	defer func() {
		slot.Clear()
		log.Info("Viewer disconnected", "shown", slot.Shown(), "live_buffers", scene.LiveBuffers())
	}()

	for {
		line, err := client.ReadLine()
		if err != nil {
			return
		}
		if len(line) > MaxSeedLength {
			writeSessionError(client, "seed too long", 0)
			continue
		}
		if check := tracker.Check(); !check.Allowed {
			log.Warn("Viewer throttled", "wait_seconds", check.WaitSeconds)
			writeSessionError(client, check.Reason, check.WaitSeconds)
			continue
		}

		sh := slot.Show(line)
		s.recordVisit(sh.Seed)

		data, err := json.Marshal(sessionReply{
			Snapshot:    sh.Snapshot(),
			LiveBuffers: scene.LiveBuffers(),
			Triangles:   scene.LiveTriangles(),
			Shown:       slot.Shown(),
		})
		if err != nil {
			log.Error("Failed to encode ship", "seed", sh.Seed, "error", err)
			return
		}
		if err := client.Write(data); err != nil {
			return
		}
	}
}
