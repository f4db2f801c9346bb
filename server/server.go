package main

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/skip2/go-qrcode"

	"github.com/salammuloh/fca00c-asteroids/galaxy"
)

const (
	qrSize      = 256
	defaultDays = 7
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub, cfg Config) http.Handler {
	mux := http.NewServeMux()

	// Serve static files with no-cache so browsers always revalidate
	fs := http.FileServer(http.Dir(cfg.ClientDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		if r.URL.Path == "/" {
			http.ServeFile(w, r, filepath.Join(cfg.ClientDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	}))

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("GET /api/region", hub.handleRegionAPI)
	mux.HandleFunc("GET /api/laser", hub.handleLaserAPI)
	mux.HandleFunc("GET /api/region/qr", func(w http.ResponseWriter, r *http.Request) {
		hub.handleRegionQR(w, r, cfg.PublicURL)
	})
	mux.HandleFunc("GET /api/stats", hub.handleStatsAPI)
	mux.HandleFunc("GET /api/pilot/{name}", hub.handlePilotAPI)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(mux)
}

func (h *Hub) handleRegionAPI(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := contextFor(r)
	defer cancel()

	frame, err := h.ScanRegion(ctx, p, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (h *Hub) handleLaserAPI(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		writeError(w, err)
		return
	}
	msg := LaserMsg{X: p.X, Y: p.Y}

	q := r.URL.Query()
	dirStr := q.Get("dir")
	if n, err := strconv.ParseUint(dirStr, 10, 32); err == nil {
		msg.Dir = uint32(n)
	} else {
		d, err := galaxy.ParseDirection(dirStr)
		if err != nil {
			writeError(w, err)
			return
		}
		msg.Dir = uint32(d)
	}
	if rs := q.Get("range"); rs != "" {
		n, err := strconv.ParseInt(rs, 10, 32)
		if err != nil {
			writeError(w, fmt.Errorf("%w: range %q", galaxy.ErrInvalidRange, rs))
			return
		}
		rng := int32(n)
		msg.Range = &rng
	}

	ctx, cancel := contextFor(r)
	defer cancel()

	shot, err := h.FireLaser(ctx, msg, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shot)
}

// handleRegionQR renders a QR code linking to the region containing x,y
func (h *Hub) handleRegionQR(w http.ResponseWriter, r *http.Request, publicURL string) {
	p, err := queryPoint(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := contextFor(r)
	defer cancel()

	center, err := h.world.CalcCenter(ctx, p)
	if err != nil {
		writeError(w, err)
		return
	}
	link := fmt.Sprintf("%s/?x=%d&y=%d", publicURL, center.X, center.Y)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Hub) handleStatsAPI(w http.ResponseWriter, r *http.Request) {
	days := defaultDays
	if ds := r.URL.Query().Get("days"); ds != "" {
		n, err := strconv.Atoi(ds)
		if err != nil || n <= 0 {
			http.Error(w, "bad days", http.StatusBadRequest)
			return
		}
		days = n
	}
	counts, err := h.analytics.EventCounts(days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days":    days,
		"events":  counts,
		"clients": h.ClientCount(),
		"conns":   h.TotalConns(),
	})
}

// handlePilotAPI reports what a pilot has collected
func (h *Hub) handlePilotAPI(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	pilot, err := h.db.GetPilotByUsername(name)
	if err != nil {
		writeError(w, err)
		return
	}
	if pilot == nil {
		writeJSON(w, http.StatusNotFound, ErrorMsg{Msg: "unknown pilot"})
		return
	}
	ctx, cancel := contextFor(r)
	defer cancel()

	kinds, err := h.db.CollectedByKind(ctx, pilot.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"usr":       pilot.Username,
		"online":    h.IsOnline(pilot.ID),
		"collected": kinds,
	})
}
