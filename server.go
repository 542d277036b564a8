package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	qrcode "github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// extractIP returns the client IP without the port
func extractIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// SetupRoutes wires the HTTP endpoints onto a fresh mux
func SetupRoutes(hub *Hub, clientDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusTooManyRequests)
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

	// Invite QR code for a private room. The PNG encodes the join URL so
	// a phone camera can drop a second player straight into the room.
	mux.HandleFunc("/invite/", func(w http.ResponseWriter, r *http.Request) {
		roomID := strings.TrimPrefix(r.URL.Path, "/invite/")
		if roomID == "" || !hub.rooms.RoomExists(roomID) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		joinURL := "https://" + r.Host + "/?room=" + roomID
		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(png)
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		type statsResponse struct {
			Online      int           `json:"online"`
			ActiveRooms int           `json:"activeRooms"`
			Top         []AccountRank `json:"top"`
		}
		resp := statsResponse{Online: hub.ClientCount()}
		if hub.analytics != nil {
			peers, rooms := hub.analytics.GetLiveMetrics()
			resp.Online = peers
			resp.ActiveRooms = rooms
		}
		if hub.db != nil {
			top, err := hub.db.TopAccounts(LeaderboardSize)
			if err == nil {
				resp.Top = top
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if clientDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(clientDir)))
	}

	return mux
}
