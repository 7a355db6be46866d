package floating

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"github.com/featvid/featvid/internal/database"
	"github.com/featvid/featvid/internal/httputil"
)

// CountryResolver maps an IP to a country code for event records.
type CountryResolver interface {
	Country(ip string) string
}

// EventHandler records popup interactions (open, prev, next, close) for the
// engagement report.
type EventHandler struct {
	db    database.DBTX
	geoip CountryResolver
}

func NewEventHandler(db database.DBTX, geoip CountryResolver) *EventHandler {
	return &EventHandler{db: db, geoip: geoip}
}

type eventRequest struct {
	Action     string `json:"action"`
	VideoIndex int    `json:"videoIndex"`
}

func (h *EventHandler) Record(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid floating video id")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Action {
	case "open", "prev", "next", "close":
	default:
		httputil.WriteError(w, http.StatusBadRequest, "unknown event action")
		return
	}
	if req.VideoIndex < 0 {
		httputil.WriteError(w, http.StatusBadRequest, "videoIndex must not be negative")
		return
	}

	if _, err := getRecord(r.Context(), h.db, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "floating video not found")
			return
		}
		slog.Error("failed to load floating video", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to record event")
		return
	}

	ua := useragent.New(r.UserAgent())
	browserName, browserVersion := ua.Browser()
	browser := browserName
	if browserVersion != "" {
		browser = browserName + " " + browserVersion
	}
	device := "desktop"
	if ua.Mobile() {
		device = "mobile"
	}

	country := ""
	if h.geoip != nil {
		country = h.geoip.Country(clientIP(r))
	}

	_, err = h.db.Exec(r.Context(),
		`INSERT INTO popup_events (floating_video_id, action, video_index, browser, os, device, country)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, req.Action, req.VideoIndex, browser, ua.OS(), device, country)
	if err != nil {
		slog.Error("failed to record popup event", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to record event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
