package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/salammuloh/fca00c-asteroids/galaxy"
)

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// queryPoint reads x and y from the query string
func queryPoint(r *http.Request) (galaxy.Point, error) {
	q := r.URL.Query()
	x, err := strconv.ParseInt(q.Get("x"), 10, 32)
	if err != nil {
		return galaxy.Point{}, fmt.Errorf("%w: x=%q", errBadCoordinate, q.Get("x"))
	}
	y, err := strconv.ParseInt(q.Get("y"), 10, 32)
	if err != nil {
		return galaxy.Point{}, fmt.Errorf("%w: y=%q", errBadCoordinate, q.Get("y"))
	}
	return galaxy.Point{X: int32(x), Y: int32(y)}, nil
}

func contextFor(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := clientError(err)
	writeJSON(w, status, ErrorMsg{Msg: msg})
}
