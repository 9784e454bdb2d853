// Command sink-mock is a standalone event receiver for local runs: point
// WEBHOOK_URL at it and watch board events arrive.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"sync/atomic"
)

type envelope struct {
	Kind       string          `json:"kind"`
	OccurredAt string          `json:"occurredAt"`
	Event      json.RawMessage `json:"event"`
}

func main() {
	var (
		port   = flag.String("port", "9099", "port to listen on")
		apiKey = flag.String("api-key", "", "require this X-API-Key header, empty to accept all")
		quiet  = flag.Bool("quiet", false, "suppress per-event logging")
	)
	flag.Parse()

	var received atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if *apiKey != "" && r.Header.Get("X-API-Key") != *apiKey {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			http.Error(w, "malformed envelope", http.StatusBadRequest)
			return
		}

		n := received.Add(1)
		if !*quiet {
			log.Printf("event %d: %s %s", n, env.Kind, env.Event)
		}
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int64{"received": received.Load()})
	})

	addr := ":" + *port
	log.Printf("mock sink listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
