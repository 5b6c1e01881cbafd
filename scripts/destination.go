// Destination is a simple test HTTP server used to exercise the mirror
// race by hand. It echoes the request line back after an optional
// artificial delay, with a configurable status code.
//
// Usage:
//
//	go run destination.go -port 9001 -delay 100ms -status 200 -name fast
//	go run destination.go -port 9002 -delay 2s -status 200 -name slow
//
// Point the dev server at both and watch the faster one win every race.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

func main() {
	port := flag.Int("port", 9001, "Port to listen on")
	delay := flag.Duration("delay", 0, "Artificial delay before answering")
	status := flag.Int("status", http.StatusOK, "Status code to answer with")
	name := flag.String("name", "", "Name echoed in the response body")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		log.Printf("%s %s host=%s bytes=%d", r.Method, r.URL.RequestURI(), r.Host, len(body))

		if *delay > 0 {
			time.Sleep(*delay)
		}

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(*status)
		fmt.Fprintf(w, "%s answered %s %s after %s\n", *name, r.Method, r.URL.RequestURI(), *delay)
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("test destination %q listening on %s (delay=%s status=%d)", *name, addr, *delay, *status)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
