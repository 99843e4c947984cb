// Command smoke probes a running docflow-api instance and reports which
// endpoints respond as expected. Intended for post-deploy verification.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

type target struct {
	Method   string
	Path     string
	Expect   int
	Critical bool
}

func main() {
	var (
		baseURL string
		token   string
		timeout time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&token, "token", "", "Bearer token for authenticated probes")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := []target{
		{Method: http.MethodGet, Path: "/health", Expect: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/ready", Expect: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/metrics", Expect: http.StatusOK},
	}
	if token != "" {
		targets = append(targets,
			target{Method: http.MethodGet, Path: "/api/v1/notifications", Expect: http.StatusOK, Critical: true},
			target{Method: http.MethodGet, Path: "/api/v1/metrics/summary", Expect: http.StatusOK},
		)
	}

	client := &http.Client{Timeout: timeout}
	failedCritical := false

	for _, tgt := range targets {
		status, duration, err := probe(client, baseURL, token, tgt)
		switch {
		case err != nil:
			fmt.Printf("FAIL %-6s %-32s error: %v\n", tgt.Method, tgt.Path, err)
			if tgt.Critical {
				failedCritical = true
			}
		case status != tgt.Expect:
			fmt.Printf("FAIL %-6s %-32s got %d want %d (%s)\n", tgt.Method, tgt.Path, status, tgt.Expect, duration)
			if tgt.Critical {
				failedCritical = true
			}
		default:
			fmt.Printf("OK   %-6s %-32s %d (%s)\n", tgt.Method, tgt.Path, status, duration)
		}
	}

	if failedCritical {
		log.Println("critical probe failed")
		os.Exit(1)
	}
}

func probe(client *http.Client, baseURL, token string, tgt target) (int, time.Duration, error) {
	req, err := http.NewRequest(tgt.Method, baseURL+tgt.Path, nil)
	if err != nil {
		return 0, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start).Round(time.Millisecond)
	if err != nil {
		return 0, duration, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, duration, nil
}
