// MakeX Proxy Edge Example
//
// This is a minimal example of an edge proxy that resolves app hostnames
// through the proxy route keys the MakeX API writes to Redis
// ("proxy:<app>.<domain>" -> target URL) and forwards requests.
//
// Usage:
//
//	export REDIS_URL="redis://localhost:6379/0"
//	go run main.go
//
// Then point a wildcard DNS record (*.makex.app) at this process.
package main

import (
	"context"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Fatal("REDIS_URL environment variable is required")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opt)

	http.HandleFunc("/", proxyHandler(client))
	http.HandleFunc("/health", healthHandler)

	log.Println("Starting proxy edge on :9000")
	log.Fatal(http.ListenAndServe(":9000", nil))
}

func proxyHandler(client *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		target, err := client.Get(ctx, "proxy:"+r.Host).Result()
		if err == redis.Nil {
			http.Error(w, "unknown app host", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("route lookup failed for %s: %v", r.Host, err)
			http.Error(w, "route lookup failed", http.StatusBadGateway)
			return
		}

		targetURL, err := url.Parse(target)
		if err != nil {
			log.Printf("bad route target for %s: %v", r.Host, err)
			http.Error(w, "bad route target", http.StatusBadGateway)
			return
		}

		proxy := httputil.NewSingleHostReverseProxy(targetURL)
		proxy.ServeHTTP(w, r)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
