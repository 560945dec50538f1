// Command mock-api serves a small fixed set of saved items in the shape of
// the read-later API, for running the mirror locally.
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

func main() {
	now := time.Now()
	items := []map[string]any{
		{
			"id":              101,
			"url":             "https://blog.example.com/posts/go-generics",
			"title":           "Generics in practice",
			"content":         "<p>Type parameters, one year on.</p>",
			"preview_picture": "/images/generics.png",
			"is_archived":     0,
			"is_starred":      1,
			"created_at":      now.Add(-48 * time.Hour).Format("2006-01-02T15:04:05-0700"),
			"updated_at":      now.Format("2006-01-02T15:04:05-0700"),
			"tags":            []map[string]any{{"id": 1, "label": "go", "slug": "go"}},
			"reading_time":    7,
		},
		{
			"id":              102,
			"url":             "https://news.example.org/2024/kafka",
			"title":           "Kafka without the pain",
			"content":         "<p>Consumer groups explained.</p>",
			"preview_picture": "https://cdn.example.org/kafka.jpg",
			"is_archived":     1,
			"is_starred":      0,
			"created_at":      now.Add(-24 * time.Hour).Format(time.RFC3339),
			"updated_at":      now.Add(-time.Hour).Format(time.RFC3339),
			"tags":            []map[string]any{},
			"reading_time":    4,
		},
	}

	http.HandleFunc("/api/entries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"page":      1,
			"limit":     30,
			"pages":     1,
			"total":     len(items),
			"_embedded": map[string]any{"items": items},
		})
	})

	http.HandleFunc("/api/entries/", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/entries/"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
			return
		}
		for _, it := range items {
			if it["id"] == id {
				writeJSON(w, http.StatusOK, it)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	slog.Info("Mock read-later API running on :8081")
	if err := http.ListenAndServe(":8081", nil); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
