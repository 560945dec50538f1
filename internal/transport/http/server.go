package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/internal/infra/api"
	"github.com/ReadLaterSync/pkg/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewHTTPServer(cfg *config.Config, source domain.ItemSource) *http.Server {
	return &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: NewRouter(source),
	}
}

func NewRouter(source domain.ItemSource) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/entries/{id}", itemHandler(source)).Methods(http.MethodGet)
	return r
}

// itemHandler looks an item up through the API client, so the answer carries
// the resolved preview picture.
func itemHandler(source domain.ItemSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be an integer")
			return
		}

		item, err := source.GetItem(r.Context(), id)
		switch {
		case api.IsNotFound(err):
			writeError(w, http.StatusNotFound, "item not found")
			return
		case err != nil:
			slog.Error("Item lookup failed", "item_id", id, "error", err)
			writeError(w, http.StatusBadGateway, "upstream lookup failed")
			return
		case item == nil:
			writeError(w, http.StatusNotFound, "item not found")
			return
		}

		writeJSON(w, http.StatusOK, item)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
