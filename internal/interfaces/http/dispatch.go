package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"notifyd/internal/domain/dispatch"
)

const maxEventBodySize = 1 << 20 // 1 MiB

// DispatchHandler exposes the dispatch pipeline as a webhook so any
// event-delivery mechanism (store trigger, queue consumer, cron) can POST
// one notification record per invocation.
type DispatchHandler struct {
	pipeline *dispatch.Pipeline
}

func NewDispatchHandler(pipeline *dispatch.Pipeline) *DispatchHandler {
	return &DispatchHandler{pipeline: pipeline}
}

type dispatchResponse struct {
	Skipped       bool     `json:"skipped"`
	Tokens        int      `json:"tokens"`
	Delivered     int      `json:"delivered"`
	Failed        int      `json:"failed"`
	RemovedTokens []string `json:"removed_tokens,omitempty"`
}

// HandleNotificationEvent handles POST /api/events/notification.
// An absent recipient is a 200 with a skipped result, not an error. A
// gateway-level send failure maps to 502 and a reconcile write failure to
// 500; both are safe for the caller to retry (at-least-once delivery).
func (h *DispatchHandler) HandleNotificationEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var record dispatch.Record
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBodySize)
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.Dispatch(r.Context(), &record)
	if err != nil {
		log.Printf("Dispatch failed for notification %s: %v", record.ID, err)
		if errors.Is(err, dispatch.ErrGatewayUnavailable) {
			http.Error(w, "Push gateway unavailable", http.StatusBadGateway)
			return
		}
		http.Error(w, "Dispatch failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dispatchResponse{
		Skipped:       result.Skipped,
		Tokens:        result.Tokens,
		Delivered:     result.Delivered,
		Failed:        result.Failed,
		RemovedTokens: result.RemovedTokens,
	})
}

// HandleHealth handles GET /health.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
