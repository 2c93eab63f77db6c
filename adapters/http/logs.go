package http

import (
	"encoding/json"
	"net/http"
	"time"

	"mediavault/domain/bandwidth"
	"mediavault/pkg/jsonapi"
)

// ingestLimit caps one ingest batch.
const ingestLimit = 10000

type logEntry struct {
	AssetID      string    `json:"assetId"`
	Path         string    `json:"path"`
	Bytes        int64     `json:"bytes"`
	RequestBytes int64     `json:"requestBytes"`
	EdgeResult   string    `json:"edgeResult"`
	Distribution string    `json:"distribution"`
	Status       int       `json:"status"`
	ClientIP     string    `json:"clientIp"`
	Country      string    `json:"country"`
	Timestamp    time.Time `json:"timestamp"`
}

type ingestRequest struct {
	Logs []logEntry `json:"logs"`
}

// IngestLogs handles POST /api/logs: batch append of CDN access-log
// records from the edge log pipeline.
func (h *Handler) IngestLogs(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("Invalid JSON body"))
		return
	}
	if len(req.Logs) == 0 {
		jsonapi.WriteError(w, jsonapi.ErrValidation("logs", "at least one log entry is required"))
		return
	}
	if len(req.Logs) > ingestLimit {
		jsonapi.WriteError(w, jsonapi.ErrValidation("logs", "batch exceeds the ingest limit"))
		return
	}

	records := make([]bandwidth.Record, len(req.Logs))
	for i, e := range req.Logs {
		if e.Path == "" || e.EdgeResult == "" {
			jsonapi.WriteError(w, jsonapi.ErrValidation("logs", "path and edgeResult are required"))
			return
		}
		records[i] = bandwidth.Record{
			AssetID:      e.AssetID,
			Path:         e.Path,
			Bytes:        e.Bytes,
			RequestBytes: e.RequestBytes,
			EdgeResult:   e.EdgeResult,
			Distribution: e.Distribution,
			Status:       e.Status,
			ClientIP:     e.ClientIP,
			Country:      e.Country,
			Timestamp:    e.Timestamp,
		}
	}

	if err := h.assets.RecordLogs(r.Context(), records); err != nil {
		if h.metrics != nil {
			h.metrics.IngestErrors.Inc()
		}
		h.internalError(w, err, "ingest logs")
		return
	}
	if h.metrics != nil {
		h.metrics.IngestRecords.Add(float64(len(records)))
	}

	jsonapi.WriteDataMeta(w, http.StatusAccepted,
		map[string]string{"status": "accepted"},
		jsonapi.Meta{"ingested": len(records)})
}
