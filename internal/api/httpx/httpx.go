package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the shape of every JSON response.
type Envelope struct {
	Success       bool        `json:"success"`
	Message       string      `json:"message,omitempty"`
	Data          any         `json:"data,omitempty"`
	Pagination    *Pagination `json:"pagination,omitempty"`
	Filters       any         `json:"filters,omitempty"`
	Incomplete    bool        `json:"incomplete,omitempty"`
	SkippedTables []string    `json:"skippedTables,omitempty"`
	Error         string      `json:"error,omitempty"`
	Details       any         `json:"details,omitempty"`
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalRecords int64 `json:"totalRecords"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
	Limit        int   `json:"limit"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteOK(w http.ResponseWriter, msg string, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: msg, Data: data})
}

// WriteError writes a failure envelope. detail is internal error text and is
// omitted when empty; callers blank it in production.
func WriteError(w http.ResponseWriter, status int, msg, detail string, details any) {
	WriteJSON(w, status, Envelope{
		Success: false,
		Message: msg,
		Error:   detail,
		Details: details,
	})
}
