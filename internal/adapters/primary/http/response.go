package http

import (
	"encoding/json"
	"net/http"
)

// PaginatedResponse wraps a page of items with its paging metadata. Message
// history uses this; the frontend walks pages with limit/offset.
type PaginatedResponse[T any] struct {
	Data       []T                `json:"data"`
	Pagination PaginationMetadata `json:"pagination"`
}

// PaginationMetadata describes the page that was returned.
type PaginationMetadata struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"totalCount,omitempty"`
	HasMore    bool  `json:"hasMore"`
}

// SuccessResponse carries a confirmation message for operations that have no
// payload to return, like sending a friend request.
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ListResponse wraps an unpaged list of items.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encode errors past this point cannot be reported to the client; the
	// header is already on the wire.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteCreated writes the new resource with a 201.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WritePaginated writes one page of results along with the total count.
func WritePaginated[T any](w http.ResponseWriter, data []T, limit, offset int, totalCount int64) {
	response := PaginatedResponse[T]{
		Data: data,
		Pagination: PaginationMetadata{
			Limit:      limit,
			Offset:     offset,
			TotalCount: totalCount,
			HasMore:    int64(offset+len(data)) < totalCount,
		},
	}

	WriteJSON(w, http.StatusOK, response)
}

// WriteList writes a full result set with its count.
func WriteList[T any](w http.ResponseWriter, data []T) {
	response := ListResponse[T]{
		Data:  data,
		Count: len(data),
	}

	WriteJSON(w, http.StatusOK, response)
}
