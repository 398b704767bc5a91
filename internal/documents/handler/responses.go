package handler

import (
	"time"

	"qms/internal/documents"
)

// DocumentResponse adds the date-derived flags, computed at request time.
type DocumentResponse struct {
	*documents.Document
	IsExpired      bool `json:"isExpired"`
	IsExpiringSoon bool `json:"isExpiringSoon"`
}

func toResponse(now time.Time) func(*documents.Document) DocumentResponse {
	return func(d *documents.Document) DocumentResponse {
		return DocumentResponse{
			Document:       d,
			IsExpired:      d.IsExpired(now),
			IsExpiringSoon: d.IsExpiringSoon(documents.ExpiringSoonDays, now),
		}
	}
}
