package models

import (
	"time"

	"shorturl-api/internal/entities"
)

// LinkResponse is the public view of a link
type LinkResponse struct {
	ID          string     `json:"id"`
	OriginalURL string     `json:"original_url"`
	Code        string     `json:"code"`
	ShortURL    string     `json:"short_url"` // Full short URL (base URL + code)
	Accesses    int64      `json:"accesses"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RedirectResponse is returned by the JSON resolve endpoint
type RedirectResponse struct {
	OriginalURL string `json:"original_url"`
}

func NewLinkResponse(link *entities.Link) LinkResponse {
	return LinkResponse{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		Code:        link.Code,
		ShortURL:    link.ShortURL,
		Accesses:    link.Accesses,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
}

func NewLinkResponses(links []*entities.Link) []LinkResponse {
	out := make([]LinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, NewLinkResponse(l))
	}
	return out
}
