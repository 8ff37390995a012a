package handlers

import (
	"strconv"
	"time"

	"github.com/serroba/shortlist-go/internal/shortlist"
)

// CreateShortlistRequest is the request body for sharing a shortlist.
// Either ids or listings may be sent. When ids is an array it is used, even
// if empty; listings is only consulted otherwise. Entries that do not name
// an id are ignored, and unknown properties are accepted so clients can post
// the listing objects they already hold.
type CreateShortlistRequest struct {
	Body struct {
		_        struct{} `additionalProperties:"true" json:"-"`
		IDs      []any    `doc:"Listing ids to share"                                  json:"ids,omitempty"`
		Listings []any    `doc:"Listing objects to share; only their id field is used" json:"listings,omitempty"`
	} `required:"false"`
}

// RequestedIDs returns the ids named by the request.
func (r *CreateShortlistRequest) RequestedIDs() []string {
	if r.Body.IDs != nil {
		ids := make([]string, 0, len(r.Body.IDs))
		for _, v := range r.Body.IDs {
			ids = append(ids, textValue(v))
		}

		return ids
	}

	ids := make([]string, 0, len(r.Body.Listings))
	for _, entry := range r.Body.Listings {
		ids = append(ids, listingIDValue(entry))
	}

	return ids
}

// textValue converts a JSON scalar to a string. Null, false, zero and
// composite values become empty.
func textValue(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == 0 {
			return ""
		}

		return strconv.FormatFloat(id, 'f', -1, 64)
	case bool:
		if id {
			return "true"
		}
	}

	return ""
}

// listingIDValue returns the id field of a listings entry. Any scalar id,
// including zero and false, is kept.
func listingIDValue(entry any) string {
	obj, ok := entry.(map[string]any)
	if !ok {
		return ""
	}

	switch id := obj["id"].(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(id)
	}

	return ""
}

// CreateShortlistResponse is returned once a shortlist has been stored.
type CreateShortlistResponse struct {
	Location string `doc:"URL of the shared shortlist" header:"Location"`
	Body     struct {
		Success    bool      `json:"success"`
		Slug       string    `doc:"Share token"               example:"V1StGXR8_Z5jdHi6" json:"slug"`
		CreatedAt  time.Time `json:"createdAt"`
		ExpiresAt  time.Time `json:"expiresAt"`
		TTLSeconds int       `doc:"Lifetime of the share link" example:"604800"          json:"ttlSeconds"`
	}
}

// GetShortlistRequest identifies a shortlist by slug. slug is accepted as an alias of id.
type GetShortlistRequest struct {
	ID   string `doc:"Shortlist slug"          query:"id"`
	Slug string `doc:"Alias of the id parameter" query:"slug"`
}

// SlugParam returns id, falling back to the slug alias.
func (r *GetShortlistRequest) SlugParam() string {
	if r.ID != "" {
		return r.ID
	}

	return r.Slug
}

// GetShortlistResponse is a stored shortlist.
type GetShortlistResponse struct {
	Body struct {
		Slug       string                 `json:"slug"`
		CreatedAt  time.Time              `json:"createdAt"`
		ExpiresAt  time.Time              `json:"expiresAt"`
		TTLSeconds int                    `json:"ttlSeconds"`
		Count      int                    `json:"count"`
		Listings   []shortlist.ListingRef `json:"listings"`
	}
}
