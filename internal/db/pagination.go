package db

import (
	"encoding/base64"
	"encoding/json"
)

type pageToken struct {
	Offset int64 `json:"offset"`
}

// EncodePageToken returns the token of the page starting at offset
func EncodePageToken(offset int64) string {
	b, _ := json.Marshal(pageToken{Offset: offset})
	return base64.URLEncoding.EncodeToString(b)
}

// DecodePageToken returns 0 for an empty token
func DecodePageToken(token string) (int64, error) {
	if token == "" {
		return 0, nil
	}

	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return 0, &InvalidPaginationTokenError{Message: "invalid pagination token: " + err.Error()}
	}

	var t pageToken
	if err := json.Unmarshal(raw, &t); err != nil {
		return 0, &InvalidPaginationTokenError{Message: "invalid pagination token: " + err.Error()}
	}
	if t.Offset < 0 {
		return 0, &InvalidPaginationTokenError{Message: "invalid pagination token: negative offset"}
	}

	return t.Offset, nil
}

// PageWindow computes the size of the page starting at offset given the
// configured page limit and the query's overall limit. A zero size means the
// query limit is already reached.
func PageWindow(offset, pageLimit, queryLimit int64) int64 {
	size := pageLimit
	if queryLimit > 0 {
		remaining := queryLimit - offset
		if remaining <= 0 {
			return 0
		}
		size = min(size, remaining)
	}
	return size
}
