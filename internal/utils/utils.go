package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseTimestamp accepts unix seconds, an RFC3339 time or a YYYY-MM-DD date and
// returns unix seconds
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("timestamp cannot be empty")
	}

	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ts, nil
	}

	// date-only values are midnight UTC
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("invalid timestamp %q: expected unix seconds, RFC3339 or YYYY-MM-DD", s)
}

// NormalizeEntityKey lowercases a key and adds the 0x prefix when missing
func NormalizeEntityKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !strings.HasPrefix(key, "0x") {
		key = "0x" + key
	}

	if _, err := hexutil.Decode(key); err != nil {
		return "", fmt.Errorf("invalid entity key %q: %w", key, err)
	}
	return key, nil
}
