package strata

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewID generates a globally unique, time-sortable UUIDv7 (RFC 9562).
// Used for document IDs when the caller does not supply one.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RecordID derives the stable index record ID for a chunk. The same document
// ID and chunk index always produce the same record ID, so re-running the
// pipeline on identical input upserts over the previous records instead of
// duplicating them.
func RecordID(documentID string, index int) string {
	sum := sha256.Sum256([]byte(documentID + ":" + strconv.Itoa(index)))
	return hex.EncodeToString(sum[:])
}

// NowUnix returns current time as Unix seconds.
func NowUnix() int64 {
	return time.Now().Unix()
}
