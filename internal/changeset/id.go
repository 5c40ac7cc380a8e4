package changeset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"tripflow/internal/trip"
)

// ChangeID derives a content-addressed id for one (tripID, previous,
// proposed) triple. Identical triples always hash to the same id; struct
// field order makes the JSON encoding canonical.
func ChangeID(tripID string, previous, proposed trip.TripInput) string {
	h := sha256.New()
	h.Write([]byte(tripID))
	h.Write([]byte{0})
	writeJSON(h, previous)
	h.Write([]byte{0})
	writeJSON(h, proposed)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

func writeJSON(h interface{ Write([]byte) (int, error) }, v any) {
	b, _ := json.Marshal(v)
	h.Write(b)
}
