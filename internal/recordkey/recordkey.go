// ABOUTME: Content-addressed record key derivation for health records.
// ABOUTME: Keys are stable across resyncs so upserts merge instead of duplicate.
package recordkey

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/hcbridge/internal/models"
)

// DeriveKey computes the idempotency/merge key for an incoming record.
//
// When recordId is present the key depends only on (deviceId, type, recordId,
// source), so a resync of the same logical record with a mutated payload maps
// to the same row. Otherwise the key is a digest of a canonical serialization
// of the identifying fields plus the payload.
func DeriveKey(deviceID string, r models.RecordEnvelope) string {
	source := r.Source

	if r.RecordID != "" {
		basis := fmt.Sprintf("v1|%s|%s|%s|%s", deviceID, r.Type, r.RecordID, source)
		sum := sha256.Sum256([]byte(basis))
		return hex.EncodeToString(sum[:])
	}

	base := map[string]any{
		"deviceId":  deviceID,
		"type":      r.Type,
		"source":    source,
		"startTime": isoOrNil(r.StartTime),
		"endTime":   isoOrNil(r.EndTime),
		"time":      isoOrNil(r.Time),
		"payload":   r.Payload,
	}
	sum := sha256.Sum256([]byte(CanonicalJSON(base)))
	return hex.EncodeToString(sum[:])
}

func isoOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// CanonicalJSON serializes a value deterministically: object keys sorted,
// compact separators, scalars encoded by encoding/json. The sorting is
// explicit here rather than relying on map marshaling behavior, because key
// order is the contract the record key depends on.
func CanonicalJSON(v any) string {
	var b strings.Builder
	writeCanonical(&b, v)
	return b.String()
}

func writeCanonical(b *strings.Builder, v any) {
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kj, _ := json.Marshal(k)
			b.Write(kj)
			b.WriteByte(':')
			writeCanonical(b, x[k])
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, e)
		}
		b.WriteByte(']')
	case nil:
		b.WriteString("null")
	default:
		j, err := json.Marshal(x)
		if err != nil {
			// Unencodable values degrade to their string form; determinism
			// still holds for identical inputs.
			j, _ = json.Marshal(fmt.Sprint(x))
		}
		b.Write(j)
	}
}
