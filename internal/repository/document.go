package repository

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Documents are decoded into bson.M and mapped field by field: collections are shared with
// other clients that write legacy field names, missing fields and loosely typed values.

func docID(m bson.M) string {
	switch v := m["_id"].(type) {
	case string:
		return v
	case primitive.ObjectID:
		return v.Hex()
	}
	return ""
}

// idFilter matches a document whose _id is either the string id or, for 24-char hex ids,
// the equivalent ObjectID.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

// docString returns the first non-empty string among keys.
func docString(m bson.M, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func docStringPtr(m bson.M, key string) *string {
	if s, ok := m[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func docStrings(m bson.M, key string) []string {
	var out []string
	switch v := m[key].(type) {
	case bson.A:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, v...)
	}
	return out
}

func docBool(m bson.M, key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

func docInt(m bson.M, key string) int {
	switch v := m[key].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func docFloat(m bson.M, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// docTime accepts BSON datetimes, BSON timestamps and RFC 3339 strings.
func docTime(m bson.M, key string) (time.Time, bool) {
	switch v := m[key].(type) {
	case primitive.DateTime:
		return v.Time().UTC(), true
	case time.Time:
		return v.UTC(), true
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0).UTC(), true
	case string:
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func docTimePtr(m bson.M, key string) *time.Time {
	if t, ok := docTime(m, key); ok {
		return &t
	}
	return nil
}

func docMap(v any) (bson.M, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case map[string]any:
		return bson.M(d), true
	case bson.D:
		out := make(bson.M, len(d))
		for _, e := range d {
			out[e.Key] = e.Value
		}
		return out, true
	}
	return nil, false
}

func docMaps(m bson.M, key string) []bson.M {
	arr, ok := m[key].(bson.A)
	if !ok {
		return nil
	}
	out := make([]bson.M, 0, len(arr))
	for _, item := range arr {
		if sub, ok := docMap(item); ok {
			out = append(out, sub)
		}
	}
	return out
}

func now() time.Time {
	return time.Now().UTC()
}

func skipLimit(offset, limit int) (int64, int64) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	return int64(offset), int64(limit)
}
