package api

import (
	"bytes"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// payload is an untyped JSON request body. Callers send differently shaped objects,
// so fields are probed instead of bound to a struct.
type payload struct {
	root jsoniter.Any
}

// topLevelUserIDKeys are tried on the body in order, then nestedUserIDKeys on "user" or "userInfo".
var (
	topLevelUserIDKeys = []string{"userId", "user_id", "id"}
	nestedUserIDKeys   = []string{"userId", "id", "user_id"}
)

func parsePayload(body []byte) (payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return payload{}, catalog.ErrInvalidRequestBody
	}

	root := json.Get(body)
	if root.ValueType() != jsoniter.ObjectValue {
		return payload{}, catalog.ErrInvalidRequestBody
	}

	return payload{root: root}, nil
}

// int returns the integer at key, accepting JSON integers and numeric strings.
// A field that is missing or not parseable yields false.
func (p payload) int(key string) (int64, bool) {
	return coerceInt(p.root.Get(key))
}

// userID resolves the user id: top-level userId, user_id and id first, then the same keys
// inside the nested "user" object, or inside "userInfo" if there is no "user" at all.
func (p payload) userID() (int64, bool) {
	for _, key := range topLevelUserIDKeys {
		if v, ok := p.int(key); ok {
			return v, true
		}
	}

	nested := p.root.Get("user")
	if nested.ValueType() == jsoniter.InvalidValue {
		nested = p.root.Get("userInfo")
	}

	if nested.ValueType() != jsoniter.ObjectValue {
		return 0, false
	}

	for _, key := range nestedUserIDKeys {
		if v, ok := coerceInt(nested.Get(key)); ok {
			return v, true
		}
	}

	return 0, false
}

// optional turns a probe result into an id that is nil when the field was absent.
func optional(v int64, ok bool) *int64 {
	if !ok {
		return nil
	}

	return &v
}

func coerceInt(v jsoniter.Any) (int64, bool) {
	switch v.ValueType() {
	case jsoniter.NumberValue, jsoniter.StringValue:
		n, err := strconv.ParseInt(v.ToString(), 10, 64)
		if err != nil {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}
