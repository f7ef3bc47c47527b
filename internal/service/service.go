// Package service exposes the backend's REST resources as typed Go calls.
// Every call goes through a Sender, normally the gateway, so auth gating
// and error classification happen in one place.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/mmynk/storefront/internal/apierr"
)

// Sender issues one backend request and returns the unwrapped payload.
type Sender interface {
	Send(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error)
}

// decodeList decodes a list payload. The backend is inconsistent about
// list shapes, so a bare array, {"results": [...]} and {"data": [...]} are
// all accepted. An empty or null payload is an empty list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	res := gjson.ParseBytes(raw)
	if res.IsObject() {
		for _, key := range []string{"results", "data", "items"} {
			if v := res.Get(key); v.IsArray() {
				res = v
				break
			}
		}
	}
	if !res.IsArray() {
		if res.Type == gjson.Null || len(raw) == 0 {
			return []T{}, nil
		}
		return nil, malformed(fmt.Errorf("expected a list, got %s", res.Type))
	}

	out := make([]T, 0, len(res.Array()))
	if err := json.Unmarshal([]byte(res.Raw), &out); err != nil {
		return nil, malformed(err)
	}
	return out, nil
}

// decodeObject decodes an object payload, tolerating one more level of
// {"data": {...}} nesting than the gateway already removed.
func decodeObject[T any](raw json.RawMessage) (*T, error) {
	res := gjson.ParseBytes(raw)
	if inner := res.Get("data"); inner.IsObject() {
		res = inner
	}
	if !res.IsObject() {
		return nil, malformed(fmt.Errorf("expected an object, got %s", res.Type))
	}
	var out T
	if err := json.Unmarshal([]byte(res.Raw), &out); err != nil {
		return nil, malformed(err)
	}
	return &out, nil
}

func malformed(err error) error {
	return &apierr.Error{
		Kind:    apierr.KindRequestFailed,
		Message: "unexpected response from server",
		Err:     err,
	}
}
