// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"net/http"
)

// Response is the standard json envelope of every API reply.
type Response struct {
	Data    interface{}         `json:"data,omitempty"`
	Message string              `json:"message"`
	Status  int                 `json:"status"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Meta    *Pagination         `json:"_meta,omitempty"`
}

type Pagination struct {
	Page int64 `json:"page"`
	Size int64 `json:"size"`
}

func WriteJSON(w http.ResponseWriter, status int, r Response) error {
	r.Status = status
	if r.Message == "" {
		r.Message = http.StatusText(status)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(r)
}
