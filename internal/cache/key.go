// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached value by tenant, name and parameters.
// Params are rendered in sorted order so equal keys always produce the same string.
type Key struct {
	TenantID string
	Name     string
	Params   map[string]string
}

func (k Key) String() string {
	var b strings.Builder

	b.WriteString(url.QueryEscape(k.TenantID))
	b.WriteByte('/')
	b.WriteString(url.QueryEscape(k.Name))

	if len(k.Params) == 0 {
		return b.String()
	}

	names := make([]string, 0, len(k.Params))
	for n := range k.Params {
		names = append(names, n)
	}
	sort.Strings(names)

	b.WriteByte('?')
	for i, n := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(n))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(k.Params[n]))
	}

	return b.String()
}
