// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"sync"

	"github.com/canonical/inventory-identity/internal/events"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
)

// Connection is a live client stream bound to one session. It survives token
// reissues because it is keyed by session, not by token value.
type Connection struct {
	SessionID   string
	PrincipalID string

	done   chan struct{}
	once   sync.Once
	reason string
}

// Done is closed once the connection has to be dropped.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Reason is only meaningful after Done is closed.
func (c *Connection) Reason() string {
	return c.reason
}

func (c *Connection) close(reason string) {
	c.once.Do(func() {
		c.reason = reason
		close(c.done)
	})
}

// Registry tracks live connections and drops the ones named by disconnect events.
type Registry struct {
	mu    sync.Mutex
	conns map[string]map[*Connection]struct{}

	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (r *Registry) Register(sessionID, principalID string) *Connection {
	c := &Connection{SessionID: sessionID, PrincipalID: principalID, done: make(chan struct{})}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conns[sessionID] == nil {
		r.conns[sessionID] = make(map[*Connection]struct{})
	}
	r.conns[sessionID][c] = struct{}{}
	r.report()

	return c
}

func (r *Registry) Unregister(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.conns[c.SessionID]
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, c.SessionID)
	}
	r.report()
}

// Handle closes the connections matching the event. An event without a session
// drops every connection of the principal.
func (r *Registry) Handle(e events.DisconnectEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, set := range r.conns {
		if e.SessionID != "" && id != e.SessionID {
			continue
		}
		for c := range set {
			if e.SessionID == "" && c.PrincipalID != e.PrincipalID {
				continue
			}
			c.close(e.Reason)
			n++
		}
	}

	if n > 0 {
		r.logger.Debugf("dropped %d live connections of principal %s: %s", n, e.PrincipalID, e.Reason)
		if err := r.monitor.IncrementEventCounter(map[string]string{"event": "connection_dropped", "outcome": e.Reason}); err != nil {
			r.logger.Debugf("failed to count dropped connections: %v", err)
		}
	}
}

// CloseAll drops every tracked connection.
func (r *Registry) CloseAll(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, set := range r.conns {
		for c := range set {
			c.close(reason)
		}
	}
}

// Count returns the number of tracked connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.count()
}

func (r *Registry) count() int {
	n := 0
	for _, set := range r.conns {
		n += len(set)
	}
	return n
}

// report must be called with mu held.
func (r *Registry) report() {
	if err := r.monitor.SetLiveConnections(map[string]string{"transport": "sse"}, float64(r.count())); err != nil {
		r.logger.Debugf("failed to record live connections: %v", err)
	}
}

// Listen subscribes the registry to the bus until ctx is done.
func (r *Registry) Listen(ctx context.Context, bus SubscriberInterface) (func(), error) {
	return bus.Subscribe(ctx, r.Handle)
}

func NewRegistry(monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Registry {
	r := new(Registry)

	r.conns = make(map[string]map[*Connection]struct{})

	r.monitor = monitor
	r.logger = logger

	return r
}
