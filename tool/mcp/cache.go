//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

package mcp

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
	"trpc.group/trpc-go/trpc-crew-go/log"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// Cache is a process-wide cache of tool-server sessions keyed by server
// URL, with an explicit invalidate/close lifecycle. Concurrent dials to
// the same server collapse into one via singleflight.
type Cache struct {
	mu       sync.RWMutex
	sessions map[string]*session
	dials    singleflight.Group
}

// NewCache creates an empty session cache.
func NewCache() *Cache {
	return &Cache{
		sessions: make(map[string]*session),
	}
}

var defaultCache = NewCache()

// DefaultCache returns the process-wide session cache.
func DefaultCache() *Cache {
	return defaultCache
}

// session returns a connected session for the configured server,
// dialing and caching one if needed.
func (c *Cache) session(ctx context.Context, config ConnectionConfig, mcpOptions []mcp.ClientOption) (*session, error) {
	c.mu.RLock()
	s, ok := c.sessions[config.ServerURL]
	c.mu.RUnlock()
	if ok && s.isConnected() {
		return s, nil
	}

	v, err, _ := c.dials.Do(config.ServerURL, func() (any, error) {
		// Re-check under the flight; another caller may have dialed.
		c.mu.RLock()
		existing, ok := c.sessions[config.ServerURL]
		c.mu.RUnlock()
		if ok && existing.isConnected() {
			return existing, nil
		}

		fresh := newSession(config, mcpOptions)
		if err := fresh.connect(ctx); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.sessions[config.ServerURL] = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*session), nil
}

// Invalidate drops and closes the cached session for the given server
// URL. The next use dials a fresh connection.
func (c *Cache) Invalidate(serverURL string) {
	c.mu.Lock()
	s, ok := c.sessions[serverURL]
	delete(c.sessions, serverURL)
	c.mu.Unlock()
	if ok {
		if err := s.close(); err != nil {
			log.Warnf("failed to close invalidated session for %s: %v", serverURL, err)
		}
	}
}

// Close closes every cached session and empties the cache.
func (c *Cache) Close() error {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[string]*session)
	c.mu.Unlock()

	var errs []error
	for url, s := range sessions {
		if err := s.close(); err != nil {
			errs = append(errs, err)
			log.Warnf("failed to close session for %s: %v", url, err)
		}
	}
	return errors.Join(errs...)
}
