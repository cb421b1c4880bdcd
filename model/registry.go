//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

package model

import "sync"

// The process-wide registry maps model identifiers from agent records
// to Model implementations. The service layer registers its backends
// once at startup; executions resolve them read-only.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Model)
)

// Register associates a model identifier with an implementation,
// replacing any previous registration under the same identifier.
func Register(name string, m Model) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = m
}

// Lookup returns the model registered under the given identifier.
func Lookup(name string) (Model, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[name]
	return m, ok
}

// Unregister removes the registration for the given identifier.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}
