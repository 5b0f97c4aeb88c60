// Package repository loads and persists the service's data: the menu
// catalog, the seed floor plan and the replicated snapshot.  Handlers and
// commands distinguish failures through the sentinels below.
package repository

import "errors"

// ErrSnapshotNotFound is returned when no snapshot has been persisted yet.
// Callers fall back to the seed file.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrMenuNotFound is returned when a menu id is not in the catalog.
var ErrMenuNotFound = errors.New("menu not found")
