// Package ports declares the interfaces the application layer depends on,
// implemented by internal/infrastructure adapters. Grounded on the
// teacher's own ports/adapters split (internal/application/ports +
// internal/infrastructure/adapters).
package ports

import (
	"github.com/cyrup-ai/kargo/internal/domain/extension"
)

// ExtensionRegistry is the read surface the Composer and Dispatcher need.
// The mutating surface (Insert) is exposed directly by
// internal/application/registry.Registry; Discovery is its only writer.
type ExtensionRegistry interface {
	Lookup(name string) (extension.Extension, bool)
	Iter() []NamedExtension
}

// NamedExtension pairs a registry key with its extension, preserving
// Registry iteration order (insertion order — spec.md §4.1).
type NamedExtension struct {
	Name string
	Ext  extension.Extension
}
