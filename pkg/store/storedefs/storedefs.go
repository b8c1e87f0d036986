// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// do not need to depend on the concrete implementation.
package storedefs

import (
	"errors"
	"time"
)

// ErrNoTemplate is returned when a template does not exist.
var ErrNoTemplate = errors.New("no such template")

// Store is an interface satisfied by the storage service.
type Store interface {
	// PutTemplate adds a template or replaces its source.
	PutTemplate(name, src string) error
	// Template returns the source of a template.
	Template(name string) (string, error)
	// TemplateInfo returns a template and its metadata.
	TemplateInfo(name string) (Template, error)
	// DelTemplate deletes a template.
	DelTemplate(name string) error
	// Names returns the names of all templates in lexical order.
	Names() ([]string, error)
}

// Template is a template stored in the library.
type Template struct {
	Name   string
	Source string
	// Incremented across the whole store on every PutTemplate.
	Revision int
	Updated  time.Time
}
