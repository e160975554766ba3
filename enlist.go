// Package enlist is the headless core of a machine-management console's
// "add machine" flow. It gates the form on reference-data readiness,
// synthesizes a validation schema for the selected power-control type, maps
// flat field values into a structured creation command, and runs the
// submit/reset/error lifecycle against a backend inventory service.
package enlist

import (
	"context"

	"github.com/goliatone/go-enlist/internal/catalog"
	"github.com/goliatone/go-enlist/pkg/command"
	"github.com/goliatone/go-enlist/pkg/form"
	"github.com/goliatone/go-enlist/pkg/power"
	"github.com/goliatone/go-enlist/pkg/refdata"
	"github.com/goliatone/go-enlist/pkg/schema"
)

// Controller is the form controller; alias exported via the root package for
// convenience.
type Controller = form.Controller

// Dispatcher submits creation commands to the backend inventory service.
type Dispatcher = form.Dispatcher

// ErrorInfo is the normalized submission failure payload.
type ErrorInfo = form.ErrorInfo

// SubmissionError carries a backend rejection across the dispatcher boundary.
type SubmissionError = form.SubmissionError

// Creation is the structured payload sent to register a new machine.
type Creation = command.Creation

// EntityRef identifies the machine the backend created.
type EntityRef = command.EntityRef

// Record is one selectable entry inside a reference collection.
type Record = refdata.Record

// Store fetches named reference collections from the backend.
type Store = refdata.Store

// Schema is the active validation schema for one variant selection.
type Schema = schema.Schema

// EmbeddedCatalog returns the built-in power-control type catalog, used when
// the backend's API description is unavailable.
func EmbeddedCatalog() (power.Catalog, error) {
	return catalog.Embedded()
}

// CatalogFromOpenAPI extracts the power-control type catalog from the
// backend's OpenAPI description.
func CatalogFromOpenAPI(ctx context.Context, raw []byte) (power.Catalog, error) {
	return catalog.FromOpenAPI(ctx, raw)
}

// NewController wires a reference loader and a power-type registry around the
// given collaborators and returns a controller in the Loading state. It is
// the simplest entry point for callers that want the default collection set
// and base rules.
func NewController(store refdata.Store, cat power.Catalog, dispatcher form.Dispatcher, options ...form.Option) (*form.Controller, error) {
	loader, err := refdata.NewLoader(store)
	if err != nil {
		return nil, err
	}
	registry, err := power.NewRegistry(cat)
	if err != nil {
		return nil, err
	}
	return form.New(loader, registry, dispatcher, options...)
}
