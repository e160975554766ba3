// Package form implements the machine enlistment form controller: readiness
// gating on reference data, variant-aware schema synthesis, and the
// submit/reset/error lifecycle.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/goliatone/go-enlist/pkg/command"
	"github.com/goliatone/go-enlist/pkg/notify"
	"github.com/goliatone/go-enlist/pkg/power"
	"github.com/goliatone/go-enlist/pkg/refdata"
	"github.com/goliatone/go-enlist/pkg/schema"
)

// State enumerates the controller lifecycle.
type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateSaved      State = "saved"
	StateFailed     State = "failed"
)

const defaultSavedPath = "/machines"

// Dispatcher submits creation commands to the backend inventory service.
// Application-level rejections should be returned as *SubmissionError so the
// controller can surface per-field messages; any other error is treated as a
// transport failure and displayed the same way. Timeout policy belongs to
// the dispatcher, not the controller.
type Dispatcher interface {
	Create(ctx context.Context, cmd command.Creation) (command.EntityRef, error)
}

// Controller orchestrates the enlistment form: it gates interactive use on
// the reference loader, holds current field values, rebuilds the validation
// schema when the power-control variant changes, and runs the submission
// lifecycle. All state transitions happen under one lock, so event handlers
// never interleave.
type Controller struct {
	loader     *refdata.Loader
	registry   *power.Registry
	dispatcher Dispatcher
	mapper     *command.Mapper
	formatter  *notify.Formatter
	notifier   notify.Notifier
	navigate   func(path string)
	savedPath  string
	baseRules  []schema.Rule
	log        logr.Logger

	mu          sync.Mutex
	state       State
	values      map[string]any
	active      schema.Schema
	fieldErrors schema.Issues
	lastError   ErrorInfo
	closed      bool
	generation  uint64
	readyOnce   sync.Once
	ready       chan struct{}
}

// New constructs a Controller in the Loading state. Interactive use is gated
// until every reference collection the loader requires has loaded.
func New(loader *refdata.Loader, registry *power.Registry, dispatcher Dispatcher, options ...Option) (*Controller, error) {
	if loader == nil {
		return nil, errors.New("form: loader is required")
	}
	if registry == nil {
		return nil, errors.New("form: registry is required")
	}
	if dispatcher == nil {
		return nil, errors.New("form: dispatcher is required")
	}

	formatter, err := notify.NewFormatter()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		loader:     loader,
		registry:   registry,
		dispatcher: dispatcher,
		mapper:     command.NewMapper(),
		formatter:  formatter,
		notifier:   notify.Discard(),
		savedPath:  defaultSavedPath,
		baseRules:  schema.BaseRules(),
		log:        logr.Discard(),
		state:      StateLoading,
		values:     make(map[string]any),
		ready:      make(chan struct{}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// Activate starts reference loading and arms the Loading → Ready transition.
// Calling it again while loads are pending is harmless; the loader ignores
// duplicate triggers.
func (c *Controller) Activate(ctx context.Context) {
	c.loader.Notify(func(name string, err error) {
		c.onCollection(name, err)
	})
	c.loader.Load(ctx)
	// The loader may already hold every collection (reactivation after a
	// dismissal); check immediately instead of waiting for a fetch event.
	c.onCollection("", nil)
}

func (c *Controller) onCollection(name string, err error) {
	if err != nil {
		// Logged by the loader; the form simply stays in Loading.
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != StateLoading {
		return
	}
	if !c.loader.Ready() {
		return
	}
	c.resetLocked()
	c.state = StateReady
	c.log.V(1).Info("form ready", "collection", name)
	c.readyOnce.Do(func() { close(c.ready) })
}

// resetLocked restores every field to its default: the first item of each
// backing collection when non-empty, the first catalogued power type, and
// that variant's parameter defaults. Callers hold c.mu.
func (c *Controller) resetLocked() {
	snapshot := c.loader.Snapshot()
	c.values = map[string]any{
		schema.FieldHostname:     "",
		schema.FieldArchitecture: firstName(snapshot[refdata.CollectionArchitectures]),
		schema.FieldDomain:       firstName(snapshot[refdata.CollectionDomains]),
		schema.FieldPool:         firstName(snapshot[refdata.CollectionPools]),
		schema.FieldZone:         firstName(snapshot[refdata.CollectionZones]),
		schema.FieldPXEMAC:       "",
		schema.FieldExtraMACs:    []string{},
	}
	c.fieldErrors = nil
	c.lastError = ErrorInfo{}

	variant := ""
	if types := c.registry.Types(); len(types) > 0 {
		variant = types[0]
	}
	c.applyVariantLocked(variant)
}

// applyVariantLocked records the selection and rebuilds the active schema in
// the same critical section, so no event can ever observe a schema built for
// a previous variant. Callers hold c.mu.
func (c *Controller) applyVariantLocked(variant string) {
	c.values[schema.FieldPowerType] = variant
	c.values[schema.PowerParamsNamespace] = c.registry.Defaults(variant)
	c.active = schema.Build(c.baseRules, variant, c.registry.FieldsFor(variant))
}

// WaitReady blocks until the controller leaves Loading or ctx is done.
func (c *Controller) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ready reports whether the form accepts interactive use.
func (c *Controller) Ready() bool {
	return c.State() != StateLoading
}

// Values returns a copy of the current field values.
func (c *Controller) Values() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyValues(c.values)
}

// ActiveSchema returns the validation schema for the current variant.
func (c *Controller) ActiveSchema() schema.Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// FieldErrors returns the per-field messages from the last failed validation.
func (c *Controller) FieldErrors() schema.Issues {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fieldErrors == nil {
		return nil
	}
	out := make(schema.Issues, len(c.fieldErrors))
	for path, messages := range c.fieldErrors {
		out[path] = append([]string(nil), messages...)
	}
	return out
}

// LastError returns the normalized info from the last submission failure.
func (c *Controller) LastError() ErrorInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Snapshot exposes the loader's current reference data for selector display.
func (c *Controller) Snapshot() map[string]refdata.Collection {
	return c.loader.Snapshot()
}

// Types returns the supported power-control type names in catalog order.
func (c *Controller) Types() []string {
	return c.registry.Types()
}

// VariantFields returns the parameter specs for the named power-control
// type; empty for unknown names.
func (c *Controller) VariantFields(variant string) []power.FieldSpec {
	return c.registry.FieldsFor(variant)
}

// SetValue records one field value. Editing while Failed or Saved returns the
// form to Ready so the user can retry or keep adding.
func (c *Controller) SetValue(field string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	if field == schema.FieldPowerType {
		variant, _ := value.(string)
		c.applyVariantLocked(variant)
		return nil
	}
	c.values[field] = value
	delete(c.fieldErrors, field)
	return nil
}

// SetVariant changes the power-control type selection and synchronously
// rebuilds the active validation schema, resetting the nested parameter
// region to the new variant's defaults.
func (c *Controller) SetVariant(variant string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	c.applyVariantLocked(variant)
	return nil
}

// SetPowerParameter records one variant parameter value inside the nested
// namespace.
func (c *Controller) SetPowerParameter(field string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	params, _ := c.values[schema.PowerParamsNamespace].(map[string]any)
	if params == nil {
		params = make(map[string]any)
		c.values[schema.PowerParamsNamespace] = params
	}
	params[field] = value
	delete(c.fieldErrors, schema.PowerParamsNamespace+"."+field)
	return nil
}

func (c *Controller) editableLocked() error {
	if c.closed {
		return errors.New("form: edit after close")
	}
	switch c.state {
	case StateLoading:
		return errors.New("form: edit while loading")
	case StateSubmitting:
		return errors.New("form: edit while submitting")
	case StateFailed, StateSaved:
		c.state = StateReady
	}
	return nil
}

// Submit validates the current values against the active schema, maps them
// into a creation command, and dispatches it. Validation and mapping
// failures keep the form in Ready and never reach the network. When
// resetOnSave is set, success clears the values back to defaults and returns
// the form to Ready instead of navigating away; the flag applies to this
// submission only.
func (c *Controller) Submit(ctx context.Context, resetOnSave bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("form: submit after close")
	}
	if c.state == StateFailed {
		c.state = StateReady
	}
	if c.state != StateReady {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("form: submit while %s", state)
	}

	if issues := c.active.Validate(c.values); issues != nil {
		c.fieldErrors = issues
		c.mu.Unlock()
		return &schema.ValidationError{Issues: issues}
	}
	c.fieldErrors = nil

	variant, _ := c.values[schema.FieldPowerType].(string)
	cmd, err := c.mapper.ToCommand(copyValues(c.values), c.loader.Snapshot(), variant)
	if err != nil {
		c.lastError = ErrorInfo{Message: err.Error()}
		c.mu.Unlock()
		return err
	}

	c.state = StateSubmitting
	c.lastError = ErrorInfo{}
	generation := c.generation
	hostname, _ := c.values[schema.FieldHostname].(string)
	c.mu.Unlock()

	ref, err := c.dispatcher.Create(ctx, cmd)

	c.mu.Lock()
	if c.closed || c.generation != generation {
		// The form was dismissed while the request was in flight; the late
		// response must not mutate anything.
		c.mu.Unlock()
		return nil
	}

	if err != nil {
		c.lastError = normalizeError(err)
		c.state = StateFailed
		display := c.lastError.Display()
		c.mu.Unlock()

		c.log.V(1).Info("machine creation failed", "error", display)
		if message, ferr := c.formatter.Failed(display); ferr == nil {
			c.notifier.Failure(message)
		}
		return err
	}

	displayName := ref.Hostname
	if displayName == "" {
		displayName = hostname
	}
	if resetOnSave {
		c.resetLocked()
		c.state = StateReady
	} else {
		c.state = StateSaved
	}
	navigate := c.navigate
	path := c.savedPath
	c.mu.Unlock()

	c.log.V(1).Info("machine created", "system_id", ref.SystemID)
	if message, ferr := c.formatter.Saved(displayName); ferr == nil {
		c.notifier.Success(message)
	}
	if !resetOnSave && navigate != nil {
		navigate(path)
	}
	return nil
}

// Close dismisses the form. Any in-flight submission's result is ignored and
// no state mutates afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.generation++
	c.mu.Unlock()
}

func firstName(collection refdata.Collection) string {
	if len(collection.Items) == 0 {
		return ""
	}
	return collection.Items[0].Name
}

func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case []string:
			out[key] = append([]string(nil), v...)
		case map[string]any:
			nested := make(map[string]any, len(v))
			for nk, nv := range v {
				nested[nk] = nv
			}
			out[key] = nested
		default:
			out[key] = value
		}
	}
	return out
}
