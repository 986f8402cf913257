// Package validator runs GTFS validation rules over a loaded feed and collects their notices.
//
// Each rule is a Validator built by a Factory from the feed tables it needs. Validators only
// read the feed and only write notices, so the Runner can execute them in parallel.
package validator

import (
	"fmt"

	"validator.onebusaway.org/internal/notice"
	"validator.onebusaway.org/internal/table"
)

// Validator checks one aspect of a feed and reports problems as notices.
//
// Data problems must be reported as notices, never as panics. A panic means the validator
// itself is broken and aborts the whole run.
type Validator interface {
	Validate(notices *notice.Container)
}

// Factory builds a validator for one run, wiring in the tables it reads.
type Factory func(feed *table.Feed) Validator

type registryEntry struct {
	name    string
	factory Factory
}

// Registry is the ordered list of validators a Runner executes.
type Registry struct {
	entries []registryEntry
	names   map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds a validator under name. Registering the same name twice panics.
func (r *Registry) Register(name string, factory Factory) *Registry {
	if _, exists := r.names[name]; exists {
		panic(fmt.Sprintf("validator %q registered twice", name))
	}
	r.names[name] = struct{}{}
	r.entries = append(r.entries, registryEntry{name: name, factory: factory})
	return r
}

// Names returns the registered validator names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.name)
	}
	return names
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// DefaultRegistry returns a registry holding every built-in validator.
func DefaultRegistry() *Registry {
	return NewRegistry().
		Register(DuplicateRouteNameValidatorName, func(feed *table.Feed) Validator {
			return NewDuplicateRouteNameValidator(feed.Routes)
		}).
		Register(StopTimeArrivalAndDepartureTimeValidatorName, func(feed *table.Feed) Validator {
			return NewStopTimeArrivalAndDepartureTimeValidator(feed.StopTimes)
		})
}
