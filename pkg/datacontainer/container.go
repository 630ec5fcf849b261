// Package datacontainer holds the named arrays a filter pipeline reads and
// writes. Arrays live in one of three scopes: per voxel (cell), per object
// (field) and per phase (ensemble).
package datacontainer

import (
	"errors"
	"fmt"
	"sort"

	"grainstats/internal/models"
)

// Scope selects which tuple space an array is indexed by.
type Scope int

const (
	CellData Scope = iota
	FieldData
	EnsembleData
)

func (s Scope) String() string {
	switch s {
	case CellData:
		return "CellData"
	case FieldData:
		return "FieldData"
	case EnsembleData:
		return "EnsembleData"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Well-known array names.
const (
	GrainIds            = "GrainIds"
	Phases              = "Phases"
	BiasedFields        = "BiasedFields"
	Volumes             = "Volumes"
	EquivalentDiameters = "EquivalentDiameters"
	NumCells            = "NumCells"
	Statistics          = "Statistics"
)

var (
	ErrMissingArray   = errors.New("array not found")
	ErrKindMismatch   = errors.New("array has the wrong element type")
	ErrLengthMismatch = errors.New("array has the wrong number of tuples")
)

// ResolveError describes a prerequisite that could not be resolved.
type ResolveError struct {
	Scope Scope
	Name  string
	Err   error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Scope, e.Name, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Provider produces a missing prerequisite, typically by running the filter
// that computes it against the same container.
type Provider func() error

// DataContainer owns every array of one pipeline run.
type DataContainer struct {
	geometry models.Geometry
	source   models.Geometry
	arrays   [3]map[string]*Array

	numFieldTuples    int
	numEnsembleTuples int

	placeholder bool
}

// New creates an empty container for a field with geometry g.
func New(g models.Geometry) *DataContainer {
	dc := &DataContainer{geometry: g, source: g}
	for i := range dc.arrays {
		dc.arrays[i] = make(map[string]*Array)
	}
	return dc
}

// Geometry returns the extent of the cell arrays.
func (dc *DataContainer) Geometry() models.Geometry { return dc.geometry }

// SourceGeometry returns the geometry of the real field. It differs from
// Geometry only on a placeholder.
func (dc *DataContainer) SourceGeometry() models.Geometry { return dc.source }

// TotalPoints returns the number of cell tuples.
func (dc *DataContainer) TotalPoints() int { return dc.geometry.TotalPoints() }

// NumFieldTuples returns the declared object count including background, or
// zero if undeclared.
func (dc *DataContainer) NumFieldTuples() int { return dc.numFieldTuples }

func (dc *DataContainer) SetNumFieldTuples(n int) { dc.numFieldTuples = n }

// NumEnsembleTuples returns the declared phase count including phase 0, or
// zero if undeclared.
func (dc *DataContainer) NumEnsembleTuples() int { return dc.numEnsembleTuples }

func (dc *DataContainer) SetNumEnsembleTuples(n int) { dc.numEnsembleTuples = n }

// IsPlaceholder reports whether this container is a preflight stand-in.
func (dc *DataContainer) IsPlaceholder() bool { return dc.placeholder }

// Add stores a, replacing any array of the same name in the scope.
func (dc *DataContainer) Add(scope Scope, a *Array) {
	dc.arrays[scope][a.Name()] = a
}

// Get looks up an array by name.
func (dc *DataContainer) Get(scope Scope, name string) (*Array, bool) {
	a, ok := dc.arrays[scope][name]
	return a, ok
}

// Remove deletes an array if present.
func (dc *DataContainer) Remove(scope Scope, name string) {
	delete(dc.arrays[scope], name)
}

// Names lists the arrays of a scope in sorted order.
func (dc *DataContainer) Names(scope Scope) []string {
	names := make([]string, 0, len(dc.arrays[scope]))
	for n := range dc.arrays[scope] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResolveInput fetches a prerequisite array and checks its kind and length.
// A negative length skips the length check. If the lookup fails and fallback
// is not nil, fallback runs once and the lookup is retried once; a second
// failure is final.
func (dc *DataContainer) ResolveInput(scope Scope, name string, kind Kind, length int, fallback Provider) (*Array, error) {
	a, err := dc.lookup(scope, name, kind, length)
	if err == nil || fallback == nil {
		return a, err
	}
	if perr := fallback(); perr != nil {
		return nil, &ResolveError{Scope: scope, Name: name, Err: perr}
	}
	return dc.lookup(scope, name, kind, length)
}

func (dc *DataContainer) lookup(scope Scope, name string, kind Kind, length int) (*Array, error) {
	a, ok := dc.Get(scope, name)
	if !ok {
		return nil, &ResolveError{Scope: scope, Name: name, Err: ErrMissingArray}
	}
	if a.Kind() != kind {
		return nil, &ResolveError{Scope: scope, Name: name,
			Err: fmt.Errorf("%w: want %s, have %s", ErrKindMismatch, kind, a.Kind())}
	}
	if length >= 0 && a.Len() != length {
		return nil, &ResolveError{Scope: scope, Name: name,
			Err: fmt.Errorf("%w: want %d, have %d", ErrLengthMismatch, length, a.Len())}
	}
	return a, nil
}

// AllocateOutput creates a zeroed array that is not yet visible in the
// container. Call Publish once the array holds complete results.
func (dc *DataContainer) AllocateOutput(name string, kind Kind, length int) *Array {
	return NewArray(name, kind, length)
}

// Publish adds the arrays to the scope, replacing existing ones.
func (dc *DataContainer) Publish(scope Scope, arrays ...*Array) {
	for _, a := range arrays {
		dc.Add(scope, a)
	}
}

// Placeholder returns a stand-in with the same array names and kinds, every
// array holding a single tuple, for preflight validation. The placeholder of
// a placeholder is itself.
func (dc *DataContainer) Placeholder() *DataContainer {
	if dc.placeholder {
		return dc
	}
	g := models.Geometry{XPoints: 1, YPoints: 1, ZPoints: 1, Resolution: dc.geometry.Resolution}
	p := New(g)
	p.source = dc.geometry
	p.placeholder = true
	p.numFieldTuples = 1
	p.numEnsembleTuples = 1
	for scope, arrays := range dc.arrays {
		for name, a := range arrays {
			p.arrays[scope][name] = a.placeholder(1)
		}
	}
	return p
}
