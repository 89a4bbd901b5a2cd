package filters

import (
	"fmt"
	"sort"

	"github.com/ironsheep/image-reduce-mcp/internal/imaging"
)

// Param describes one integer parameter of a filter.
//
// Values outside [Min, Max] are clamped when set, never rejected.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Default     int    `json:"default"`
}

// Clamp forces v into the parameter's range.
func (p Param) Clamp(v int) int {
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// Filter is a configured color-reduction transform.
type Filter interface {
	// Name returns the registry name the filter was created from.
	Name() string

	// Set assigns a parameter by name, clamping it to its range.
	Set(param string, value int) error

	// Get returns the current value of a parameter.
	Get(param string) (int, error)

	// Apply transforms buf in place. Filters that build a palette return
	// it; the others return nil.
	Apply(buf *imaging.Buffer, opts ...imaging.Option) []imaging.RGBColor
}

// Entry is one row of the registry.
type Entry struct {
	Name        string  `json:"name"`
	Family      string  `json:"family"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`

	factory func(Entry) Filter
}

// Filter families.
const (
	FamilyQuantize  = "quantize"
	FamilyOrdered   = "ordered"
	FamilyDiffusion = "error_diffusion"
	FamilyPosterize = "posterize"
)

// Shared parameter definitions.
var (
	levelsParam = Param{
		Name:        "levels",
		Description: "Output values per channel, evenly spaced over 0-255",
		Min:         2,
		Max:         256,
		Default:     2,
	}
	orderParam = Param{
		Name:        "order",
		Description: "Bayer matrix order; the matrix is 2^order pixels square",
		Min:         1,
		Max:         8,
		Default:     3,
	}
	maxColorsParam = Param{
		Name:        "max_colors",
		Description: "Largest palette the quantizer may produce",
		Min:         1,
		Max:         1 << 24,
		Default:     256,
	}
)

// registry is built once, in source order. Each diffusion entry binds one
// kernel to one algorithm name.
var registry = []Entry{
	{
		Name:        "octree_quantize",
		Family:      FamilyQuantize,
		Description: "Adaptive palette from an octree; rewrites every pixel to its palette color",
		Params:      []Param{maxColorsParam},
		factory:     newQuantizeFilter,
	},
	{
		Name:        "ordered_bayer",
		Family:      FamilyOrdered,
		Description: "Ordered dithering with a recursive Bayer threshold matrix",
		Params:      []Param{levelsParam, orderParam},
		factory:     newOrderedFilter,
	},
	{
		Name:        "ordered_cluster_dot",
		Family:      FamilyOrdered,
		Description: "Ordered dithering with an 8x8 clustered-dot threshold matrix",
		Params:      []Param{levelsParam},
		factory:     newOrderedFilter,
	},
	diffusionEntry("floyd_steinberg", "Floyd-Steinberg error diffusion (4 neighbors)"),
	diffusionEntry("jarvis_judice_ninke", "Jarvis-Judice-Ninke error diffusion (12 neighbors)"),
	diffusionEntry("stucki", "Stucki error diffusion (12 neighbors)"),
	diffusionEntry("atkinson", "Atkinson error diffusion (6 neighbors, normalized)"),
	diffusionEntry("burkes", "Burkes error diffusion (7 neighbors)"),
	diffusionEntry("sierra", "Sierra error diffusion (10 neighbors)"),
	diffusionEntry("two_row_sierra", "Two-row Sierra error diffusion (7 neighbors)"),
	diffusionEntry("sierra_lite", "Sierra Lite error diffusion (3 neighbors)"),
	{
		Name:        "posterize",
		Family:      FamilyPosterize,
		Description: "Round every channel to the nearest level without dithering",
		Params:      []Param{levelsParam},
		factory:     newPosterizeFilter,
	},
}

func diffusionEntry(name, description string) Entry {
	return Entry{
		Name:        name,
		Family:      FamilyDiffusion,
		Description: description,
		Params:      []Param{levelsParam},
		factory:     newDiffusionFilter,
	}
}

var byName = func() map[string]int {
	m := make(map[string]int, len(registry))
	for i, e := range registry {
		if _, dup := m[e.Name]; dup {
			panic("filters: duplicate registry name " + e.Name)
		}
		m[e.Name] = i
	}
	return m
}()

// List returns every registered filter in registration order.
func List() []Entry {
	out := make([]Entry, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a registry entry by name.
func Lookup(name string) (Entry, bool) {
	i, ok := byName[name]
	if !ok {
		return Entry{}, false
	}
	return registry[i], true
}

// New creates a filter by name with every parameter at its default.
func New(name string) (Filter, error) {
	e, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown filter: %s", name)
	}
	return e.factory(e), nil
}

// Configure creates a filter and applies params to it. Parameters are set in
// name order so the outcome never depends on map iteration.
func Configure(name string, params map[string]int) (Filter, error) {
	f, err := New(name)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := f.Set(k, params[k]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// binding ties a parameter definition to the field that stores it.
type binding struct {
	param Param
	field *int
}

// params implements the name-based setters shared by every filter.
type params struct {
	name     string
	bindings []binding
}

func (p *params) bind(def Param, field *int) {
	*field = def.Default
	p.bindings = append(p.bindings, binding{param: def, field: field})
}

func (p *params) lookup(name string) (*binding, error) {
	for i := range p.bindings {
		if p.bindings[i].param.Name == name {
			return &p.bindings[i], nil
		}
	}
	return nil, fmt.Errorf("filter %s has no parameter %q", p.name, name)
}

func (p *params) Name() string { return p.name }

func (p *params) Set(name string, value int) error {
	b, err := p.lookup(name)
	if err != nil {
		return err
	}
	*b.field = b.param.Clamp(value)
	return nil
}

func (p *params) Get(name string) (int, error) {
	b, err := p.lookup(name)
	if err != nil {
		return 0, err
	}
	return *b.field, nil
}
