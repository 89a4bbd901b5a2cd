// Package filters is the registry that lets callers pick a color-reduction
// algorithm and set its parameters by name.
//
// The registry is a static table built at package initialization: each entry
// maps a name to a factory and declares the integer parameters the filter
// accepts. Every diffusion kernel and threshold matrix is bound to exactly
// one name, so "stucki" always means the Stucki kernel.
//
//	f, err := filters.Configure("ordered_bayer", map[string]int{"levels": 4, "order": 2})
//	if err != nil {
//	    return err
//	}
//	f.Apply(buf)
package filters
