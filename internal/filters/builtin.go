package filters

import (
	"fmt"

	"github.com/ironsheep/image-reduce-mcp/internal/dither"
	"github.com/ironsheep/image-reduce-mcp/internal/imaging"
	"github.com/ironsheep/image-reduce-mcp/internal/quantize"
)

type quantizeFilter struct {
	params
	maxColors int
}

func newQuantizeFilter(e Entry) Filter {
	f := &quantizeFilter{params: params{name: e.Name}}
	f.bind(maxColorsParam, &f.maxColors)
	return f
}

func (f *quantizeFilter) Apply(buf *imaging.Buffer, opts ...imaging.Option) []imaging.RGBColor {
	return quantize.Quantize(buf, f.maxColors, opts...)
}

type orderedFilter struct {
	params
	levels int
	order  int
}

func newOrderedFilter(e Entry) Filter {
	f := &orderedFilter{params: params{name: e.Name}}
	f.bind(levelsParam, &f.levels)
	if e.Name == "ordered_bayer" {
		f.bind(orderParam, &f.order)
	}
	return f
}

// matrix returns the threshold matrix for the current settings. Both sources
// cache their matrices, so repeated applications reuse one table.
func (f *orderedFilter) matrix() *dither.Matrix {
	if f.name == "ordered_cluster_dot" {
		return dither.ClusterDot()
	}
	return dither.Bayer(f.order)
}

func (f *orderedFilter) Apply(buf *imaging.Buffer, opts ...imaging.Option) []imaging.RGBColor {
	dither.Ordered(buf, f.levels, f.matrix(), opts...)
	return nil
}

type diffusionFilter struct {
	params
	levels int
	kernel *dither.Kernel
}

func newDiffusionFilter(e Entry) Filter {
	k, ok := dither.NamedKernel(e.Name)
	if !ok {
		panic(fmt.Sprintf("filters: no diffusion kernel named %s", e.Name))
	}
	f := &diffusionFilter{params: params{name: e.Name}, kernel: k}
	f.bind(levelsParam, &f.levels)
	return f
}

func (f *diffusionFilter) Apply(buf *imaging.Buffer, opts ...imaging.Option) []imaging.RGBColor {
	dither.Diffuse(buf, f.levels, f.kernel, opts...)
	return nil
}

type posterizeFilter struct {
	params
	levels int
}

func newPosterizeFilter(e Entry) Filter {
	f := &posterizeFilter{params: params{name: e.Name}}
	f.bind(levelsParam, &f.levels)
	return f
}

func (f *posterizeFilter) Apply(buf *imaging.Buffer, opts ...imaging.Option) []imaging.RGBColor {
	dither.Posterize(buf, f.levels, opts...)
	return nil
}
