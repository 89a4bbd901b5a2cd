package server

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ironsheep/image-reduce-mcp/internal/dither"
	"github.com/ironsheep/image-reduce-mcp/internal/filters"
	"github.com/ironsheep/image-reduce-mcp/internal/imaging"
	"github.com/ironsheep/image-reduce-mcp/internal/quantize"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_quantize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token of the request.
	Meta *RequestMeta `json:"_meta,omitempty"`
}

// RequestMeta is the MCP "_meta" object of a request.
type RequestMeta struct {
	// ProgressToken, when present, asks for notifications/progress messages
	// while the tool runs. It is echoed back verbatim.
	ProgressToken interface{} `json:"progressToken,omitempty"`
}

// progressSteps is the number of progress notifications sent per pass.
const progressSteps = 10

// progressReporter returns a sink that forwards pass progress to the client
// as notifications/progress, at most progressSteps times plus completion.
func (s *Server) progressReporter(token interface{}) imaging.ProgressFunc {
	var (
		mu   sync.Mutex
		last = -1
	)
	return func(done, total int) {
		if total <= 0 {
			return
		}
		step := done * progressSteps / total
		mu.Lock()
		defer mu.Unlock()
		if step <= last {
			return
		}
		last = step
		s.notify("notifications/progress", map[string]interface{}{
			"progressToken": token,
			"progress":      done,
			"total":         total,
		})
	}
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	var opts []imaging.Option
	if params.Meta != nil && params.Meta.ProgressToken != nil {
		opts = append(opts, imaging.WithProgress(s.progressReporter(params.Meta.ProgressToken)))
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments, opts...)
	if s.config.Debug {
		log.Printf("tool %s finished in %s (err=%v)", params.Name, time.Since(start), err)
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
// opts are passed to the reduction pass of image-producing tools.
func (s *Server) executeTool(name string, args json.RawMessage, opts ...imaging.Option) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_list_filters":
		return s.handleListFilters()

	// Color Reduction
	case "image_quantize":
		return s.handleImageQuantize(args, opts...)
	case "image_dither_ordered":
		return s.handleImageDitherOrdered(args, opts...)
	case "image_dither_diffuse":
		return s.handleImageDitherDiffuse(args, opts...)
	case "image_apply_filter":
		return s.handleImageApplyFilter(args, opts...)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// FilterListResult describes everything image_apply_filter accepts.
type FilterListResult struct {
	Filters []filters.Entry `json:"filters"`
	Kernels []string        `json:"kernels"`
}

func (s *Server) handleListFilters() (interface{}, error) {
	return &FilterListResult{
		Filters: filters.List(),
		Kernels: dither.KernelNames(),
	}, nil
}

// === Color Reduction Handlers ===

// reduceArgs are the arguments shared by every tool that produces an image.
type reduceArgs struct {
	Path       string  `json:"path"`
	OutputPath string  `json:"output_path"`
	Format     string  `json:"format"`
	Scale      float64 `json:"scale"`
	MaxSize    int     `json:"max_size"`
	Gamma      float64 `json:"gamma"`
	BlurSigma  float64 `json:"blur_sigma"`
}

// ReduceResult is returned by every color-reduction tool.
type ReduceResult struct {
	// Filter is the registry name of the algorithm that ran.
	Filter string `json:"filter"`

	// Params are the effective parameter values after defaults and clamping.
	Params map[string]int `json:"params"`

	// Image is the encoded output.
	Image *imaging.EncodeResult `json:"image"`

	// Palette lists the quantizer's colors with usage; empty for dithering.
	Palette []imaging.PaletteEntry `json:"palette,omitempty"`

	// Stats compares the reduced image to the (pre-filtered) source.
	Stats *imaging.ReductionStats `json:"stats"`

	// ElapsedMS is the time spent in the reduction pass itself.
	ElapsedMS int64 `json:"elapsed_ms"`
}

type imageQuantizeArgs struct {
	reduceArgs
	MaxColors int `json:"max_colors"`
}

func (s *Server) handleImageQuantize(args json.RawMessage, opts ...imaging.Option) (interface{}, error) {
	var a imageQuantizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxColors == 0 {
		a.MaxColors = s.config.DefaultMaxColors
	}
	return s.runFilter(a.reduceArgs, "octree_quantize", map[string]int{"max_colors": a.MaxColors}, opts...)
}

type imageDitherOrderedArgs struct {
	reduceArgs
	Levels int    `json:"levels"`
	Matrix string `json:"matrix"`
	Order  int    `json:"order"`
}

func (s *Server) handleImageDitherOrdered(args json.RawMessage, opts ...imaging.Option) (interface{}, error) {
	var a imageDitherOrderedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Levels == 0 {
		a.Levels = s.config.DefaultLevels
	}

	params := map[string]int{"levels": a.Levels}
	var name string
	switch a.Matrix {
	case "", "bayer":
		name = "ordered_bayer"
		if a.Order != 0 {
			params["order"] = a.Order
		}
	case "cluster_dot":
		name = "ordered_cluster_dot"
	default:
		return nil, fmt.Errorf("unknown matrix: %s", a.Matrix)
	}
	return s.runFilter(a.reduceArgs, name, params, opts...)
}

type imageDitherDiffuseArgs struct {
	reduceArgs
	Levels int    `json:"levels"`
	Kernel string `json:"kernel"`
}

func (s *Server) handleImageDitherDiffuse(args json.RawMessage, opts ...imaging.Option) (interface{}, error) {
	var a imageDitherDiffuseArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Levels == 0 {
		a.Levels = s.config.DefaultLevels
	}
	if a.Kernel == "" {
		a.Kernel = "floyd_steinberg"
	}
	if _, ok := dither.NamedKernel(a.Kernel); !ok {
		return nil, fmt.Errorf("unknown kernel: %s", a.Kernel)
	}
	return s.runFilter(a.reduceArgs, a.Kernel, map[string]int{"levels": a.Levels}, opts...)
}

type imageApplyFilterArgs struct {
	reduceArgs
	Filter string         `json:"filter"`
	Params map[string]int `json:"params"`
}

func (s *Server) handleImageApplyFilter(args json.RawMessage, opts ...imaging.Option) (interface{}, error) {
	var a imageApplyFilterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Filter == "" {
		return nil, fmt.Errorf("filter is required")
	}
	return s.runFilter(a.reduceArgs, a.Filter, a.Params, opts...)
}

// runFilter loads the source, applies the optional prefilter, runs one
// registry filter over a private buffer and encodes the result.
func (s *Server) runFilter(a reduceArgs, name string, params map[string]int, opts ...imaging.Option) (*ReduceResult, error) {
	f, err := filters.Configure(name, params)
	if err != nil {
		return nil, err
	}
	format, err := imaging.ParseOutputFormat(a.Format)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	pre := imaging.Prefilter{MaxSize: a.MaxSize, Gamma: a.Gamma, BlurSigma: a.BlurSigma}
	source := pre.PrepareBuffer(img)
	buf := source.Clone()

	start := time.Now()
	palette := f.Apply(buf, opts...)
	elapsed := time.Since(start)

	stats, err := imaging.CompareBuffers(source, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to compare result: %w", err)
	}

	encoded, err := imaging.Encode(buf, imaging.EncodeOptions{
		Format:     format,
		Scale:      a.Scale,
		OutputPath: a.OutputPath,
		Quantizer:  quantize.Quantizer{MaxColors: quantize.MaxPalettedColors},
	})
	if err != nil {
		return nil, err
	}

	result := &ReduceResult{
		Filter:    name,
		Params:    effectiveParams(f, name),
		Image:     encoded,
		Stats:     stats,
		ElapsedMS: elapsed.Milliseconds(),
	}
	if palette != nil {
		result.Palette = imaging.PaletteUsage(buf, palette)
	}
	return result, nil
}

// effectiveParams reads back every declared parameter of a filter.
func effectiveParams(f filters.Filter, name string) map[string]int {
	e, _ := filters.Lookup(name)
	out := make(map[string]int, len(e.Params))
	for _, p := range e.Params {
		if v, err := f.Get(p.Name); err == nil {
			out[p.Name] = v
		}
	}
	return out
}
