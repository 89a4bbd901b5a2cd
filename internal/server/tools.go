package server

import (
	"github.com/ironsheep/image-reduce-mcp/internal/dither"
	"github.com/ironsheep/image-reduce-mcp/internal/filters"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is shared by every tool that reads an image file.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// reduceProperties returns the input properties shared by all tools that
// produce a reduced image, merged with the tool-specific ones.
func reduceProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": pathProperty,
		"output_path": map[string]interface{}{
			"type":        "string",
			"description": "Optional file to write the result to instead of returning base64. The extension selects the format.",
		},
		"format": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"png", "gif"},
			"description": "Encoding of the inline result. Default png",
			"default":     "png",
		},
		"scale": map[string]interface{}{
			"type":        "number",
			"description": "Optional nearest-neighbor scale factor for the output (e.g., 4 to inspect dither patterns). Default 1.0",
			"default":     1.0,
		},
		"max_size": map[string]interface{}{
			"type":        "integer",
			"description": "Optional downscale before reduction so neither side exceeds this many pixels. Default 0 (off)",
			"minimum":     0,
		},
		"gamma": map[string]interface{}{
			"type":        "number",
			"description": "Optional gamma adjustment applied before reduction (>1 brightens). Default 1.0",
			"default":     1.0,
		},
		"blur_sigma": map[string]interface{}{
			"type":        "number",
			"description": "Optional gaussian blur applied before reduction. Default 0 (off)",
			"default":     0,
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

func levelsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Output values per channel (2-256, clamped). Default 2",
		"minimum":     dither.MinLevels,
		"maximum":     dither.MaxLevels,
	}
}

func filterNames() []string {
	entries := filters.List()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and number of distinct colors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_list_filters",
			Description: "List every color-reduction filter with its parameters and ranges.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Color Reduction
		{
			Name:        "image_quantize",
			Description: "Reduce an image to an adaptive palette of at most max_colors colors using an octree quantizer. Returns the palette with per-color usage.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": reduceProperties(map[string]interface{}{
					"max_colors": map[string]interface{}{
						"type":        "integer",
						"description": "Largest palette to produce (>=1). Default 16",
						"minimum":     1,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dither_ordered",
			Description: "Reduce each channel to a few levels with ordered (threshold matrix) dithering.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": reduceProperties(map[string]interface{}{
					"levels": levelsProperty(),
					"matrix": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"bayer", "cluster_dot"},
						"description": "Threshold matrix. Default bayer",
						"default":     "bayer",
					},
					"order": map[string]interface{}{
						"type":        "integer",
						"description": "Bayer order (1-8); the matrix is 2^order pixels square. Default 3",
						"minimum":     1,
						"maximum":     dither.MaxBayerOrder,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dither_diffuse",
			Description: "Reduce each channel to a few levels with error-diffusion dithering.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": reduceProperties(map[string]interface{}{
					"levels": levelsProperty(),
					"kernel": map[string]interface{}{
						"type":        "string",
						"enum":        dither.KernelNames(),
						"description": "Diffusion kernel. Default floyd_steinberg",
						"default":     "floyd_steinberg",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_apply_filter",
			Description: "Apply any registered filter by name with integer parameters (see image_list_filters).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": reduceProperties(map[string]interface{}{
					"filter": map[string]interface{}{
						"type":        "string",
						"enum":        filterNames(),
						"description": "Registered filter name",
					},
					"params": map[string]interface{}{
						"type":                 "object",
						"additionalProperties": map[string]interface{}{"type": "integer"},
						"description":          "Parameter values by name; omitted parameters keep their defaults",
					},
				}),
				"required": []string{"path", "filter"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
