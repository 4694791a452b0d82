package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// patchProperties are the input properties shared by every tool that works
// on a prepared patch.
func patchProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional crop rectangle applied first; x2/y2 exclusive",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"square": map[string]interface{}{
			"type":        "boolean",
			"description": "Crop the largest centered square. Required for non-square images.",
			"default":     false,
		},
		"size": map[string]interface{}{
			"type":        "integer",
			"description": "Resize the square patch to size x size pixels. 0 keeps the original size.",
			"default":     0,
		},
		"blur": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian blur radius applied to the grayscale patch. 0 disables.",
			"default":     0.0,
		},
	}
}

// radiusProperties adds the radius range inputs to props.
func radiusProperties(props map[string]interface{}) map[string]interface{} {
	props["start_r"] = map[string]interface{}{
		"type":        "integer",
		"description": "Smallest tested radius in pixels (inclusive). Default from IRIS_START_R.",
		"default":     10,
	}
	props["end_r"] = map[string]interface{}{
		"type":        "integer",
		"description": "Radius bound in pixels (exclusive). Default from IRIS_END_R.",
		"default":     30,
	}
	props["radius_step"] = map[string]interface{}{
		"type":        "integer",
		"description": "Radius increment. Default from IRIS_RADIUS_STEP.",
		"default":     1,
	}
	return props
}

// searchProperties adds the grid search inputs to props.
func searchProperties(props map[string]interface{}) map[string]interface{} {
	radiusProperties(props)
	props["points_step"] = map[string]interface{}{
		"type":        "integer",
		"description": "Spacing of candidate centers in the middle third of the patch. Default from IRIS_POINTS_STEP.",
		"default":     3,
	}
	props["workers"] = map[string]interface{}{
		"type":        "integer",
		"description": "Worker pool size for this call. 0 uses IRIS_WORKERS.",
		"default":     0,
	}
	props["timeout_ms"] = map[string]interface{}{
		"type":        "integer",
		"description": "Search deadline in milliseconds. 0 uses IRIS_SEARCH_TIMEOUT.",
		"default":     0,
	}
	props["allow_partial"] = map[string]interface{}{
		"type":        "boolean",
		"description": "On deadline, return the best candidate scanned so far instead of an error",
		"default":     false,
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	findProps := searchProperties(patchProperties())
	findProps["include_candidates"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Also return every center's best radius and score in grid order",
		"default":     false,
	}

	scanProps := radiusProperties(patchProperties())
	scanProps["x"] = map[string]interface{}{
		"type":        "integer",
		"description": "Center X in patch coordinates",
	}
	scanProps["y"] = map[string]interface{}{
		"type":        "integer",
		"description": "Center Y in patch coordinates",
	}

	overlayProps := searchProperties(patchProperties())
	overlayProps["show_centers"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Mark every candidate center",
		"default":     true,
	}
	overlayProps["show_rings"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Draw every tested radius around every candidate center",
		"default":     false,
	}
	overlayProps["show_candidates"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Draw each center's best circle in its own color",
		"default":     false,
	}
	overlayProps["show_best"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Draw the winning circle",
		"default":     true,
	}
	overlayProps["best_color"] = map[string]interface{}{
		"type":        "string",
		"description": "Winning circle color as hex (#RRGGBB or #RRGGBBAA)",
		"default":     "#FF0000",
	}
	overlayProps["alpha"] = map[string]interface{}{
		"type":        "number",
		"description": "Opacity of rings and candidate circles (0-1]",
		"default":     0.5,
	}
	overlayProps["label"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Write the winning center and radius next to the circle",
		"default":     true,
	}

	return []Tool{
		{
			Name:        "iris_image_info",
			Description: "Load an image file and report its dimensions, format, whether it is square and the largest centered square. The iris search needs a square patch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "iris_prepare_patch",
			Description: "Crop, square, resize and blur an image into the grayscale patch the iris search runs on, returned as base64-encoded PNG. Use it to check a crop before searching.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": patchProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "iris_find",
			Description: "Locate the iris boundary in a square eye patch. Scans candidate centers in the middle third of the patch and returns the center and radius with the sharpest radial intensity edge.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": findProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "iris_scan_center",
			Description: "Run the radial scan for a single center and return the chosen radius, its edge score and the full intensity and edge profiles.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": scanProps,
				"required":   []string{"path", "x", "y"},
			},
		},
		{
			Name:        "iris_overlay",
			Description: "Draw the candidate grid, per-center circles and the winning circle over the patch and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": overlayProps,
				"required":   []string{"path"},
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
