package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// rectProperties describes a display-space rectangle.
func rectProperties() map[string]interface{} {
	return map[string]interface{}{
		"left": map[string]interface{}{
			"type":        "number",
			"description": "Left edge in display pixels",
		},
		"top": map[string]interface{}{
			"type":        "number",
			"description": "Top edge in display pixels",
		},
		"width": map[string]interface{}{
			"type":        "number",
			"description": "Width in display pixels",
		},
		"height": map[string]interface{}{
			"type":        "number",
			"description": "Height in display pixels",
		},
	}
}

func rectArray(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items": map[string]interface{}{
			"type":       "object",
			"properties": rectProperties(),
			"required":   []string{"left", "top", "width", "height"},
		},
	}
}

func noArguments() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Document
		{
			Name:        "redact_upload",
			Description: "Load a single-page PDF for redaction. Provide either a file path or base64 data. Documents with more than one page are rejected. The page is rendered to a display image whose pixel space is used by all region tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the PDF file",
					},
					"data_base64": map[string]interface{}{
						"type":        "string",
						"description": "PDF content, base64-encoded. Used when path is empty",
					},
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Original filename when uploading data. Defaults to the base name of path",
					},
				},
			},
		},
		{
			Name:        "redact_status",
			Description: "Report the session state, page and display sizes, scale factors and current regions.",
			InputSchema: noArguments(),
		},
		{
			Name:        "redact_cancel",
			Description: "Discard the loaded document, regions and any prepared output.",
			InputSchema: noArguments(),
		},

		// Regions
		{
			Name:        "redact_set_regions",
			Description: "Replace all redaction regions. Rectangles are in display pixels with a top-left origin. Order is kept; overlaps are allowed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"regions": rectArray("Rectangles to redact"),
				},
				"required": []string{"regions"},
			},
		},
		{
			Name:        "redact_add_region",
			Description: "Append one redaction region in display pixels.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": rectProperties(),
				"required":   []string{"left", "top", "width", "height"},
			},
		},
		{
			Name:        "redact_remove_region",
			Description: "Remove the region at the given index.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Zero-based region index as listed by redact_status",
					},
				},
				"required": []string{"index"},
			},
		},
		{
			Name:        "redact_clear_regions",
			Description: "Remove all regions.",
			InputSchema: noArguments(),
		},
		{
			Name:        "redact_suggest_regions",
			Description: "Run OCR over the display image and suggest regions for words matching the given patterns. With apply=true the suggestions are appended to the current regions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (e.g. 'eng', 'tur'). Defaults to the configured language",
					},
					"patterns": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Regular expressions matched against single words. Defaults to the configured patterns",
					},
					"apply": map[string]interface{}{
						"type":        "boolean",
						"description": "Append the suggestions as regions. Default false",
						"default":     false,
					},
				},
			},
		},

		// Views
		{
			Name:        "redact_canvas",
			Description: "Return the display image with the current regions drawn as translucent selections, as base64-encoded PNG. An optional coordinate grid helps locate display pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between grid lines. 0 (default) draws no grid",
						"default":     0,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label grid intersections with x,y",
						"default":     false,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid color as hex (e.g. '#FF000080'). Default semi-transparent red",
					},
				},
			},
		},
		{
			Name:        "redact_preview",
			Description: "Return the display image as it will look after redaction: each region filled, outlined and labelled. Base64-encoded PNG.",
			InputSchema: noArguments(),
		},
		{
			Name:        "redact_map_regions",
			Description: "List the current regions mapped into document space (points) with the label font size each will use.",
			InputSchema: noArguments(),
		},

		// Output
		{
			Name:        "redact_prepare",
			Description: "Produce the redacted document: content under each region is removed, the region is filled and labelled. Fails when no region has been drawn.",
			InputSchema: noArguments(),
		},
		{
			Name:        "redact_download",
			Description: "Return the prepared document as redacted_<filename>, write it to the output directory, and reset the session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Where to write the file. Defaults to <output_dir>/redacted_<filename>",
					},
					"include_data": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the document as base64 in the response. Default false",
						"default":     false,
					},
				},
			},
		},

		// Geometry
		{
			Name:        "redact_compute_mapping",
			Description: "Map display rectangles into document space for an arbitrary page size without loading a document. Returns scale factors, mapped rectangles and label font sizes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"page_width": map[string]interface{}{
						"type":        "number",
						"description": "Page width in points",
					},
					"page_height": map[string]interface{}{
						"type":        "number",
						"description": "Page height in points",
					},
					"display_width": map[string]interface{}{
						"type":        "integer",
						"description": "Display image width in pixels. Default 700",
						"default":     700,
					},
					"display_height": map[string]interface{}{
						"type":        "integer",
						"description": "Display image height in pixels. Derived from the aspect ratio when omitted",
					},
					"regions": rectArray("Display-space rectangles to map"),
				},
				"required": []string{"page_width", "page_height"},
			},
		},
	}
}
