package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ironsheep/pdf-redact-mcp/internal/imaging"
	"github.com/ironsheep/pdf-redact-mcp/internal/redaction"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "redact_upload", "redact_prepare").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.Printf("Tool %s failed: %v", params.Name, err)
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Document
	case "redact_upload":
		return s.handleUpload(ctx, args)
	case "redact_status":
		return s.session.Status(), nil
	case "redact_cancel":
		s.session.Cancel()
		return s.session.Status(), nil

	// Regions
	case "redact_set_regions":
		return s.handleSetRegions(args)
	case "redact_add_region":
		return s.handleAddRegion(args)
	case "redact_remove_region":
		return s.handleRemoveRegion(args)
	case "redact_clear_regions":
		if err := s.session.ClearRegions(); err != nil {
			return nil, err
		}
		return s.session.Status(), nil
	case "redact_suggest_regions":
		return s.handleSuggestRegions(ctx, args)

	// Views
	case "redact_canvas":
		return s.handleCanvas(args)
	case "redact_preview":
		img, err := s.session.Preview()
		if err != nil {
			return nil, err
		}
		return imaging.Encode(img)
	case "redact_map_regions":
		return s.handleMapRegions()

	// Output
	case "redact_prepare":
		return s.session.Prepare(ctx)
	case "redact_download":
		return s.handleDownload(args)

	// Geometry
	case "redact_compute_mapping":
		return s.handleComputeMapping(args)

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Document Handlers ===

type uploadArgs struct {
	Path       string `json:"path"`
	DataBase64 string `json:"data_base64"`
	Filename   string `json:"filename"`
}

func (s *Server) handleUpload(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a uploadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var data []byte
	name := a.Filename
	switch {
	case a.Path != "":
		b, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", a.Path, err)
		}
		data = b
		if name == "" {
			name = filepath.Base(a.Path)
		}
	case a.DataBase64 != "":
		b, err := base64.StdEncoding.DecodeString(a.DataBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data_base64: %w", err)
		}
		data = b
	default:
		return nil, errors.New("either path or data_base64 is required")
	}

	if err := s.session.Upload(ctx, name, data); err != nil {
		return nil, err
	}
	return s.session.Status(), nil
}

// === Region Handlers ===

type setRegionsArgs struct {
	Regions []redaction.Rect `json:"regions"`
}

func (s *Server) handleSetRegions(args json.RawMessage) (interface{}, error) {
	var a setRegionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.SetRegions(a.Regions); err != nil {
		return nil, err
	}
	return s.session.Status(), nil
}

func (s *Server) handleAddRegion(args json.RawMessage) (interface{}, error) {
	var r redaction.Rect
	if err := decodeArgs(args, &r); err != nil {
		return nil, err
	}
	index, err := s.session.AddRegion(r)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"index":   index,
		"regions": s.session.Regions(),
	}, nil
}

type removeRegionArgs struct {
	Index *int `json:"index"`
}

func (s *Server) handleRemoveRegion(args json.RawMessage) (interface{}, error) {
	var a removeRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Index == nil {
		return nil, errors.New("index is required")
	}
	if err := s.session.RemoveRegion(*a.Index); err != nil {
		return nil, err
	}
	return s.session.Status(), nil
}

type suggestArgs struct {
	Language string   `json:"language"`
	Patterns []string `json:"patterns"`
	Apply    bool     `json:"apply"`
}

type suggestResult struct {
	Suggestions interface{} `json:"suggestions"`
	Count       int         `json:"count"`
	Applied     bool        `json:"applied"`
}

func (s *Server) handleSuggestRegions(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a suggestArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	suggestions, err := s.session.Suggest(ctx, a.Language, a.Patterns)
	if err != nil {
		return nil, err
	}

	if a.Apply {
		rects := make([]redaction.Rect, len(suggestions))
		for i, sg := range suggestions {
			rects[i] = sg.Rect
		}
		if _, err := s.session.AddRegions(rects); err != nil {
			return nil, err
		}
	}
	return suggestResult{Suggestions: suggestions, Count: len(suggestions), Applied: a.Apply}, nil
}

// === View Handlers ===

type canvasArgs struct {
	GridSpacing     int    `json:"grid_spacing"`
	ShowCoordinates bool   `json:"show_coordinates"`
	GridColor       string `json:"grid_color"`
}

func (s *Server) handleCanvas(args json.RawMessage) (interface{}, error) {
	var a canvasArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.session.Canvas()
	if err != nil {
		return nil, err
	}
	if a.GridSpacing > 0 {
		img = imaging.WithGrid(img, imaging.GridStyle{
			Spacing:         a.GridSpacing,
			ShowCoordinates: a.ShowCoordinates,
			Color:           imaging.ParseColorOr(a.GridColor, imaging.DefaultGridColor),
		})
	}
	return imaging.Encode(img)
}

func (s *Server) handleMapRegions() (interface{}, error) {
	mapped, err := s.session.MappedRegions()
	if err != nil {
		return nil, err
	}
	st := s.session.Status()
	return map[string]interface{}{
		"scale":   st.Scale,
		"regions": mapped,
	}, nil
}

// === Output Handlers ===

type downloadArgs struct {
	OutputPath  string `json:"output_path"`
	IncludeData bool   `json:"include_data"`
}

type downloadResult struct {
	Filename   string `json:"filename"`
	Path       string `json:"path,omitempty"`
	Size       int    `json:"size"`
	DataBase64 string `json:"data_base64,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

func (s *Server) handleDownload(args json.RawMessage) (interface{}, error) {
	var a downloadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	// Refuse before Download clears the session when the result has nowhere to go.
	if a.OutputPath == "" && s.outputDir == "" && !a.IncludeData {
		return nil, errors.New("no output_path, no output directory configured and include_data is false")
	}

	name, data, err := s.session.Download()
	if err != nil {
		return nil, err
	}

	res := downloadResult{Filename: name, Size: len(data)}
	if a.IncludeData {
		res.DataBase64 = base64.StdEncoding.EncodeToString(data)
	}

	path := a.OutputPath
	if path == "" && s.outputDir != "" {
		path = filepath.Join(s.outputDir, name)
	}
	if path != "" {
		if err := writeOutput(path, data); err != nil {
			// The session is already cleared; hand the bytes back instead of losing them.
			log.Printf("Warning: %v", err)
			res.DataBase64 = base64.StdEncoding.EncodeToString(data)
			res.Warning = err.Error()
			return res, nil
		}
		res.Path = path
		log.Printf("Wrote %s (%d bytes)", path, len(data))
	}
	return res, nil
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// === Geometry Handlers ===

type computeMappingArgs struct {
	PageWidth     float64          `json:"page_width"`
	PageHeight    float64          `json:"page_height"`
	DisplayWidth  int              `json:"display_width"`
	DisplayHeight int              `json:"display_height"`
	Regions       []redaction.Rect `json:"regions"`
}

type mappedRect struct {
	Display         redaction.Rect `json:"display"`
	Document        redaction.Rect `json:"document"`
	PreviewFontSize int            `json:"preview_font_size"`
	OutputFontSize  int            `json:"output_font_size"`
}

type computeMappingResult struct {
	DisplayWidth  int                    `json:"display_width"`
	DisplayHeight int                    `json:"display_height"`
	Scale         redaction.ScaleFactors `json:"scale"`
	Regions       []mappedRect           `json:"regions"`
}

func (s *Server) handleComputeMapping(args json.RawMessage) (interface{}, error) {
	var a computeMappingArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.DisplayWidth == 0 {
		a.DisplayWidth = s.displayWidth
	}
	if a.DisplayHeight == 0 {
		_, h, err := redaction.DisplaySize(a.PageWidth, a.PageHeight, a.DisplayWidth)
		if err != nil {
			return nil, err
		}
		a.DisplayHeight = h
	}

	scale, err := redaction.ComputeScaleFactors(a.PageWidth, a.PageHeight, float64(a.DisplayWidth), float64(a.DisplayHeight))
	if err != nil {
		return nil, err
	}

	preview, output := s.previewSizing, s.outputSizing
	regions := make([]mappedRect, len(a.Regions))
	for i, r := range a.Regions {
		doc := redaction.MapRectangle(r, scale)
		regions[i] = mappedRect{
			Display:         r,
			Document:        doc,
			PreviewFontSize: preview.FontSize(r.Height),
			OutputFontSize:  output.FontSize(doc.Height),
		}
	}

	return computeMappingResult{
		DisplayWidth:  a.DisplayWidth,
		DisplayHeight: a.DisplayHeight,
		Scale:         scale,
		Regions:       regions,
	}, nil
}
