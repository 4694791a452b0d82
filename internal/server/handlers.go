package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/iris-locator/internal/imaging"
	"github.com/ironsheep/iris-locator/internal/iris"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "iris_find", "iris_overlay").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	entry := s.log.WithFields(logrus.Fields{
		"tool":    params.Name,
		"elapsed": time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	entry.Debug("tool finished")

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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies configured defaults for omitted search parameters
//  3. Loads the image through the cache and prepares the grayscale patch
//  4. Calls the iris or imaging function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "iris_image_info":
		return s.handleImageInfo(args)
	case "iris_prepare_patch":
		return s.handlePreparePatch(args)
	case "iris_find":
		return s.handleFind(args)
	case "iris_scan_center":
		return s.handleScanCenter(args)
	case "iris_overlay":
		return s.handleOverlay(args)
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

// === Shared arguments ===

// patchArgs selects the image and how it becomes a square grayscale patch.
type patchArgs struct {
	Path   string          `json:"path"`
	Region *imaging.Region `json:"region"`
	Square bool            `json:"square"`
	Size   int             `json:"size"`
	Blur   float64         `json:"blur"`
}

func (a patchArgs) options() imaging.PatchOptions {
	return imaging.PatchOptions{
		Region: a.Region,
		Square: a.Square,
		Size:   a.Size,
		Blur:   a.Blur,
	}
}

// loadPatch loads the image through the cache and prepares the patch.
func (s *Server) loadPatch(a patchArgs) (*image.Gray, error) {
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.PreparePatch(img, a.options())
}

// searchArgs are the grid search parameters. Zero values take the
// configured defaults.
type searchArgs struct {
	PointsStep   int   `json:"points_step"`
	StartR       int   `json:"start_r"`
	EndR         int   `json:"end_r"`
	RadiusStep   int   `json:"radius_step"`
	Workers      int   `json:"workers"`
	TimeoutMS    int   `json:"timeout_ms"`
	AllowPartial *bool `json:"allow_partial"`
}

func (s *Server) radiusRange(a searchArgs) iris.RadiusRange {
	rng := s.cfg.Defaults.Radius
	if a.StartR != 0 {
		rng.Start = a.StartR
	}
	if a.EndR != 0 {
		rng.End = a.EndR
	}
	if a.RadiusStep != 0 {
		rng.Step = a.RadiusStep
	}
	return rng
}

func (s *Server) params(a searchArgs) iris.Params {
	p := iris.Params{PointsStep: s.cfg.Defaults.PointsStep, Radius: s.radiusRange(a)}
	if a.PointsStep != 0 {
		p.PointsStep = a.PointsStep
	}
	return p
}

// searchContext returns the searcher and deadline for one call.
func (s *Server) searchContext(a searchArgs) (*iris.Searcher, context.Context, context.CancelFunc) {
	sr := *s.searcher
	if a.Workers > 0 {
		sr.Workers = a.Workers
	}
	if a.AllowPartial != nil {
		sr.AllowPartial = *a.AllowPartial
	}

	timeout := s.cfg.Timeout
	if a.TimeoutMS > 0 {
		timeout = time.Duration(a.TimeoutMS) * time.Millisecond
	}
	if timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		return &sr, ctx, cancel
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &sr, ctx, cancel
}

// === Image Handlers ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handlePreparePatch(args json.RawMessage) (interface{}, error) {
	var a patchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	patch, err := s.loadPatch(a)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(patch)
}

// === Search Handlers ===

type findArgs struct {
	patchArgs
	searchArgs
	IncludeCandidates bool `json:"include_candidates"`
}

// FindResult is the iris_find response.
type FindResult struct {
	CenterX   int     `json:"center_x"`
	CenterY   int     `json:"center_y"`
	Radius    int     `json:"radius"`
	Score     float64 `json:"score"`
	Evaluated int     `json:"evaluated"`
	Partial   bool    `json:"partial,omitempty"`

	// PatchSize is the side of the searched patch. Coordinates are relative
	// to the patch's top-left pixel.
	PatchSize int `json:"patch_size"`

	Candidates []iris.Candidate `json:"candidates,omitempty"`
}

func (s *Server) handleFind(args json.RawMessage) (interface{}, error) {
	var a findArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	patch, err := s.loadPatch(a.patchArgs)
	if err != nil {
		return nil, err
	}

	sr, ctx, cancel := s.searchContext(a.searchArgs)
	defer cancel()
	p := s.params(a.searchArgs)
	size := patch.Bounds().Dx()

	// one pass over the grid either way
	if a.IncludeCandidates {
		cands, err := sr.Candidates(ctx, patch, p)
		if err != nil {
			return nil, err
		}
		best, _ := iris.Best(cands)
		return &FindResult{
			CenterX:    best.Center.X,
			CenterY:    best.Center.Y,
			Radius:     best.Radius,
			Score:      best.Score,
			Evaluated:  len(cands),
			PatchSize:  size,
			Candidates: cands,
		}, nil
	}

	res, err := sr.FindBestCircle(ctx, patch, p)
	if err != nil {
		return nil, err
	}
	return &FindResult{
		CenterX:   res.Center.X,
		CenterY:   res.Center.Y,
		Radius:    res.Radius,
		Score:     res.Score,
		Evaluated: res.Evaluated,
		Partial:   res.Partial,
		PatchSize: size,
	}, nil
}

type scanCenterArgs struct {
	patchArgs
	X          int `json:"x"`
	Y          int `json:"y"`
	StartR     int `json:"start_r"`
	EndR       int `json:"end_r"`
	RadiusStep int `json:"radius_step"`
}

// ScanResult is the iris_scan_center response.
type ScanResult struct {
	Radius  int           `json:"radius"`
	Score   float64       `json:"score"`
	Profile *iris.Profile `json:"profile"`
}

func (s *Server) handleScanCenter(args json.RawMessage) (interface{}, error) {
	var a scanCenterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	patch, err := s.loadPatch(a.patchArgs)
	if err != nil {
		return nil, err
	}

	scanner, err := iris.NewScanner(patch, s.searcher.Sampler)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	rng := s.radiusRange(searchArgs{StartR: a.StartR, EndR: a.EndR, RadiusStep: a.RadiusStep})
	profile, err := scanner.Profile(image.Point{X: a.X, Y: a.Y}, rng)
	if err != nil {
		return nil, err
	}
	idx := profile.Best()
	return &ScanResult{
		Radius:  profile.Radii[idx],
		Score:   profile.Edge[idx],
		Profile: profile,
	}, nil
}

// === Overlay Handler ===

type overlayArgs struct {
	patchArgs
	searchArgs
	ShowCenters    *bool   `json:"show_centers"`
	ShowRings      bool    `json:"show_rings"`
	ShowCandidates bool    `json:"show_candidates"`
	ShowBest       *bool   `json:"show_best"`
	BestColor      string  `json:"best_color"`
	Alpha          float64 `json:"alpha"`
	Label          *bool   `json:"label"`
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	patch, err := s.loadPatch(a.patchArgs)
	if err != nil {
		return nil, err
	}

	p := s.params(a.searchArgs)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	opts := imaging.OverlayOptions{
		BestColor: a.BestColor,
		Alpha:     a.Alpha,
		Label:     boolOr(a.Label, true),
	}
	if boolOr(a.ShowCenters, true) || a.ShowRings {
		opts.Centers = iris.CandidateCenters(patch.Bounds().Dx(), p.PointsStep)
	}
	if a.ShowRings {
		opts.Rings = p.Radius
	}

	if a.ShowCandidates || boolOr(a.ShowBest, true) {
		sr, ctx, cancel := s.searchContext(a.searchArgs)
		defer cancel()
		cands, err := sr.Candidates(ctx, patch, p)
		if err != nil {
			return nil, err
		}
		if a.ShowCandidates {
			opts.Candidates = cands
		}
		if boolOr(a.ShowBest, true) {
			if best, ok := iris.Best(cands); ok {
				opts.Best = &best
			}
		}
	}

	return imaging.OverlayPNG(patch, opts)
}
