package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/engine"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type                 string              `json:"type,omitempty"`
	Description          string              `json:"description,omitempty"`
	Default              any                 `json:"default,omitempty"`
	Enum                 []string            `json:"enum,omitempty"`
	Minimum              *float64            `json:"minimum,omitempty"`
	Maximum              *float64            `json:"maximum,omitempty"`
	MinLength            *int                `json:"minLength,omitempty"`
	Items                *Property           `json:"items,omitempty"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *Property           `json:"additionalProperties,omitempty"`
}

// GetToolDefinitions returns all tool definitions.
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		parseFitTool(),
		compareFitTool(),
		matchFitTool(),
		skillPlansTool(),
		checkFitTool(),
		listFittingsTool(),
		verifyDoctrineTool(),
		hullSkillsTool(),
		itemVariationsTool(),
	}
}

func nonEmpty() *int {
	n := 1
	return &n
}

func formatProperty() Property {
	return Property{
		Type:        "string",
		Description: "Fit text format: dna (hull:item;count:...::) or eft ([Hull, Name] followed by item lines)",
		Enum:        []string{fitting.FormatDNA, fitting.FormatEFT},
		Default:     fitting.FormatDNA,
	}
}

func parseFitTool() ToolDefinition {
	return ToolDefinition{
		Name:        "parse_fit",
		Description: "Decode and validate fit text. Returns every fit found with item names and canonical DNA.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"format": formatProperty(),
				"text": {
					Type:        "string",
					Description: "The fit text",
					MinLength:   nonEmpty(),
				},
			},
			Required: []string{"text"},
		},
	}
}

func compareFitTool() ToolDefinition {
	return ToolDefinition{
		Name:        "compare_fit",
		Description: "Compare an actual fit with an expected fit or a named doctrine fit. Returns missing, extra, upgraded and downgraded modules and missing cargo.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"expected": {
					Type:        "string",
					Description: "Expected fit as DNA (alternative to doctrine)",
				},
				"doctrine": {
					Type:        "string",
					Description: "Name of the doctrine fit to compare against",
				},
				"actual": {
					Type:        "string",
					Description: "Actual fit as DNA",
					MinLength:   nonEmpty(),
				},
			},
			Required: []string{"actual"},
		},
	}
}

func matchFitTool() ToolDefinition {
	return ToolDefinition{
		Name:        "match_fit",
		Description: "Find the doctrine fit closest to a fit on the same hull. Returns matched=false when no doctrine fit uses the hull.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"format": formatProperty(),
				"fit": {
					Type:        "string",
					Description: "The fit text",
					MinLength:   nonEmpty(),
				},
			},
			Required: []string{"fit"},
		},
	}
}

func skillPlansTool() ToolDefinition {
	return ToolDefinition{
		Name:        "skill_plans",
		Description: "List every configured skill plan with its training order, ships and total skill points.",
		InputSchema: JSONSchema{Type: "object"},
	}
}

func checkFitTool() ToolDefinition {
	minLevel := 0.0
	maxLevel := float64(fitting.MaxSkillLevel)

	return ToolDefinition{
		Name:        "check_fit",
		Description: "Evaluate a pilot's fit and skills for the waitlist. Returns approval, tags, waitlist category, problems and the doctrine comparison.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"fit": {
					Type:        "string",
					Description: "The pilot's fit as DNA",
					MinLength:   nonEmpty(),
				},
				"skills": {
					Type:        "object",
					Description: "Trained skill levels (skill_id -> level)",
					AdditionalProperties: &Property{
						Type:    "integer",
						Minimum: &minLevel,
						Maximum: &maxLevel,
					},
				},
			},
			Required: []string{"fit"},
		},
	}
}

func listFittingsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "list_fittings",
		Description: "List the doctrine fits grouped by hull, with canonical DNA.",
		InputSchema: JSONSchema{Type: "object"},
	}
}

func verifyDoctrineTool() ToolDefinition {
	return ToolDefinition{
		Name:        "verify_doctrine",
		Description: "Check that every doctrine fit is valid and is matched to itself.",
		InputSchema: JSONSchema{Type: "object"},
	}
}

func hullSkillsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "hull_skills",
		Description: "Show a hull's skill table (min, elite and gold levels) grouped by skill category.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"hull": {
					Type:        "string",
					Description: "Hull name, e.g. Nightmare",
					MinLength:   nonEmpty(),
				},
			},
			Required: []string{"hull"},
		},
	}
}

func itemVariationsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "item_variations",
		Description: "List the items accepted in place of an item with their tier difference, in the order fits are compared.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"item": {
					Type:        "string",
					Description: "Item name",
					MinLength:   nonEmpty(),
				},
			},
			Required: []string{"item"},
		},
	}
}

// Tool handlers

func (s *Server) toolParseFit(ctx context.Context, args json.RawMessage) (any, error) {
	var req fitting.ParseFitRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", fitting.ErrMalformedInput, err)
	}
	return s.engine.ParseFit(ctx, req)
}

func (s *Server) toolCompareFit(ctx context.Context, args json.RawMessage) (any, error) {
	var req fitting.CompareFitRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", fitting.ErrMalformedInput, err)
	}
	return s.engine.CompareFit(ctx, req)
}

func (s *Server) toolMatchFit(ctx context.Context, args json.RawMessage) (any, error) {
	var req fitting.MatchFitRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", fitting.ErrMalformedInput, err)
	}
	return s.engine.MatchFit(ctx, req)
}

func (s *Server) toolCheckFit(ctx context.Context, args json.RawMessage) (any, error) {
	var req fitting.CheckFitRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", fitting.ErrMalformedInput, err)
	}
	return s.engine.CheckFit(ctx, req)
}

// VerifyDoctrineResult is the response for verify_doctrine.
type VerifyDoctrineResult struct {
	OK         bool              `json:"ok"`
	Mismatches []engine.Mismatch `json:"mismatches"`
}

func (s *Server) toolVerifyDoctrine(ctx context.Context) (any, error) {
	mismatches, err := s.engine.VerifyDoctrine(ctx)
	if err != nil {
		return nil, err
	}
	if mismatches == nil {
		mismatches = []engine.Mismatch{}
	}
	return VerifyDoctrineResult{OK: len(mismatches) == 0, Mismatches: mismatches}, nil
}

func (s *Server) toolHullSkills(ctx context.Context, args json.RawMessage) (any, error) {
	var req fitting.HullSkillsRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", fitting.ErrMalformedInput, err)
	}
	return s.engine.HullSkills(ctx, req)
}

func (s *Server) toolItemVariations(ctx context.Context, args json.RawMessage) (any, error) {
	var req fitting.ItemVariationsRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", fitting.ErrMalformedInput, err)
	}
	return s.engine.ItemVariations(ctx, req)
}
