package appforge

import (
	"log/slog"

	"github.com/samber/lo"
)

// Intent is the structured summary of a natural-language feature request.
type Intent struct {
	Purpose     string   `json:"purpose"`
	Features    []string `json:"features"`
	TechStack   []string `json:"techStack"`
	Constraints []string `json:"constraints"`
}

// StepType classifies a plan step.
type StepType string

const (
	StepTypeScaffold  StepType = "scaffold"
	StepTypeComponent StepType = "component"
	StepTypeAPI       StepType = "api"
	StepTypeDatabase  StepType = "database"
	StepTypeTest      StepType = "test"
	StepTypeConfig    StepType = "config"
)

// Valid reports whether x is one of the known step types. Decoding keeps
// unknown types and GeneratePlan logs them; strict parsing rejects them
// through the plan schema.
func (x StepType) Valid() bool {
	switch x {
	case StepTypeScaffold, StepTypeComponent, StepTypeAPI, StepTypeDatabase, StepTypeTest, StepTypeConfig:
		return true
	}
	return false
}

// Step is one unit of work in a Plan. Dependencies holds IDs of other steps.
type Step struct {
	ID           string   `json:"id"`
	Type         StepType `json:"type"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"`
	Files        []string `json:"files"`
}

// Plan is an ordered list of steps with dependency edges.
type Plan struct {
	Steps        []Step   `json:"steps"`
	Dependencies []string `json:"dependencies"`

	// EstimatedTime is in seconds.
	EstimatedTime int `json:"estimatedTime"`
}

// unknownStepTypes returns the distinct step types that are not Valid.
func (x *Plan) unknownStepTypes() []StepType {
	types := lo.FilterMap(x.Steps, func(s Step, _ int) (StepType, bool) {
		return s.Type, !s.Type.Valid()
	})
	return lo.Uniq(types)
}

// File is a generated source or test file.
type File struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// LogValue keeps file contents out of logs.
func (f File) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", f.Path),
		slog.String("language", f.Language),
		slog.Int("size", len(f.Content)),
	)
}

// Metadata describes a generated CodeBundle. CreatedAt is kept as the string
// the model produced.
type Metadata struct {
	Framework string   `json:"framework"`
	Template  string   `json:"template"`
	Features  []string `json:"features"`
	CreatedAt string   `json:"createdAt"`
}

// CodeBundle is the result of code generation. Dependencies maps package
// name to version.
type CodeBundle struct {
	Files        []File            `json:"files"`
	Dependencies map[string]string `json:"dependencies"`
	Metadata     Metadata          `json:"metadata"`
}

// Paths returns the file paths of the bundle in order.
func (x *CodeBundle) Paths() []string {
	return lo.Map(x.Files, func(f File, _ int) string { return f.Path })
}

// TestBundle is the result of test generation. Coverage is a 0-100 estimate.
type TestBundle struct {
	Files    []File  `json:"files"`
	Coverage float64 `json:"coverage"`
}
