package appforge

import (
	"github.com/samber/lo"
)

// maxFallbackPurpose is the number of characters of the prompt kept as
// Intent.Purpose when the model response cannot be decoded.
const maxFallbackPurpose = 100

func fallbackIntent(prompt string) *Intent {
	runes := []rune(prompt)
	if len(runes) > maxFallbackPurpose {
		runes = runes[:maxFallbackPurpose]
	}

	return &Intent{
		Purpose:     string(runes),
		Features:    []string{},
		TechStack:   []string{},
		Constraints: []string{},
	}
}

func fallbackPlan() *Plan {
	return &Plan{
		Steps:         []Step{},
		Dependencies:  []string{},
		EstimatedTime: 0,
	}
}

func fallbackCodeBundle() *CodeBundle {
	return &CodeBundle{
		Files:        []File{},
		Dependencies: map[string]string{},
		Metadata: Metadata{
			Features: []string{},
		},
	}
}

func fallbackTestBundle() *TestBundle {
	return &TestBundle{
		Files:    []File{},
		Coverage: 0,
	}
}

// emptyIfNil replaces a nil slice so that results encode as [] rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func normalizeIntent(x *Intent) {
	x.Features = emptyIfNil(x.Features)
	x.TechStack = emptyIfNil(x.TechStack)
	x.Constraints = emptyIfNil(x.Constraints)
}

func normalizePlan(x *Plan) {
	x.Steps = emptyIfNil(x.Steps)
	x.Dependencies = emptyIfNil(x.Dependencies)
	for i := range x.Steps {
		x.Steps[i].Dependencies = emptyIfNil(x.Steps[i].Dependencies)
		x.Steps[i].Files = emptyIfNil(x.Steps[i].Files)
	}
}

func normalizeCodeBundle(x *CodeBundle) {
	x.Files = emptyIfNil(x.Files)
	x.Dependencies = lo.Ternary(x.Dependencies == nil, map[string]string{}, x.Dependencies)
	x.Metadata.Features = emptyIfNil(x.Metadata.Features)
}

func normalizeTestBundle(x *TestBundle) {
	x.Files = emptyIfNil(x.Files)
}
