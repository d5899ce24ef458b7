package appforge

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

//go:embed templates/intent_system.md
var intentSystemPrompt string

//go:embed templates/intent_user.md
var intentUserTemplate string

//go:embed templates/plan_system.md
var planSystemPrompt string

//go:embed templates/plan_user.md
var planUserTemplate string

//go:embed templates/code_system.md
var codeSystemPrompt string

//go:embed templates/code_user.md
var codeUserTemplate string

//go:embed templates/tests_system.md
var testsSystemPrompt string

//go:embed templates/tests_user.md
var testsUserTemplate string

var (
	intentUserTmpl *template.Template
	planUserTmpl   *template.Template
	codeUserTmpl   *template.Template
	testsUserTmpl  *template.Template
)

func init() {
	intentUserTmpl = template.Must(template.New("intent").Parse(intentUserTemplate))
	planUserTmpl = template.Must(template.New("plan").Parse(planUserTemplate))
	codeUserTmpl = template.Must(template.New("code").Parse(codeUserTemplate))
	testsUserTmpl = template.Must(template.New("tests").Parse(testsUserTemplate))
}

type intentTemplateData struct {
	Prompt string
}

type planTemplateData struct {
	Intent string
}

type codeTemplateData struct {
	Plan    string
	Context string
}

type testsTemplateData struct {
	Files string
}

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("template", tmpl.Name()))
	}
	return buf.String(), nil
}

// indentJSON serializes v the way it is embedded into user prompts.
func indentJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", goerr.Wrap(err, "failed to marshal prompt input")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func buildIntentPrompt(prompt string) (string, error) {
	return renderPrompt(intentUserTmpl, intentTemplateData{Prompt: prompt})
}

func buildPlanPrompt(intent any) (string, error) {
	serialized, err := promptInput(intent, "intent")
	if err != nil {
		return "", err
	}
	return renderPrompt(planUserTmpl, planTemplateData{Intent: serialized})
}

func buildCodePrompt(plan any, codeContext string) (string, error) {
	serialized, err := promptInput(plan, "plan")
	if err != nil {
		return "", err
	}
	return renderPrompt(codeUserTmpl, codeTemplateData{Plan: serialized, Context: codeContext})
}

// buildTestsPrompt forwards only the file paths of the bundle. File contents
// are never embedded to keep the prompt size bounded.
func buildTestsPrompt(paths []string) (string, error) {
	serialized, err := indentJSON(emptyIfNil(paths))
	if err != nil {
		return "", err
	}
	return renderPrompt(testsUserTmpl, testsTemplateData{Files: serialized})
}

// promptInput serializes an operation input. A nil value, or JSON null, is
// rejected with ErrInvalidParameter.
func promptInput(v any, name string) (string, error) {
	serialized, err := indentJSON(v)
	if err != nil {
		return "", goerr.Wrap(ErrInvalidParameter, err.Error(), goerr.V("input", name))
	}
	if serialized == "null" {
		return "", goerr.Wrap(ErrInvalidParameter, name+" is required")
	}
	return serialized, nil
}
