package appforge_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/appforge"
	"github.com/m-mizutani/gt"
)

func TestPlanDecoding(t *testing.T) {
	type testCase struct {
		input string
		want  appforge.Plan
	}

	runTest := func(tc testCase) func(t *testing.T) {
		return func(t *testing.T) {
			var plan appforge.Plan
			gt.NoError(t, json.Unmarshal([]byte(tc.input), &plan))
			gt.Equal(t, plan, tc.want)
		}
	}

	step := appforge.Step{
		ID:           "1",
		Type:         appforge.StepTypeScaffold,
		Description:  "init",
		Dependencies: []string{},
		Files:        []string{"package.json"},
	}
	const stepJSON = `{"id":"1","type":"scaffold","description":"init","dependencies":[],"files":["package.json"]}`

	t.Run("float estimated time", runTest(testCase{
		input: `{"steps":[` + stepJSON + `],"dependencies":["react"],"estimatedTime":300.0}`,
		want:  appforge.Plan{Steps: []appforge.Step{step}, Dependencies: []string{"react"}, EstimatedTime: 300},
	}))
	t.Run("estimated time as text", runTest(testCase{
		input: `{"steps":[` + stepJSON + `],"dependencies":["react"],"estimatedTime":"5 minutes"}`,
		want:  appforge.Plan{Steps: []appforge.Step{step}, Dependencies: []string{"react"}, EstimatedTime: 5},
	}))
	t.Run("unparsable estimated time", runTest(testCase{
		input: `{"steps":[` + stepJSON + `],"estimatedTime":{"minutes":5}}`,
		want:  appforge.Plan{Steps: []appforge.Step{step}},
	}))
	t.Run("numeric step id", runTest(testCase{
		input: `{"steps":[{"id":7,"type":"api","description":"REST","files":"server.go"}]}`,
		want: appforge.Plan{Steps: []appforge.Step{{
			ID:          "7",
			Type:        appforge.StepTypeAPI,
			Description: "REST",
			Files:       []string{"server.go"},
		}}},
	}))
	t.Run("non-object steps are skipped", runTest(testCase{
		input: `{"steps":["scaffold",null,` + stepJSON + `]}`,
		want:  appforge.Plan{Steps: []appforge.Step{step}},
	}))
}

func TestIntentDecoding(t *testing.T) {
	var intent appforge.Intent
	gt.NoError(t, json.Unmarshal([]byte(`{"purpose":"Shop","features":["cart",3,{"x":1},null],"techStack":"go","constraints":false}`), &intent))
	gt.Equal(t, intent, appforge.Intent{
		Purpose:   "Shop",
		Features:  []string{"cart", "3"},
		TechStack: []string{"go"},
	})

	gt.Error(t, json.Unmarshal([]byte(`["purpose"]`), &intent))
}

func TestCodeBundleDecoding(t *testing.T) {
	var code appforge.CodeBundle
	gt.NoError(t, json.Unmarshal([]byte(`{
		"files":[{"path":"main.go","content":"package main","language":"go"}],
		"dependencies":{"chi":"^5.0.0","cobra":1,"bad":{"v":1}},
		"metadata":"react"
	}`), &code))
	gt.Equal(t, code, appforge.CodeBundle{
		Files:        []appforge.File{{Path: "main.go", Content: "package main", Language: "go"}},
		Dependencies: map[string]string{"chi": "^5.0.0", "cobra": "1"},
	})
}

func TestTestBundleDecoding(t *testing.T) {
	type testCase struct {
		coverage string
		want     float64
	}

	runTest := func(tc testCase) func(t *testing.T) {
		return func(t *testing.T) {
			var tests appforge.TestBundle
			input := `{"files":[{"path":"a_test.go","content":"package a"}],"coverage":` + tc.coverage + `}`
			gt.NoError(t, json.Unmarshal([]byte(input), &tests))
			gt.Equal(t, len(tests.Files), 1)
			gt.Equal(t, tests.Files[0].Path, "a_test.go")
			gt.Equal(t, tests.Coverage, tc.want)
		}
	}

	t.Run("number", runTest(testCase{coverage: `85`, want: 85}))
	t.Run("fraction", runTest(testCase{coverage: `72.5`, want: 72.5}))
	t.Run("percentage text", runTest(testCase{coverage: `"85%"`, want: 85}))
	t.Run("text without number", runTest(testCase{coverage: `"high"`, want: 0}))
	t.Run("null", runTest(testCase{coverage: `null`, want: 0}))
}
