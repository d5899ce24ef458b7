package appforge

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// Model output is decoded field by field: a key holding an unexpected JSON
// type yields the zero value for that field and the rest of the object is
// kept. Only a value that is not an object at all fails to decode.

var errNotObject = errors.New("JSON value is not an object")

var leadingNumber = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)`)

func objectFields(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, goerr.Wrap(errNotObject, "cannot decode object", goerr.V("size", len(data)))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, goerr.Wrap(err, "failed to decode object")
	}
	return fields, nil
}

// looseString accepts a string, or a number or bool as its literal text.
func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// looseStrings accepts an array, keeping its scalar elements, or a single
// string as a one-element list.
func looseStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return []string{s}
		}
		return nil
	}

	values := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == 'n' {
			continue
		}
		values = append(values, looseString(item))
	}
	return values
}

// looseStringMap keeps the scalar values of an object.
func looseStringMap(raw json.RawMessage) map[string]string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil
	}

	values := make(map[string]string, len(fields))
	for key, value := range fields {
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == 'n' {
			continue
		}
		values[key] = looseString(value)
	}
	return values
}

// looseFloat accepts a number, or a string starting with one ("85%",
// "5 minutes").
func looseFloat(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	m := leadingNumber.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	f, _ = strconv.ParseFloat(m[1], 64)
	return f
}

func looseInt(raw json.RawMessage) int {
	return int(looseFloat(raw))
}

// looseObjects decodes every object element of an array into T, skipping
// elements that are not objects.
func looseObjects[T any](raw json.RawMessage) []T {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	values := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

func (x *Intent) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}

	*x = Intent{
		Purpose:     looseString(fields["purpose"]),
		Features:    looseStrings(fields["features"]),
		TechStack:   looseStrings(fields["techStack"]),
		Constraints: looseStrings(fields["constraints"]),
	}
	return nil
}

func (x *Step) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}

	*x = Step{
		ID:           looseString(fields["id"]),
		Type:         StepType(looseString(fields["type"])),
		Description:  looseString(fields["description"]),
		Dependencies: looseStrings(fields["dependencies"]),
		Files:        looseStrings(fields["files"]),
	}
	return nil
}

func (x *Plan) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}

	*x = Plan{
		Steps:         looseObjects[Step](fields["steps"]),
		Dependencies:  looseStrings(fields["dependencies"]),
		EstimatedTime: looseInt(fields["estimatedTime"]),
	}
	return nil
}

func (x *File) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}

	*x = File{
		Path:     looseString(fields["path"]),
		Content:  looseString(fields["content"]),
		Language: looseString(fields["language"]),
	}
	return nil
}

func (x *Metadata) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}

	*x = Metadata{
		Framework: looseString(fields["framework"]),
		Template:  looseString(fields["template"]),
		Features:  looseStrings(fields["features"]),
		CreatedAt: looseString(fields["createdAt"]),
	}
	return nil
}

func (x *CodeBundle) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}

	var metadata Metadata
	if raw, ok := fields["metadata"]; ok {
		// A non-object metadata value leaves every metadata field empty.
		_ = json.Unmarshal(raw, &metadata)
	}

	*x = CodeBundle{
		Files:        looseObjects[File](fields["files"]),
		Dependencies: looseStringMap(fields["dependencies"]),
		Metadata:     metadata,
	}
	return nil
}

func (x *TestBundle) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}

	*x = TestBundle{
		Files:    looseObjects[File](fields["files"]),
		Coverage: looseFloat(fields["coverage"]),
	}
	return nil
}

// filePaths returns files[].path of a code document, skipping entries without
// a string path. A document without files yields no paths.
func filePaths(data []byte) ([]string, error) {
	fields, err := objectFields(data)
	if err != nil {
		return nil, err
	}

	var files []map[string]json.RawMessage
	if raw, ok := fields["files"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, goerr.Wrap(err, "files is not an array")
		}
		for _, item := range items {
			var f map[string]json.RawMessage
			if err := json.Unmarshal(item, &f); err == nil && f != nil {
				files = append(files, f)
			}
		}
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		var path string
		if err := json.Unmarshal(f["path"], &path); err != nil {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}
