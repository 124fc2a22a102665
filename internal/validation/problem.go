// Package validation parses BWM problem documents (YAML or JSON) and checks them
// against the embedded problem schema before they reach the engine.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
)

//go:embed problem.schema.json
var problemSchemaJSON string

var (
	problemSchema  = mustCompileSchema(problemSchemaJSON, "problem.schema.json")
	defaultPrinter = message.NewPrinter(language.English)
)

var (
	// ErrSchema is matched by every *SchemaError.
	ErrSchema = errors.New("problem document does not match schema")

	ErrTooManyCriteria = errors.New("too many criteria")
)

// SchemaError lists every schema violation found in a document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return ErrSchema.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// Document is the serialized form of a BWM problem.
type Document struct {
	Name          string                      `json:"name,omitempty" yaml:"name,omitempty"`
	Criteria      []bwm.Criterion             `json:"criteria" yaml:"criteria"`
	Best          *bwm.CriterionID            `json:"best,omitempty" yaml:"best,omitempty"`
	Worst         *bwm.CriterionID            `json:"worst,omitempty" yaml:"worst,omitempty"`
	BestToOthers  map[bwm.CriterionID]float64 `json:"best_to_others,omitempty" yaml:"best_to_others,omitempty"`
	OthersToWorst map[bwm.CriterionID]float64 `json:"others_to_worst,omitempty" yaml:"others_to_worst,omitempty"`
}

// Problem converts the document into engine input. An unset best or worst is
// reported as bwm.ErrMissingSelection.
func (d Document) Problem() (bwm.Problem, error) {
	if d.Best == nil || d.Worst == nil {
		return bwm.Problem{}, fmt.Errorf("%w: best and worst must be set", bwm.ErrMissingSelection)
	}
	return bwm.Problem{
		Criteria:      d.Criteria,
		Best:          *d.Best,
		Worst:         *d.Worst,
		BestToOthers:  d.BestToOthers,
		OthersToWorst: d.OthersToWorst,
	}, nil
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ParseDocument validates data against the problem schema and decodes it.
// JSON is detected by a leading '{'; anything else is read as YAML.
func ParseDocument(data []byte) (*Document, error) {
	isJSON := bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))

	var generic any
	if isJSON {
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if problems := validateAgainstSchema(problemSchema, toJSONCompatible(generic)); len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}

	doc := &Document{}
	var err error
	if isJSON {
		err = json.Unmarshal(data, doc)
	} else {
		err = yaml.Unmarshal(data, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode problem: %w", err)
	}
	return doc, nil
}

// ParseProblem is ParseDocument followed by Document.Problem.
func ParseProblem(data []byte) (string, bwm.Problem, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return "", bwm.Problem{}, err
	}
	p, err := doc.Problem()
	return doc.Name, p, err
}

// CheckCriteriaLimit rejects problems with more than limit criteria.
func CheckCriteriaLimit(p bwm.Problem, limit int) error {
	if len(p.Criteria) > limit {
		return fmt.Errorf("%w: %d > %d", ErrTooManyCriteria, len(p.Criteria), limit)
	}
	return nil
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// toJSONCompatible rewrites decoded YAML into the shapes a JSON decoder would
// produce: string map keys and float64 numbers.
func toJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			out[k] = toJSONCompatible(v2)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			out[fmt.Sprint(k)] = toJSONCompatible(v2)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v2 := range val {
			out[i] = toJSONCompatible(v2)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return val
	}
}
