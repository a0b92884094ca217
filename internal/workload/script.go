// Package workload loads YAML scripts of tree operations, runs them against
// an interval tree, and reports each step's outcome against its expectation.
package workload

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Sentinel errors.
var (
	// ErrSchema is returned when a script does not match the workload schema.
	ErrSchema = errors.New("workload does not match schema")
	// ErrUnknownOp is returned for a step whose operation is not recognized.
	ErrUnknownOp = errors.New("unknown workload operation")
	// ErrExpectation is returned when a step's outcome differs from its expectation.
	ErrExpectation = errors.New("workload expectation failed")
)

//go:embed schema.json
var schemaJSON []byte

// Op names a tree operation.
type Op string

// Operations.
const (
	OpInsert  Op = "insert"
	OpRemove  Op = "remove"
	OpFind    Op = "find"
	OpOverlap Op = "overlap"
	OpMin     Op = "min"
	OpMax     Op = "max"
	OpSize    Op = "size"
	OpList    Op = "list"
	OpClear   Op = "clear"
)

const expectKey = "expect"

var ops = map[Op]bool{
	OpInsert: true, OpRemove: true, OpFind: true, OpOverlap: true,
	OpMin: true, OpMax: true, OpSize: true, OpList: true, OpClear: true,
}

// takesInterval reports whether the operation's argument is an interval.
func (o Op) takesInterval() bool {
	switch o {
	case OpInsert, OpRemove, OpFind, OpOverlap:
		return true
	default:
		return false
	}
}

// Script is a decoded workload.
type Script struct {
	// Domain overrides the configured interval domain when set.
	Domain string `yaml:"domain"`
	// Validate overrides the configured validation switch when set.
	Validate *bool  `yaml:"validate"`
	Steps    []Step `yaml:"steps"`
}

// Step is one operation with its optional expectation.
type Step struct {
	Op Op
	// Arg is the interval text for interval operations.
	Arg string
	// Expect is the raw expectation; nil when the step has none.
	Expect *yaml.Node
	// Line is the step's line in the source document.
	Line int
}

// UnmarshalYAML decodes a single-key operation mapping plus optional expect.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: step must be a mapping", value.Line)
	}

	s.Line = value.Line

	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]

		if key.Value == expectKey {
			s.Expect = val

			continue
		}

		op := Op(key.Value)
		if !ops[op] {
			return fmt.Errorf("line %d: %w: %q", key.Line, ErrUnknownOp, key.Value)
		}

		if s.Op != "" {
			return fmt.Errorf("line %d: step has both %q and %q", key.Line, s.Op, op)
		}

		s.Op = op

		if op.takesInterval() {
			s.Arg = val.Value
		}
	}

	if s.Op == "" {
		return fmt.Errorf("line %d: step has no operation", value.Line)
	}

	return nil
}

// ResolveDomain returns the script's domain, or fallback when it has none.
func (s *Script) ResolveDomain(fallback string) string {
	if s.Domain != "" {
		return s.Domain
	}

	return fallback
}

// ResolveValidate returns the script's validation switch, or fallback when unset.
func (s *Script) ResolveValidate(fallback bool) bool {
	if s.Validate != nil {
		return *s.Validate
	}

	return fallback
}

// Load reads, schema-validates and decodes a workload script.
func Load(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}

	var doc any

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode workload: %w", err)
	}

	err = validateSchema(doc)
	if err != nil {
		return nil, err
	}

	var script Script

	err = yaml.Unmarshal(data, &script)
	if err != nil {
		return nil, fmt.Errorf("decode workload steps: %w", err)
	}

	return &script, nil
}

// LoadFile loads the workload script at path.
func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workload: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func validateSchema(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate workload: %w", err)
	}

	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		errs = append(errs, fmt.Errorf("%s: %s", verr.Field(), verr.Description()))
	}

	return fmt.Errorf("%w:\n%w", ErrSchema, errors.Join(errs...))
}
