// Package tracefile loads activation traces from YAML or JSON files.
//
// Files are validated against an embedded CUE schema before decoding, so
// schema violations surface as import errors with CUE's field-level
// positions instead of silent zero values in the store. JSON input works
// through the same path since YAML is a superset.
package tracefile

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"

	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/callsight/callsight/internal/trace"
)

//go:embed schema.cue
var schemaCUE string

// File is one decoded trace file: trial metadata plus the ordered
// activation sequence.
type File struct {
	Trial struct {
		Script    string `yaml:"script"`
		Arguments string `yaml:"arguments"`
		CodeHash  string `yaml:"code_hash"`
		Start     string `yaml:"start"`
		Finish    string `yaml:"finish"`
		Finished  bool   `yaml:"finished"`
	} `yaml:"trial"`
	Activations []struct {
		ID       int64  `yaml:"id"`
		Name     string `yaml:"name"`
		Line     int    `yaml:"line"`
		CallerID int64  `yaml:"caller_id"`
		Duration int64  `yaml:"duration"`
	} `yaml:"activations"`
}

// Load reads, validates, and decodes a trace file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates and decodes trace file contents. filename is used only
// for error positions.
func Parse(filename string, data []byte) (*File, error) {
	if err := validate(filename, data); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode trace file: %w", err)
	}
	return &f, nil
}

// validate unifies the file contents with the embedded #Trace schema.
func validate(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile trace schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Trace"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup trace schema: %w", err)
	}

	astFile, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("parse trace file: %w", err)
	}
	value := ctx.BuildFile(astFile)
	if err := value.Err(); err != nil {
		return fmt.Errorf("build trace file: %w", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("trace file does not match schema:\n%s", cueerrors.Details(err, nil))
	}
	return nil
}

// TrialRecord converts the file's trial metadata to a trace.Trial.
// Timestamps must be RFC 3339 when present.
func (f *File) TrialRecord() (trace.Trial, error) {
	t := trace.Trial{
		Script:    f.Trial.Script,
		Arguments: f.Trial.Arguments,
		CodeHash:  f.Trial.CodeHash,
		Finished:  f.Trial.Finished,
	}

	var err error
	if t.Start, err = parseTimestamp(f.Trial.Start); err != nil {
		return trace.Trial{}, fmt.Errorf("trial start: %w", err)
	}
	if t.Finish, err = parseTimestamp(f.Trial.Finish); err != nil {
		return trace.Trial{}, fmt.Errorf("trial finish: %w", err)
	}
	if !t.Finish.IsZero() {
		t.Finished = true
	}
	return t, nil
}

// Records converts the file's activations to trace records owned by the
// given trial id.
func (f *File) Records(trialID int) []trace.Activation {
	records := make([]trace.Activation, len(f.Activations))
	for i, a := range f.Activations {
		records[i] = trace.Activation{
			ID:       a.ID,
			Name:     a.Name,
			Line:     a.Line,
			CallerID: a.CallerID,
			TrialID:  trialID,
			Duration: a.Duration,
		}
	}
	return records
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
