package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed output.cue
var outputSchema string

// Variant keys at each union site.
var (
	rootVariants = []string{"schemaVersion", "testRunArtifact", "testStepArtifact"}
	runVariants  = []string{"testRunStart", "testRunEnd", "log", "error"}
	stepVariants = []string{
		"testStepStart", "testStepEnd", "measurement",
		"measurementSeriesStart", "measurementSeriesElement", "measurementSeriesEnd",
		"diagnosis", "log", "error", "file", "extension",
	}
)

// Validator checks output lines against the CUE definition of the wire
// format.
//
// Thread-safety: CUE values are not safe for concurrent use, so every check
// holds an internal mutex.
type Validator struct {
	mu       sync.Mutex
	ctx      *cue.Context
	envelope cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(outputSchema, cue.Filename("output.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling output schema: %w", firstCUEError(err))
	}
	env := v.LookupPath(cue.ParsePath("#Envelope"))
	if !env.Exists() {
		return nil, fmt.Errorf("output schema has no #Envelope definition")
	}
	return &Validator{ctx: ctx, envelope: env}, nil
}

var defaultValidator = sync.OnceValues(New)

// Default returns a process-wide Validator, compiling it on first use.
func Default() (*Validator, error) {
	return defaultValidator()
}

// MustDefault is like Default but panics if the embedded schema does not
// compile.
func MustDefault() *Validator {
	v, err := Default()
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateLine checks one JSON line. Violations are returned as
// *ValidationError with Line left at 0.
func (v *Validator) ValidateLine(line []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(line, &top); err != nil {
		return &ValidationError{Code: ErrCodeMalformed, Message: err.Error()}
	}

	key, err := oneVariant("root", top, rootVariants)
	if err != nil {
		return err
	}
	switch key {
	case "testRunArtifact":
		if err := checkNested(top[key], key, runVariants); err != nil {
			return err
		}
	case "testStepArtifact":
		if err := checkNested(top[key], key, stepVariants); err != nil {
			return err
		}
	}

	expr, err := cuejson.Extract("line", line)
	if err != nil {
		return &ValidationError{Code: ErrCodeMalformed, Message: err.Error()}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	data := v.ctx.BuildExpr(expr)
	if err := data.Err(); err != nil {
		return &ValidationError{Code: ErrCodeMalformed, Message: firstCUEError(err).Error()}
	}
	if err := v.envelope.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{
			Code:    ErrCodeSchemaMismatch,
			Variant: key,
			Message: firstCUEError(err).Error(),
		}
	}
	return nil
}

func checkNested(raw json.RawMessage, site string, variants []string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return &ValidationError{
			Code:    ErrCodeSchemaMismatch,
			Variant: site,
			Message: "expected an object",
		}
	}
	_, err := oneVariant(site, obj, variants)
	return err
}

// oneVariant returns the single variant key present in obj.
func oneVariant(site string, obj map[string]json.RawMessage, variants []string) (string, error) {
	var found []string
	for _, k := range variants {
		if _, ok := obj[k]; ok {
			found = append(found, k)
		}
	}
	if len(found) == 1 {
		return found[0], nil
	}
	sort.Strings(found)
	msg := fmt.Sprintf("%s must hold exactly one of %s", site, strings.Join(variants, ", "))
	if len(found) > 0 {
		msg += fmt.Sprintf(", found %s", strings.Join(found, ", "))
	}
	return "", &ValidationError{Code: ErrCodeVariantCount, Message: msg}
}

// firstCUEError trims a CUE error list to its first entry.
func firstCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	return errs[0]
}
