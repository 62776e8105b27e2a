package plan

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/ledgerload/internal/samplers"
	"github.com/roach88/ledgerload/internal/scenario"
)

//go:embed schema.cue
var schemaCUE string

// Problem is one reason a plan is invalid.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a plan.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Field + ": " + p.Message
	}
	return "invalid plan: " + strings.Join(msgs, "; ")
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks p against the schema and, if that passes, against the
// declared parameters of its sampler.
func Validate(p *Plan) error {
	if problems := checkSchema(p); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	if problems := checkParameters(p); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func checkSchema(p *Plan) []Problem {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return []Problem{{Field: "schema", Message: err.Error()}}
	}

	v := schema.LookupPath(cue.ParsePath("#Plan")).Unify(ctx.Encode(p))
	err := v.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var problems []Problem
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		path := e.Path()
		if len(path) > 0 && path[0] == "#Plan" {
			path = path[1:]
		}
		problems = append(problems, Problem{
			Field:   strings.Join(path, "."),
			Message: fmt.Sprintf(format, args...),
		})
	}
	slices.SortStableFunc(problems, func(a, b Problem) int {
		return strings.Compare(a.Field, b.Field)
	})
	return problems
}

func checkParameters(p *Plan) []Problem {
	scn, err := samplers.Lookup(p.Sampler)
	if err != nil {
		return []Problem{{Field: "sampler", Message: err.Error()}}
	}

	values := scenario.NewValues(scn.Parameters(), p.Parameters)
	var problems []Problem
	for _, name := range values.Unknown() {
		problems = append(problems, Problem{
			Field:   "parameters." + name,
			Message: fmt.Sprintf("not declared by sampler %s", p.Sampler),
		})
	}
	if err := values.Validate(); err != nil {
		for _, e := range unjoin(err) {
			field := "parameters"
			var ce *scenario.ConfigurationError
			if errors.As(e, &ce) && ce.Parameter != "" {
				field += "." + ce.Parameter
			}
			problems = append(problems, Problem{Field: field, Message: e.Error()})
		}
	}
	return problems
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
