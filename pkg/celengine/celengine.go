package celengine

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
)

// BuildCelEnvFromAttributes declares one CEL variable per attribute, typed
// after the sample value.
func BuildCelEnvFromAttributes(attrs map[string]interface{}) (*cel.Env, error) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	variables := make([]cel.EnvOption, 0, len(keys))
	for _, key := range keys {
		switch attrs[key].(type) {
		case string:
			variables = append(variables, cel.Variable(key, cel.StringType))
		case int, int32, int64:
			variables = append(variables, cel.Variable(key, cel.IntType))
		case float32, float64:
			variables = append(variables, cel.Variable(key, cel.DoubleType))
		case bool:
			variables = append(variables, cel.Variable(key, cel.BoolType))
		case []string:
			variables = append(variables, cel.Variable(key, cel.ListType(cel.StringType)))
		case []interface{}:
			variables = append(variables, cel.Variable(key, cel.ListType(cel.DynType)))
		case map[string]interface{}:
			variables = append(variables, cel.Variable(key, cel.MapType(cel.StringType, cel.DynType)))
		default:
			variables = append(variables, cel.Variable(key, cel.DynType))
		}
	}

	return cel.NewEnv(variables...)
}

// Predicate is a boolean CEL expression compiled once and evaluated many times.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile checks expr against the attribute schema and requires a bool result.
func Compile(expr string, schema map[string]interface{}) (*Predicate, error) {
	env, err := BuildCelEnvFromAttributes(schema)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression %q must evaluate to bool, got %s", expr, t)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}

	return &Predicate{expr: expr, prg: prg}, nil
}

func (p *Predicate) String() string { return p.expr }

func (p *Predicate) Evaluate(attrs map[string]interface{}) (bool, error) {
	out, _, err := p.prg.Eval(attrs)
	if err != nil {
		return false, err
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expected bool from expression, got %T (%v)", out.Value(), out.Value())
	}
	return b, nil
}
