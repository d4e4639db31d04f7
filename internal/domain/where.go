package domain

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// whereEnv is the variable set visible to a --where expression.
type whereEnv struct {
	Node      int     `expr:"node"`
	X         float64 `expr:"x"`
	Y         float64 `expr:"y"`
	Depth     float64 `expr:"depth"`
	Elevation float64 `expr:"elevation"`
}

// CompileWhere compiles a boolean expression over node, x, y, depth and
// elevation into a Predicate, e.g. "depth < 5 && x > -95". Evaluation
// errors at run time count as no match.
func CompileWhere(src string) (Predicate, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%w: empty where expression", ErrInvalidChoice)
	}

	program, err := expr.Compile(src, expr.Env(whereEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile where expression: %w", err)
	}

	return func(id int, m *Mesh) bool {
		n, ok := m.Node(id)
		if !ok {
			return false
		}
		return evalWhere(program, whereEnv{
			Node:      id,
			X:         n.X,
			Y:         n.Y,
			Depth:     n.Depth,
			Elevation: n.Elevation(),
		})
	}, nil
}

func evalWhere(program *vm.Program, env whereEnv) bool {
	out, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}
