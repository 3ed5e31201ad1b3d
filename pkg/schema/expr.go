package schema

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Expression compiles a boolean expression into a VerifyFunc.
// The expression sees three variables: value, parent and key. A false
// result fails the field; a runtime error fails it with the error text.
//
//	verify_expr: "len(value) >= 3 && value != parent.username"
func Expression(src string) (VerifyFunc, error) {
	env := map[string]any{"value": nil, "parent": nil, "key": ""}
	program, err := expr.Compile(src, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, err
	}
	return exprVerify(program, src), nil
}

func exprVerify(program *vm.Program, src string) VerifyFunc {
	return func(value, parent any, key string) error {
		out, err := expr.Run(program, map[string]any{"value": value, "parent": parent, "key": key})
		if err != nil {
			return fmt.Errorf("Parameter %q could not be verified: %v.", key, err)
		}
		if ok, _ := out.(bool); !ok {
			return fmt.Errorf("Parameter %q does not satisfy %q.", key, src)
		}
		return nil
	}
}
