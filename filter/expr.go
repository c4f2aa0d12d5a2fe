package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cast"

	"github.com/s0up4200/surveyarr/table"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.custom, funcs)
	}
}

// WithClock sets the clock behind now and daysSince
func WithClock(clock clockwork.Clock) ExprCompilerOption {
	return func(c *exprCompiler) {
		c.clock = clock
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		clock:  clockwork.NewRealClock(),
		custom: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.helperFuncs = helperFunctions(c.clock)
	maps.Copy(c.helperFuncs, c.custom)

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	clock       clockwork.Clock
	custom      map[string]any
	helperFuncs map[string]any
	cache       *lruCache
}

// CompileFilter compiles expression with the default helpers and no cache.
func CompileFilter(expression string) (CompiledFilter, error) {
	return NewExprCompiler().Compile(expression)
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached.(CompiledFilter), nil
		}
	}

	// Columns are unknown until evaluation
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a row. Rows that make the
// expression fail do not match.
func (f *exprFilter) Evaluate(row table.Row) bool {
	env := make(map[string]any, len(row)+len(f.helpers)+1)
	for col, v := range row {
		if table.IsNull(v) {
			v = nil
		}
		env[col] = v
	}
	maps.Copy(env, f.helpers)
	env["Row"] = row

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}

	// nil when the expression is a bare missing column
	matched, ok := result.(bool)
	return ok && matched
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// helperFunctions builds the helpers available to every expression
func helperFunctions(clock clockwork.Clock) map[string]any {
	return map[string]any{
		// Date helpers
		"daysSince": func(v any) int {
			t, err := cast.ToTimeE(v)
			if err != nil || t.IsZero() {
				return -1
			}
			return int(clock.Since(t).Hours() / 24)
		},
		"parseDate": func(s string) time.Time {
			t, err := cast.ToTimeE(s)
			if err != nil {
				return time.Time{}
			}
			return t
		},
		"now": clock.Now,
		// String helpers, case-insensitive. The case-sensitive forms are
		// the contains, startsWith and endsWith operators.
		"hasSubstr": func(str, substr any) bool {
			return strings.Contains(strings.ToLower(cast.ToString(str)), strings.ToLower(cast.ToString(substr)))
		},
		"hasPrefix": func(str, prefix any) bool {
			return strings.HasPrefix(strings.ToLower(cast.ToString(str)), strings.ToLower(cast.ToString(prefix)))
		},
		"hasSuffix": func(str, suffix any) bool {
			return strings.HasSuffix(strings.ToLower(cast.ToString(str)), strings.ToLower(cast.ToString(suffix)))
		},
		"lower": func(v any) string { return strings.ToLower(cast.ToString(v)) },
		"upper": func(v any) string { return strings.ToUpper(cast.ToString(v)) },
	}
}
