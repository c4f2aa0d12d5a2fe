package filter

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/surveyarr/table"
)

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{name: "valid expression", expression: `isActive == true`},
		{name: "empty expression", expression: "  ", wantErr: true, errContains: "empty expression"},
		{name: "invalid syntax", expression: `hasSubstr(name, "unclosed`, wantErr: true},
		{name: "non-boolean result", expression: `lower("x")`, wantErr: true},
		{name: "operator form", expression: `name contains "Pulse" and id startsWith "SV_"`},
		{name: "complex expression", expression: `isActive and hasPrefix(name, "Pulse") and daysSince(lastModified) < 30`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var cerr *CompilationError
				assert.ErrorAs(t, err, &cerr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, filter.Expression())
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	compiler := NewExprCompiler(WithClock(clock))

	row := table.Row{
		"id":           "SV_1",
		"name":         "Customer Pulse 2024",
		"isActive":     true,
		"lastModified": "2024-02-20T12:00:00Z",
		"responses":    float64(42),
		"note":         math.NaN(),
	}

	tests := []struct {
		expression string
		want       bool
	}{
		{`isActive`, true},
		{`!isActive`, false},
		{`hasSubstr(name, "pulse")`, true},
		{`hasPrefix(id, "sv_")`, true},
		{`hasSuffix(name, "2023")`, false},
		{`hasSubstr(responses, "4")`, true},
		{`name contains "Pulse"`, true},
		{`name contains "pulse"`, false},
		{`name startsWith "Customer"`, true},
		{`name endsWith "2024"`, true},
		{`upper(id) == "SV_1"`, true},
		{`daysSince(lastModified) == 10`, true},
		{`parseDate("2024-01-01") < now()`, true},
		{`responses > 40`, true},
		{`note == nil`, true},
		{`missing == nil`, true},
		{`Row["name"] == name`, true},
		// runtime type errors do not match
		{`responses > "x"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, filter.Evaluate(row))
		})
	}
}

func TestApply(t *testing.T) {
	tbl := table.FromRecords([]map[string]any{
		{"id": "SV_1", "name": "Pulse Q1", "isActive": true},
		{"id": "SV_2", "name": "Pulse Q2", "isActive": false},
		{"id": "SV_3", "name": "Exit", "isActive": true},
	})

	filter, err := CompileFilter(`isActive and hasSubstr(name, "pulse")`)
	require.NoError(t, err)

	got := Apply(filter, tbl)
	require.Equal(t, 1, got.Len())
	id, _ := got.Value(0, "id")
	assert.Equal(t, "SV_1", id)
	assert.Equal(t, 3, tbl.Len())
}

func TestCompilerCache(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	first, err := compiler.Compile("isActive")
	require.NoError(t, err)
	again, err := compiler.Compile(" isActive ")
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = compiler.Compile("!isActive")
	require.NoError(t, err)
	_, err = compiler.Compile("id == 'x'")
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.Size())

	// evicted, so recompiled
	third, err := compiler.Compile("isActive")
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	compiler.Clear()
	assert.Zero(t, compiler.Size())
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isPulse": func(name any) bool { return name == "Pulse" },
	}))
	filter, err := compiler.Compile(`isPulse(name)`)
	require.NoError(t, err)
	assert.True(t, filter.Evaluate(table.Row{"name": "Pulse"}))
	assert.False(t, filter.Evaluate(table.Row{"name": "Exit"}))
}

func TestManagerResolve(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterFilters(map[string]string{
		"active": "isActive",
		"pulse":  `hasSubstr(name, "pulse")`,
	}))
	assert.Equal(t, []string{"active", "pulse"}, m.ListFilters())

	named, err := m.Resolve("@active")
	require.NoError(t, err)
	assert.Equal(t, "isActive", named.Expression())

	adhoc, err := m.Resolve(`id == "SV_1"`)
	require.NoError(t, err)
	assert.True(t, adhoc.Evaluate(table.Row{"id": "SV_1"}))

	_, err = m.Resolve("@unknown")
	var unknown *UnknownFilterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "unknown", unknown.Name)
}

func TestManagerRegisterAllOrNothing(t *testing.T) {
	m := NewManager()
	err := m.RegisterFilters(map[string]string{
		"good": "isActive",
		"bad":  "isActive ==",
	})
	require.Error(t, err)
	assert.Empty(t, m.ListFilters())
}
