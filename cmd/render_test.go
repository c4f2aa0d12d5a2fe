package cmd

import (
	"bytes"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/surveyarr/config"
	"github.com/s0up4200/surveyarr/filter"
	"github.com/s0up4200/surveyarr/table"
)

func TestRenderTable(t *testing.T) {
	tbl := table.FromRecords([]map[string]any{
		{"id": "SV_1", "name": "Pulse", "isActive": true},
		{"id": "SV_2", "name": math.NaN(), "isActive": false},
	})

	var buf bytes.Buffer
	renderTable(&buf, tbl, "id", "name")

	out := buf.String()
	assert.Contains(t, out, "SV_1")
	assert.Contains(t, out, "Pulse")
	assert.NotContains(t, out, "NaN")
	assert.NotContains(t, out, "isActive")
}

func TestApplyFilter(t *testing.T) {
	logger = zerolog.Nop()
	filters = filter.NewManager()
	require.NoError(t, filters.RegisterFilters(config.FilterConfig{"active": "isActive"}))

	tbl := table.FromRecords([]map[string]any{
		{"id": "SV_1", "isActive": true},
		{"id": "SV_2", "isActive": false},
	})

	same, err := applyFilter(tbl, "")
	require.NoError(t, err)
	assert.Same(t, tbl, same)

	active, err := applyFilter(tbl, "@active")
	require.NoError(t, err)
	assert.Equal(t, 1, active.Len())

	_, err = applyFilter(tbl, "@missing")
	assert.Error(t, err)
}

func TestSetupLoggerLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	setupLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	setupLogger(config.LoggingConfig{Level: "debug", Format: "console"})
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
