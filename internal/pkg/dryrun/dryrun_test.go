package dryrun

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/pkg/output"
)

func TestIsDryRun(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"", false},
		{"yes", false},
		{"0", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(constants.EnvDryRun, tt.value)
			assert.Equal(t, tt.want, IsDryRun())
		})
	}
}

func TestBuildPlan_NumbersSteps(t *testing.T) {
	plan := BuildPlan("nr-metrics", []output.PlanStep{
		{Operation: "a"},
		{Operation: "b", Order: 7},
		{Operation: "c"},
	}, "итого")

	assert.Equal(t, "nr-metrics", plan.Command)
	assert.True(t, plan.ValidationPassed)
	assert.Equal(t, "итого", plan.Summary)
	assert.Equal(t, []int{1, 7, 3}, []int{plan.Steps[0].Order, plan.Steps[1].Order, plan.Steps[2].Order})
}

func TestMaskSecrets(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sqlserver://sa:secret@db:1433?database=M", "sqlserver://sa:***@db:1433?database=M"},
		{"server=db;user id=sa;password=p@ss;", "server=db;user id=sa;password=***;"},
		{"Server=db;Pwd=x", "Server=db;Pwd=***"},
		{"sqlserver://db:1433", "sqlserver://db:1433"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskSecrets(tt.in))
		})
	}
}
