package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsAreValid(t *testing.T) {
	for _, name := range []string{Cycle70Hour8Day, Cycle60Hour7Day} {
		r, err := RulesFor(name)
		require.NoError(t, err)
		assert.NoError(t, r.Validate(), name)
	}
}

func TestValidateRejectsInconsistentLimits(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*RuleSet)
	}{
		{"zero restart", func(r *RuleSet) { r.Restart = 0 }},
		{"no cycle days", func(r *RuleSet) { r.CycleDays = 0 }},
		{"drive above window", func(r *RuleSet) { r.DailyDriveLimit = 15 * time.Hour }},
		{"break longer than daily rest", func(r *RuleSet) { r.MinBreak = 11 * time.Hour }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := DefaultRules()
			tc.modify(&r)
			assert.Error(t, r.Validate())
		})
	}

	r := DefaultRules()
	r.MinBreak = r.DailyRest
	assert.NoError(t, r.Validate(), "a break as long as the daily rest is allowed")
}
