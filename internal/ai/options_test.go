package ai

import (
	"encoding/json"
	"testing"
)

func TestTemperatureAliases(t *testing.T) {
	cases := []struct {
		input string
		want  Temperature
	}{
		{`"accurate"`, 0},
		{`"creative"`, 1},
		{`0.4`, 0.4},
	}
	for _, tc := range cases {
		var temp Temperature
		if err := json.Unmarshal([]byte(tc.input), &temp); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.input, err)
		}
		if temp != tc.want {
			t.Errorf("input %s: expected %v, got %v", tc.input, tc.want, temp)
		}
	}
}

func TestTemperatureRejectsOutOfRange(t *testing.T) {
	var temp Temperature
	if err := json.Unmarshal([]byte(`1.5`), &temp); err == nil {
		t.Error("expected error for temperature above 1")
	}
	if err := json.Unmarshal([]byte(`"warm"`), &temp); err == nil {
		t.Error("expected error for unknown alias")
	}
}

func TestPenaltyAliases(t *testing.T) {
	cases := []struct {
		input string
		want  Penalty
	}{
		{`"allow"`, -1},
		{`"default"`, 0},
		{`"restrict"`, 1},
		{`-0.5`, -0.5},
	}
	for _, tc := range cases {
		var penalty Penalty
		if err := json.Unmarshal([]byte(tc.input), &penalty); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.input, err)
		}
		if penalty != tc.want {
			t.Errorf("input %s: expected %v, got %v", tc.input, tc.want, penalty)
		}
	}
}

func TestPenaltyRejectsOutOfRange(t *testing.T) {
	var penalty Penalty
	if err := json.Unmarshal([]byte(`2`), &penalty); err == nil {
		t.Error("expected error for penalty above 1")
	}
}

func TestModelTierDefaultsToLow(t *testing.T) {
	var tier ModelTier
	if err := json.Unmarshal([]byte(`""`), &tier); err != nil {
		t.Fatalf("unmarshal empty tier: %v", err)
	}
	if tier != ModelLow {
		t.Errorf("expected low tier default, got %q", tier)
	}

	if err := json.Unmarshal([]byte(`"ultra"`), &tier); err == nil {
		t.Error("expected error for unknown tier")
	}
}

func TestTagOptionsDefaults(t *testing.T) {
	opts := TagOptions{}.withDefaults()
	if opts.Min != 1 || opts.Max != 5 {
		t.Errorf("expected defaults min=1 max=5, got min=%d max=%d", opts.Min, opts.Max)
	}

	opts = TagOptions{Min: 3, Max: 2}.withDefaults()
	if opts.Max != 3 {
		t.Errorf("max should be raised to min, got %d", opts.Max)
	}
}
