package ai

import (
	"encoding/json"
	"fmt"
)

// Model tiers. Callers pick a tier; the client maps tiers to concrete model
// names from configuration.
type ModelTier string

const (
	ModelLow    ModelTier = "low"
	ModelMedium ModelTier = "medium"
	ModelHigh   ModelTier = "high"
)

func (t *ModelTier) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	switch ModelTier(value) {
	case ModelLow, ModelMedium, ModelHigh:
		*t = ModelTier(value)
	case "":
		*t = ModelLow
	default:
		return fmt.Errorf("unknown model tier %q", value)
	}
	return nil
}

// Temperature accepts a number in [0,1] or the aliases "accurate" (0) and
// "creative" (1).
type Temperature float32

func (t *Temperature) UnmarshalJSON(data []byte) error {
	var alias string
	if err := json.Unmarshal(data, &alias); err == nil {
		switch alias {
		case "accurate":
			*t = 0
		case "creative":
			*t = 1
		default:
			return fmt.Errorf("unknown temperature %q", alias)
		}
		return nil
	}

	var value float32
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if value < 0 || value > 1 {
		return fmt.Errorf("temperature %v out of range [0,1]", value)
	}
	*t = Temperature(value)
	return nil
}

// Penalty accepts a number in [-1,1] or the aliases "allow" (-1), "default"
// (0) and "restrict" (1). Used for both presence and frequency penalties.
type Penalty float32

func (p *Penalty) UnmarshalJSON(data []byte) error {
	var alias string
	if err := json.Unmarshal(data, &alias); err == nil {
		switch alias {
		case "allow":
			*p = -1
		case "default":
			*p = 0
		case "restrict":
			*p = 1
		default:
			return fmt.Errorf("unknown penalty %q", alias)
		}
		return nil
	}

	var value float32
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if value < -1 || value > 1 {
		return fmt.Errorf("penalty %v out of range [-1,1]", value)
	}
	*p = Penalty(value)
	return nil
}

// TextOptions tune a free-text generation call. The zero value is the
// accurate, penalty-free default.
type TextOptions struct {
	Model       ModelTier   `json:"model,omitempty"`
	Temperature Temperature `json:"temperature,omitempty"`
	Presence    Penalty     `json:"presence,omitempty"`
	Frequency   Penalty     `json:"frequency,omitempty"`
}

// TagOptions tune tag extraction. Min and Max bound how many tags come back.
type TagOptions struct {
	Model ModelTier `json:"model,omitempty"`
	Min   int       `json:"min,omitempty"`
	Max   int       `json:"max,omitempty"`
}

func (o TagOptions) withDefaults() TagOptions {
	if o.Min < 1 {
		o.Min = 1
	}
	if o.Max < 1 {
		o.Max = 5
	}
	if o.Max < o.Min {
		o.Max = o.Min
	}
	return o
}
