package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/security"
	"go.yaml.in/yaml/v3"
)

var (
	ErrInvalidWeights     = errors.New("invalid scoring weights")
	ErrUnsupportedWeights = errors.New("unsupported weights file format")
)

// PriorityWeights maps each priority to its base weight.
type PriorityWeights struct {
	Lowest float64
	Medium float64
	High   float64
	Urgent float64
}

// Weight returns the base weight for a priority. Unknown priorities
// resolve to the lowest weight.
func (w PriorityWeights) Weight(p value_objects.Priority) float64 {
	switch p {
	case value_objects.PriorityMedium:
		return w.Medium
	case value_objects.PriorityHigh:
		return w.High
	case value_objects.PriorityUrgent:
		return w.Urgent
	default:
		return w.Lowest
	}
}

// ComponentMix is the share each component contributes to the raw score.
type ComponentMix struct {
	Priority float64
	Interval float64
	Age      float64
	Deadline float64
	Subtask  float64
}

// Weights is the single configuration object behind scoring and ranking.
type Weights struct {
	PriorityWeights         PriorityWeights
	IntervalWeights         map[int]float64
	AgeWeight               float64
	DeadlineWeight          float64
	SubtaskWeight           float64
	ReschedulePenaltyWeight float64
	PinBonus                float64
	ActiveTimerBonus        float64
	Epsilon                 float64

	Mix               ComponentMix
	ImminentWindow    time.Duration
	ImminentBoost     float64
	DeadlineAmplifier float64
}

// DefaultWeights returns the production weight table.
func DefaultWeights() Weights {
	return Weights{
		PriorityWeights: PriorityWeights{Lowest: 1.0, Medium: 1.5, High: 2.0, Urgent: 3.0},
		IntervalWeights: map[int]float64{
			5:  0.40,
			10: 0.30,
			15: 0.20,
			30: 0.10,
		},
		AgeWeight:               0.02,
		DeadlineWeight:          0.1,
		SubtaskWeight:           0.15,
		ReschedulePenaltyWeight: 0.05,
		PinBonus:                1000,
		ActiveTimerBonus:        500,
		Epsilon:                 0.001,
		Mix: ComponentMix{
			Priority: 0.35,
			Interval: 0.20,
			Age:      0.10,
			Deadline: 0.20,
			Subtask:  0.15,
		},
		ImminentWindow:    24 * time.Hour,
		ImminentBoost:     1.5,
		DeadlineAmplifier: 1.5,
	}
}

// Validate checks the weights are usable.
func (w Weights) Validate() error {
	pw := w.PriorityWeights
	checks := map[string]float64{
		"priority_weights.lowest":   pw.Lowest,
		"priority_weights.medium":   pw.Medium,
		"priority_weights.high":     pw.High,
		"priority_weights.urgent":   pw.Urgent,
		"age_weight":                w.AgeWeight,
		"deadline_weight":           w.DeadlineWeight,
		"subtask_weight":            w.SubtaskWeight,
		"reschedule_penalty_weight": w.ReschedulePenaltyWeight,
		"pin_bonus":                 w.PinBonus,
		"active_timer_bonus":        w.ActiveTimerBonus,
		"imminent_boost":            w.ImminentBoost,
		"deadline_amplifier":        w.DeadlineAmplifier,
	}
	for name, v := range checks {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidWeights, name)
		}
	}
	for minutes, v := range w.IntervalWeights {
		if minutes <= 0 || v < 0 {
			return fmt.Errorf("%w: interval weight %d=%v", ErrInvalidWeights, minutes, v)
		}
	}
	if w.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be positive", ErrInvalidWeights)
	}
	if pw.Lowest > pw.Medium || pw.Medium > pw.High || pw.High > pw.Urgent {
		return fmt.Errorf("%w: priority weights must not decrease with priority", ErrInvalidWeights)
	}
	return nil
}

// weightsFile is the on-disk shape. Unset fields keep their defaults.
type weightsFile struct {
	PriorityWeights *struct {
		Lowest *float64 `toml:"lowest" yaml:"lowest"`
		Medium *float64 `toml:"medium" yaml:"medium"`
		High   *float64 `toml:"high" yaml:"high"`
		Urgent *float64 `toml:"urgent" yaml:"urgent"`
	} `toml:"priority_weights" yaml:"priority_weights"`
	IntervalWeights         map[string]float64 `toml:"interval_weights" yaml:"interval_weights"`
	AgeWeight               *float64           `toml:"age_weight" yaml:"age_weight"`
	DeadlineWeight          *float64           `toml:"deadline_weight" yaml:"deadline_weight"`
	SubtaskWeight           *float64           `toml:"subtask_weight" yaml:"subtask_weight"`
	ReschedulePenaltyWeight *float64           `toml:"reschedule_penalty_weight" yaml:"reschedule_penalty_weight"`
	PinBonus                *float64           `toml:"pin_bonus" yaml:"pin_bonus"`
	ActiveTimerBonus        *float64           `toml:"active_timer_bonus" yaml:"active_timer_bonus"`
	Epsilon                 *float64           `toml:"epsilon" yaml:"epsilon"`
}

// LoadWeights reads a TOML or YAML weights file layered over the defaults.
func LoadWeights(path string) (Weights, error) {
	data, err := security.SafeReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read weights: %w", err)
	}
	return ParseWeights(data, filepath.Ext(path))
}

// ParseWeights decodes weights in the format named by ext (".toml", ".yaml" or ".yml").
func ParseWeights(data []byte, ext string) (Weights, error) {
	var file weightsFile
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), &file); err != nil {
			return Weights{}, fmt.Errorf("decode toml weights: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Weights{}, fmt.Errorf("decode yaml weights: %w", err)
		}
	default:
		return Weights{}, fmt.Errorf("%w: %q", ErrUnsupportedWeights, ext)
	}

	w := DefaultWeights()
	if pw := file.PriorityWeights; pw != nil {
		setIf(&w.PriorityWeights.Lowest, pw.Lowest)
		setIf(&w.PriorityWeights.Medium, pw.Medium)
		setIf(&w.PriorityWeights.High, pw.High)
		setIf(&w.PriorityWeights.Urgent, pw.Urgent)
	}
	if len(file.IntervalWeights) > 0 {
		w.IntervalWeights = make(map[int]float64, len(file.IntervalWeights))
		for k, v := range file.IntervalWeights {
			minutes, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(k), "m"))
			if err != nil {
				return Weights{}, fmt.Errorf("%w: interval key %q", ErrInvalidWeights, k)
			}
			w.IntervalWeights[minutes] = v
		}
	}
	setIf(&w.AgeWeight, file.AgeWeight)
	setIf(&w.DeadlineWeight, file.DeadlineWeight)
	setIf(&w.SubtaskWeight, file.SubtaskWeight)
	setIf(&w.ReschedulePenaltyWeight, file.ReschedulePenaltyWeight)
	setIf(&w.PinBonus, file.PinBonus)
	setIf(&w.ActiveTimerBonus, file.ActiveTimerBonus)
	setIf(&w.Epsilon, file.Epsilon)

	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
