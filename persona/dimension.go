// Package persona turns engagement clues into a score map and a readable persona label.
package persona

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Dimension 画像维度
type Dimension string

const (
	Business          Dimension = "Business"
	Tech              Dimension = "Tech"
	Basic             Dimension = "Basic"
	Advanced          Dimension = "Advanced"
	CostConscious     Dimension = "Cost-Conscious"
	Innovation        Dimension = "Innovation"
	Growth            Dimension = "Growth"
	Risk              Dimension = "Risk"
	EfficiencyFocused Dimension = "Efficiency-Focused"
)

// AllDimensions lists the closed set in declaration order.
var AllDimensions = []Dimension{
	Business, Tech, Basic, Advanced, CostConscious, Innovation, Growth, Risk, EfficiencyFocused,
}

// ParseDimension 校验维度名称
func ParseDimension(name string) (Dimension, error) {
	for _, d := range AllDimensions {
		if string(d) == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown persona dimension %q", name)
}

// UnmarshalText rejects names outside the closed set, so JSON/YAML map keys are validated on decode.
func (d *Dimension) UnmarshalText(text []byte) error {
	parsed, err := ParseDimension(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText 实现 encoding.TextMarshaler
func (d Dimension) MarshalText() ([]byte, error) {
	return []byte(d), nil
}

// ScoreMap is the cumulative per-dimension score of a session.
type ScoreMap map[Dimension]int

// Clues are the weights a single tracked topic contributes.
type Clues map[Dimension]int

// Get returns the score for d, 0 when absent.
func (s ScoreMap) Get(d Dimension) int {
	return s[d]
}

// Clone 复制分数表
func (s ScoreMap) Clone() ScoreMap {
	out := make(ScoreMap, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Dimensions returns the recorded dimensions sorted by name.
func (s ScoreMap) Dimensions() []Dimension {
	dims := make([]Dimension, 0, len(s))
	for d := range s {
		dims = append(dims, d)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	return dims
}

// maxScore bounds decoded scores to integers a float64 holds exactly.
const maxScore = 1 << 53

// UnmarshalJSON accepts JSON numbers, including whole numbers written as floats (2.0) by other clients.
// Fractional or out-of-range values are rejected.
func (s *ScoreMap) UnmarshalJSON(data []byte) error {
	var raw map[Dimension]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ScoreMap, len(raw))
	for k, v := range raw {
		if v != math.Trunc(v) {
			return fmt.Errorf("score for %s is not a whole number: %v", k, v)
		}
		if v > maxScore || v < -maxScore {
			return fmt.Errorf("score for %s is out of range: %v", k, v)
		}
		out[k] = int(v)
	}
	*s = out
	return nil
}

// Validate 校验线索权重均为正数
func (c Clues) Validate() error {
	for d, w := range c {
		if _, err := ParseDimension(string(d)); err != nil {
			return err
		}
		if w <= 0 {
			return fmt.Errorf("clue weight for %s must be positive, got %d", d, w)
		}
	}
	return nil
}
