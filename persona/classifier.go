package persona

import (
	"fmt"
	"strings"
)

// NewVisitorLabel is returned for a session with no recorded dimensions.
const NewVisitorLabel = "New Visitor"

// MindsetCandidate 心态维度及其对应标签
type MindsetCandidate struct {
	Dimension Dimension `yaml:"dimension" json:"dimension"`
	Label     string    `yaml:"label" json:"label"`
}

// PriorityFacet compares Growth against Risk with a margin.
type PriorityFacet struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Margin  int  `yaml:"margin" json:"margin"`
}

// ClassifierConfig enumerates the facet set explicitly.
// Mindsets are listed in tie-break priority order: on equal scores the earlier entry wins.
type ClassifierConfig struct {
	Mindsets []MindsetCandidate `yaml:"mindsets" json:"mindsets"`
	Priority PriorityFacet      `yaml:"priority" json:"priority"`
}

// DefaultClassifierConfig is the canonical four-facet variant.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Mindsets: []MindsetCandidate{
			{Dimension: CostConscious, Label: "Cost-Conscious"},
			{Dimension: Innovation, Label: "Innovation-Driven"},
			{Dimension: EfficiencyFocused, Label: "Efficiency-Focused"},
		},
		Priority: PriorityFacet{Enabled: true, Margin: 1},
	}
}

// Validate 校验分类器配置
func (c ClassifierConfig) Validate() error {
	seen := make(map[Dimension]bool, len(c.Mindsets))
	for _, m := range c.Mindsets {
		if _, err := ParseDimension(string(m.Dimension)); err != nil {
			return fmt.Errorf("mindset candidate: %w", err)
		}
		if strings.TrimSpace(m.Label) == "" {
			return fmt.Errorf("mindset candidate %s has empty label", m.Dimension)
		}
		if seen[m.Dimension] {
			return fmt.Errorf("mindset candidate %s listed twice", m.Dimension)
		}
		seen[m.Dimension] = true
	}
	if c.Priority.Margin < 0 {
		return fmt.Errorf("priority margin must not be negative, got %d", c.Priority.Margin)
	}
	return nil
}

// Classifier derives a persona label from a score map.
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier 创建分类器
func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mindsets := make([]MindsetCandidate, len(cfg.Mindsets))
	copy(mindsets, cfg.Mindsets)
	cfg.Mindsets = mindsets
	return &Classifier{cfg: cfg}, nil
}

// Classify composes the label from the expertise, focus, mindset and priority facets in that order.
func (c *Classifier) Classify(scores ScoreMap) string {
	if len(scores) == 0 {
		return NewVisitorLabel
	}

	parts := make([]string, 0, 4)
	parts = append(parts, expertise(scores), focus(scores))

	if label, ok := c.mindset(scores); ok {
		parts = append(parts, label)
	}
	if c.cfg.Priority.Enabled {
		if label, ok := priority(scores, c.cfg.Priority.Margin); ok {
			parts = append(parts, label)
		}
	}

	return strings.Join(parts, " ")
}

func expertise(s ScoreMap) string {
	advanced, basic := s.Get(Advanced), s.Get(Basic)
	switch {
	case advanced > basic:
		return "Advanced"
	case basic > advanced:
		return "Basic"
	default:
		return "Strategic"
	}
}

func focus(s ScoreMap) string {
	tech, business := s.Get(Tech), s.Get(Business)
	switch {
	case tech > business:
		return "Technical"
	case business > tech:
		return "Professional"
	default:
		return "Generalist"
	}
}

func (c *Classifier) mindset(s ScoreMap) (string, bool) {
	if len(c.cfg.Mindsets) == 0 {
		return "", false
	}
	best := c.cfg.Mindsets[0]
	bestScore := s.Get(best.Dimension)
	for _, m := range c.cfg.Mindsets[1:] {
		// strictly greater, so earlier candidates keep ties
		if score := s.Get(m.Dimension); score > bestScore {
			best, bestScore = m, score
		}
	}
	if bestScore <= 0 {
		return "", false
	}
	return best.Label, true
}

func priority(s ScoreMap, margin int) (string, bool) {
	growth, risk := s.Get(Growth), s.Get(Risk)
	switch {
	case growth > risk+margin:
		return "Growth-Oriented", true
	case risk > growth+margin:
		return "Risk-Averse", true
	default:
		return "", false
	}
}
