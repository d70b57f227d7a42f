package models

import (
	"slices"
	"time"

	"next_read/persona"
)

// Article is one item of the candidate pool.
type Article struct {
	ID    string        `yaml:"id" json:"id"`
	Title string        `yaml:"title" json:"title"`
	Page    string        `yaml:"page" json:"page,omitempty"`
	Context string        `yaml:"context" json:"context,omitempty"` // 一句话主题描述，提示词中代替 id
	Clues   persona.Clues `yaml:"clues" json:"clues"`
}

// SessionState 会话状态：点击历史与画像分数，两者总是同步更新
type SessionState struct {
	History   []string         `json:"history"`
	Scores    persona.ScoreMap `json:"scores"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewSessionState returns an empty session.
func NewSessionState() SessionState {
	return SessionState{History: []string{}, Scores: persona.ScoreMap{}}
}

// Contains reports whether id was already tracked.
func (s SessionState) Contains(id string) bool {
	return slices.Contains(s.History, id)
}

// Clone returns a deep copy.
func (s SessionState) Clone() SessionState {
	h := make([]string, len(s.History))
	copy(h, s.History)
	scores := s.Scores.Clone()
	return SessionState{History: h, Scores: scores, UpdatedAt: s.UpdatedAt}
}

// Normalize replaces nil collections with empty ones.
func (s SessionState) Normalize() SessionState {
	if s.History == nil {
		s.History = []string{}
	}
	if s.Scores == nil {
		s.Scores = persona.ScoreMap{}
	}
	return s
}

// Sanitize enforces the session invariants on state read back from a store:
// history ids are non-empty and unique (first occurrence wins) and every score is positive.
func (s SessionState) Sanitize() SessionState {
	s = s.Normalize()
	seen := make(map[string]bool, len(s.History))
	history := make([]string, 0, len(s.History))
	for _, id := range s.History {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		history = append(history, id)
	}
	scores := make(persona.ScoreMap, len(s.Scores))
	for d, v := range s.Scores {
		if v > 0 {
			scores[d] = v
		}
	}
	s.History, s.Scores = history, scores
	return s
}
