// Package session persists the tracked history and persona scores between visits.
//
// State is kept as two independently keyed blobs: the click history (a JSON
// array of topic ids) and the persona scores (a JSON object of dimension to
// number). Stores only promise that Load returns what the last Save wrote
// within the freshness window.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"next_read/models"
	"next_read/persona"
)

// Blob keys, shared by every store so a cookie and a bolt record look alike.
const (
	HistoryKey = "dg_hist"
	ScoresKey  = "dg_ps"
)

// DefaultMaxAge is the freshness window of persisted state.
const DefaultMaxAge = 30 * 24 * time.Hour

// PersistenceError reports a failed load or save. Callers log it and carry on with empty state.
type PersistenceError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("session %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("session %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// encodeState 序列化两个独立的数据块
func encodeState(s models.SessionState) (hist, scores []byte, err error) {
	s = s.Normalize()
	if hist, err = json.Marshal(s.History); err != nil {
		return nil, nil, &PersistenceError{Op: "save", Key: HistoryKey, Err: err}
	}
	if scores, err = json.Marshal(s.Scores); err != nil {
		return nil, nil, &PersistenceError{Op: "save", Key: ScoresKey, Err: err}
	}
	return hist, scores, nil
}

// decodeState parses both blobs; a missing blob decodes as empty.
// Duplicate or empty ids and non-positive scores are dropped.
func decodeState(hist, scores []byte) (models.SessionState, error) {
	state := models.NewSessionState()
	if len(hist) > 0 {
		var h []string
		if err := json.Unmarshal(hist, &h); err != nil {
			return models.NewSessionState(), &PersistenceError{Op: "load", Key: HistoryKey, Err: err}
		}
		state.History = h
	}
	if len(scores) > 0 {
		var s persona.ScoreMap
		if err := json.Unmarshal(scores, &s); err != nil {
			return models.NewSessionState(), &PersistenceError{Op: "load", Key: ScoresKey, Err: err}
		}
		state.Scores = s
	}
	return state.Sanitize(), nil
}
