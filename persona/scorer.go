package persona

// ApplyClue folds clues into scores and returns the result as a new map.
// The input map is left untouched. Weights are added as given, without clamping.
func ApplyClue(scores ScoreMap, clues Clues) ScoreMap {
	out := scores.Clone()
	for d, w := range clues {
		out[d] += w
	}
	return out
}

// ApplyAll folds a sequence of clue sets in order, starting from an empty map.
func ApplyAll(events ...Clues) ScoreMap {
	scores := ScoreMap{}
	for _, c := range events {
		scores = ApplyClue(scores, c)
	}
	return scores
}
