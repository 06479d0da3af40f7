package model

import (
	"fmt"
	"strings"
)

// Difficulty is a question difficulty tag with a fixed total order
// Easy < Medium < Hard.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var difficultyOrder = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty converts a case-insensitive label into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	return d.Rank() >= 0
}

// Rank returns the position of d in the ordering, or -1 if d is unknown.
func (d Difficulty) Rank() int {
	for i, level := range difficultyOrder {
		if level == d {
			return i
		}
	}
	return -1
}

// Harder returns the next level up, staying at Hard.
func (d Difficulty) Harder() Difficulty {
	r := d.Rank()
	if r < 0 {
		return d
	}
	return difficultyOrder[min(r+1, len(difficultyOrder)-1)]
}

// Easier returns the next level down, staying at Easy.
func (d Difficulty) Easier() Difficulty {
	r := d.Rank()
	if r < 0 {
		return d
	}
	return difficultyOrder[max(r-1, 0)]
}

func (d Difficulty) String() string { return string(d) }
