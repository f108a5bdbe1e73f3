package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// Die is one rolled die on the table. Identity is stable for the life of
// the roll; a re-roll or round reset discards the whole set.
type Die struct {
	ID       string
	Face     int
	Selected bool
}

func defaultRoller() int {
	return rand.Intn(6) + 1
}

func newDie(face int) *Die {
	return &Die{ID: uuid.NewString(), Face: face}
}
