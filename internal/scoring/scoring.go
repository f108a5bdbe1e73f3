package scoring

// Ten-K dice scoring. Faces are 1..6; anything else counts for nothing.
//
// Base values for three-of-a-kind. Four/five/six of a kind multiply the
// base by 2/3/4.
var tripleValue = [7]int{0, 1000, 200, 300, 400, 500, 600}

const StraightValue = 1500

func countFaces(faces []int) [7]int {
	var counts [7]int
	for _, f := range faces {
		if f >= 1 && f <= 6 {
			counts[f]++
		}
	}
	return counts
}

func isStraight(faces []int) bool {
	if len(faces) != 6 {
		return false
	}
	counts := countFaces(faces)
	for f := 1; f <= 6; f++ {
		if counts[f] != 1 {
			return false
		}
	}
	return true
}

// Score returns the point value of the given faces applied together.
func Score(faces []int) int {
	if isStraight(faces) {
		return StraightValue
	}

	counts := countFaces(faces)
	total := 0
	for f := 1; f <= 6; f++ {
		c := counts[f]
		if c >= 3 {
			total += tripleValue[f] * (c - 2)
			continue
		}
		switch f {
		case 1:
			total += 100 * c
		case 5:
			total += 50 * c
		}
	}
	return total
}

// IsLegalSelection reports whether every selected face contributes to the
// score. Holding dead dice to shrink the next roll is not allowed.
func IsLegalSelection(faces []int) bool {
	if len(faces) == 0 {
		return false
	}
	if isStraight(faces) {
		return true
	}

	counts := countFaces(faces)
	for f := 2; f <= 6; f++ {
		if f == 5 {
			continue
		}
		if c := counts[f]; c > 0 && c < 3 {
			return false
		}
	}
	return true
}

// HasAnyScoringMove reports whether at least one non-empty scoring subset
// exists in the rolled faces. False means the roll is a bust.
func HasAnyScoringMove(faces []int) bool {
	if isStraight(faces) {
		return true
	}
	counts := countFaces(faces)
	if counts[1] > 0 || counts[5] > 0 {
		return true
	}
	for f := 2; f <= 6; f++ {
		if counts[f] >= 3 {
			return true
		}
	}
	return false
}
