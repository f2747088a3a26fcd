package timeline

import "fmt"

// Spoken texts of timeline announcements. Edit here to change wording.

// LineExercise announces exercise n of total.
func LineExercise(n, total int) string {
	return fmt.Sprintf("Exercise %d of %d", n, total)
}

// LinePause announces a rest between repetitions.
func LinePause(secs int) string {
	if secs == 1 {
		return "Pause for 1 second"
	}
	return fmt.Sprintf("Pause for %d seconds", secs)
}

// LineComplete closes the session.
func LineComplete() string {
	return "Well done!"
}
