package utils

import (
	"fmt"
	"math"
)

// Returns the average of all given numbers n
func Average(n ...int) int {
	if len(n) == 0 {
		return 0
	}

	// Sum all numbers
	var sum int
	for _, num := range n {
		sum += num
	}

	// Divide sum by total numbers
	return sum / len(n)
}

// Clips v to [0, 255] and truncates it to a channel value
func Clamp(v float64) byte {
	return byte(math.Min(math.Max(v, 0), 255))
}

// Print a Colored Block in terminal
func ColoredBlock(block string, red int, green int, blue int) string {
	return fmt.Sprintf("\033[48;2;%d;%d;%dm%s\033[0m", red, green, blue, block)
}
