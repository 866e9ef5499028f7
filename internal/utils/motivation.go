package utils

import "math/rand"

var motivations = []string{
	"Push yourself — no one else will do it for you!",
	"Success is built one small step at a time.",
	"Dream big. Start small. Act now.",
	"Every day is progress — keep going!",
	"Your only limit is your effort today.",
}

// Motivation returns one random line for the dashboard view.
func Motivation() string {
	return motivations[rand.Intn(len(motivations))]
}
