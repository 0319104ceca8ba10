// Package subtitle schedules subtitle display and the delayed clear that
// follows it.
//
// # Generations
//
// Every accepted submission increments a generation counter. The clear
// scheduled by a submission remembers the generation it was created for
// and only clears the text if that generation is still current when it
// fires. A newer submission therefore always wins: its text is never
// wiped by an older clear.
//
// # Critical Section
//
// Submissions and clears share one critical section. Inside it a
// submission cancels the pending clear and waits for that clear to exit
// before it sends its own display request, so the control channel never
// sees two requests at once.
//
// # Display Time
//
// A subtitle stays up for visibleChars * MinSecondsPerChar seconds, where
// visibleChars counts the characters of the wrapped text excluding line
// breaks.
package subtitle
