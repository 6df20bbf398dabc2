// Package anim samples eased tweens by frame number. Everything is a pure
// function of the frame so animation state can live in reducer state.
package anim

import "math"

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(float64) float64

func Linear(t float64) float64 { return t }

func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// Tween interpolates From to To over Frames frames starting at Start.
type Tween struct {
	From, To float64
	Start    int
	Frames   int
	Ease     Easing
}

// Progress returns eased progress at frame, clamped to [0,1].
func (tw Tween) Progress(frame int) float64 {
	if tw.Frames <= 0 {
		return 1
	}
	t := float64(frame-tw.Start) / float64(tw.Frames)
	t = math.Max(0, math.Min(1, t))
	ease := tw.Ease
	if ease == nil {
		ease = Linear
	}
	return ease(t)
}

// At samples the tween at frame.
func (tw Tween) At(frame int) float64 {
	return tw.From + (tw.To-tw.From)*tw.Progress(frame)
}

// Done reports whether the tween has reached To at frame.
func (tw Tween) Done(frame int) bool {
	return frame-tw.Start >= tw.Frames
}

// Round samples the tween and rounds to the nearest cell.
func (tw Tween) Round(frame int) int {
	return int(math.Round(tw.At(frame)))
}
