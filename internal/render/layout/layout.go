// Package layout divides the face canvas into bands.
package layout

import "image"

// Inset shrinks rect by px on every side. A rect too small to shrink
// collapses to its center.
func Inset(rect image.Rectangle, px int) image.Rectangle {
	rect = rect.Canon()
	if px <= 0 {
		return rect
	}
	px = min(px, rect.Dx()/2, rect.Dy()/2)
	return image.Rect(rect.Min.X+px, rect.Min.Y+px, rect.Max.X-px, rect.Max.Y-px)
}

// Rows cuts rect into horizontal bands sized in proportion to weights.
// The last band absorbs rounding so the bands always tile rect.
func Rows(rect image.Rectangle, weights ...int) []image.Rectangle {
	rect = rect.Canon()
	out := make([]image.Rectangle, len(weights))
	for i, span := range spans(rect.Min.Y, rect.Dy(), weights) {
		out[i] = image.Rect(rect.Min.X, span[0], rect.Max.X, span[1])
	}
	return out
}

// Columns is Rows along the x axis.
func Columns(rect image.Rectangle, weights ...int) []image.Rectangle {
	rect = rect.Canon()
	out := make([]image.Rectangle, len(weights))
	for i, span := range spans(rect.Min.X, rect.Dx(), weights) {
		out[i] = image.Rect(span[0], rect.Min.Y, span[1], rect.Max.Y)
	}
	return out
}

func spans(origin, length int, weights []int) [][2]int {
	total := 0
	for _, w := range weights {
		total += max(w, 0)
	}
	out := make([][2]int, len(weights))
	pos, acc := origin, 0
	for i, w := range weights {
		acc += max(w, 0)
		end := origin + length
		if total > 0 && i < len(weights)-1 {
			end = origin + length*acc/total
		}
		out[i] = [2]int{pos, end}
		pos = end
	}
	return out
}

// FitAspect returns the largest rectangle with the aspect ratio width:height
// that fits into rect, centered on both axes.
func FitAspect(rect image.Rectangle, width, height int) image.Rectangle {
	rect = rect.Canon()
	if width <= 0 || height <= 0 || rect.Empty() {
		return image.Rectangle{Min: rect.Min, Max: rect.Min}
	}
	outW := rect.Dx()
	outH := outW * height / width
	if outH > rect.Dy() {
		outH = rect.Dy()
		outW = outH * width / height
	}
	x := rect.Min.X + (rect.Dx()-outW)/2
	y := rect.Min.Y + (rect.Dy()-outH)/2
	return image.Rect(x, y, x+outW, y+outH)
}
