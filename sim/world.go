// Package sim implements the thronglet population simulation core.
package sim

// Cell is an integer food grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// World holds the simulation bounds and the food set. Food cells live
// in a map for O(1) dedup plus an insertion-order slice so scans over
// food are deterministic regardless of map iteration order.
type World struct {
	Width  float64
	Height float64

	food  map[Cell]struct{}
	order []Cell
}

// NewWorld creates an empty world with the given bounds.
func NewWorld(width, height float64) *World {
	return &World{
		Width:  width,
		Height: height,
		food:   make(map[Cell]struct{}),
	}
}

// AddFoodAt places food at the given cell. Adding to an occupied cell
// is a no-op: the food set never holds duplicates.
func (w *World) AddFoodAt(x, y int) {
	c := Cell{X: x, Y: y}
	if _, ok := w.food[c]; ok {
		return
	}
	w.food[c] = struct{}{}
	w.order = append(w.order, c)
}

// ConsumeFoodAt removes the food at exactly the given cell. Returns
// false without mutating anything when the cell holds no food.
func (w *World) ConsumeFoodAt(x, y int) bool {
	c := Cell{X: x, Y: y}
	if _, ok := w.food[c]; !ok {
		return false
	}
	delete(w.food, c)
	for i, fc := range w.order {
		if fc == c {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// NearestFood returns the food cell closest to the given point, with
// ties going to the earliest-placed cell. The second return is false
// when the world holds no food.
func (w *World) NearestFood(x, y float64) (Cell, bool) {
	if len(w.order) == 0 {
		return Cell{}, false
	}
	best := w.order[0]
	bestDist := sqDist(x, y, float64(best.X), float64(best.Y))
	for _, c := range w.order[1:] {
		if d := sqDist(x, y, float64(c.X), float64(c.Y)); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best, true
}

// FoodCount returns the number of food cells.
func (w *World) FoodCount() int {
	return len(w.order)
}

// Food returns a copy of the food cells in placement order.
func (w *World) Food() []Cell {
	out := make([]Cell, len(w.order))
	copy(out, w.order)
	return out
}

// Clamp restricts a position to [0, Width] x [0, Height].
func (w *World) Clamp(x, y float64) (float64, float64) {
	return clamp(x, 0, w.Width), clamp(y, 0, w.Height)
}

func sqDist(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
