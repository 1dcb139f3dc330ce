package viz

import (
	"math"
	"strings"
)

// Braille cells are 2x4 dots; the bit for dot (col, row) is
// pixelMap[row][col], offset from U+2800.
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a width×height grid of braille cells addressed in data
// coordinates. Bounds grow to fit every plotted point.
type Canvas struct {
	Width, Height int
	grid          [][]rune

	minX, maxX, minY, maxY float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, grid: make([][]rune, h)}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = brailleBlank
		}
	}
}

// set lights the dot at (x, y) in dot coordinates, origin top left.
func (c *Canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= pixelMap[y%4][x%2]
}

// Plot clears the canvas, fits the bounds to xs and ys and connects
// consecutive points.
func (c *Canvas) Plot(xs, ys []float64) {
	c.Clear()
	n := min(len(xs), len(ys))
	if n == 0 {
		return
	}

	c.minX, c.maxX = bounds(xs[:n])
	c.minY, c.maxY = bounds(ys[:n])

	px, py := c.dot(xs[0], ys[0])
	c.set(px, py)
	for i := 1; i < n; i++ {
		x, y := c.dot(xs[i], ys[i])
		c.line(px, py, x, y)
		px, py = x, y
	}
}

func (c *Canvas) dot(x, y float64) (int, int) {
	w, h := float64(2*c.Width-1), float64(4*c.Height-1)
	dx := (x - c.minX) / (c.maxX - c.minX)
	dy := (y - c.minY) / (c.maxY - c.minY)
	return int(math.Round(dx * w)), int(math.Round((1 - dy) * h))
}

// line is Bresenham between two dots.
func (c *Canvas) line(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// bounds pads a degenerate range so the scale stays finite.
func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
