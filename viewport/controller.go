package viewport

import "github.com/go-gl/mathgl/mgl64"

// PointerSample is the pointer state gathered over one frame.
type PointerSample struct {
	// Pos is the normalized pointer position, see Normalize.
	Pos mgl64.Vec2
	// Scroll is the scroll accumulated this frame, positive zooms in.
	Scroll float64
	// Dragging is set while the pan button is held.
	Dragging bool
}

// Controller owns the view for a frame loop.
// It is not safe for concurrent use; the loop that samples input owns it.
type Controller struct {
	initial View
	view    View

	dragging bool
	dragFrom mgl64.Vec2
}

func NewController(initial View) *Controller {
	return &Controller{
		initial: initial,
		view:    initial,
	}
}

func (c *Controller) View() View {
	return c.view
}

// Set replaces the view, ignoring views that can't be rendered.
func (c *Controller) Set(v View) bool {
	if !v.Valid() {
		return false
	}
	c.view = v
	return true
}

// Reset returns to the initial view.
func (c *Controller) Reset() {
	c.view = c.initial
	c.dragging = false
}

// Update applies one frame of input and reports whether the view changed.
func (c *Controller) Update(s PointerSample) bool {
	before := c.view

	if s.Dragging {
		if c.dragging {
			c.view = c.view.Pan(c.dragFrom, s.Pos)
		}
		c.dragFrom = s.Pos
	}
	c.dragging = s.Dragging

	c.view = c.view.Scroll(s.Pos, s.Scroll)

	return c.view != before
}
