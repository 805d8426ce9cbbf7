package tuning

// Renderer draws one frame from a tuning snapshot. Layout and pixel
// concerns live behind this interface; the core only decides when a redraw
// is due.
type Renderer interface {
	Render(frequency uint32, stepSize uint32, txMode bool) error
}

// RenderScheduler invokes the display exactly once after any state change
// and never on an unchanged state. It runs once per reactive-loop
// iteration against the controller's dirty flag.
type RenderScheduler struct {
	display Renderer
}

// NewRenderScheduler creates a scheduler driving the given display.
func NewRenderScheduler(display Renderer) *RenderScheduler {
	return &RenderScheduler{display: display}
}

// Flush renders the current snapshot if the controller changed state since
// the last flush, then clears the dirty flag. A render error does not leave
// the flag set: the frame for this change has been attempted and the next
// change will schedule another.
func (s *RenderScheduler) Flush(c *Controller) error {
	if !c.dirty {
		return nil
	}
	c.dirty = false

	snap := c.Snapshot()
	return s.display.Render(snap.Frequency, snap.StepSize, snap.TxMode)
}
