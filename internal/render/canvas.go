package render

import (
	"image"
	"sync"
)

// Canvas is the off-screen drawing surface of an export.
//
// The render loop draws into it and the capture stream samples it; both go
// through the canvas lock so a captured frame is never half drawn.
type Canvas struct {
	mu  sync.Mutex
	img *image.RGBA
}

// NewCanvas allocates a width x height RGBA canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Draw runs fn with exclusive access to the pixel buffer.
func (c *Canvas) Draw(fn func(img *image.RGBA)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.img)
}

// CopyFrame copies the current pixels into dst, which must be FrameSize
// bytes long, and returns the number of bytes copied.
func (c *Canvas) CopyFrame(dst []byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copy(dst, c.img.Pix)
}

// FrameSize is the size in bytes of one raw RGBA frame.
func (c *Canvas) FrameSize() int {
	return len(c.img.Pix)
}

// Snapshot returns a copy of the current frame as an image.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := image.NewRGBA(c.img.Rect)
	copy(out.Pix, c.img.Pix)
	return out
}
