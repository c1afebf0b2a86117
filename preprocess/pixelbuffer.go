package preprocess

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// ErrEmptyImage is returned when an image has no pixels to convert
var ErrEmptyImage = errors.New("image has no pixels")

// PixelBuffer is a fixed format frame for the pose detector: 32 bit ARGB,
// device RGB, the same dimensions as the source image.  The alpha byte is
// always opaque.
type PixelBuffer struct {
	Width  int
	Height int
	// Stride is the number of bytes per row
	Stride int
	// Pix holds A,R,G,B bytes per pixel, rows top to bottom
	Pix []byte
}

// NewPixelBuffer converts img into an ARGB PixelBuffer
func NewPixelBuffer(img image.Image) (*PixelBuffer, error) {

	if img == nil {
		return nil, ErrEmptyImage
	}

	b := img.Bounds()

	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("convert %dx%d image: %w", b.Dx(), b.Dy(), ErrEmptyImage)
	}

	// render onto an opaque canvas so transparent areas become black, the
	// same as skipping the alpha channel
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Over)

	buf := &PixelBuffer{
		Width:  b.Dx(),
		Height: b.Dy(),
		Stride: b.Dx() * 4,
		Pix:    make([]byte, b.Dx()*b.Dy()*4),
	}

	for y := 0; y < buf.Height; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+buf.Width*4]
		dst := buf.Pix[y*buf.Stride : (y+1)*buf.Stride]

		for x := 0; x < buf.Width; x++ {
			dst[x*4+0] = 0xff
			dst[x*4+1] = src[x*4+0]
			dst[x*4+2] = src[x*4+1]
			dst[x*4+3] = src[x*4+2]
		}
	}

	return buf, nil
}

// At returns the R,G,B values of the pixel at x,y
func (p *PixelBuffer) At(x, y int) (r, g, b uint8) {
	i := y*p.Stride + x*4
	return p.Pix[i+1], p.Pix[i+2], p.Pix[i+3]
}

// BGR returns the pixels in OpenCV's default BGR byte order
func (p *PixelBuffer) BGR() []byte {
	out := make([]byte, p.Width*p.Height*3)

	for y := 0; y < p.Height; y++ {
		row := p.Pix[y*p.Stride:]

		for x := 0; x < p.Width; x++ {
			o := (y*p.Width + x) * 3
			out[o+0] = row[x*4+3]
			out[o+1] = row[x*4+2]
			out[o+2] = row[x*4+1]
		}
	}

	return out
}

// ToMat returns a BGR Mat copy of the buffer for use with gocv.  The caller
// must Close the Mat.
func (p *PixelBuffer) ToMat() (gocv.Mat, error) {
	return gocv.NewMatFromBytes(p.Height, p.Width, gocv.MatTypeCV8UC3, p.BGR())
}
