package preprocess

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewPixelBuffer(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 20, 13, 22))
	img.Set(10, 20, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	img.Set(12, 21, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	buf, err := NewPixelBuffer(img)
	if err != nil {
		t.Fatalf("NewPixelBuffer: %v", err)
	}

	if buf.Width != 3 || buf.Height != 2 || buf.Stride != 12 || len(buf.Pix) != 24 {
		t.Fatalf("unexpected buffer geometry %dx%d stride %d len %d",
			buf.Width, buf.Height, buf.Stride, len(buf.Pix))
	}

	// ARGB byte order with opaque alpha
	if buf.Pix[0] != 0xff || buf.Pix[1] != 200 || buf.Pix[2] != 100 || buf.Pix[3] != 50 {
		t.Errorf("first pixel = %v, want [255 200 100 50]", buf.Pix[:4])
	}

	if r, g, b := buf.At(2, 1); r != 1 || g != 2 || b != 3 {
		t.Errorf("At(2,1) = %d,%d,%d", r, g, b)
	}

	// transparent pixels are flattened onto black
	if r, g, b := buf.At(1, 0); r != 0 || g != 0 || b != 0 {
		t.Errorf("transparent pixel = %d,%d,%d, want black", r, g, b)
	}

	bgr := buf.BGR()
	if len(bgr) != 18 || bgr[0] != 50 || bgr[1] != 100 || bgr[2] != 200 {
		t.Errorf("BGR first pixel = %v", bgr[:3])
	}
}

func TestNewPixelBufferEmpty(t *testing.T) {
	if _, err := NewPixelBuffer(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("nil image error = %v", err)
	}

	if _, err := NewPixelBuffer(image.NewRGBA(image.Rect(0, 0, 0, 5))); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("zero width error = %v", err)
	}
}

func TestPixelBufferToMat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	buf, err := NewPixelBuffer(img)
	if err != nil {
		t.Fatalf("NewPixelBuffer: %v", err)
	}

	mat, err := buf.ToMat()
	if err != nil {
		t.Fatalf("ToMat: %v", err)
	}
	defer mat.Close()

	if mat.Cols() != 4 || mat.Rows() != 3 || mat.Channels() != 3 {
		t.Fatalf("mat %dx%d channels %d", mat.Cols(), mat.Rows(), mat.Channels())
	}

	v := mat.GetVecbAt(0, 0)
	if v[0] != 30 || v[1] != 20 || v[2] != 10 {
		t.Errorf("mat pixel = %v, want BGR [30 20 10]", v)
	}
}
