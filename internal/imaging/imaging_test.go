package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solidImage(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solidImage(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

func TestProcessFormats(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"jpeg", createTestJPEG(100, 100)},
		{"png", createTestPNG(100, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photo, err := Process(bytes.NewReader(tt.data), Options{})
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if photo.MIME != "image/jpeg" {
				t.Errorf("expected image/jpeg, got %s", photo.MIME)
			}
			if len(photo.Data) == 0 {
				t.Error("expected non-empty data")
			}
			if photo.Width != 100 || photo.Height != 100 {
				t.Errorf("expected 100x100, got %dx%d", photo.Width, photo.Height)
			}
		})
	}
}

func TestProcessDownscaleKeepsAspect(t *testing.T) {
	data := createTestJPEG(2048, 1024)
	photo, err := Process(bytes.NewReader(data), Options{})
	if err != nil {
		t.Fatalf("Process large image: %v", err)
	}
	if photo.Width != DefaultMaxDimension || photo.Height != DefaultMaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", DefaultMaxDimension, DefaultMaxDimension/2, photo.Width, photo.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if img.Bounds().Dx() != photo.Width {
		t.Errorf("reported width %d does not match encoded width %d", photo.Width, img.Bounds().Dx())
	}
}

func TestProcessCustomMaxDimension(t *testing.T) {
	photo, err := Process(bytes.NewReader(createTestPNG(300, 600)), Options{MaxDimension: 200})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if photo.Width != 100 || photo.Height != 200 {
		t.Errorf("expected 100x200, got %dx%d", photo.Width, photo.Height)
	}
}

func TestProcessSmallImageNotUpscaled(t *testing.T) {
	photo, err := Process(bytes.NewReader(createTestJPEG(50, 50)), Options{})
	if err != nil {
		t.Fatalf("Process small image: %v", err)
	}
	if photo.Width != 50 || photo.Height != 50 {
		t.Errorf("small image should not be resized: got %dx%d", photo.Width, photo.Height)
	}
}

func TestProcessRejectsUnsupported(t *testing.T) {
	for _, data := range [][]byte{[]byte("not an image"), []byte("GIF89a...")} {
		_, err := Process(bytes.NewReader(data), Options{})
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("expected ErrUnsupported for %q, got %v", data, err)
		}
	}
}

func TestProcessRejectsOversized(t *testing.T) {
	data := createTestPNG(64, 64)
	_, err := Process(bytes.NewReader(data), Options{MaxBytes: int64(len(data) - 1)})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}

	if _, err := Process(bytes.NewReader(data), Options{MaxBytes: int64(len(data))}); err != nil {
		t.Errorf("expected image at the limit to pass, got %v", err)
	}
}
