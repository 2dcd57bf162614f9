package imageutil

import (
	"path/filepath"
	"testing"
)

func TestNewRGBAImage(t *testing.T) {
	img := NewRGBAImage(100, 50)
	if img.Width() != 100 {
		t.Errorf("Expected width 100, got %d", img.Width())
	}
	if img.Height() != 50 {
		t.Errorf("Expected height 50, got %d", img.Height())
	}
}

func TestRGBAImageGetSetRGB(t *testing.T) {
	img := NewRGBAImage(10, 10)
	c := RGB{R: 100, G: 150, B: 200}
	img.SetRGB(5, 5, c)

	got := img.GetRGB(5, 5)
	if got != c {
		t.Errorf("Expected %v, got %v", c, got)
	}
}

func TestNewGrayImage(t *testing.T) {
	img := NewGrayImage(100, 50)
	if img.Width() != 100 {
		t.Errorf("Expected width 100, got %d", img.Width())
	}
	if img.Height() != 50 {
		t.Errorf("Expected height 50, got %d", img.Height())
	}
}

func TestGrayImageGetSetGray(t *testing.T) {
	img := NewGrayImage(10, 10)
	img.SetGrayValue(5, 5, 128)

	got := img.GetGray(5, 5)
	if got != 128 {
		t.Errorf("Expected 128, got %d", got)
	}
}

func TestToGrayscale(t *testing.T) {
	// Test with known values
	img := NewRGBAImage(1, 1)
	img.SetRGB(0, 0, RGB{R: 255, G: 255, B: 255})

	gray := ToGrayscale(img)
	v := gray.GetGray(0, 0)

	// White should produce white (255)
	if v != 255 {
		t.Errorf("White pixel should convert to 255, got %d", v)
	}

	// Test black
	img.SetRGB(0, 0, RGB{R: 0, G: 0, B: 0})
	gray = ToGrayscale(img)
	v = gray.GetGray(0, 0)
	if v != 0 {
		t.Errorf("Black pixel should convert to 0, got %d", v)
	}

	// Test red (0.299 * 255 = 76.245)
	img.SetRGB(0, 0, RGB{R: 255, G: 0, B: 0})
	gray = ToGrayscale(img)
	v = gray.GetGray(0, 0)
	if v < 75 || v > 77 {
		t.Errorf("Red pixel should convert to ~76, got %d", v)
	}
}

func TestToGrayscaleDoesNotMutateSource(t *testing.T) {
	img := CreateColorBarsImage(32, 32)
	before := make([]uint8, len(img.Pix))
	copy(before, img.Pix)

	ToGrayscale(img)

	for i := range before {
		if img.Pix[i] != before[i] {
			t.Fatal("ToGrayscale must not modify the source image")
		}
	}
}

func TestResize(t *testing.T) {
	img := CreateGradientImage(100, 100)

	// Downscale
	resized := Resize(img, 50, 50, InterpolationArea)
	if resized.Width() != 50 || resized.Height() != 50 {
		t.Errorf("Expected 50x50, got %dx%d", resized.Width(), resized.Height())
	}

	// Upscale
	resized = Resize(img, 200, 200, InterpolationLinear)
	if resized.Width() != 200 || resized.Height() != 200 {
		t.Errorf("Expected 200x200, got %dx%d", resized.Width(), resized.Height())
	}
}

func TestResizeToWidth(t *testing.T) {
	img := CreateGradientImage(100, 50)

	resized := ResizeToWidth(img, 40, InterpolationArea)
	if resized.Width() != 40 {
		t.Errorf("Expected width 40, got %d", resized.Width())
	}
	if resized.Height() != 20 {
		t.Errorf("Expected aspect-preserving height 20, got %d", resized.Height())
	}
}

func TestConvolve(t *testing.T) {
	img := CreateGradientImage(10, 10)

	// Test identity kernel (should produce same image)
	identity := NewKernel([][]float64{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})
	result := Convolve(img, identity)

	// Check center pixels (avoid borders)
	for y := 1; y < 9; y++ {
		for x := 1; x < 9; x++ {
			c1 := img.GetRGB(x, y)
			c2 := result.GetRGB(x, y)
			if c1 != c2 {
				t.Errorf("Identity kernel should preserve pixels at (%d,%d): %v != %v", x, y, c1, c2)
			}
		}
	}
}

func TestSharpen(t *testing.T) {
	img := CreateEdgeImage(100, 100)
	sharpened := Sharpen(img)

	if sharpened.Width() != img.Width() || sharpened.Height() != img.Height() {
		t.Error("Sharpened image should have same dimensions")
	}
}

func TestLoadSaveImage(t *testing.T) {
	// Create temp directory
	tmpDir := t.TempDir()

	// Create test image
	img := CreateColorBarsImage(64, 64)

	// Save to PNG
	pngPath := filepath.Join(tmpDir, "test.png")
	err := SaveImage(img.RGBA, pngPath)
	if err != nil {
		t.Fatalf("Failed to save PNG: %v", err)
	}

	// Load back
	loaded, err := LoadImage(pngPath)
	if err != nil {
		t.Fatalf("Failed to load PNG: %v", err)
	}

	// PNG should be lossless
	mse := CalculateMSE(img, loaded)
	if mse > 0.01 {
		t.Errorf("PNG should be lossless, MSE=%f", mse)
	}
}

func TestLoadImageMissingFile(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "nope.png"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestCalculateMSE(t *testing.T) {
	img1 := NewRGBAImage(10, 10)
	img2 := NewRGBAImage(10, 10)

	// Same images should have MSE of 0
	mse := CalculateMSE(img1, img2)
	if mse != 0 {
		t.Errorf("Identical images should have MSE=0, got %f", mse)
	}

	// Different images
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img1.SetRGB(x, y, RGB{R: 0, G: 0, B: 0})
			img2.SetRGB(x, y, RGB{R: 10, G: 10, B: 10})
		}
	}
	mse = CalculateMSE(img1, img2)
	expected := 100.0 // 10^2 = 100
	if mse != expected {
		t.Errorf("Expected MSE=%f, got %f", expected, mse)
	}
}
