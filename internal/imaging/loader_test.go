package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// writeTestPNG writes a small solid PNG into dir and returns its path.
func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	img := createTestImage(w, h, color.RGBA{200, 100, 50, 255})
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
	return path
}

func TestNewFrameCache(t *testing.T) {
	cache := NewFrameCache()
	if cache == nil {
		t.Fatal("NewFrameCache returned nil")
	}
	if cache.frames == nil {
		t.Fatal("NewFrameCache did not initialize frames map")
	}
}

func TestFrameCache_Load(t *testing.T) {
	cache := NewFrameCache()
	path := writeTestPNG(t, t.TempDir(), "frame.png", 16, 12)

	// First load
	img1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img1.Bounds().Dx() != 16 || img1.Bounds().Dy() != 12 {
		t.Errorf("unexpected dimensions: got %v, want 16x12", img1.Bounds())
	}

	// Second load should return the cached image even once the file is gone.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	img2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached frame")
	}
}

func TestFrameCache_Load_NonExistent(t *testing.T) {
	cache := NewFrameCache()
	if _, err := cache.Load("/nonexistent/path/to/frame.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestFrameCache_Load_InvalidData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cache := NewFrameCache()
	if _, err := cache.Load(path); err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestFrameCache_Clear(t *testing.T) {
	cache := NewFrameCache()
	path := writeTestPNG(t, t.TempDir(), "frame.png", 8, 8)

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Clear()

	cache.mu.RLock()
	count := len(cache.frames)
	cache.mu.RUnlock()

	if count != 0 {
		t.Errorf("Clear did not empty cache: %d frames remain", count)
	}
}

func TestFrameCache_Evict(t *testing.T) {
	cache := NewFrameCache()
	path := writeTestPNG(t, t.TempDir(), "frame.png", 8, 8)

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(path)

	cache.mu.RLock()
	_, exists := cache.frames[path]
	cache.mu.RUnlock()

	if exists {
		t.Error("Evict did not remove frame from cache")
	}

	// Unknown paths must not panic.
	cache.Evict("/nonexistent/path")
}

func TestFrameCache_ConcurrentAccess(t *testing.T) {
	cache := NewFrameCache()
	path := writeTestPNG(t, t.TempDir(), "frame.png", 8, 8)

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestDecodeFile(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "frame.png", 10, 20)

	img, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 20 {
		t.Errorf("Bounds: got %v, want 10x20", img.Bounds())
	}
}

func TestDownscale_HalvesFrame(t *testing.T) {
	img := createTestImage(800, 600, color.White)

	small, factor := Downscale(img, 0.5)

	if small.Bounds().Dx() != 400 || small.Bounds().Dy() != 300 {
		t.Errorf("Downscaled bounds: got %v, want 400x300", small.Bounds())
	}
	if factor != 2.0 {
		t.Errorf("Back-mapping factor: got %v, want 2.0", factor)
	}
}

func TestDownscale_RoundsDimensions(t *testing.T) {
	img := createTestImage(301, 901, color.White)

	small, factor := Downscale(img, 1.0/3.0)

	if small.Bounds().Dx() != 100 || small.Bounds().Dy() != 300 {
		t.Errorf("Downscaled bounds: got %v, want 100x300", small.Bounds())
	}
	if factor != 3.01 {
		t.Errorf("Back-mapping factor: got %v, want 3.01", factor)
	}
}

func TestDownscale_FullScaleUnchanged(t *testing.T) {
	img := createTestImage(200, 100, color.White)

	same, factor := Downscale(img, 1.0)

	if same != image.Image(img) {
		t.Error("Factor 1 should return the input unchanged")
	}
	if factor != 1.0 {
		t.Errorf("Back-mapping factor: got %v, want 1.0", factor)
	}
}

func TestDownscale_RejectsInvalidFactor(t *testing.T) {
	img := createTestImage(500, 500, color.White)

	for _, s := range []float64{0, -0.5, 1.5} {
		same, factor := Downscale(img, s)
		if same != image.Image(img) || factor != 1.0 {
			t.Errorf("Factor %v should disable downscaling", s)
		}
	}
}
