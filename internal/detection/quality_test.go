package detection

import (
	"testing"

	"github.com/framelock/capture-engine/internal/geometry"
)

func centeredSquare() geometry.Quad {
	return geometry.OrderCorners([4]geometry.Point{
		geometry.Pt(100, 100), geometry.Pt(300, 100),
		geometry.Pt(300, 300), geometry.Pt(100, 300),
	})
}

func TestQuality_CenteredSquareScoresHigh(t *testing.T) {
	q := Quality(centeredSquare(), 400, 400, DefaultQualityConfig())
	if q < 0.9 {
		t.Errorf("quality = %.3f, want >= 0.9 for a centered square", q)
	}
	if q > 1 {
		t.Errorf("quality = %.3f, must not exceed 1", q)
	}
}

func TestQuality_CornerNearEdgeScoresLower(t *testing.T) {
	cfg := DefaultQualityConfig()
	centered := Quality(centeredSquare(), 400, 400, cfg)

	nearEdge := geometry.OrderCorners([4]geometry.Point{
		geometry.Pt(2, 2), geometry.Pt(202, 2),
		geometry.Pt(202, 202), geometry.Pt(2, 202),
	})
	edged := Quality(nearEdge, 400, 400, cfg)

	if edged >= centered {
		t.Errorf("corner 2px from the border scored %.3f, want strictly below centered %.3f", edged, centered)
	}
}

func TestQuality_MarginShareIsProportional(t *testing.T) {
	cfg := DefaultQualityConfig()

	at6 := geometry.OrderCorners([4]geometry.Point{
		geometry.Pt(6, 6), geometry.Pt(206, 6),
		geometry.Pt(206, 206), geometry.Pt(6, 206),
	})
	at2 := geometry.OrderCorners([4]geometry.Point{
		geometry.Pt(2, 2), geometry.Pt(202, 2),
		geometry.Pt(202, 202), geometry.Pt(2, 202),
	})

	q6 := Quality(at6, 400, 400, cfg)
	q2 := Quality(at2, 400, 400, cfg)
	if q2 >= q6 {
		t.Errorf("2px margin scored %.3f, want below 6px margin %.3f", q2, q6)
	}
}

func TestQuality_ExtremeAspectScoresLower(t *testing.T) {
	cfg := DefaultQualityConfig()

	// 300x20: aspect 15 falls outside the band, and the sliver also misses
	// the area bonus.
	sliver := geometry.OrderCorners([4]geometry.Point{
		geometry.Pt(50, 190), geometry.Pt(350, 190),
		geometry.Pt(350, 210), geometry.Pt(50, 210),
	})
	// 300x100: aspect 3 sits inside the band.
	card := geometry.OrderCorners([4]geometry.Point{
		geometry.Pt(50, 150), geometry.Pt(350, 150),
		geometry.Pt(350, 250), geometry.Pt(50, 250),
	})

	qs := Quality(sliver, 400, 400, cfg)
	qc := Quality(card, 400, 400, cfg)
	if qs >= qc {
		t.Errorf("aspect-15 sliver scored %.3f, want below aspect-3 card %.3f", qs, qc)
	}
}

func TestQuality_OversizedQuadLosesAreaBonus(t *testing.T) {
	cfg := DefaultQualityConfig()

	// Fills ~99% of the frame: above the area ceiling, corners at the border.
	filling := geometry.OrderCorners([4]geometry.Point{
		geometry.Pt(1, 1), geometry.Pt(399, 1),
		geometry.Pt(399, 399), geometry.Pt(1, 399),
	})
	q := Quality(filling, 400, 400, cfg)
	if centered := Quality(centeredSquare(), 400, 400, cfg); q >= centered {
		t.Errorf("frame-filling quad scored %.3f, want below centered %.3f", q, centered)
	}
}

func TestQuality_StaysInRange(t *testing.T) {
	cfg := DefaultQualityConfig()

	quads := []geometry.Quad{
		// Degenerate: all corners coincide.
		geometry.OrderCorners([4]geometry.Point{
			geometry.Pt(50, 50), geometry.Pt(50, 50),
			geometry.Pt(50, 50), geometry.Pt(50, 50),
		}),
		// Corners outside the frame.
		geometry.OrderCorners([4]geometry.Point{
			geometry.Pt(-50, -50), geometry.Pt(450, -50),
			geometry.Pt(450, 450), geometry.Pt(-50, 450),
		}),
		// Collapsed to a horizontal line.
		geometry.OrderCorners([4]geometry.Point{
			geometry.Pt(0, 200), geometry.Pt(400, 200),
			geometry.Pt(400, 200), geometry.Pt(0, 200),
		}),
	}

	for i, quad := range quads {
		q := Quality(quad, 400, 400, cfg)
		if q < 0 || q > 1 {
			t.Errorf("quad %d: quality = %v, want within [0, 1]", i, q)
		}
	}
}

func TestQuality_Deterministic(t *testing.T) {
	cfg := DefaultQualityConfig()
	quad := geometry.OrderCorners([4]geometry.Point{
		geometry.Pt(120, 90), geometry.Pt(330, 110),
		geometry.Pt(300, 320), geometry.Pt(80, 300),
	})

	first := Quality(quad, 640, 480, cfg)
	for i := 0; i < 10; i++ {
		if q := Quality(quad, 640, 480, cfg); q != first {
			t.Fatalf("run %d: quality %v differs from first run %v", i, q, first)
		}
	}
}

func TestQuality_ZeroFrame(t *testing.T) {
	if q := Quality(centeredSquare(), 0, 400, DefaultQualityConfig()); q != 0 {
		t.Errorf("quality = %v for zero-width frame, want 0", q)
	}
	if q := Quality(centeredSquare(), 400, 0, DefaultQualityConfig()); q != 0 {
		t.Errorf("quality = %v for zero-height frame, want 0", q)
	}
}

func TestQuality_StrictProfileDemandsWiderMargin(t *testing.T) {
	// 15px clear of every border: full margin share under the default
	// 12px requirement, partial under the strict 20px requirement.
	quad := geometry.OrderCorners([4]geometry.Point{
		geometry.Pt(15, 15), geometry.Pt(215, 15),
		geometry.Pt(215, 215), geometry.Pt(15, 215),
	})

	lenient := Quality(quad, 400, 400, DefaultQualityConfig())
	strict := Quality(quad, 400, 400, StrictQualityConfig())
	if strict >= lenient {
		t.Errorf("strict profile scored %.3f, want below lenient %.3f for a 15px margin", strict, lenient)
	}
}
