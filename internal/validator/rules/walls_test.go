package rules

import (
	"math"
	"testing"

	"scan-validator/internal/validator/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNibWalls(t *testing.T) {
	tests := []struct {
		name string
		end  float64
		want bool
	}{
		{"short wall", 0.2, true},
		{"exactly a foot", 0.3048, false},
		{"just over a foot", 0.3048 + 1e-9, false},
		{"zero length", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := &models.RawScan{Walls: []models.Wall{
				cornerWall([]float64{0, 0}, []float64{tt.end, 0}),
			}}
			assert.Equal(t, tt.want, NibWalls(scan))
		})
	}
}

func TestWallGaps(t *testing.T) {
	tests := []struct {
		name string
		gap  float64
		want bool
	}{
		{"inside band", 0.1, true},
		{"exactly a foot", 0.3048, false},
		{"exactly an inch", 0.0254, false},
		{"flush", 0, false},
		{"far apart", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := &models.RawScan{Walls: []models.Wall{
				cornerWall([]float64{0, 0}, []float64{2, 0}),
				cornerWall([]float64{0, tt.gap}, []float64{2, tt.gap}),
			}}
			assert.Equal(t, tt.want, WallGaps(scan))
		})
	}
}

func TestWallGapsIgnoreStory(t *testing.T) {
	upper := 1
	a := cornerWall([]float64{0, 0}, []float64{2, 0})
	b := cornerWall([]float64{0, 0.1}, []float64{2, 0.1})
	b.Story = &upper

	assert.True(t, WallGaps(&models.RawScan{Walls: []models.Wall{a, b}}))
}

func TestColinearWalls(t *testing.T) {
	t.Run("perpendicular corner", func(t *testing.T) {
		scan := &models.RawScan{Walls: []models.Wall{
			cornerWall([]float64{0, 0}, []float64{3, 0}),
			cornerWall([]float64{0, 0}, []float64{0, 2}),
		}}
		assert.False(t, ColinearWalls(scan))
	})

	t.Run("duplicated segment", func(t *testing.T) {
		scan := &models.RawScan{Walls: []models.Wall{
			cornerWall([]float64{0, 0}, []float64{3, 0}),
			cornerWall([]float64{0, 0}, []float64{0, 2}),
			cornerWall([]float64{1, 0}, []float64{4, 0}),
		}}
		assert.True(t, ColinearWalls(scan))
	})

	t.Run("parallel but apart", func(t *testing.T) {
		scan := &models.RawScan{Walls: []models.Wall{
			cornerWall([]float64{0, 0}, []float64{3, 0}),
			cornerWall([]float64{0, 0.1}, []float64{3, 0.1}),
		}}
		assert.False(t, ColinearWalls(scan))
	})

	t.Run("nearly parallel and touching", func(t *testing.T) {
		scan := &models.RawScan{Walls: []models.Wall{
			cornerWall([]float64{0, 0}, []float64{3, 0}),
			cornerWall([]float64{0, 0.05}, []float64{3, 0.08}),
		}}
		assert.True(t, ColinearWalls(scan))
	})

	t.Run("other story", func(t *testing.T) {
		upper := 1
		dup := cornerWall([]float64{1, 0}, []float64{4, 0})
		dup.Story = &upper
		scan := &models.RawScan{Walls: []models.Wall{
			cornerWall([]float64{0, 0}, []float64{3, 0}),
			dup,
		}}
		assert.False(t, ColinearWalls(scan))
	})

	t.Run("closed room", func(t *testing.T) {
		assert.False(t, ColinearWalls(room()))
	})
}

func TestWallIntersections(t *testing.T) {
	t.Run("crossing walls", func(t *testing.T) {
		scan := room()
		scan.Walls = append(scan.Walls, wall("cross", 1.5, 0, deg(90), 1))
		assert.True(t, WallIntersections(scan))
	})

	t.Run("duplicated wall", func(t *testing.T) {
		scan := room()
		scan.Walls = append(scan.Walls, wall("dup", 2, 0, 0, 2))
		assert.True(t, WallIntersections(scan))
	})

	t.Run("crossing on another story", func(t *testing.T) {
		upper := 1
		scan := room()
		w := wall("cross", 1.5, 0, deg(90), 1)
		w.Story = &upper
		scan.Walls = append(scan.Walls, w)
		assert.False(t, WallIntersections(scan))
	})
}

func TestCrookedWalls(t *testing.T) {
	t.Run("square grid", func(t *testing.T) {
		scan := room()
		scan.Walls = append(scan.Walls, wall("back", 1, 1, deg(180), 1), wall("side", 1, 1, deg(-90), 1))
		assert.False(t, CrookedWalls(scan))
	})

	t.Run("ten degrees off", func(t *testing.T) {
		scan := room()
		scan.Walls = append(scan.Walls, wall("tilted", 1, 1, deg(100), 1))
		assert.True(t, CrookedWalls(scan))
	})

	t.Run("deliberate diagonal", func(t *testing.T) {
		scan := room()
		scan.Walls = append(scan.Walls, wall("diagonal", 1, 1, deg(45), 1))
		assert.False(t, CrookedWalls(scan))
	})

	t.Run("rounding noise", func(t *testing.T) {
		scan := room()
		scan.Walls = append(scan.Walls, wall("noisy", 1, 1, deg(2), 1))
		assert.False(t, CrookedWalls(scan))
	})

	t.Run("reference is first placeable wall", func(t *testing.T) {
		scan := &models.RawScan{Walls: []models.Wall{
			{Transform: models.Transform{0, 1}},
			wall("ref", 0, 0, deg(10), 2),
			wall("aligned", 0, 0, deg(100), 2),
		}}
		assert.False(t, CrookedWalls(scan))
	})
}

func TestWallGapsBoundary(t *testing.T) {
	tests := []struct {
		name string
		gap  float64
		want bool
	}{
		{"exactly one inch", WallGapMin, false},
		{"just over one inch", math.Nextafter(WallGapMin, 1), true},
		{"just under a foot", math.Nextafter(WallGapMax, 0), true},
		{"exactly a foot", WallGapMax, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := &models.RawScan{Walls: []models.Wall{
				cornerWall([]float64{-1, 0}, []float64{1, 0}),
				cornerWall([]float64{-1, tt.gap}, []float64{1, tt.gap}),
			}}
			assert.Equal(t, tt.want, WallGaps(scan))
		})
	}
}

// angleTransform returns a transform whose floor-plane angle is exactly
// angle, nudging the axis components by single ulps until atan2 agrees.
func angleTransform(t *testing.T, angle float64) models.Transform {
	t.Helper()
	m0 := math.Cos(angle)
	for tries := 0; tries < 64; tries++ {
		m2 := math.Sin(angle)
		for step := 0; step < 64; step++ {
			got := math.Atan2(m2, m0)
			if got == angle {
				return models.Transform{
					m0, 0, m2, 0,
					0, 1, 0, 0,
					-m2, 0, m0, 0,
					0, 0, 0, 1,
				}
			}
			if got < angle {
				m2 = math.Nextafter(m2, 1)
			} else {
				m2 = math.Nextafter(m2, -1)
			}
		}
		m0 = math.Nextafter(m0, 2)
	}
	require.FailNow(t, "no transform found", "angle %v", angle)
	return nil
}

func TestCrookedWallsBoundary(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  bool
	}{
		{"exactly the noise floor", CrookedMin, false},
		{"just over the noise floor", math.Nextafter(CrookedMin, 1), true},
		{"just under a diagonal", math.Nextafter(CrookedMax, 0), true},
		{"exactly the diagonal limit", CrookedMax, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := &models.RawScan{Walls: []models.Wall{
				wall("ref", 0, 0, 0, 2),
				{Transform: angleTransform(t, tt.angle), Dimensions: models.Dimensions{2, 2.4, 0.1}},
			}}
			assert.Equal(t, tt.want, CrookedWalls(scan))
		})
	}
}
