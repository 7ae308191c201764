package rules

import (
	"math"

	"scan-validator/internal/validator/models"
)

func place(x, z, angle float64) models.Transform {
	c, s := math.Cos(angle), math.Sin(angle)
	return models.Transform{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		x, 0, z, 1,
	}
}

func deg(d float64) float64 {
	return d * math.Pi / 180
}

func wall(id string, x, z, angle, length float64) models.Wall {
	return models.Wall{
		Identifier: id,
		Transform:  place(x, z, angle),
		Dimensions: models.Dimensions{length, 2.4, 0.1},
	}
}

// cornerWall is a wall given directly by world corners.
func cornerWall(corners ...[]float64) models.Wall {
	return models.Wall{
		Transform:      place(0, 0, 0),
		Dimensions:     models.Dimensions{0, 0, 0},
		PolygonCorners: corners,
	}
}

func object(x, z, width, depth float64, tags ...string) models.Object {
	return models.Object{
		Transform:  place(x, z, 0),
		Dimensions: models.Dimensions{width, 0.8, depth},
		Category:   models.NewCategory(tags...),
	}
}

// room is a closed 3 x 2 m room with walls meeting exactly at the corners.
func room() *models.RawScan {
	return &models.RawScan{
		Walls: []models.Wall{
			wall("south", 1.5, 0, 0, 3),
			wall("north", 1.5, 2, 0, 3),
			wall("west", 0, 1, math.Pi/2, 2),
			wall("east", 3, 1, math.Pi/2, 2),
		},
		Floors: []models.Floor{{
			PolygonCorners: [][]float64{{0, 0}, {3, 0}, {3, 2}, {0, 2}},
		}},
	}
}
