package repository

import (
	"context"
	"errors"

	"github.com/paulmach/orb"

	"github.com/mr1hm/go-pastvu-map/internal/models"
)

var ErrNotFound = errors.New("photo not found")

type Filter struct {
	Bound *orb.Bound // [lon, lat]; may extend past the antimeridian
	Years *models.YearRange
	Limit int
}

type PhotoRepository interface {
	Add(ctx context.Context, img models.Image) error
	AddBatch(ctx context.Context, images []models.Image) (int, error)
	GetByID(ctx context.Context, id int) (*models.Image, error)
	Exists(ctx context.Context, id int) (bool, error)
	ListPhotos(ctx context.Context, opts Filter) ([]models.Image, error)
}
