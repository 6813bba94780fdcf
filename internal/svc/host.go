package svc

import (
	"context"

	"github.com/airbusgeo/gridio/internal/gridio"
)

// Host receives the grids of an owned GridList once they have been imported.
//
// The grid is lent to the host: it still belongs to the list, so the host must neither
// release it nor use it after AddGrid returns.
type Host interface {
	AddGrid(ctx context.Context, grid *gridio.Raster) error
}
