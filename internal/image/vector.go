package image

import (
	"context"
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/gridio/internal/gridio"
)

// VectorTranslateRequest describes the conversion of a vector dataset into another format
type VectorTranslateRequest struct {
	Source      string
	Destination string
	// Format is the short name of the output driver
	Format string
	// Layers to convert (all if empty)
	Layers []string
	// TargetSRS reprojects the features (user input: epsg, proj4 or wkt)
	TargetSRS            string
	CreationOptions      []string
	LayerCreationOptions []string
}

// VectorTranslator converts vector datasets
type VectorTranslator interface {
	// Translate writes the vector dataset and returns the number of features of the output
	Translate(ctx context.Context, req VectorTranslateRequest) (int, error)
}

// GDALVectorTranslator uses the library version of ogr2ogr
type GDALVectorTranslator struct{}

// Translate implements VectorTranslator
// Returns a NoSuitableDriver error if the source cannot be opened and a CreateFailed error if the output cannot be written
func (GDALVectorTranslator) Translate(ctx context.Context, req VectorTranslateRequest) (int, error) {
	src, err := godal.Open(req.Source, godal.VectorOnly(), ErrLogger)
	if err != nil {
		return 0, gridio.NewNoSuitableDriver(err, "open %s", req.Source)
	}
	defer src.Close()

	if err := ctx.Err(); err != nil {
		return 0, gridio.NewCancelled(err, "translate %s", req.Source)
	}

	dst, err := src.VectorTranslate(req.Destination, VectorTranslateSwitches(req))
	if err != nil {
		return 0, gridio.NewCreateFailed(err, "Could not create data source %s", req.Destination)
	}
	count, err := featureCount(dst)
	if e := dst.Close(); e != nil && err == nil {
		err = gridio.NewCreateFailed(e, "close %s", req.Destination)
	}
	return count, err
}

// VectorTranslateSwitches returns the ogr2ogr switches corresponding to the request
func VectorTranslateSwitches(req VectorTranslateRequest) []string {
	switches := []string{"-f", req.Format}
	for _, o := range req.CreationOptions {
		switches = append(switches, "-dsco", o)
	}
	for _, o := range req.LayerCreationOptions {
		switches = append(switches, "-lco", o)
	}
	if req.TargetSRS != "" {
		switches = append(switches, "-t_srs", req.TargetSRS)
	}
	return append(switches, req.Layers...)
}

func featureCount(ds *godal.Dataset) (int, error) {
	n := 0
	for i, l := range ds.Layers() {
		c, err := l.FeatureCount()
		if err != nil {
			return n, fmt.Errorf("featureCount[layer %d]: %w", i, err)
		}
		n += c
	}
	return n, nil
}
