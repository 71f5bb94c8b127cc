// Package borders retrieves the national border polyline used as plot
// context. The geometry is never part of the interpolation itself.
package borders

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Fetch downloads a GeoJSON feature collection and returns the exterior ring
// of the largest polygon as ordered (lon, lat) vertices. When admin is
// non-empty, only features whose ADMIN or name property matches are
// considered; otherwise the first feature is used.
func Fetch(ctx context.Context, client *http.Client, url, admin string) ([][2]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request border geometry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s fetching border geometry", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read border geometry: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("decode border geometry: %w", err)
	}

	feature, err := selectFeature(fc, admin)
	if err != nil {
		return nil, err
	}

	ring, err := largestExterior(feature.Geometry)
	if err != nil {
		return nil, err
	}

	out := make([][2]float64, len(ring))
	for i, pt := range ring {
		out[i] = [2]float64{pt.Lon(), pt.Lat()}
	}
	return out, nil
}

func selectFeature(fc *geojson.FeatureCollection, admin string) (*geojson.Feature, error) {
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("border geometry has no features")
	}
	if admin == "" {
		return fc.Features[0], nil
	}
	for _, f := range fc.Features {
		if matches(f, "ADMIN", admin) || matches(f, "name", admin) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("border geometry has no feature for %q", admin)
}

func matches(f *geojson.Feature, key, want string) bool {
	v, ok := f.Properties[key].(string)
	return ok && v == want
}

// largestExterior picks the exterior ring with the greatest area, so island
// polygons in a MultiPolygon do not shadow the mainland.
func largestExterior(geom orb.Geometry) (orb.Ring, error) {
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("border polygon has no rings")
		}
		return g[0], nil
	case orb.MultiPolygon:
		var best orb.Ring
		bestArea := -1.0
		for _, poly := range g {
			if len(poly) == 0 {
				continue
			}
			area := planar.Area(poly[0])
			if area < 0 {
				area = -area
			}
			if area > bestArea {
				bestArea = area
				best = poly[0]
			}
		}
		if best == nil {
			return nil, fmt.Errorf("border multipolygon has no rings")
		}
		return best, nil
	default:
		return nil, fmt.Errorf("unsupported border geometry type %T", geom)
	}
}
