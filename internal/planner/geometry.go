package planner

import (
	"github.com/twpayne/go-polyline"

	"commuter.routing.org/internal/graph"
)

func newLine(kind GeometryKind, points []Point) GeometryLine {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat, p.Lng})
	}
	return GeometryLine{
		Kind:     kind,
		Points:   points,
		Polyline: string(polyline.EncodeCoords(coords)),
	}
}

func stopPoint(s graph.Stop) Point {
	return Point{Lat: s.Lat, Lng: s.Lng}
}

// DecodePolyline reverses the encoding used for geometry lines.
func DecodePolyline(encoded string) ([]Point, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	points := make([]Point, 0, len(coords))
	for _, c := range coords {
		points = append(points, Point{Lat: c[0], Lng: c[1]})
	}
	return points, nil
}
