package services

import (
	"lifeline-http-service/internal/domain/models"
)

// InterfaceZoneService defines the zone classification service interface
type InterfaceZoneService interface {
	Classify(p models.Point) string
	Zones() []models.Zone
}

// ZoneService 按固定多边形表把坐标归入粗粒度区域
type ZoneService struct {
	zones []models.Zone
}

// NewZoneService 创建区域归类服务
func NewZoneService() *ZoneService {
	return &ZoneService{
		zones: models.DefaultZones(),
	}
}

// Zones 返回区域多边形表
func (s *ZoneService) Zones() []models.Zone {
	return s.zones
}

// Classify 射线法判定坐标所在区域，按表顺序取首个命中；
// 都不命中时（边界退化情形）回落到重心平方距离最近的区域。
func (s *ZoneService) Classify(p models.Point) string {
	for _, z := range s.zones {
		if pointInPolygon(p, z.Polygon) {
			return z.ID
		}
	}
	return s.nearestZone(p)
}

// nearestZone 取重心距离（平方欧氏距离）最近的区域
func (s *ZoneService) nearestZone(p models.Point) string {
	best := ""
	bestDist := 0.0
	for i, z := range s.zones {
		c := centroid(z.Polygon)
		dx := p.X - c.X
		dy := p.Y - c.Y
		d := dx*dx + dy*dy
		if i == 0 || d < bestDist {
			best = z.ID
			bestDist = d
		}
	}
	return best
}

// pointInPolygon 标准射线法：向右水平射线与多边形边的交点数为奇则在内
func pointInPolygon(p models.Point, polygon []models.Point) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi := polygon[i]
		pj := polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			x := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// centroid 多边形顶点的算术平均点。区域形状近似凸，够用。
func centroid(polygon []models.Point) models.Point {
	if len(polygon) == 0 {
		return models.Point{}
	}
	var sx, sy float64
	for _, v := range polygon {
		sx += v.X
		sy += v.Y
	}
	n := float64(len(polygon))
	return models.Point{X: sx / n, Y: sy / n}
}
