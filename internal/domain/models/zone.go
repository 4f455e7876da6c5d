package models

// Zone 地图上的粗粒度区域，由固定多边形描述
type Zone struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Polygon []Point `json:"polygon"`
}

// DefaultZones 设施地图的固定三区域多边形表。
// 坐标系与地图底图像素一致（1000x600）。
// 事務所エリア与北エリア存在重叠，归类按表顺序取首个命中，故事務所排在最前。
func DefaultZones() []Zone {
	return []Zone{
		{
			ID:   "zone_office",
			Name: "事務所エリア",
			Polygon: []Point{
				{X: 700, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 180}, {X: 700, Y: 180},
			},
		},
		{
			ID:   "zone_north",
			Name: "北エリア",
			Polygon: []Point{
				{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 220}, {X: 420, Y: 220}, {X: 420, Y: 300}, {X: 0, Y: 300},
			},
		},
		{
			ID:   "zone_south",
			Name: "南エリア",
			Polygon: []Point{
				{X: 0, Y: 300}, {X: 420, Y: 300}, {X: 420, Y: 220}, {X: 1000, Y: 220}, {X: 1000, Y: 600}, {X: 0, Y: 600},
			},
		},
	}
}

// ZoneOverrides 按场所名的区域归属修正表。
// 个别场所的代表点落在区域边界附近会被自动判定误分类，
// 这里按名字逐条钉死，不做一般化规则。
func ZoneOverrides() map[string]string {
	return map[string]string{
		"事務所前通路": "zone_office",
		"北定盤2":   "zone_north",
	}
}
