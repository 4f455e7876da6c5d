package models

// Point 地图平面坐标（地图图像像素系）
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Location 设施内的命名场所
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	QR   string `json:"qr,omitempty"` // 扫码载荷匹配串

	// Point 为场所在地图上的代表点，用于区域归类
	Point *Point `json:"point,omitempty"`

	// ZoneID 为加载时根据多边形表推导出的区域归属，持久化数据中的值会被重新计算覆盖
	ZoneID string `json:"zone_id,omitempty"`
}
