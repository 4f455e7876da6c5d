package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lifeline-http-service/internal/domain/models"
	"lifeline-http-service/internal/domain/services"
	"lifeline-http-service/internal/domain/services/container"
	"lifeline-http-service/internal/error/code"
	"lifeline-http-service/internal/error/response"
)

// InterfaceLocationController 定义场所控制器接口
type InterfaceLocationController interface {
	GetLocations()
	CreateLocation()
	UpdateLocation()
	DeleteLocation()
	GetZones()
	ClassifyPoint()
}

// LocationController 处理设施内场所与地图区域相关的请求
type LocationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewLocationController 创建一个新的场所控制器
func NewLocationController(ctx *gin.Context, container *container.ServiceContainer) *LocationController {
	return &LocationController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetLocations 获取场所列表
// @Summary      获取场所列表
// @Description  返回全部场所，含推导出的区域归属
// @Tags         Location
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /locations [get]
func (c *LocationController) GetLocations() {
	master := c.Container.GetService("master").(services.InterfaceMasterService)
	doc := master.Snapshot()
	response.Success(c.Ctx, gin.H{
		"total": len(doc.Locations),
		"data":  doc.Locations,
	})
}

// CreateLocation 追加场所
// @Summary      创建场所
// @Description  带坐标时立即推导区域归属
// @Tags         Location
// @Accept       json
// @Produce      json
// @Param        request body models.Location true "场所信息"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /locations [post]
// @Security     BearerAuth
func (c *LocationController) CreateLocation() {
	var loc models.Location
	if err := c.Ctx.ShouldBindJSON(&loc); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}
	loc.ID = strings.TrimSpace(loc.ID)
	if loc.ID == "" || strings.TrimSpace(loc.Name) == "" {
		response.ParamError(c.Ctx, "场所ID和名称不能为空")
		return
	}

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.CreateLocation(c.Ctx.Request.Context(), loc); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	c.Ctx.JSON(http.StatusCreated, gin.H{
		"code":    code.ErrSuccess,
		"message": code.GetMessage(code.ErrSuccess),
		"data":    loc,
	})
}

// UpdateLocation 更新场所信息
// @Summary      更新场所
// @Tags         Location
// @Accept       json
// @Produce      json
// @Param        id path string true "场所ID"
// @Param        request body models.Location true "场所信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /locations/{id} [put]
// @Security     BearerAuth
func (c *LocationController) UpdateLocation() {
	id := c.Ctx.Param("id")

	var loc models.Location
	if err := c.Ctx.ShouldBindJSON(&loc); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}
	if loc.ID == "" {
		loc.ID = id
	}

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.UpdateLocation(c.Ctx.Request.Context(), id, loc); err != nil {
		if errors.Is(err, services.ErrLocationNotFound) {
			response.NotFound(c.Ctx, code.ErrLocationNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrStorage, "保存场所信息失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, loc)
}

// DeleteLocation 删除场所
// @Summary      删除场所
// @Tags         Location
// @Produce      json
// @Param        id path string true "场所ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /locations/{id} [delete]
// @Security     BearerAuth
func (c *LocationController) DeleteLocation() {
	id := c.Ctx.Param("id")

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.DeleteLocation(c.Ctx.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrLocationNotFound) {
			response.NotFound(c.Ctx, code.ErrLocationNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrStorage, "删除场所失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, nil)
}

// GetZones 获取地图区域多边形表
// @Summary      获取区域定义
// @Tags         Location
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /zones [get]
func (c *LocationController) GetZones() {
	zone := c.Container.GetService("zone").(services.InterfaceZoneService)
	response.Success(c.Ctx, gin.H{
		"data": zone.Zones(),
	})
}

// ClassifyPointRequest 表示坐标归类请求体
type ClassifyPointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClassifyPoint 坐标归类到区域
// @Summary      坐标区域归类
// @Description  射线法命中多边形即归入；都不命中时取重心最近的区域
// @Tags         Location
// @Accept       json
// @Produce      json
// @Param        request body ClassifyPointRequest true "地图坐标"
// @Success      200  {object}  map[string]interface{}
// @Router       /zones/classify [post]
func (c *LocationController) ClassifyPoint() {
	var req ClassifyPointRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	zone := c.Container.GetService("zone").(services.InterfaceZoneService)
	response.Success(c.Ctx, gin.H{
		"zone_id": zone.Classify(models.Point{X: req.X, Y: req.Y}),
	})
}

// HandleLocationFunc 返回一个处理场所请求的Gin处理函数
func HandleLocationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewLocationController(ctx, container)

		switch method {
		case "getLocations":
			controller.GetLocations()
		case "createLocation":
			controller.CreateLocation()
		case "updateLocation":
			controller.UpdateLocation()
		case "deleteLocation":
			controller.DeleteLocation()
		case "getZones":
			controller.GetZones()
		case "classifyPoint":
			controller.ClassifyPoint()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}
