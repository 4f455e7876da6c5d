package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeline-http-service/internal/domain/services"
	"lifeline-http-service/internal/domain/services/container"
	"lifeline-http-service/internal/error/code"
	"lifeline-http-service/internal/error/response"
)

// InterfaceLookupController 定义查找控制器接口
type InterfaceLookupController interface {
	ExtractIdentifier()
	ResolveStaff()
	ResolveLocation()
}

// LookupController 处理扫码/粘贴文本的标识抽取与名簿解析。
// 事发现场要在锁屏状态下使用，因此全部为公开接口。
type LookupController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewLookupController 创建一个新的查找控制器
func NewLookupController(ctx *gin.Context, container *container.ServiceContainer) *LookupController {
	return &LookupController{
		Ctx:       ctx,
		Container: container,
	}
}

// LookupRequest 表示查找请求体
type LookupRequest struct {
	Text string `json:"text" binding:"required"`
}

// ExtractIdentifier 从自由文本中抽取标识token
// @Summary      抽取标识
// @Description  归一化后按固定规则链抽取：JSON载荷→竖线分隔载荷→标签字段→裸token
// @Tags         Lookup
// @Accept       json
// @Produce      json
// @Param        request body LookupRequest true "粘贴文本或扫码载荷"
// @Success      200  {object}  map[string]interface{}
// @Router       /lookup/extract [post]
func (c *LookupController) ExtractIdentifier() {
	var req LookupRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	lookup := c.Container.GetService("lookup").(services.InterfaceLookupService)
	token := lookup.ExtractIdentifier(req.Text)
	response.Success(c.Ctx, gin.H{
		"token": token,
		"found": token != "",
	})
}

// ResolveStaff 在名簿中解析职员
// @Summary      解析职员
// @Description  先抽取标识再按固定顺序匹配：登录码→职员ID→姓名。命中即返回应急档案。
// @Tags         Lookup
// @Accept       json
// @Produce      json
// @Param        request body LookupRequest true "粘贴文本或扫码载荷"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /lookup/staff [post]
func (c *LookupController) ResolveStaff() {
	var req LookupRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	lookup := c.Container.GetService("lookup").(services.InterfaceLookupService)
	token := lookup.ExtractIdentifier(req.Text)
	if token == "" {
		response.NotFound(c.Ctx, code.ErrStaffNotFound)
		return
	}

	rec, err := lookup.ResolveStaff(token)
	if err != nil {
		if errors.Is(err, services.ErrStaffNotFound) {
			response.NotFound(c.Ctx, code.ErrStaffNotFound)
			return
		}
		response.ServerError(c.Ctx)
		return
	}
	response.Success(c.Ctx, gin.H{
		"token": token,
		"staff": rec,
	})
}

// ResolveLocation 在场所表中解析场所
// @Summary      解析场所
// @Description  职员解析规则之上追加名称双向包含匹配
// @Tags         Lookup
// @Accept       json
// @Produce      json
// @Param        request body LookupRequest true "粘贴文本或扫码载荷"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /lookup/location [post]
func (c *LookupController) ResolveLocation() {
	var req LookupRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	lookup := c.Container.GetService("lookup").(services.InterfaceLookupService)
	token := lookup.ExtractIdentifier(req.Text)
	if token == "" {
		token = req.Text
	}

	loc, err := lookup.ResolveLocation(token)
	if err != nil {
		if errors.Is(err, services.ErrLocationNotFound) {
			response.NotFound(c.Ctx, code.ErrLocationNotFound)
			return
		}
		response.ServerError(c.Ctx)
		return
	}
	response.Success(c.Ctx, gin.H{
		"token":    token,
		"location": loc,
	})
}

// HandleLookupFunc 返回一个处理查找请求的Gin处理函数
func HandleLookupFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewLookupController(ctx, container)

		switch method {
		case "extractIdentifier":
			controller.ExtractIdentifier()
		case "resolveStaff":
			controller.ResolveStaff()
		case "resolveLocation":
			controller.ResolveLocation()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}
