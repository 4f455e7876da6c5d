package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeline-http-service/internal/domain/services"
	"lifeline-http-service/internal/domain/services/container"
	"lifeline-http-service/internal/error/code"
	"lifeline-http-service/internal/error/response"
)

// 导入快照的大小上限。主数据是单个JSON文档，正常几百KB就到头了。
const maxSnapshotBytes = 8 << 20

// InterfaceSnapshotController 定义主数据快照控制器接口
type InterfaceSnapshotController interface {
	ExportSnapshot()
	ImportSnapshot()
}

// SnapshotController 处理主数据的导出备份与导入恢复
type SnapshotController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewSnapshotController 创建一个新的快照控制器
func NewSnapshotController(ctx *gin.Context, container *container.ServiceContainer) *SnapshotController {
	return &SnapshotController{
		Ctx:       ctx,
		Container: container,
	}
}

// ExportSnapshot 导出主数据快照
// @Summary      导出主数据
// @Description  以明文JSON下载整个主数据文档，供人工备份
// @Tags         Snapshot
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /snapshot [get]
// @Security     BearerAuth
func (c *SnapshotController) ExportSnapshot() {
	master := c.Container.GetService("master").(services.InterfaceMasterService)
	blob, err := master.ExportSnapshot()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrStorage, "导出失败: "+err.Error(), nil)
		return
	}

	c.Ctx.Header("Content-Disposition", `attachment; filename="lifeline-master.json"`)
	c.Ctx.Data(http.StatusOK, "application/json; charset=utf-8", blob)
}

// ImportSnapshot 导入主数据快照
// @Summary      导入主数据
// @Description  校验文档形状（必须含职员名簿）后整体替换；校验失败时当前数据不受影响
// @Tags         Snapshot
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /snapshot [put]
// @Security     BearerAuth
func (c *SnapshotController) ImportSnapshot() {
	blob, err := io.ReadAll(io.LimitReader(c.Ctx.Request.Body, maxSnapshotBytes))
	if err != nil {
		response.ParamError(c.Ctx, "读取请求体失败: "+err.Error())
		return
	}

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.ImportSnapshot(c.Ctx.Request.Context(), blob); err != nil {
		if errors.Is(err, services.ErrInvalidSnapshot) {
			response.Fail(c.Ctx, code.ErrInvalidFormat, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrStorage, "导入失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, nil)
}

// HandleSnapshotFunc 返回一个处理快照请求的Gin处理函数
func HandleSnapshotFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewSnapshotController(ctx, container)

		switch method {
		case "exportSnapshot":
			controller.ExportSnapshot()
		case "importSnapshot":
			controller.ImportSnapshot()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}
