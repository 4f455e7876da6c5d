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

// InterfaceStaffController 定义职员名簿控制器接口
type InterfaceStaffController interface {
	GetStaffs()
	GetStaff()
	CreateStaff()
	UpdateStaff()
	DeleteStaff()
}

// StaffController 处理职员应急档案相关的请求
type StaffController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewStaffController 创建一个新的职员控制器
func NewStaffController(ctx *gin.Context, container *container.ServiceContainer) *StaffController {
	return &StaffController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetStaffs 获取职员名簿
// @Summary      获取职员名簿
// @Description  返回全部职员应急档案，支持按姓名/ID关键词过滤
// @Tags         Staff
// @Produce      json
// @Param        search query string false "搜索关键词(姓名、ID、假名)"
// @Success      200  {object}  map[string]interface{}
// @Router       /staffs [get]
// @Security     BearerAuth
func (c *StaffController) GetStaffs() {
	search := strings.TrimSpace(c.Ctx.Query("search"))

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	doc := master.Snapshot()

	staff := doc.Staff
	if search != "" {
		filtered := make([]models.StaffRecord, 0, len(staff))
		for _, rec := range staff {
			if strings.Contains(rec.Name, search) ||
				strings.Contains(rec.Kana, search) ||
				strings.EqualFold(rec.ID, search) {
				filtered = append(filtered, rec)
			}
		}
		staff = filtered
	}

	response.Success(c.Ctx, gin.H{
		"total": len(staff),
		"data":  staff,
	})
}

// GetStaff 获取单个职员详情
// @Summary      获取职员详情
// @Description  根据ID获取职员的应急档案（血型、既往症、紧急联系人等）
// @Tags         Staff
// @Produce      json
// @Param        id path string true "职员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /staffs/{id} [get]
// @Security     BearerAuth
func (c *StaffController) GetStaff() {
	id := c.Ctx.Param("id")

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	doc := master.Snapshot()
	idx := doc.FindStaff(id)
	if idx < 0 {
		response.NotFound(c.Ctx, code.ErrStaffNotFound)
		return
	}
	response.Success(c.Ctx, doc.Staff[idx])
}

// CreateStaff 追加职员档案
// @Summary      创建职员档案
// @Description  ID在名簿内必须唯一，重复时拒绝
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        request body models.StaffRecord true "职员应急档案"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /staffs [post]
// @Security     BearerAuth
func (c *StaffController) CreateStaff() {
	var rec models.StaffRecord
	if err := c.Ctx.ShouldBindJSON(&rec); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" || strings.TrimSpace(rec.Name) == "" {
		response.ParamError(c.Ctx, "职员ID和姓名不能为空")
		return
	}

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.CreateStaff(c.Ctx.Request.Context(), rec); err != nil {
		if errors.Is(err, services.ErrStaffAlreadyExist) {
			response.Fail(c.Ctx, code.ErrStaffAlreadyExist, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrStorage, "保存职员档案失败: "+err.Error(), nil)
		return
	}

	c.Ctx.JSON(http.StatusCreated, gin.H{
		"code":    code.ErrSuccess,
		"message": code.GetMessage(code.ErrSuccess),
		"data":    rec,
	})
}

// UpdateStaff 更新职员档案
// @Summary      更新职员档案
// @Description  整体替换指定职员的应急档案
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        id path string true "职员ID"
// @Param        request body models.StaffRecord true "职员应急档案"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /staffs/{id} [put]
// @Security     BearerAuth
func (c *StaffController) UpdateStaff() {
	id := c.Ctx.Param("id")

	var rec models.StaffRecord
	if err := c.Ctx.ShouldBindJSON(&rec); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}
	if rec.ID == "" {
		rec.ID = id
	}

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.UpdateStaff(c.Ctx.Request.Context(), id, rec); err != nil {
		switch {
		case errors.Is(err, services.ErrStaffNotFound):
			response.NotFound(c.Ctx, code.ErrStaffNotFound)
		case errors.Is(err, services.ErrStaffAlreadyExist):
			response.Fail(c.Ctx, code.ErrStaffAlreadyExist, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrStorage, "保存职员档案失败: "+err.Error(), nil)
		}
		return
	}
	response.Success(c.Ctx, rec)
}

// DeleteStaff 删除职员档案
// @Summary      删除职员档案
// @Description  立即删除，不可恢复
// @Tags         Staff
// @Produce      json
// @Param        id path string true "职员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /staffs/{id} [delete]
// @Security     BearerAuth
func (c *StaffController) DeleteStaff() {
	id := c.Ctx.Param("id")

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.DeleteStaff(c.Ctx.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrStaffNotFound) {
			response.NotFound(c.Ctx, code.ErrStaffNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrStorage, "删除职员档案失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, nil)
}

// HandleStaffFunc 返回一个处理职员请求的Gin处理函数
func HandleStaffFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewStaffController(ctx, container)

		switch method {
		case "getStaffs":
			controller.GetStaffs()
		case "getStaff":
			controller.GetStaff()
		case "createStaff":
			controller.CreateStaff()
		case "updateStaff":
			controller.UpdateStaff()
		case "deleteStaff":
			controller.DeleteStaff()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}
