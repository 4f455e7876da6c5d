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

// InterfaceCompanyController 定义会社控制器接口
type InterfaceCompanyController interface {
	GetCompanies()
	CreateCompany()
	UpdateCompany()
	DeleteCompany()
}

// CompanyController 处理所属会社相关的请求
type CompanyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewCompanyController 创建一个新的会社控制器
func NewCompanyController(ctx *gin.Context, container *container.ServiceContainer) *CompanyController {
	return &CompanyController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetCompanies 获取会社列表
// @Summary      获取会社列表
// @Tags         Company
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /companies [get]
// @Security     BearerAuth
func (c *CompanyController) GetCompanies() {
	master := c.Container.GetService("master").(services.InterfaceMasterService)
	doc := master.Snapshot()
	response.Success(c.Ctx, gin.H{
		"total": len(doc.Companies),
		"data":  doc.Companies,
	})
}

// CreateCompany 追加会社
// @Summary      创建会社
// @Tags         Company
// @Accept       json
// @Produce      json
// @Param        request body models.Company true "会社信息"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /companies [post]
// @Security     BearerAuth
func (c *CompanyController) CreateCompany() {
	var com models.Company
	if err := c.Ctx.ShouldBindJSON(&com); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}
	com.ID = strings.TrimSpace(com.ID)
	if com.ID == "" || strings.TrimSpace(com.Name) == "" {
		response.ParamError(c.Ctx, "会社ID和名称不能为空")
		return
	}

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.CreateCompany(c.Ctx.Request.Context(), com); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	c.Ctx.JSON(http.StatusCreated, gin.H{
		"code":    code.ErrSuccess,
		"message": code.GetMessage(code.ErrSuccess),
		"data":    com,
	})
}

// UpdateCompany 更新会社信息
// @Summary      更新会社
// @Tags         Company
// @Accept       json
// @Produce      json
// @Param        id path string true "会社ID"
// @Param        request body models.Company true "会社信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [put]
// @Security     BearerAuth
func (c *CompanyController) UpdateCompany() {
	id := c.Ctx.Param("id")

	var com models.Company
	if err := c.Ctx.ShouldBindJSON(&com); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}
	if com.ID == "" {
		com.ID = id
	}

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.UpdateCompany(c.Ctx.Request.Context(), id, com); err != nil {
		if errors.Is(err, services.ErrCompanyNotFound) {
			response.NotFound(c.Ctx, code.ErrCompanyNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrStorage, "保存会社信息失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, com)
}

// DeleteCompany 删除会社
// @Summary      删除会社
// @Description  引用该会社的职员档案自动解除关联，不做级联删除
// @Tags         Company
// @Produce      json
// @Param        id path string true "会社ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [delete]
// @Security     BearerAuth
func (c *CompanyController) DeleteCompany() {
	id := c.Ctx.Param("id")

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.DeleteCompany(c.Ctx.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrCompanyNotFound) {
			response.NotFound(c.Ctx, code.ErrCompanyNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrStorage, "删除会社失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, nil)
}

// HandleCompanyFunc 返回一个处理会社请求的Gin处理函数
func HandleCompanyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewCompanyController(ctx, container)

		switch method {
		case "getCompanies":
			controller.GetCompanies()
		case "createCompany":
			controller.CreateCompany()
		case "updateCompany":
			controller.UpdateCompany()
		case "deleteCompany":
			controller.DeleteCompany()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}
