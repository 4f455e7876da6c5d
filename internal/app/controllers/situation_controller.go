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

// InterfaceSituationController 定义事故类型控制器接口
type InterfaceSituationController interface {
	GetSituations()
	UpsertSituation()
	DeleteSituation()
	GetBodyParts()
	UpsertBodyPart()
	DeleteBodyPart()
	GetContactGroups()
	SetContactGroupEnabled()
}

// SituationController 处理事故类型・受伤部位・通知组相关的请求
type SituationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewSituationController 创建一个新的事故类型控制器
func NewSituationController(ctx *gin.Context, container *container.ServiceContainer) *SituationController {
	return &SituationController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetSituations 获取事故类型列表
// @Summary      获取事故类型列表
// @Description  返回全部事故类型定义，含模板和通知组配置
// @Tags         Situation
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /situations [get]
func (c *SituationController) GetSituations() {
	master := c.Container.GetService("master").(services.InterfaceMasterService)
	doc := master.Snapshot()
	response.Success(c.Ctx, gin.H{
		"total": len(doc.Situations),
		"data":  doc.Situations,
	})
}

// UpsertSituation 新增或整体替换事故类型
// @Summary      保存事故类型
// @Description  同ID存在时整体替换，不存在时追加
// @Tags         Situation
// @Accept       json
// @Produce      json
// @Param        request body models.Situation true "事故类型定义"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /situations [put]
// @Security     BearerAuth
func (c *SituationController) UpsertSituation() {
	var sit models.Situation
	if err := c.Ctx.ShouldBindJSON(&sit); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}
	sit.ID = strings.TrimSpace(sit.ID)
	if sit.ID == "" || strings.TrimSpace(sit.Label) == "" {
		response.ParamError(c.Ctx, "事故类型ID和名称不能为空")
		return
	}
	if sit.DefaultAction != models.ActionEmergency && sit.DefaultAction != models.ActionObserve {
		response.ParamError(c.Ctx, "default_action必须是emergency或observe")
		return
	}

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.UpsertSituation(c.Ctx.Request.Context(), sit); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrStorage, "保存事故类型失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, sit)
}

// DeleteSituation 删除事故类型
// @Summary      删除事故类型
// @Tags         Situation
// @Produce      json
// @Param        id path string true "事故类型ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /situations/{id} [delete]
// @Security     BearerAuth
func (c *SituationController) DeleteSituation() {
	id := c.Ctx.Param("id")

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.DeleteSituation(c.Ctx.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrSituationNotFound) {
			response.NotFound(c.Ctx, code.ErrSituationNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrStorage, "删除事故类型失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, nil)
}

// GetBodyParts 获取受伤部位选项
// @Summary      获取受伤部位选项
// @Tags         Situation
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /body-parts [get]
func (c *SituationController) GetBodyParts() {
	master := c.Container.GetService("master").(services.InterfaceMasterService)
	doc := master.Snapshot()
	response.Success(c.Ctx, gin.H{
		"data": doc.BodyParts,
	})
}

// UpsertBodyPart 新增或整体替换受伤部位选项
// @Summary      保存受伤部位选项
// @Description  同ID存在时整体替换，不存在时追加
// @Tags         Situation
// @Accept       json
// @Produce      json
// @Param        request body models.BodyPart true "受伤部位定义"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /body-parts [put]
// @Security     BearerAuth
func (c *SituationController) UpsertBodyPart() {
	var part models.BodyPart
	if err := c.Ctx.ShouldBindJSON(&part); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}
	part.ID = strings.TrimSpace(part.ID)
	if part.ID == "" || strings.TrimSpace(part.Label) == "" {
		response.ParamError(c.Ctx, "受伤部位ID和名称不能为空")
		return
	}

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.UpsertBodyPart(c.Ctx.Request.Context(), part); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrStorage, "保存受伤部位失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, part)
}

// DeleteBodyPart 删除受伤部位选项
// @Summary      删除受伤部位选项
// @Tags         Situation
// @Produce      json
// @Param        id path string true "受伤部位ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /body-parts/{id} [delete]
// @Security     BearerAuth
func (c *SituationController) DeleteBodyPart() {
	id := c.Ctx.Param("id")

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.DeleteBodyPart(c.Ctx.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrBodyPartNotFound) {
			response.NotFound(c.Ctx, code.ErrBodyPartNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrStorage, "删除受伤部位失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, nil)
}

// GetContactGroups 获取通知组列表
// @Summary      获取通知组列表
// @Tags         Situation
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /contact-groups [get]
// @Security     BearerAuth
func (c *SituationController) GetContactGroups() {
	master := c.Container.GetService("master").(services.InterfaceMasterService)
	doc := master.Snapshot()
	response.Success(c.Ctx, gin.H{
		"total": len(doc.ContactGroups),
		"data":  doc.ContactGroups,
	})
}

// SetContactGroupEnabledRequest 表示切换通知组启用状态的请求体
type SetContactGroupEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetContactGroupEnabled 切换通知组启用状态
// @Summary      切换通知组启用状态
// @Description  关闭的组不会进入报告预览的收件人集合
// @Tags         Situation
// @Accept       json
// @Produce      json
// @Param        id path string true "通知组ID"
// @Param        request body SetContactGroupEnabledRequest true "启用状态"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /contact-groups/{id}/enabled [put]
// @Security     BearerAuth
func (c *SituationController) SetContactGroupEnabled() {
	id := c.Ctx.Param("id")

	var req SetContactGroupEnabledRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}

	master := c.Container.GetService("master").(services.InterfaceMasterService)
	if err := master.SetContactGroupEnabled(c.Ctx.Request.Context(), id, *req.Enabled); err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrStorage, "保存通知组失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, nil)
}

// HandleSituationFunc 返回一个处理事故类型请求的Gin处理函数
func HandleSituationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewSituationController(ctx, container)

		switch method {
		case "getSituations":
			controller.GetSituations()
		case "upsertSituation":
			controller.UpsertSituation()
		case "deleteSituation":
			controller.DeleteSituation()
		case "getBodyParts":
			controller.GetBodyParts()
		case "upsertBodyPart":
			controller.UpsertBodyPart()
		case "deleteBodyPart":
			controller.DeleteBodyPart()
		case "getContactGroups":
			controller.GetContactGroups()
		case "setContactGroupEnabled":
			controller.SetContactGroupEnabled()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}
