package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/api/groups/:groupId/approvals", middleware.RequireIdentity())
	{
		approvals.POST("", h.CreateApproval)
		approvals.GET("", h.ListApprovals)
		approvals.GET("/:id", h.GetApproval)
		approvals.PUT("/:id/approve", h.ApproveRequest)
		approvals.PUT("/:id/reject", h.RejectRequest)
	}
}

// CreateApproval submits a new pending approval request in a group
func (h *ApprovalHandler) CreateApproval(c *gin.Context) {
	var req service.CreateApprovalDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.approvalService.Create(c.Request.Context(), c.Param("groupId"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListApprovals returns a group's approval requests, newest first, with
// optional status/type/requester/window/q filters applied on the snapshot.
func (h *ApprovalHandler) ListApprovals(c *gin.Context) {
	ctx := c.Request.Context()
	groupID := c.Param("groupId")

	var (
		requests []model.ApprovalRequest
		err      error
	)
	if status := c.Query("status"); status != "" {
		requests, err = h.approvalService.ListByStatus(ctx, groupID, model.ApprovalStatus(status))
	} else {
		requests, err = h.approvalService.List(ctx, groupID)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	filters := []service.ApprovalFilter{
		service.Window(c.DefaultQuery("window", "all"), time.Now().UTC()),
		service.Search(c.Query("q")),
	}
	if reqType := c.Query("type"); reqType != "" {
		filters = append(filters, service.ByType(model.ApprovalType(reqType)))
	}
	if requester := c.Query("requester"); requester != "" {
		filters = append(filters, service.ByRequester(requester))
	}
	requests = service.Apply(requests, filters...)

	params := pagination.Parse(c)
	total := len(requests)
	start, end := params.Bounds(total)

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   requests[start:end],
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// GetApproval returns a single approval request by id
func (h *ApprovalHandler) GetApproval(c *gin.Context) {
	result, err := h.approvalService.Get(c.Request.Context(), c.Param("groupId"), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ApproveRequest approves a pending approval request
func (h *ApprovalHandler) ApproveRequest(c *gin.Context) {
	h.resolve(c, service.ActionApprove)
}

// RejectRequest rejects a pending approval request
func (h *ApprovalHandler) RejectRequest(c *gin.Context) {
	h.resolve(c, service.ActionReject)
}

func (h *ApprovalHandler) resolve(c *gin.Context, action service.ResolveAction) {
	resolver := model.Resolver{
		ID:   c.GetString("userID"),
		Name: c.GetString("userName"),
	}

	result, err := h.approvalService.Resolve(c.Request.Context(), c.Param("groupId"), c.Param("id"), action, resolver)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
