package handler

import (
	"errors"
	"net/http"

	"github.com/contactbook/internal/db"
	"github.com/contactbook/internal/service"
	"github.com/gin-gonic/gin"
)

type detailRequest struct {
	Type  string `json:"type" binding:"required,max=20"`
	Value string `json:"value" binding:"required,max=200"`
}

type contactRequest struct {
	Name         string          `json:"name" binding:"required,max=50"`
	IsBookmarked bool            `json:"isBookmarked"`
	Details      []detailRequest `json:"contactDetails" binding:"omitempty,dive"`
}

type detailBatchRequest struct {
	Details []detailRequest `json:"contactDetails" binding:"required,min=1,dive"`
}

func toDetailInputs(reqs []detailRequest) []service.DetailInput {
	inputs := make([]service.DetailInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, service.DetailInput{Type: req.Type, Value: req.Value})
	}
	return inputs
}

func detailPayload(detail db.ContactDetail) gin.H {
	return gin.H{
		"id":        detail.ID,
		"contactId": detail.ContactID,
		"type":      detail.Type,
		"value":     detail.Value,
	}
}

func contactPayload(contact db.Contact) gin.H {
	details := make([]gin.H, 0, len(contact.Details))
	for _, detail := range contact.Details {
		details = append(details, detailPayload(detail))
	}
	return gin.H{
		"id":             contact.ID,
		"name":           contact.Name,
		"isBookmarked":   contact.IsBookmarked,
		"contactDetails": details,
		"createdAt":      contact.CreatedAt,
		"updatedAt":      contact.UpdatedAt,
	}
}

func contactsPayload(contacts []db.Contact) []gin.H {
	out := make([]gin.H, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, contactPayload(contact))
	}
	return out
}

// respondContactError 将服务层错误映射为 HTTP 状态
func (a *API) respondContactError(c *gin.Context, err error, fallbackEN, fallbackZH string) {
	switch {
	case errors.Is(err, service.ErrContactNotFound):
		respondError(c, http.StatusNotFound, a.text(c, "Contact not found", "联系人不存在"))
	case errors.Is(err, service.ErrDetailExists):
		respondError(c, http.StatusConflict, a.text(c, "This contact detail already exists", "该联系方式已存在"))
	case errors.Is(err, service.ErrInvalidContact):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, a.text(c, fallbackEN, fallbackZH))
	}
}

// GetContacts 获取全部联系人
func (a *API) GetContacts(c *gin.Context) {
	contacts, err := a.contacts.List()
	if err != nil {
		a.respondContactError(c, err, "Failed to load contacts", "获取联系人列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contactsPayload(contacts)})
}

// GetBookmarkedContacts 获取已收藏的联系人
func (a *API) GetBookmarkedContacts(c *gin.Context) {
	contacts, err := a.contacts.ListBookmarked()
	if err != nil {
		a.respondContactError(c, err, "Failed to load bookmarked contacts", "获取收藏联系人失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contactsPayload(contacts)})
}

// GetContact 获取单个联系人
func (a *API) GetContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Invalid contact ID", "无效的联系人ID"))
		return
	}

	contact, err := a.contacts.Get(id)
	if err != nil {
		a.respondContactError(c, err, "Failed to load contact", "获取联系人失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"contact": contactPayload(*contact)})
}

// CreateContact 创建联系人
func (a *API) CreateContact(c *gin.Context) {
	var req contactRequest
	if !bindJSON(c, &req, a.requestLanguage(c)) {
		return
	}

	contact, err := a.contacts.Create(service.ContactInput{
		Name:         req.Name,
		IsBookmarked: req.IsBookmarked,
		Details:      toDetailInputs(req.Details),
	})
	if err != nil {
		a.respondContactError(c, err, "Failed to create contact", "创建联系人失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": a.text(c, "Contact created", "联系人创建成功"),
		"contact": contactPayload(*contact),
	})
}

// ToggleBookmark 设置或取消收藏，请求体为 JSON 布尔值
func (a *API) ToggleBookmark(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Invalid contact ID", "无效的联系人ID"))
		return
	}

	var bookmarked bool
	if err := c.ShouldBindJSON(&bookmarked); err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Request body must be true or false", "请求体必须为 true 或 false"))
		return
	}

	contact, err := a.contacts.SetBookmark(id, bookmarked)
	if err != nil {
		a.respondContactError(c, err, "Failed to update bookmark", "更新收藏状态失败")
		return
	}

	message := a.text(c, "Bookmark removed", "取消收藏成功")
	if bookmarked {
		message = a.text(c, "Contact bookmarked", "收藏成功")
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "contact": contactPayload(*contact)})
}

// AddContactDetail 为联系人添加联系方式
func (a *API) AddContactDetail(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Invalid contact ID", "无效的联系人ID"))
		return
	}

	var req detailRequest
	if !bindJSON(c, &req, a.requestLanguage(c)) {
		return
	}

	detail, err := a.contacts.AddDetail(id, service.DetailInput{Type: req.Type, Value: req.Value})
	if err != nil {
		a.respondContactError(c, err, "Failed to add contact detail", "添加联系方式失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": a.text(c, "Contact detail added", "联系方式添加成功"),
		"detail":  detailPayload(*detail),
	})
}

// AddContactDetailsBatch 批量添加联系方式，重复项自动跳过
func (a *API) AddContactDetailsBatch(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Invalid contact ID", "无效的联系人ID"))
		return
	}

	var req detailBatchRequest
	if !bindJSON(c, &req, a.requestLanguage(c)) {
		return
	}

	created, err := a.contacts.AddDetails(id, toDetailInputs(req.Details))
	if err != nil {
		a.respondContactError(c, err, "Failed to add contact details", "批量添加联系方式失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": a.text(c, "Contact details added", "批量添加成功"),
		"count":   created,
	})
}

// DeleteContact 删除联系人及其联系方式
func (a *API) DeleteContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Invalid contact ID", "无效的联系人ID"))
		return
	}

	if err := a.contacts.Delete(id); err != nil {
		a.respondContactError(c, err, "Failed to delete contact", "删除联系人失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": a.text(c, "Contact deleted", "联系人删除成功")})
}
