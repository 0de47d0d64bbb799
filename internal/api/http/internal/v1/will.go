package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/service"
	"github.com/everkeep/backend/pkg/logger"
)

func (h *Handler) initWillsRoutes(api *gin.RouterGroup) {
	wills := api.Group("/wills", h.userIdentityMiddleware)

	wills.POST("", h.willCreate)
	wills.GET("", h.willList)
	wills.GET("/:id", h.willGet)
	wills.PUT("/:id", h.willUpdate)
	wills.GET("/:id/pdf", h.willExportPDF)

	wills.POST("/:id/assets", h.assetAdd)
	wills.GET("/:id/assets", h.assetList)
	wills.PUT("/:id/assets/:assetId", h.assetUpdate)
	wills.DELETE("/:id/assets/:assetId", h.assetDelete)

	wills.POST("/:id/documents", h.documentUpload)

	documents := api.Group("/documents", h.userIdentityMiddleware)
	documents.GET("/:id/download", h.documentDownload)
}

type willRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=255"`
	Body      string `json:"body" binding:"max=65535"`
	Completed bool   `json:"completed"`
}

// @Summary Create will
// @Tags Wills
// @Accept  json
// @Produce  json
// @Param input body willRequest true "will content"
// @Success 201 {object} domain.Will
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 500
// @Security UserAuth
// @Router /wills [post]
func (h *Handler) willCreate(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req willRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	will, err := h.services.Wills.Create(c.Request.Context(), userID, service.WillInput{
		Title:     req.Title,
		Body:      req.Body,
		Completed: req.Completed,
	})
	if err != nil {
		logger.Error("create will failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, will)
}

// @Summary List wills
// @Tags Wills
// @Produce  json
// @Success 200 {array} domain.Will
// @Failure 401
// @Failure 500
// @Security UserAuth
// @Router /wills [get]
func (h *Handler) willList(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	wills, err := h.services.Wills.GetAllByUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("list wills failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, wills)
}

// @Summary Get will
// @Tags Wills
// @Produce  json
// @Param id path string true "will id"
// @Success 200 {object} domain.Will
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Security UserAuth
// @Router /wills/{id} [get]
func (h *Handler) willGet(c *gin.Context) {
	userID, willID, ok := h.willScope(c)
	if !ok {
		return
	}

	will, err := h.services.Wills.GetOneByID(c.Request.Context(), userID, willID)
	if err != nil {
		h.willError(c, err, "get will failed")
		return
	}

	c.JSON(http.StatusOK, will)
}

// @Summary Update will
// @Tags Wills
// @Accept  json
// @Produce  json
// @Param id path string true "will id"
// @Param input body willRequest true "will content"
// @Success 200
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Security UserAuth
// @Router /wills/{id} [put]
func (h *Handler) willUpdate(c *gin.Context) {
	userID, willID, ok := h.willScope(c)
	if !ok {
		return
	}

	var req willRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	err := h.services.Wills.Update(c.Request.Context(), userID, willID, service.WillInput{
		Title:     req.Title,
		Body:      req.Body,
		Completed: req.Completed,
	})
	if err != nil {
		h.willError(c, err, "update will failed")
		return
	}

	c.Status(http.StatusOK)
}

// @Summary Export will as PDF
// @Tags Wills
// @Produce  application/pdf
// @Param id path string true "will id"
// @Success 200
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Security UserAuth
// @Router /wills/{id}/pdf [get]
func (h *Handler) willExportPDF(c *gin.Context) {
	userID, willID, ok := h.willScope(c)
	if !ok {
		return
	}

	data, err := h.services.Wills.ExportPDF(c.Request.Context(), userID, willID)
	if err != nil {
		h.willError(c, err, "export pdf failed")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=will-%s.pdf", willID))
	c.Data(http.StatusOK, "application/pdf", data)
}

type assetRequest struct {
	Kind         string `json:"kind" binding:"required,oneof=property financial digital personal"`
	Name         string `json:"name" binding:"required,min=1,max=255"`
	Description  string `json:"description" binding:"max=65535"`
	Instructions string `json:"instructions" binding:"max=65535"`
}

// @Summary Add asset
// @Tags Assets
// @Accept  json
// @Produce  json
// @Param id path string true "will id"
// @Param input body assetRequest true "asset info"
// @Success 201 {object} domain.Asset
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Security UserAuth
// @Router /wills/{id}/assets [post]
func (h *Handler) assetAdd(c *gin.Context) {
	userID, willID, ok := h.willScope(c)
	if !ok {
		return
	}

	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	asset, err := h.services.Wills.AddAsset(c.Request.Context(), userID, willID, service.AssetInput{
		Kind:         domain.AssetKind(req.Kind),
		Name:         req.Name,
		Description:  req.Description,
		Instructions: req.Instructions,
	})
	if err != nil {
		h.willError(c, err, "add asset failed")
		return
	}

	c.JSON(http.StatusCreated, asset)
}

// @Summary List assets
// @Tags Assets
// @Produce  json
// @Param id path string true "will id"
// @Success 200 {array} domain.Asset
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Security UserAuth
// @Router /wills/{id}/assets [get]
func (h *Handler) assetList(c *gin.Context) {
	userID, willID, ok := h.willScope(c)
	if !ok {
		return
	}

	assets, err := h.services.Wills.GetAssets(c.Request.Context(), userID, willID)
	if err != nil {
		h.willError(c, err, "list assets failed")
		return
	}

	c.JSON(http.StatusOK, assets)
}

// @Summary Update asset
// @Tags Assets
// @Accept  json
// @Produce  json
// @Param id path string true "will id"
// @Param assetId path string true "asset id"
// @Param input body assetRequest true "asset info"
// @Success 200
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Security UserAuth
// @Router /wills/{id}/assets/{assetId} [put]
func (h *Handler) assetUpdate(c *gin.Context) {
	userID, willID, ok := h.willScope(c)
	if !ok {
		return
	}

	assetID, err := uuid.Parse(c.Param("assetId"))
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	err = h.services.Wills.UpdateAsset(c.Request.Context(), userID, willID, assetID, service.AssetInput{
		Kind:         domain.AssetKind(req.Kind),
		Name:         req.Name,
		Description:  req.Description,
		Instructions: req.Instructions,
	})
	if err != nil {
		h.willError(c, err, "update asset failed")
		return
	}

	c.Status(http.StatusOK)
}

// @Summary Delete asset
// @Tags Assets
// @Produce  json
// @Param id path string true "will id"
// @Param assetId path string true "asset id"
// @Success 204
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Security UserAuth
// @Router /wills/{id}/assets/{assetId} [delete]
func (h *Handler) assetDelete(c *gin.Context) {
	userID, willID, ok := h.willScope(c)
	if !ok {
		return
	}

	assetID, err := uuid.Parse(c.Param("assetId"))
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	if err := h.services.Wills.DeleteAsset(c.Request.Context(), userID, willID, assetID); err != nil {
		h.willError(c, err, "delete asset failed")
		return
	}

	c.Status(http.StatusNoContent)
}

type documentUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string `json:"content_type" binding:"required,min=3,max=255"`
}

type documentUploadResponse struct {
	Document  *domain.WillDocument `json:"document"`
	UploadURL string               `json:"upload_url"`
}

// @Summary Request document upload
// @Tags Documents
// @Description Returns a presigned URL the client PUTs the file to
// @Accept  json
// @Produce  json
// @Param id path string true "will id"
// @Param input body documentUploadRequest true "file info"
// @Success 201 {object} documentUploadResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Security UserAuth
// @Router /wills/{id}/documents [post]
func (h *Handler) documentUpload(c *gin.Context) {
	userID, willID, ok := h.willScope(c)
	if !ok {
		return
	}

	var req documentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	upload, err := h.services.Wills.DocumentUploadURL(c.Request.Context(), userID, willID, req.FileName, req.ContentType)
	if err != nil {
		h.willError(c, err, "document upload url failed")
		return
	}

	c.JSON(http.StatusCreated, documentUploadResponse{
		Document:  upload.Document,
		UploadURL: upload.UploadURL,
	})
}

type documentDownloadResponse struct {
	DownloadURL string `json:"download_url"`
}

// @Summary Request document download
// @Tags Documents
// @Description Returns a presigned URL to fetch the stored file
// @Produce  json
// @Param id path string true "document id"
// @Success 200 {object} documentDownloadResponse
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Failure 500
// @Security UserAuth
// @Router /documents/{id}/download [get]
func (h *Handler) documentDownload(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	url, err := h.services.Wills.DocumentDownloadURL(c.Request.Context(), userID, docID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWillNotFound), errors.Is(err, service.ErrForbidden):
			errorResponseWithStatus(c, http.StatusNotFound, DocumentNotFoundCode)
		default:
			logger.Error("document download url failed", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, documentDownloadResponse{DownloadURL: url})
}

func (h *Handler) willScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	willID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, willID, true
}

func (h *Handler) willError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrWillNotFound), errors.Is(err, service.ErrForbidden):
		errorResponseWithStatus(c, http.StatusNotFound, WillNotFoundCode)
	case errors.Is(err, service.ErrWillNotEditable):
		errorResponse(c, WillNotEditableCode)
	default:
		logger.Error(logMsg, zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
