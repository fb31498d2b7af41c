package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/services"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func (h *FileHandler) UploadFile(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.SendError(c, utils.BadRequest("NO_FILES", "A file is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_FILE", "Failed to open uploaded file"))
		return
	}
	defer file.Close()

	uploaded, err := h.fileService.UploadFile(currentUserID(c), resourceID, file, header)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusCreated, uploaded)
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	fileID, ok := parseIDParam(c, "fileId")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(currentUserID(c), fileID); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusOK, "File deleted")
}
