package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/workhub/marketplace-backend/internal/http/handlers/common"
	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/repository"
	"github.com/workhub/marketplace-backend/internal/storage"
)

// Разрешённые типы изображений для фото профиля.
var allowedPhotoMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Разрешённые типы для файлов брифа и сдачи работы.
var allowedFileMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"application/zip": true,
	"application/x-7z-compressed":  true,
	"application/x-rar-compressed": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// MediaHandler управляет загрузкой и удалением медиа-файлов.
type MediaHandler struct {
	repo    *repository.MediaRepository
	storage *storage.FileStorage
	baseURL string
}

// NewMediaHandler создаёт хэндлер. baseURL используется для построения
// публичных ссылок на загруженные файлы.
func NewMediaHandler(repo *repository.MediaRepository, storage *storage.FileStorage, baseURL string) *MediaHandler {
	return &MediaHandler{repo: repo, storage: storage, baseURL: strings.TrimRight(baseURL, "/")}
}

// UploadPhoto обрабатывает POST /media/photos. Только изображения.
func (h *MediaHandler) UploadPhoto(c *gin.Context) {
	h.upload(c, allowedPhotoMimeTypes, allowedPhotoExtensions)
}

// UploadFile обрабатывает POST /media/files: вложения к брифу и сдаче
// работы. Ответ содержит тройку name/url/size, которую заказ хранит в JSONB.
func (h *MediaHandler) UploadFile(c *gin.Context) {
	h.upload(c, allowedFileMimeTypes, nil)
}

func (h *MediaHandler) upload(c *gin.Context, allowedMime map[string]bool, allowedExt map[string]bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поле file обязательно"})
		return
	}

	if file.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "файл не может быть пустым"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if allowedExt != nil && !allowedExt[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неподдерживаемый формат файла"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	// Проверяем магические байты, а не только расширение.
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не удалось прочитать файл"})
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не удалось определить тип файла"})
		return
	}

	contentType := kind.MIME.Value
	if !allowedMime[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("неподдерживаемый тип файла (%s)", contentType),
		})
		return
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось сбросить позицию файла"})
			return
		}
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), userID, file.Filename, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	media := &models.MediaFile{
		UserID:   &userID,
		FilePath: filepath.ToSlash(relativePath),
		FileType: contentType,
		FileSize: size,
		IsPublic: true,
	}

	if err := h.repo.Create(c.Request.Context(), media); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"media": media,
		"file": models.DeliveryFile{
			Name: file.Filename,
			URL:  h.baseURL + "/uploads/" + media.FilePath,
			Size: size,
		},
	})
}

// DeleteMedia обрабатывает DELETE /media/:id. Пользователь удаляет только
// свои файлы.
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	media, err := h.repo.Delete(c.Request.Context(), mediaID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "файл не найден"})
			return
		}
		common.Error(c, err)
		return
	}

	if err := h.storage.Delete(c.Request.Context(), media.FilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
