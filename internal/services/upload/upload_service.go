package upload

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/rewear-api/internal/config"
	"github.com/rajivgeraev/rewear-api/internal/utils"
)

// UploadService предоставляет методы для работы с изображениями в Cloudinary
type UploadService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	cld        *cloudinary.Cloudinary
}

// NewUploadService создает новый экземпляр UploadService
func NewUploadService(cfg *config.Config) *UploadService {
	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryConfig.CloudName,
		cfg.CloudinaryConfig.APIKey,
		cfg.CloudinaryConfig.APISecret,
	)
	if err != nil {
		log.Printf("⚠️ Ошибка инициализации Cloudinary: %v", err)
	}

	return &UploadService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		cld:        cld,
	}
}

// GenerateUploadParams создаёт подписанные параметры для прямой загрузки
// изображений с клиента в Cloudinary
func (s *UploadService) GenerateUploadParams(c fiber.Ctx) error {
	// Генерируем ID для вещи, если не передан
	itemID := c.Query("item_id")
	if itemID == "" {
		itemID = uuid.New().String()
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	folder := fmt.Sprintf("rewear/items/%s", itemID)

	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", folder)
	params.Set("upload_preset", s.cfg.CloudinaryConfig.UploadPreset)

	signature, err := api.SignParameters(params, s.cfg.CloudinaryConfig.APISecret)
	if err != nil {
		log.Printf("Ошибка подписи параметров загрузки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка подготовки загрузки"})
	}

	return c.JSON(fiber.Map{
		"timestamp":     timestamp,
		"signature":     signature,
		"api_key":       s.cfg.CloudinaryConfig.APIKey,
		"cloud_name":    s.cfg.CloudinaryConfig.CloudName,
		"folder":        folder,
		"upload_preset": s.cfg.CloudinaryConfig.UploadPreset,
		"item_id":       itemID,
	})
}

// DestroyImages удаляет изображения вещи из Cloudinary по их URL.
// Ошибки удаления логируются и не прерывают вызывающую операцию.
func (s *UploadService) DestroyImages(imageURLs []string) {
	if s.cld == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, imageURL := range imageURLs {
		publicID := extractPublicID(imageURL)
		if publicID == "" {
			continue
		}
		_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
		if err != nil {
			log.Printf("Ошибка удаления изображения %s: %v", publicID, err)
		}
	}
}

// extractPublicID достает public_id из URL вида
// https://res.cloudinary.com/<cloud>/image/upload/v123/rewear/items/<id>/img.jpg
func extractPublicID(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(parsed.Path, "/upload/")
	if len(parts) != 2 {
		return ""
	}

	publicID := parts[1]
	// Отбрасываем версию вида v1234567890/
	if strings.HasPrefix(publicID, "v") {
		if idx := strings.Index(publicID, "/"); idx > 0 {
			version := publicID[1:idx]
			if _, err := fmt.Sscanf(version, "%d", new(int64)); err == nil {
				publicID = publicID[idx+1:]
			}
		}
	}

	// Расширение файла не входит в public_id
	if idx := strings.LastIndex(publicID, "."); idx > 0 {
		publicID = publicID[:idx]
	}

	return publicID
}
