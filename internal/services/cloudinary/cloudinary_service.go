package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/config"
)

// CloudinaryService предоставляет методы для работы с Cloudinary
type CloudinaryService struct {
	cfg          *config.Config
	cld          *cloudinary.Cloudinary
	uploadFolder string
	uploadPreset string
}

// NewCloudinaryService создает новый экземпляр CloudinaryService
func NewCloudinaryService(cfg *config.Config) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryConfig.CloudName,
		cfg.CloudinaryConfig.APIKey,
		cfg.CloudinaryConfig.APISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cfg:          cfg,
		cld:          cld,
		uploadFolder: cfg.CloudinaryConfig.UploadFolder,
		uploadPreset: cfg.CloudinaryConfig.UploadPreset,
	}, nil
}

// GenerateSignature создаёт корректную подпись для Cloudinary
func (s *CloudinaryService) GenerateSignature(params map[string]string) string {
	// Сортируем ключи параметров
	var keys []string
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Формируем строку для подписи
	var signParts []string
	for _, k := range keys {
		signParts = append(signParts, fmt.Sprintf("%s=%s", k, params[k]))
	}
	signatureString := strings.Join(signParts, "&")

	// Добавляем API-секрет в конец строки
	signatureString += s.cfg.CloudinaryConfig.APISecret

	h := sha1.New()
	h.Write([]byte(signatureString))

	return hex.EncodeToString(h.Sum(nil))
}

// GenerateUploadParams создаёт параметры для подписанной загрузки
// изображений товара из браузера
func (s *CloudinaryService) GenerateUploadParams(c fiber.Ctx) error {
	// Генерируем ID для товара, если не передан
	productID := c.Query("product_id")
	if productID == "" {
		productID = uuid.New().String()
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	// Параметры для подписи
	params := map[string]string{
		"timestamp":     timestamp,
		"folder":        s.uploadFolder,
		"upload_preset": s.uploadPreset,
	}

	signature := s.GenerateSignature(params)

	return c.JSON(fiber.Map{
		"timestamp":     timestamp,
		"signature":     signature,
		"api_key":       s.cfg.CloudinaryConfig.APIKey,
		"cloud_name":    s.cfg.CloudinaryConfig.CloudName,
		"folder":        s.uploadFolder,
		"upload_preset": s.uploadPreset,
		"product_id":    productID,
	})
}

// DestroyImages удаляет изображения из Cloudinary. Ошибки удаления
// только логируются: записи в базе уже нет, повторная попытка не нужна
func (s *CloudinaryService) DestroyImages(ctx context.Context, publicIDs []string) {
	for _, publicID := range publicIDs {
		if publicID == "" {
			continue
		}
		_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
		if err != nil {
			log.Printf("Ошибка удаления изображения %s из Cloudinary: %v", publicID, err)
		}
	}
}
