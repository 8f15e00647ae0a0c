package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"iris-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// ScenePrompt запрос к модели описания сцены
const ScenePrompt = "Describe this scene in one short sentence for a visually impaired person. Focus on the main obstacles or objects."

// VisionAPIClient клиент для внешнего сервиса описания сцены и распознавания текста
type VisionAPIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewVisionAPIClient создает новый клиент для сервиса описания сцены
func NewVisionAPIClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *VisionAPIClient {
	return &VisionAPIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// DescribeScene отправляет снимок на описание сцены
func (c *VisionAPIClient) DescribeScene(ctx context.Context, filename string, image []byte) (string, error) {
	c.logger.Info("Отправка снимка на описание сцены")
	resp, err := c.postImage(ctx, "/describe", filename, image, map[string]string{"prompt": ScenePrompt})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// RecognizeText отправляет снимок на распознавание текста
func (c *VisionAPIClient) RecognizeText(ctx context.Context, filename string, image []byte) (string, error) {
	c.logger.Info("Отправка снимка на распознавание текста")
	resp, err := c.postImage(ctx, "/ocr", filename, image, nil)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// postImage отправляет multipart запрос со снимком
func (c *VisionAPIClient) postImage(ctx context.Context, path, filename string, image []byte, fields map[string]string) (*models.VisionAPIResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// Добавляем снимок
	imageWriter, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания form field для снимка: %w", err)
	}
	if _, err := imageWriter.Write(image); err != nil {
		return nil, fmt.Errorf("ошибка записи снимка: %w", err)
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("ошибка записи %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("ошибка закрытия multipart writer: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания HTTP запроса: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debugf("Отправка POST запроса на %s", url)
	var apiResponse models.VisionAPIResponse
	if err := c.do(req, &apiResponse); err != nil {
		return nil, err
	}

	if apiResponse.Status != "" && apiResponse.Status != "success" {
		return nil, fmt.Errorf("сервис описания вернул ошибку: %s", apiResponse.Message)
	}

	return &apiResponse, nil
}

// CheckHealth проверяет состояние сервиса описания сцены
func (c *VisionAPIClient) CheckHealth(ctx context.Context) (*models.HealthResponse, error) {
	c.logger.Debug("Проверка здоровья сервиса описания сцены")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания HTTP запроса: %w", err)
	}

	var healthResponse models.HealthResponse
	if err := c.do(req, &healthResponse); err != nil {
		return nil, err
	}
	return &healthResponse, nil
}

// do выполняет запрос и разбирает JSON ответ
func (c *VisionAPIClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки HTTP запроса: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сервис описания вернул ошибку: статус %d, тело: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("ошибка парсинга JSON ответа: %w", err)
	}
	return nil
}
