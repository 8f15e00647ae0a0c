package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"iris-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AssistantHandler голосовые команды, описание сцены и чтение текста
type AssistantHandler struct {
	voice  *service.VoiceService
	vision *service.VisionService
	logger *logrus.Logger
}

// NewAssistantHandler создает новый обработчик ассистента
func NewAssistantHandler(voice *service.VoiceService, vision *service.VisionService, logger *logrus.Logger) *AssistantHandler {
	return &AssistantHandler{
		voice:  voice,
		vision: vision,
		logger: logger,
	}
}

// ProcessVoice обрабатывает распознанную фразу. Принимает multipart форму
// с полем command и необязательным снимком image.
func (h *AssistantHandler) ProcessVoice(c *gin.Context) {
	command := c.PostForm("command")
	if command == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command обязателен"})
		return
	}

	image, _, err := readImage(c)
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		h.logger.Errorf("Ошибка чтения снимка: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ошибка чтения снимка"})
		return
	}

	resp, err := h.voice.Process(c.Request.Context(), command, image)
	if err != nil {
		h.logger.Errorf("Ошибка обработки голосовой команды: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка обработки команды"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescribeScene описывает сцену на снимке
func (h *AssistantHandler) DescribeScene(c *gin.Context) {
	h.withImage(c, h.vision.DescribeScene)
}

// ReadText читает текст на снимке
func (h *AssistantHandler) ReadText(c *gin.Context) {
	h.withImage(c, h.vision.ReadText)
}

func (h *AssistantHandler) withImage(c *gin.Context, action func(ctx context.Context, filename string, image []byte) (string, []string, error)) {
	image, filename, err := readImage(c)
	if err != nil {
		h.logger.Errorf("Ошибка получения снимка: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Снимок обязателен"})
		return
	}

	text, spoken, err := action(c.Request.Context(), filename, image)
	if err != nil {
		h.logger.Errorf("Ошибка сервиса описания: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Сервис описания недоступен", "spoken": spoken})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text, "spoken": spoken})
}

// readImage читает снимок из multipart поля image.
// Отсутствие снимка возвращает http.ErrMissingFile.
func readImage(c *gin.Context) ([]byte, string, error) {
	if err := c.Request.ParseMultipartForm(maxImageSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, "", http.ErrMissingFile
		}
		return nil, "", err
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}
