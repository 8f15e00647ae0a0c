package handler

import (
	"errors"
	"net/http"

	"iris-go/internal/service"
	"iris-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CaretakerHandler обрабатывает номера опекунов и экран настроек
type CaretakerHandler struct {
	caretakers *service.CaretakerService
	settings   *service.SettingsService
	logger     *logrus.Logger
}

// NewCaretakerHandler создает новый обработчик опекунов
func NewCaretakerHandler(caretakers *service.CaretakerService, settings *service.SettingsService, logger *logrus.Logger) *CaretakerHandler {
	return &CaretakerHandler{
		caretakers: caretakers,
		settings:   settings,
		logger:     logger,
	}
}

// GetCaretakers возвращает сохраненные номера
func (h *CaretakerHandler) GetCaretakers(c *gin.Context) {
	primary, err := h.caretakers.PrimaryNumber()
	if err != nil {
		h.internalError(c, err)
		return
	}
	backup, err := h.caretakers.BackupNumber()
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CaretakersResponse{Primary: primary, Backup: backup})
}

// AddCaretaker сохраняет номер в первый свободный слот
func (h *CaretakerHandler) AddCaretaker(c *gin.Context) {
	var req models.CaretakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат запроса"})
		return
	}

	msg, err := h.caretakers.AddNumber(req.Number)
	h.respond(c, msg, err)
}

// UpdateBackup заменяет запасной номер
func (h *CaretakerHandler) UpdateBackup(c *gin.Context) {
	var req models.CaretakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат запроса"})
		return
	}

	msg, err := h.caretakers.UpdateBackup(req.Number)
	h.respond(c, msg, err)
}

// CallCaretaker звонит опекуну
func (h *CaretakerHandler) CallCaretaker(c *gin.Context) {
	msg, err := h.caretakers.Call()
	h.respond(c, msg, err)
}

// OpenSettings открывает сессию экрана настроек
func (h *CaretakerHandler) OpenSettings(c *gin.Context) {
	session := h.settings.Open()
	c.JSON(http.StatusCreated, models.SettingsResponse{SessionID: session.ID})
}

// CloseSettings закрывает сессию экрана настроек
func (h *CaretakerHandler) CloseSettings(c *gin.Context) {
	if err := h.settings.Close(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
		return
	}
	c.Status(http.StatusNoContent)
}

// PressAdd кнопка добавления номера
func (h *CaretakerHandler) PressAdd(c *gin.Context) {
	h.press(c, (*service.SettingsSession).PressAdd)
}

// PressEdit кнопка редактирования запасного номера
func (h *CaretakerHandler) PressEdit(c *gin.Context) {
	h.press(c, (*service.SettingsSession).PressEdit)
}

func (h *CaretakerHandler) press(c *gin.Context, action func(*service.SettingsSession, string) (*models.SettingsResponse, error)) {
	session, err := h.settings.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
		return
	}

	var req models.SettingsInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат запроса"})
		return
	}

	resp, err := action(session, req.Input)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// respond переводит результат сервиса опекунов в HTTP ответ
func (h *CaretakerHandler) respond(c *gin.Context, msg string, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": msg})
	case errors.Is(err, service.ErrEmptyNumber):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Enter phone number"})
	case errors.Is(err, service.ErrSlotsFull):
		c.JSON(http.StatusConflict, gin.H{"error": msg})
	case errors.Is(err, service.ErrNoBackup), errors.Is(err, service.ErrNoCaretaker):
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
	case errors.Is(err, service.ErrCallPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": msg})
	default:
		h.internalError(c, err)
	}
}

func (h *CaretakerHandler) internalError(c *gin.Context, err error) {
	h.logger.Errorf("Ошибка обработки запроса опекунов: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
}
