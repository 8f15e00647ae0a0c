package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNoImage снимок не передан
var ErrNoImage = errors.New("image is empty")

const (
	msgThinking      = "Thinking..."
	msgAIUnavailable = "Sorry, I couldn't connect to the AI."
	msgNoText        = "I don't see any text."
	msgCannotRead    = "Sorry, I couldn't read the text."
	msgCameraError   = "Camera error."
)

// VisionClient внешний сервис описания сцены и распознавания текста
type VisionClient interface {
	DescribeScene(ctx context.Context, filename string, image []byte) (string, error)
	RecognizeText(ctx context.Context, filename string, image []byte) (string, error)
}

// VisionService озвучивает описание сцены и найденный на снимке текст
type VisionService struct {
	client  VisionClient
	speaker Speaker
	logger  *logrus.Logger
}

// NewVisionService создает сервис описания сцены
func NewVisionService(client VisionClient, speaker Speaker, logger *logrus.Logger) *VisionService {
	return &VisionService{
		client:  client,
		speaker: speaker,
		logger:  logger,
	}
}

// DescribeScene отправляет снимок на описание и озвучивает ответ
func (s *VisionService) DescribeScene(ctx context.Context, filename string, image []byte) (string, []string, error) {
	t := newTranscript(s.speaker)
	if len(image) == 0 {
		t.Speak(msgCameraError)
		return "", t.Lines(), ErrNoImage
	}

	t.Speak(msgThinking)
	description, err := s.client.DescribeScene(ctx, filename, image)
	if err != nil {
		s.logger.Errorf("Ошибка описания сцены: %v", err)
		t.Speak(msgAIUnavailable)
		return "", t.Lines(), err
	}

	s.logger.Infof("Описание сцены: %s", description)
	if description != "" {
		t.Speak(description)
	}
	return description, t.Lines(), nil
}

// ReadText распознает текст на снимке и зачитывает его
func (s *VisionService) ReadText(ctx context.Context, filename string, image []byte) (string, []string, error) {
	t := newTranscript(s.speaker)
	if len(image) == 0 {
		t.Speak(msgCameraError)
		return "", t.Lines(), ErrNoImage
	}

	text, err := s.client.RecognizeText(ctx, filename, image)
	if err != nil {
		s.logger.Errorf("Ошибка распознавания текста: %v", err)
		t.Speak(msgCannotRead)
		return "", t.Lines(), err
	}

	if strings.TrimSpace(text) == "" {
		t.Speak(msgNoText)
		return "", t.Lines(), nil
	}

	t.Speak(text)
	return text, t.Lines(), nil
}
