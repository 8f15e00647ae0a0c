package service

import (
	"context"
	"net/url"
	"strings"

	"iris-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// Действия голосовых команд
const (
	ActionDescribe = "describe"
	ActionReadText = "read_text"
	ActionNavigate = "navigate"
	ActionHelp     = "help"
	ActionUnknown  = "unknown"
)

const (
	msgLetMeSee    = "Let me see..."
	msgReadingText = "Reading text..."

	msgNavigationFailed = "Sorry, I can't open Google Maps."
)

// VoiceService разбирает распознанную фразу и запускает нужное действие
type VoiceService struct {
	vision     *VisionService
	caretakers *CaretakerService
	speaker    Speaker
	logger     *logrus.Logger
}

// NewVoiceService создает сервис голосовых команд
func NewVoiceService(vision *VisionService, caretakers *CaretakerService, speaker Speaker, logger *logrus.Logger) *VoiceService {
	return &VoiceService{
		vision:     vision,
		caretakers: caretakers,
		speaker:    speaker,
		logger:     logger,
	}
}

// Process выполняет голосовую команду. image нужен для описания сцены и чтения текста.
// Ошибки внешних сервисов уже озвучены пользователю и в ответе не возвращаются.
func (s *VoiceService) Process(ctx context.Context, command string, image []byte) (*models.VoiceResponse, error) {
	command = strings.ToLower(strings.TrimSpace(command))
	s.logger.Infof("Голосовая команда: %q", command)

	t := newTranscript(s.speaker)
	resp := &models.VoiceResponse{Action: ActionUnknown}

	switch {
	case strings.Contains(command, "describe") || strings.Contains(command, "what do you see"):
		resp.Action = ActionDescribe
		t.Speak(msgLetMeSee)
		text, spoken, err := s.vision.DescribeScene(ctx, "scene.jpg", image)
		recordAll(t, spoken)
		if err != nil {
			s.logger.Warnf("Описание сцены не выполнено: %v", err)
		}
		resp.Text = text

	case strings.Contains(command, "read text") || strings.Contains(command, "read this"):
		resp.Action = ActionReadText
		t.Speak(msgReadingText)
		text, spoken, err := s.vision.ReadText(ctx, "ocr.jpg", image)
		recordAll(t, spoken)
		if err != nil {
			s.logger.Warnf("Чтение текста не выполнено: %v", err)
		}
		resp.Text = text

	case strings.Contains(command, "navigate to") || strings.Contains(command, "go to"):
		destination := Destination(command)
		if destination == "" {
			break
		}
		resp.Action = ActionNavigate
		t.Speak("Getting walking directions to " + destination)
		resp.NavigationURI = NavigationURI(destination)
		resp.OnFailure = msgNavigationFailed

	case strings.Contains(command, "help"):
		resp.Action = ActionHelp
		_, spoken, err := s.caretakers.HandleVoiceCommand(command)
		recordAll(t, spoken)
		if err != nil {
			s.logger.Warnf("Звонок опекуну не выполнен: %v", err)
		}
	}

	resp.Spoken = t.Lines()
	if resp.Spoken == nil {
		resp.Spoken = []string{}
	}
	return resp, nil
}

// Destination извлекает пункт назначения из команды навигации
func Destination(command string) string {
	destination := substringAfter(command+" ", "navigate to ")
	destination = substringAfter(destination, "go to ")
	return strings.TrimSpace(destination)
}

// NavigationURI интент пешеходной навигации до пункта назначения
func NavigationURI(destination string) string {
	return "google.navigation:q=" + url.QueryEscape(destination) + "&mode=w"
}

// substringAfter возвращает часть строки после первого вхождения sep, или всю строку
func substringAfter(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

func recordAll(t *transcript, lines []string) {
	for _, line := range lines {
		t.Record(line)
	}
}
