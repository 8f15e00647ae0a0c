package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Speaker синтез речи. Новая фраза прерывает предыдущую.
type Speaker interface {
	Speak(text string)
}

// Dialer телефония для звонка опекуну
type Dialer interface {
	// CanCall сообщает, выдано ли разрешение на звонки
	CanCall() bool
	// Dial начинает звонок по tel: URI
	Dial(uri string) error
}

// LogSpeaker пишет произнесенные фразы в лог
type LogSpeaker struct {
	logger *logrus.Logger
}

// NewLogSpeaker создает Speaker, пишущий в лог
func NewLogSpeaker(logger *logrus.Logger) *LogSpeaker {
	return &LogSpeaker{logger: logger}
}

// Speak пишет фразу в лог
func (s *LogSpeaker) Speak(text string) {
	s.logger.WithField("text", text).Info("Озвучивание")
}

// LogDialer пишет звонки в лог
type LogDialer struct {
	logger  *logrus.Logger
	allowed bool
}

// NewLogDialer создает Dialer, пишущий в лог
func NewLogDialer(logger *logrus.Logger, allowed bool) *LogDialer {
	return &LogDialer{logger: logger, allowed: allowed}
}

// CanCall сообщает, разрешены ли звонки
func (d *LogDialer) CanCall() bool {
	return d.allowed
}

// Dial пишет звонок в лог
func (d *LogDialer) Dial(uri string) error {
	if !strings.HasPrefix(uri, "tel:") {
		return fmt.Errorf("unsupported call uri %q", uri)
	}
	d.logger.WithField("uri", uri).Info("Звонок опекуну")
	return nil
}

// transcript собирает фразы, произнесенные за один запрос, и передает их дальше
type transcript struct {
	next   Speaker
	spoken []string
}

func newTranscript(next Speaker) *transcript {
	return &transcript{next: next}
}

// Speak запоминает фразу и произносит ее
func (t *transcript) Speak(text string) {
	t.spoken = append(t.spoken, text)
	if t.next != nil {
		t.next.Speak(text)
	}
}

// Record запоминает фразу, которую уже произнес другой сервис
func (t *transcript) Record(text string) {
	if text != "" {
		t.spoken = append(t.spoken, text)
	}
}

// Lines произнесенные фразы
func (t *transcript) Lines() []string {
	return t.spoken
}
