package service

import (
	"errors"
	"strings"
	"sync"

	"iris-go/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrSessionNotFound сессия настроек не найдена
var ErrSessionNotFound = errors.New("settings session not found")

const (
	msgSettingsOpened   = "Settings screen opened"
	msgEditBackupPrompt = "Edit the backup number and press edit again"
	msgNoBackupYet      = "No backup number saved yet"
	noticeEnterNumber   = "Enter phone number"
)

// SettingsSession состояние экрана настроек: поле ввода и режим
// редактирования запасного номера
type SettingsSession struct {
	ID string

	caretakers *CaretakerService
	speaker    Speaker

	mu      sync.Mutex
	editing bool
}

// NewSettingsSession создает сессию экрана настроек
func NewSettingsSession(id string, caretakers *CaretakerService, speaker Speaker) *SettingsSession {
	return &SettingsSession{
		ID:         id,
		caretakers: caretakers,
		speaker:    speaker,
	}
}

// Editing находится ли сессия в режиме редактирования запасного номера
func (s *SettingsSession) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// PressAdd добавляет номер из поля ввода в первый свободный слот
func (s *SettingsSession) PressAdd(input string) (*models.SettingsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := s.response(input)
	if strings.TrimSpace(input) == "" {
		resp.Notice = noticeEnterNumber
		return resp, nil
	}

	msg, err := s.caretakers.AddNumber(input)
	if err != nil && !errors.Is(err, ErrSlotsFull) {
		return nil, err
	}
	resp.Field = ""
	resp.Spoken = appendSpoken(resp.Spoken, msg)
	return resp, nil
}

// PressEdit первое нажатие загружает запасной номер в поле ввода,
// второе сохраняет отредактированный номер
func (s *SettingsSession) PressEdit(input string) (*models.SettingsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := s.response(input)
	if !s.editing {
		saved, err := s.caretakers.BackupNumber()
		if err != nil {
			return nil, err
		}
		if saved == "" {
			s.speaker.Speak(msgNoBackupYet)
			resp.Spoken = appendSpoken(resp.Spoken, msgNoBackupYet)
			return resp, nil
		}

		s.speaker.Speak(msgEditBackupPrompt)
		s.editing = true
		resp.Editing = true
		resp.Field = saved
		resp.Spoken = appendSpoken(resp.Spoken, msgEditBackupPrompt)
		return resp, nil
	}

	updated := strings.TrimSpace(input)
	if updated == "" {
		resp.Notice = noticeEnterNumber
		return resp, nil
	}

	msg, err := s.caretakers.UpdateBackup(updated)
	if err != nil && !errors.Is(err, ErrNoBackup) {
		return nil, err
	}
	s.editing = false
	resp.Editing = false
	resp.Field = ""
	resp.Spoken = appendSpoken(resp.Spoken, msg)
	return resp, nil
}

func (s *SettingsSession) response(input string) *models.SettingsResponse {
	return &models.SettingsResponse{
		SessionID: s.ID,
		Editing:   s.editing,
		Field:     input,
	}
}

func appendSpoken(spoken []string, msg string) []string {
	if msg == "" {
		return spoken
	}
	return append(spoken, msg)
}

// SettingsService хранит открытые сессии экрана настроек
type SettingsService struct {
	caretakers *CaretakerService
	speaker    Speaker
	logger     *logrus.Logger

	mu       sync.RWMutex
	sessions map[string]*SettingsSession
}

// NewSettingsService создает сервис экрана настроек
func NewSettingsService(caretakers *CaretakerService, speaker Speaker, logger *logrus.Logger) *SettingsService {
	return &SettingsService{
		caretakers: caretakers,
		speaker:    speaker,
		logger:     logger,
		sessions:   make(map[string]*SettingsSession),
	}
}

// Open открывает новую сессию настроек
func (s *SettingsService) Open() *SettingsSession {
	session := NewSettingsSession(uuid.New().String(), s.caretakers, s.speaker)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.speaker.Speak(msgSettingsOpened)
	s.logger.Infof("Открыта сессия настроек %s", session.ID)
	return session
}

// Get возвращает открытую сессию
func (s *SettingsService) Get(id string) (*SettingsSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Close закрывает сессию
func (s *SettingsService) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.logger.Infof("Закрыта сессия настроек %s", id)
	return nil
}
