package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"iris-go/internal/model"
	"iris-go/internal/repository"

	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyNumber пустой номер телефона
	ErrEmptyNumber = errors.New("caretaker number is empty")
	// ErrSlotsFull оба номера уже сохранены
	ErrSlotsFull = errors.New("both caretaker numbers already saved")
	// ErrNoBackup запасной номер не сохранен
	ErrNoBackup = errors.New("no backup caretaker saved")
	// ErrNoCaretaker ни одного номера не сохранено
	ErrNoCaretaker = errors.New("no caretaker number saved")
	// ErrCallPermission нет разрешения на звонки
	ErrCallPermission = errors.New("call permission not granted")
)

// Фразы, которые слышит пользователь
const (
	msgPrimarySaved     = "Primary caretaker saved. Now save secondary number."
	msgSecondarySaved   = "Secondary caretaker saved successfully."
	msgBothSaved        = "You already added both caretaker numbers."
	msgBackupUpdated    = "Backup caretaker updated"
	msgNoBackupToUpdate = "No backup caretaker to update"
	msgNoCaretaker      = "No caretaker number saved"
	msgNoCallPermission = "Call permission not granted"
	msgCallingCaretaker = "Calling caretaker"
)

// CaretakerService управляет номерами опекунов и звонками им.
// Методы возвращают произнесенную фразу; ошибка означает, что действие не выполнено.
type CaretakerService struct {
	repo    repository.CaretakerRepository
	speaker Speaker
	dialer  Dialer
	logger  *logrus.Logger

	mu sync.Mutex
}

// NewCaretakerService создает новый сервис опекунов
func NewCaretakerService(repo repository.CaretakerRepository, speaker Speaker, dialer Dialer, logger *logrus.Logger) *CaretakerService {
	return &CaretakerService{
		repo:    repo,
		speaker: speaker,
		dialer:  dialer,
		logger:  logger,
	}
}

// AddNumber сохраняет номер в первый свободный слот: основной, затем запасной
func (s *CaretakerService) AddNumber(number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", ErrEmptyNumber
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	primary, err := s.number(model.SlotPrimary)
	if err != nil {
		return "", err
	}
	if primary == "" {
		if err := s.repo.Save(model.SlotPrimary, number); err != nil {
			s.logger.Errorf("Ошибка сохранения основного номера: %v", err)
			return "", fmt.Errorf("failed to save primary caretaker: %w", err)
		}
		s.logger.Info("Сохранен основной номер опекуна")
		return s.say(msgPrimarySaved), nil
	}

	backup, err := s.number(model.SlotBackup)
	if err != nil {
		return "", err
	}
	if backup == "" {
		if err := s.repo.Save(model.SlotBackup, number); err != nil {
			s.logger.Errorf("Ошибка сохранения запасного номера: %v", err)
			return "", fmt.Errorf("failed to save backup caretaker: %w", err)
		}
		s.logger.Info("Сохранен запасной номер опекуна")
		return s.say(msgSecondarySaved), nil
	}

	return s.say(msgBothSaved), ErrSlotsFull
}

// UpdateBackup заменяет запасной номер, если он уже был сохранен
func (s *CaretakerService) UpdateBackup(number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", ErrEmptyNumber
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup, err := s.number(model.SlotBackup)
	if err != nil {
		return "", err
	}
	if backup == "" {
		return s.say(msgNoBackupToUpdate), ErrNoBackup
	}

	if err := s.repo.Save(model.SlotBackup, number); err != nil {
		s.logger.Errorf("Ошибка обновления запасного номера: %v", err)
		return "", fmt.Errorf("failed to update backup caretaker: %w", err)
	}
	s.logger.Info("Запасной номер опекуна обновлен")
	return s.say(msgBackupUpdated), nil
}

// PrimaryNumber основной номер, пустая строка если не сохранен
func (s *CaretakerService) PrimaryNumber() (string, error) {
	return s.number(model.SlotPrimary)
}

// BackupNumber запасной номер, пустая строка если не сохранен
func (s *CaretakerService) BackupNumber() (string, error) {
	return s.number(model.SlotBackup)
}

// Call звонит основному опекуну, а если его нет, запасному
func (s *CaretakerService) Call() (string, error) {
	number, err := s.PrimaryNumber()
	if err != nil {
		return "", err
	}
	if number == "" {
		if number, err = s.BackupNumber(); err != nil {
			return "", err
		}
	}

	if number == "" {
		s.logger.Warn("Звонок невозможен: номер опекуна не сохранен")
		return s.say(msgNoCaretaker), ErrNoCaretaker
	}

	if !s.dialer.CanCall() {
		s.logger.Warn("Звонок невозможен: нет разрешения")
		return s.say(msgNoCallPermission), ErrCallPermission
	}

	if err := s.dialer.Dial("tel:" + number); err != nil {
		s.logger.Errorf("Ошибка звонка опекуну: %v", err)
		return "", fmt.Errorf("failed to call caretaker: %w", err)
	}
	return "", nil
}

// HandleVoiceCommand звонит опекуну, если в команде есть слово "help"
func (s *CaretakerService) HandleVoiceCommand(command string) (bool, []string, error) {
	if !strings.Contains(command, "help") {
		return false, nil, nil
	}

	spoken := []string{s.say(msgCallingCaretaker)}
	msg, err := s.Call()
	if msg != "" {
		spoken = append(spoken, msg)
	}
	return true, spoken, err
}

// number читает номер из слота; пустой слот не ошибка
func (s *CaretakerService) number(slot string) (string, error) {
	caretaker, err := s.repo.Get(slot)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		s.logger.Errorf("Ошибка чтения номера опекуна %s: %v", slot, err)
		return "", fmt.Errorf("failed to read caretaker %s: %w", slot, err)
	}
	return caretaker.Number, nil
}

func (s *CaretakerService) say(text string) string {
	s.speaker.Speak(text)
	return text
}
