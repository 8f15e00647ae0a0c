package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"iris-go/internal/model"
	"iris-go/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func nullLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

type memoryAlerts struct {
	mu     sync.Mutex
	events []*model.AlertEvent
	err    error
}

func (m *memoryAlerts) Create(event *model.AlertEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *memoryAlerts) GetByID(id string) (*model.AlertEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.events {
		if event.ID == id {
			return event, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryAlerts) List(page, pageSize int) ([]*model.AlertEvent, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sorted := append([]*model.AlertEvent(nil), m.events...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FiredAt.After(sorted[j].FiredAt) })

	start := (page - 1) * pageSize
	if start > len(sorted) {
		start = len(sorted)
	}
	end := start + pageSize
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], int64(len(sorted)), nil
}

func (m *memoryAlerts) ListSince(since time.Time) ([]*model.AlertEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.AlertEvent
	for _, event := range m.events {
		if !event.FiredAt.Before(since) {
			result = append(result, event)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FiredAt.Before(result[j].FiredAt) })
	return result, nil
}

type memoryCaretakers struct {
	mu    sync.Mutex
	slots map[string]string
	err   error
}

func newMemoryCaretakers() *memoryCaretakers {
	return &memoryCaretakers{slots: map[string]string{}}
}

func (m *memoryCaretakers) Get(slot string) (*model.Caretaker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	number, ok := m.slots[slot]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.Caretaker{Slot: slot, Number: number}, nil
}

func (m *memoryCaretakers) Save(slot, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.slots[slot] = number
	return nil
}

type recordingSpeaker struct {
	mu      sync.Mutex
	phrases []string
}

func (r *recordingSpeaker) Speak(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phrases = append(r.phrases, text)
}

func (r *recordingSpeaker) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.phrases) == 0 {
		return ""
	}
	return r.phrases[len(r.phrases)-1]
}

type fakeDialer struct {
	allowed bool
	err     error
	calls   []string
}

func (d *fakeDialer) CanCall() bool { return d.allowed }

func (d *fakeDialer) Dial(uri string) error {
	if d.err != nil {
		return d.err
	}
	d.calls = append(d.calls, uri)
	return nil
}

type fakeVision struct {
	description string
	text        string
	err         error
}

func (f *fakeVision) DescribeScene(ctx context.Context, filename string, image []byte) (string, error) {
	return f.description, f.err
}

func (f *fakeVision) RecognizeText(ctx context.Context, filename string, image []byte) (string, error) {
	return f.text, f.err
}

var errBackend = errors.New("backend unavailable")
