// Package haptic описывает исполнительное устройство тактильной отдачи.
package haptic

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PulseDuration длительность одного короткого импульса
const PulseDuration = 100 * time.Millisecond

// Actuator устройство, умеющее выдать короткий импульс. Подтверждения нет.
type Actuator interface {
	Pulse(d time.Duration)
}

// Pulse событие импульса, которое получают подписчики
type Pulse struct {
	Duration time.Duration
	At       time.Time
	Obstacle string
}

// LogActuator пишет импульсы в лог. Используется там, где нет вибромотора.
type LogActuator struct {
	logger *logrus.Logger
}

// NewLogActuator создает актуатор, пишущий в лог
func NewLogActuator(logger *logrus.Logger) *LogActuator {
	return &LogActuator{logger: logger}
}

// Pulse пишет импульс в лог
func (a *LogActuator) Pulse(d time.Duration) {
	a.logger.WithField("duration_ms", d.Milliseconds()).Info("Тактильный импульс")
}

// Broadcaster рассылает импульсы всем подписчикам.
// Медленный подписчик теряет импульсы, отправка никогда не блокирует.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Pulse]struct{}
	next        Actuator
	now         func() time.Time
}

// NewBroadcaster создает рассыльщик. next получает каждый импульс, может быть nil.
func NewBroadcaster(next Actuator) *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Pulse]struct{}),
		next:        next,
		now:         time.Now,
	}
}

// Pulse передает импульс следующему актуатору и подписчикам
func (b *Broadcaster) Pulse(d time.Duration) {
	b.Publish(Pulse{Duration: d, At: b.now()})
}

// Publish рассылает импульс с дополнительными данными
func (b *Broadcaster) Publish(p Pulse) {
	if b.next != nil {
		b.next.Pulse(p.Duration)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- p:
		default:
		}
	}
}

// Subscribe регистрирует подписчика. Возвращает канал и функцию отписки.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Pulse, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Pulse, buffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers количество активных подписчиков
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
