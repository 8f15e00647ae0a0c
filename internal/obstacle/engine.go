// Package obstacle решает, нужно ли подать тактильный сигнал о препятствии
// для очередного проанализированного кадра.
//
// Engine не читает системные часы: время кадра передает вызывающий код.
// Engine не синхронизирован, вызовы Evaluate для одного экземпляра
// должны идти последовательно.
package obstacle

import "time"

// CooldownPeriod минимальный интервал между двумя сигналами
const CooldownPeriod = 1000 * time.Millisecond

// State состояние таймера охлаждения
type State int

const (
	// StateReady сигнал может быть подан
	StateReady State = iota
	// StateCooling с последнего сигнала прошло меньше периода охлаждения
	StateCooling
)

// String возвращает имя состояния
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateCooling:
		return "cooling"
	default:
		return "unknown"
	}
}

// Decision подробный результат оценки кадра
type Decision struct {
	// Obstacle первая найденная метка-препятствие, пустая если препятствий нет
	Obstacle string
	// Found на кадре есть препятствие
	Found bool
	// Alert сигнал подан в этом вызове
	Alert bool
	// Suppressed препятствие найдено, но сигнал подавлен охлаждением
	Suppressed bool
}

// Engine движок оповещений о препятствиях
type Engine struct {
	obstacles ObstacleSet
	cooldown  time.Duration

	lastAlert time.Time
	fired     bool
}

// NewEngine создает движок. Неположительный cooldown заменяется на CooldownPeriod.
func NewEngine(obstacles ObstacleSet, cooldown time.Duration) *Engine {
	if cooldown <= 0 {
		cooldown = CooldownPeriod
	}
	return &Engine{
		obstacles: obstacles,
		cooldown:  cooldown,
	}
}

// Evaluate возвращает true, если для этого кадра нужно подать сигнал.
// now не должен убывать между вызовами.
func (e *Engine) Evaluate(objects []DetectedObject, now time.Time) bool {
	return e.Inspect(objects, now).Alert
}

// Inspect выполняет ту же оценку, что и Evaluate, и сообщает найденную метку
func (e *Engine) Inspect(objects []DetectedObject, now time.Time) Decision {
	label, found := e.firstObstacle(objects)
	if !found {
		return Decision{}
	}

	decision := Decision{Obstacle: label, Found: true}
	if e.State(now) == StateCooling {
		decision.Suppressed = true
		return decision
	}

	e.lastAlert = now
	e.fired = true
	decision.Alert = true
	return decision
}

// State вычисляет состояние охлаждения на момент now
func (e *Engine) State(now time.Time) State {
	if !e.fired || now.Sub(e.lastAlert) >= e.cooldown {
		return StateReady
	}
	return StateCooling
}

// LastAlert время последнего сигнала; false если сигналов еще не было
func (e *Engine) LastAlert() (time.Time, bool) {
	return e.lastAlert, e.fired
}

// Cooldown период охлаждения движка
func (e *Engine) Cooldown() time.Duration {
	return e.cooldown
}

// Obstacles набор меток, на которые реагирует движок
func (e *Engine) Obstacles() ObstacleSet {
	return e.obstacles
}

// firstObstacle ищет первую метку-препятствие, остальные метки кадра не смотрит
func (e *Engine) firstObstacle(objects []DetectedObject) (string, bool) {
	for _, object := range objects {
		for _, label := range object.Labels {
			if e.obstacles.Contains(label.Text) {
				return label.Text, true
			}
		}
	}
	return "", false
}
