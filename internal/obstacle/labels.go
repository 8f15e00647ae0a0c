package obstacle

import "sort"

// Label метка класса объекта, которую вернул классификатор
type Label struct {
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence"`
}

// DetectedObject объект, найденный на кадре. Один объект может нести
// несколько меток-кандидатов (общую и уточненную).
type DetectedObject struct {
	Labels []Label `json:"labels"`
}

// NewDetectedObject собирает объект из текстов меток
func NewDetectedObject(texts ...string) DetectedObject {
	labels := make([]Label, len(texts))
	for i, text := range texts {
		labels[i] = Label{Text: text}
	}
	return DetectedObject{Labels: labels}
}

// defaultObstacleLabels метки, опасные для незрячего пешехода
var defaultObstacleLabels = []string{
	"Person", "Car", "Bicycle", "Motorcycle", "Bus", "Train", "Truck",
	"Chair", "Couch", "Bed", "Dining Table", "Desk", "Door", "Stairs",
}

// ObstacleSet неизменяемый набор меток-препятствий.
// Сравнение точное и чувствительное к регистру.
type ObstacleSet struct {
	labels map[string]struct{}
}

// NewObstacleSet создает набор из переданных меток
func NewObstacleSet(labels ...string) ObstacleSet {
	set := ObstacleSet{labels: make(map[string]struct{}, len(labels))}
	for _, label := range labels {
		set.labels[label] = struct{}{}
	}
	return set
}

// DefaultObstacleSet возвращает стандартный словарь препятствий
func DefaultObstacleSet() ObstacleSet {
	return NewObstacleSet(defaultObstacleLabels...)
}

// Contains проверяет, является ли метка препятствием
func (s ObstacleSet) Contains(label string) bool {
	_, ok := s.labels[label]
	return ok
}

// Len количество меток в наборе
func (s ObstacleSet) Len() int {
	return len(s.labels)
}

// Labels возвращает отсортированную копию меток
func (s ObstacleSet) Labels() []string {
	labels := make([]string, 0, len(s.labels))
	for label := range s.labels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
