package models

// Label метка объекта от классификатора
type Label struct {
	Text       string  `json:"text"`       // Текст метки ("Person", "Car")
	Confidence float32 `json:"confidence"` // Уверенность классификатора
}

// DetectedObject объект, найденный на кадре
type DetectedObject struct {
	Labels []Label `json:"labels"` // Метки-кандидаты в порядке классификатора
}

// FrameRequest запрос на оценку одного кадра
type FrameRequest struct {
	Objects     []DetectedObject `json:"objects"`                // Объекты кадра, может быть пустым
	TimestampMs *int64           `json:"timestamp_ms,omitempty"` // Время кадра в мс, по умолчанию текущее
}

// FrameResponse результат оценки кадра
type FrameResponse struct {
	Alert       bool   `json:"alert"`              // Подан тактильный сигнал
	Found       bool   `json:"found"`              // На кадре есть препятствие
	Obstacle    string `json:"obstacle,omitempty"` // Первая найденная метка-препятствие
	Suppressed  bool   `json:"suppressed"`         // Сигнал подавлен охлаждением
	State       string `json:"state"`              // Состояние охлаждения после оценки
	TimestampMs int64  `json:"timestamp_ms"`       // Время кадра, использованное движком
	AlertID     string `json:"alert_id,omitempty"` // ID сохраненного события
}

// VisionAPIResponse ответ внешнего сервиса описания сцены и распознавания текста
type VisionAPIResponse struct {
	Status  string `json:"status"`  // Статус выполнения
	Message string `json:"message"` // Сообщение об ошибке
	Text    string `json:"text"`    // Описание сцены или распознанный текст
}

// HealthResponse представляет ответ проверки здоровья сервиса
type HealthResponse struct {
	Status      string `json:"status"`       // Статус сервиса (healthy/unhealthy)
	ModelLoaded bool   `json:"model_loaded"` // Загружена ли модель
	Version     string `json:"version"`      // Версия сервиса
}

// CaretakerRequest запрос с номером опекуна
type CaretakerRequest struct {
	Number string `json:"number"`
}

// CaretakersResponse сохраненные номера опекунов
type CaretakersResponse struct {
	Primary string `json:"primary,omitempty"`
	Backup  string `json:"backup,omitempty"`
}

// VoiceRequest распознанная фраза пользователя
type VoiceRequest struct {
	Command string `json:"command"`
}

// VoiceResponse результат обработки голосовой команды
type VoiceResponse struct {
	Action        string   `json:"action"`                   // describe, read_text, navigate, help, unknown
	Spoken        []string `json:"spoken"`                   // Фразы, произнесенные пользователю
	NavigationURI string   `json:"navigation_uri,omitempty"` // Интент навигации
	Text          string   `json:"text,omitempty"`           // Описание сцены или прочитанный текст
	OnFailure     string   `json:"on_failure,omitempty"`     // Фраза, если клиент не смог открыть интент
}

// SettingsInputRequest содержимое поля ввода на экране настроек
type SettingsInputRequest struct {
	Input string `json:"input"`
}

// SettingsResponse состояние экрана настроек после нажатия кнопки
type SettingsResponse struct {
	SessionID string   `json:"session_id"`
	Editing   bool     `json:"editing"`          // Режим редактирования запасного номера
	Field     string   `json:"field"`            // Новое содержимое поля ввода
	Spoken    []string `json:"spoken,omitempty"` // Произнесенные фразы
	Notice    string   `json:"notice,omitempty"` // Короткое уведомление на экране
}
