package output

// SummaryInfo: сводка ключевых показателей команды.
type SummaryInfo struct {
	KeyMetrics    []KeyMetric `json:"key_metrics,omitempty"`
	WarningsCount int         `json:"warnings_count"`
	Warnings      []string    `json:"warnings,omitempty"`
}

// KeyMetric: одна метрика сводки, например "Исключено каталогов: 4".
type KeyMetric struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// NewSummaryInfo создаёт пустую сводку.
func NewSummaryInfo() *SummaryInfo {
	return &SummaryInfo{
		KeyMetrics: make([]KeyMetric, 0),
		Warnings:   make([]string, 0),
	}
}

// AddMetric добавляет метрику.
func (s *SummaryInfo) AddMetric(name, value, unit string) {
	s.KeyMetrics = append(s.KeyMetrics, KeyMetric{Name: name, Value: value, Unit: unit})
}

// AddWarning добавляет предупреждение.
func (s *SummaryInfo) AddWarning(msg string) {
	s.Warnings = append(s.Warnings, msg)
	s.WarningsCount++
}
