package contracts

// DataQualityReport describes how complete an instrument's metrics are
// ⭐ SSOT: S0 → 평가 데이터 품질 정보 전달
type DataQualityReport struct {
	Coverage     map[string]float64 `json:"coverage"`      // 섹션별 커버리지 0.0 ~ 1.0
	QualityScore float64            `json:"quality_score"` // 0.0 ~ 1.0
	Passed       bool               `json:"passed"`
	Thin         []string           `json:"thin,omitempty"` // 기준 미달 섹션
}

// CoverageRate returns the average coverage across all sections
func (d *DataQualityReport) CoverageRate() float64 {
	if d == nil || len(d.Coverage) == 0 {
		return 0.0
	}

	total := 0.0
	for _, rate := range d.Coverage {
		total += rate
	}

	return total / float64(len(d.Coverage))
}
