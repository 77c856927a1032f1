package strategyconfig

import (
	"github.com/wonny/aegis-panel/internal/consensus"
	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/internal/styles"
)

// Config는 분석 패널의 전체 정책 설정
type Config struct {
	Meta       Meta              `yaml:"meta" json:"meta"`
	Styles     StylesPolicy      `yaml:"styles" json:"styles"`
	Aggregator styles.Thresholds `yaml:"aggregator" json:"aggregator"`
	Consensus  consensus.Tiers   `yaml:"consensus" json:"consensus"`
	Fetch      Fetch             `yaml:"fetch" json:"fetch"`
	Narrative  Narrative         `yaml:"narrative" json:"narrative"`
}

// Meta 메타 정보
type Meta struct {
	PolicyID string `yaml:"policy_id" json:"policy_id"`
	Version  string `yaml:"version" json:"version"`
}

// StylesPolicy 패널에 참여하는 스타일 (순서 = 출력 순서)
type StylesPolicy struct {
	Enabled []contracts.Style `yaml:"enabled" json:"enabled"`
}

// Fetch 섹션별 조회 기간
type Fetch struct {
	PriceWindowDays   int `yaml:"price_window_days" json:"price_window_days"`
	InsiderWindowDays int `yaml:"insider_window_days" json:"insider_window_days"`
	NewsWindowDays    int `yaml:"news_window_days" json:"news_window_days"`
}

// Narrative 서술 생성기 관련 설정
type Narrative struct {
	// 규칙 기반 신뢰도와 이만큼 넘게 차이나면 경고 로그
	DisagreementTolerance int `yaml:"disagreement_tolerance" json:"disagreement_tolerance"`
}

// Default returns the built-in policy used when no file is configured
func Default() *Config {
	return &Config{
		Meta: Meta{PolicyID: "panel_default", Version: "1"},
		Styles: StylesPolicy{
			Enabled: styles.All(),
		},
		Aggregator: styles.DefaultThresholds(),
		Consensus:  consensus.DefaultTiers(),
		Fetch: Fetch{
			PriceWindowDays:   365,
			InsiderWindowDays: 180,
			NewsWindowDays:    90,
		},
		Narrative: Narrative{DisagreementTolerance: 25},
	}
}
