package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the analysis engine. Every heuristic
// threshold used by the engine lives here so it can be tuned without a
// rebuild; Default() gives the canonical values.
type Config struct {
	Horizons     []HorizonConfig    `mapstructure:"horizons" json:"horizons"`
	Scoring      ScoringConfig      `mapstructure:"scoring" json:"scoring"`
	Indicators   IndicatorConfig    `mapstructure:"indicators" json:"indicators"`
	Patterns     PatternConfig      `mapstructure:"patterns" json:"patterns"`
	Fundamentals FundamentalsConfig `mapstructure:"fundamentals" json:"fundamentals"`
	Logging      LoggingConfig      `mapstructure:"logging" json:"logging"`
	Redis        RedisConfig        `mapstructure:"redis" json:"redis"`
	Postgres     PostgresConfig     `mapstructure:"postgres" json:"postgres"`
}

// HorizonConfig describes one analysis horizon: which bar interval it runs
// on, how much history it wants, and the fixed risk/reward ratio its
// entry/exit strategy reports.
type HorizonConfig struct {
	Horizon         string  `mapstructure:"horizon" json:"horizon"` // "short", "medium", "long"
	Interval        string  `mapstructure:"interval" json:"interval"`
	Lookback        int     `mapstructure:"lookback" json:"lookback"` // bars to request
	HoldingPeriod   string  `mapstructure:"holding_period" json:"holding_period"`
	Weight          float64 `mapstructure:"weight" json:"weight"` // consensus weight
	RiskRewardRatio float64 `mapstructure:"risk_reward_ratio" json:"risk_reward_ratio"`
}

// ScoringConfig holds the additive score contributions applied on top of the
// neutral base of 50. All contributions are summed then clamped to [0,100].
type ScoringConfig struct {
	RSIOversold     float64 `mapstructure:"rsi_oversold" json:"rsi_oversold"`           // RSI < 30
	RSINearOversold float64 `mapstructure:"rsi_near_oversold" json:"rsi_near_oversold"` // 30 <= RSI < 40
	RSIOverbought   float64 `mapstructure:"rsi_overbought" json:"rsi_overbought"`       // RSI > 70
	RSINearOverbght float64 `mapstructure:"rsi_near_overbought" json:"rsi_near_overbought"` // 60 <= RSI <= 70
	MACDCross       float64 `mapstructure:"macd_cross" json:"macd_cross"`
	MACDSide        float64 `mapstructure:"macd_side" json:"macd_side"`
	BollingerLower  float64 `mapstructure:"bollinger_lower" json:"bollinger_lower"`
	BollingerUpper  float64 `mapstructure:"bollinger_upper" json:"bollinger_upper"`
	SMA20Side       float64 `mapstructure:"sma20_side" json:"sma20_side"`
	FullAlignment   float64 `mapstructure:"full_alignment" json:"full_alignment"`
	PatternWeight   float64 `mapstructure:"pattern_weight" json:"pattern_weight"`
	MinBars         int     `mapstructure:"min_bars" json:"min_bars"` // below this, neutral result
	StrongBuyScore  float64 `mapstructure:"strong_buy_score" json:"strong_buy_score"`
	BuyScore        float64 `mapstructure:"buy_score" json:"buy_score"`
	SellScore       float64 `mapstructure:"sell_score" json:"sell_score"`
	StrongSellScore float64 `mapstructure:"strong_sell_score" json:"strong_sell_score"`
}

// IndicatorConfig holds warm-up periods for the indicator engine.
type IndicatorConfig struct {
	SMAPeriods      []int   `mapstructure:"sma_periods" json:"sma_periods"`
	EMAPeriods      []int   `mapstructure:"ema_periods" json:"ema_periods"`
	RSIPeriod       int     `mapstructure:"rsi_period" json:"rsi_period"`
	RSIExtraPeriods []int   `mapstructure:"rsi_extra_periods" json:"rsi_extra_periods"`
	MACDFast        int     `mapstructure:"macd_fast" json:"macd_fast"`
	MACDSlow        int     `mapstructure:"macd_slow" json:"macd_slow"`
	MACDSignal      int     `mapstructure:"macd_signal" json:"macd_signal"`
	BandPeriod      int     `mapstructure:"band_period" json:"band_period"` // Bollinger/Keltner/Donchian
	BandMultiplier  float64 `mapstructure:"band_multiplier" json:"band_multiplier"`
	ATRPeriod       int     `mapstructure:"atr_period" json:"atr_period"`
	ADXPeriod       int     `mapstructure:"adx_period" json:"adx_period"`
	StochK          int     `mapstructure:"stoch_k" json:"stoch_k"`
	StochD          int     `mapstructure:"stoch_d" json:"stoch_d"`
	CCIPeriod       int     `mapstructure:"cci_period" json:"cci_period"`
	WilliamsPeriod  int     `mapstructure:"williams_period" json:"williams_period"`
	MFIPeriod       int     `mapstructure:"mfi_period" json:"mfi_period"`
	CMFPeriod       int     `mapstructure:"cmf_period" json:"cmf_period"`
	ROCPeriod       int     `mapstructure:"roc_period" json:"roc_period"`
	MomentumPeriod  int     `mapstructure:"momentum_period" json:"momentum_period"`
	AroonPeriod     int     `mapstructure:"aroon_period" json:"aroon_period"`
	SARStart        float64 `mapstructure:"sar_start" json:"sar_start"`
	SARStep         float64 `mapstructure:"sar_step" json:"sar_step"`
	SARMax          float64 `mapstructure:"sar_max" json:"sar_max"`
}

// PatternConfig holds tolerances for the geometry matchers.
type PatternConfig struct {
	MinBars         int     `mapstructure:"min_bars" json:"min_bars"`
	ExtremaWindow   int     `mapstructure:"extrema_window" json:"extrema_window"`
	PriceTolerance  float64 `mapstructure:"price_tolerance" json:"price_tolerance"`   // "same level" threshold
	HeadProminence  float64 `mapstructure:"head_prominence" json:"head_prominence"`   // head vs shoulder excess
	ShoulderBalance float64 `mapstructure:"shoulder_balance" json:"shoulder_balance"` // allowed shoulder mismatch
	GapThreshold    float64 `mapstructure:"gap_threshold" json:"gap_threshold"`
	GapLookback     int     `mapstructure:"gap_lookback" json:"gap_lookback"`
}

// FundamentalsConfig controls the technical/fundamental blend.
type FundamentalsConfig struct {
	Enabled           bool    `mapstructure:"enabled" json:"enabled"`
	TechnicalWeight   float64 `mapstructure:"technical_weight" json:"technical_weight"`
	FundamentalWeight float64 `mapstructure:"fundamental_weight" json:"fundamental_weight"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level"`   // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty" json:"pretty"` // console writer instead of JSON
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled" json:"enabled"`
	Address  string        `mapstructure:"address" json:"address"`
	Password string        `mapstructure:"password" json:"password"`
	DB       int           `mapstructure:"db" json:"db"`
	PoolSize int           `mapstructure:"pool_size" json:"pool_size"`
	TTL      time.Duration `mapstructure:"ttl" json:"ttl"`
}

type PostgresConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	URL     string `mapstructure:"url" json:"url"`
}

// Default returns the canonical configuration.
func Default() *Config {
	return &Config{
		Horizons: []HorizonConfig{
			{Horizon: "short", Interval: "1h", Lookback: 168, HoldingPeriod: "1-4 weeks", Weight: 1.0, RiskRewardRatio: 1.33},
			{Horizon: "medium", Interval: "1d", Lookback: 126, HoldingPeriod: "3-6 months", Weight: 1.0, RiskRewardRatio: 2.0},
			{Horizon: "long", Interval: "1wk", Lookback: 104, HoldingPeriod: "1+ years", Weight: 1.0, RiskRewardRatio: 3.0},
		},
		Scoring: ScoringConfig{
			RSIOversold:     20,
			RSINearOversold: 10,
			RSIOverbought:   -20,
			RSINearOverbght: -5,
			MACDCross:       15,
			MACDSide:        5,
			BollingerLower:  15,
			BollingerUpper:  -10,
			SMA20Side:       5,
			FullAlignment:   10,
			PatternWeight:   15,
			MinBars:         30,
			StrongBuyScore:  85,
			BuyScore:        70,
			SellScore:       30,
			StrongSellScore: 15,
		},
		Indicators: IndicatorConfig{
			SMAPeriods:      []int{5, 10, 20, 50, 60, 100, 120, 200},
			EMAPeriods:      []int{9, 12, 20, 26, 50, 200},
			RSIPeriod:       14,
			RSIExtraPeriods: []int{9, 25},
			MACDFast:        12,
			MACDSlow:        26,
			MACDSignal:      9,
			BandPeriod:      20,
			BandMultiplier:  2.0,
			ATRPeriod:       14,
			ADXPeriod:       14,
			StochK:          14,
			StochD:          3,
			CCIPeriod:       20,
			WilliamsPeriod:  14,
			MFIPeriod:       14,
			CMFPeriod:       20,
			ROCPeriod:       12,
			MomentumPeriod:  10,
			AroonPeriod:     25,
			SARStart:        0.02,
			SARStep:         0.02,
			SARMax:          0.20,
		},
		Patterns: PatternConfig{
			MinBars:         60,
			ExtremaWindow:   5,
			PriceTolerance:  0.02,
			HeadProminence:  0.02,
			ShoulderBalance: 0.05,
			GapThreshold:    0.01,
			GapLookback:     10,
		},
		Fundamentals: FundamentalsConfig{
			Enabled:           false,
			TechnicalWeight:   0.6,
			FundamentalWeight: 0.4,
		},
		Logging: LoggingConfig{Level: "info"},
		Redis: RedisConfig{
			Address:  "localhost:6379",
			PoolSize: 10,
			TTL:      15 * time.Minute,
		},
		Postgres: PostgresConfig{URL: "postgres://localhost:5432/stock_analyst"},
	}
}

// Load reads config.yaml from the given directory and overlays it on the
// defaults. A missing file is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvPrefix("ANALYST")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if len(c.Horizons) == 0 {
		return fmt.Errorf("at least one horizon must be configured")
	}
	for _, h := range c.Horizons {
		if h.Lookback <= 0 {
			return fmt.Errorf("horizon %q: lookback must be positive", h.Horizon)
		}
	}
	wfund := c.Fundamentals.TechnicalWeight + c.Fundamentals.FundamentalWeight
	if c.Fundamentals.Enabled && (wfund < 0.99 || wfund > 1.01) {
		return fmt.Errorf("fundamentals blend weights must sum to 1.0, got %.2f", wfund)
	}
	if c.Patterns.ExtremaWindow < 1 {
		return fmt.Errorf("patterns: extrema window must be at least 1")
	}
	return nil
}
