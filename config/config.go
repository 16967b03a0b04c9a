package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del tracker.
type Config struct {
	Tracker TrackerConfig `yaml:"tracker"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// TrackerConfig controla el comportamiento del scanner y del ledger.
type TrackerConfig struct {
	InitialCapital         float64 `yaml:"initial_capital"`
	MinEdge                float64 `yaml:"min_edge"`
	PollIntervalSeconds    int     `yaml:"poll_interval_seconds"`
	SettlementCheckSeconds int     `yaml:"settlement_check_seconds"`
	StatusReportSeconds    int     `yaml:"status_report_seconds"`
	MaxTradesPerHour       int     `yaml:"max_trades_per_hour"`
	MinTradeSpacingSeconds int     `yaml:"min_trade_spacing_seconds"`
	VolumeFloor            float64 `yaml:"volume_floor"`
	PriceBandLow           float64 `yaml:"price_band_low"`
	PriceBandHigh          float64 `yaml:"price_band_high"`
	MinPositionSize        float64 `yaml:"min_position_size"`
	MaxPositionFraction    float64 `yaml:"max_position_fraction"` // fracción del capital disponible
	KellyMultiplier        float64 `yaml:"kelly_multiplier"`
	KellyCap               float64 `yaml:"kelly_cap"`
}

// APIConfig contiene el base URL de la API de Gamma.
type APIConfig struct {
	GammaBase string `yaml:"gamma_base"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	StateFile  string `yaml:"state_file"`  // snapshot JSON del estado completo
	TradeLog   string `yaml:"trade_log"`   // eventos OPENED/SETTLED en JSONL
	ArchiveDSN string `yaml:"archive_dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Si el archivo YAML no existe se usan los defaults — el tracker funciona sin config.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// sin archivo: solo defaults
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// PollInterval devuelve el intervalo de polling como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Tracker.PollIntervalSeconds) * time.Second
}

// SettlementCheckInterval devuelve el intervalo de chequeo de settlements.
func (c *Config) SettlementCheckInterval() time.Duration {
	return time.Duration(c.Tracker.SettlementCheckSeconds) * time.Second
}

// StatusReportInterval devuelve cada cuánto se imprime el status report.
func (c *Config) StatusReportInterval() time.Duration {
	return time.Duration(c.Tracker.StatusReportSeconds) * time.Second
}

// MinTradeSpacing devuelve el espaciado mínimo entre posiciones abiertas.
func (c *Config) MinTradeSpacing() time.Duration {
	return time.Duration(c.Tracker.MinTradeSpacingSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("GAMMA_BASE"); v != "" {
		cfg.API.GammaBase = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Tracker.InitialCapital <= 0 {
		cfg.Tracker.InitialCapital = 100.0
	}
	if cfg.Tracker.MinEdge <= 0 {
		cfg.Tracker.MinEdge = 0.03
	}
	if cfg.Tracker.PollIntervalSeconds <= 0 {
		cfg.Tracker.PollIntervalSeconds = 30
	}
	if cfg.Tracker.SettlementCheckSeconds <= 0 {
		cfg.Tracker.SettlementCheckSeconds = 60
	}
	if cfg.Tracker.StatusReportSeconds <= 0 {
		cfg.Tracker.StatusReportSeconds = 600
	}
	if cfg.Tracker.MaxTradesPerHour <= 0 {
		cfg.Tracker.MaxTradesPerHour = 5
	}
	if cfg.Tracker.MinTradeSpacingSeconds <= 0 {
		cfg.Tracker.MinTradeSpacingSeconds = 60
	}
	if cfg.Tracker.VolumeFloor <= 0 {
		cfg.Tracker.VolumeFloor = 50000
	}
	if cfg.Tracker.PriceBandLow <= 0 {
		cfg.Tracker.PriceBandLow = 0.08
	}
	if cfg.Tracker.PriceBandHigh <= 0 {
		cfg.Tracker.PriceBandHigh = 0.92
	}
	if cfg.Tracker.MinPositionSize <= 0 {
		cfg.Tracker.MinPositionSize = 5.0
	}
	if cfg.Tracker.MaxPositionFraction <= 0 {
		cfg.Tracker.MaxPositionFraction = 0.15
	}
	if cfg.Tracker.KellyMultiplier <= 0 {
		cfg.Tracker.KellyMultiplier = 2.5
	}
	if cfg.Tracker.KellyCap <= 0 {
		cfg.Tracker.KellyCap = 0.10
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.Storage.StateFile == "" {
		cfg.Storage.StateFile = "logs/real_settlement_state.json"
	}
	if cfg.Storage.TradeLog == "" {
		cfg.Storage.TradeLog = "logs/real_settlement_trades.jsonl"
	}
	if cfg.Storage.ArchiveDSN == "" {
		cfg.Storage.ArchiveDSN = "logs/settled_trades.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
