package env

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/graphviz"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"io/fs"
)

const Prefix = "HCPN"

const (
	OutputKey   = "output"
	FormatKey   = "format"
	FontKey     = "font"
	RankDirKey  = "rankdir"
	LogLevelKey = "log_level"
	MaxStepsKey = "max_steps"
)

type Environment struct {
	Output   string
	Format   graphviz.Format
	Font     graphviz.Font
	RankDir  graphviz.RankDir
	LogLevel string
	MaxSteps int
}

func Default() *Environment {
	return &Environment{
		Output:   ".",
		Format:   graphviz.SVG,
		Font:     graphviz.Helvetica,
		RankDir:  graphviz.LeftToRight,
		LogLevel: "info",
		MaxSteps: hcpn.DefaultMaxSteps,
	}
}

// New loads the given .env files, or ./.env when none are given, and returns a viper instance reading HCPN_*
// variables with defaults set. Missing .env files are ignored.
func New(files ...string) (*viper.Viper, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	v.SetEnvPrefix(Prefix)
	v.AutomaticEnv()
	d := Default()
	v.SetDefault(OutputKey, d.Output)
	v.SetDefault(FormatKey, string(d.Format))
	v.SetDefault(FontKey, string(d.Font))
	v.SetDefault(RankDirKey, string(d.RankDir))
	v.SetDefault(LogLevelKey, d.LogLevel)
	v.SetDefault(MaxStepsKey, d.MaxSteps)
	return v, nil
}

var ErrInvalidSetting = errors.New("invalid setting")

// Load reads the settings out of v.
func Load(v *viper.Viper) (*Environment, error) {
	format, err := graphviz.ParseFormat(v.GetString(FormatKey))
	if err != nil {
		return nil, err
	}
	e := &Environment{
		Output:   v.GetString(OutputKey),
		Format:   format,
		Font:     graphviz.Font(v.GetString(FontKey)),
		RankDir:  graphviz.RankDir(v.GetString(RankDirKey)),
		LogLevel: v.GetString(LogLevelKey),
		MaxSteps: v.GetInt(MaxStepsKey),
	}
	switch e.RankDir {
	case graphviz.LeftToRight, graphviz.RightToLeft, graphviz.TopToBottom, graphviz.BottomToTop:
	default:
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, RankDirKey, e.RankDir)
	}
	if e.MaxSteps <= 0 {
		return nil, fmt.Errorf("%w: %s=%d", ErrInvalidSetting, MaxStepsKey, e.MaxSteps)
	}
	return e, nil
}

// Logger builds a development logger for the debug level and a production logger otherwise.
func (e *Environment) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(e.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, LogLevelKey, e.LogLevel)
	}
	cfg := zap.NewProductionConfig()
	if level.Level() == zap.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	return cfg.Build()
}
