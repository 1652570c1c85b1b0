package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	LabelFile string
	LogMode   string
	Web       WebConfig
	Capture   CaptureConfig
	Overlay   OverlayConfig
	Export    ExportConfig
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // extra CORS origins besides localhost
}

type CaptureConfig struct {
	Extensions   []string // case-sensitive filename suffixes that qualify as images
	AnchorMargin int      // pixels reserved at the right/bottom edge for a new anchor
}

type OverlayConfig struct {
	Person string `yaml:"person" json:"person"` // person rectangle and index colour
	Dorsal string `yaml:"dorsal" json:"dorsal"` // dorsal rectangle and number colour
	Live   string `yaml:"live" json:"live"`     // rectangle currently being dragged
}

type ExportConfig struct {
	Format  string `yaml:"format"`
	Quality int    `yaml:"quality"`
}

// defaultsFile mirrors defaults.yaml.
type defaultsFile struct {
	Extensions   []string      `yaml:"extensions"`
	AnchorMargin int           `yaml:"anchor_margin"`
	LogMode      string        `yaml:"log_mode"`
	Overlay      OverlayConfig `yaml:"overlay"`
	Export       ExportConfig  `yaml:"export"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString returns the environment variable or the default when unset.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping blanks.
func envList(key string) []string {
	var out []string
	for v := range strings.SplitSeq(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Load builds the configuration from the environment over the embedded defaults.
func Load() *Config {
	var defaults defaultsFile
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	extensions := defaults.Extensions
	if env := envList("LABELER_EXTENSIONS"); len(env) > 0 {
		extensions = env
	}

	// Zero is a valid margin, so it cannot go through envInt.
	margin := defaults.AnchorMargin
	if s := os.Getenv("LABELER_ANCHOR_MARGIN"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			margin = n
		}
	}

	return &Config{
		LabelFile: os.Getenv("LABELER_FILE"),
		LogMode:   envString("LABELER_LOG_MODE", defaults.LogMode),
		Web: WebConfig{
			Host:           os.Getenv("WEB_HOST"),
			Port:           envInt("WEB_PORT", 0),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Capture: CaptureConfig{
			Extensions:   extensions,
			AnchorMargin: margin,
		},
		Overlay: defaults.Overlay,
		Export: ExportConfig{
			Format:  envString("LABELER_EXPORT_FORMAT", defaults.Export.Format),
			Quality: envInt("LABELER_EXPORT_QUALITY", defaults.Export.Quality),
		},
	}
}

// ParseHexColor parses "#rrggbb" into an opaque colour.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
