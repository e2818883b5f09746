// Package config resolves renderer defaults from the environment. A
// .env file in the working directory is folded in first, so local
// setups can pin page geometry without exporting anything.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	PageWidth  int
	PageHeight int
	Border     int
	Overlap    int

	MaxScale float64
	MinScale float64

	Background string
	Stroke     string
	Fill       string
	LineWidth  float64

	OutPattern string
}

// LoadConfig reads MAPSHEET_* variables, falling back to A4 at 300
// dpi with a white background and black hairline strokes. MaxScale 0
// means single-page fitting rather than pagination.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		PageWidth:  getEnvAsInt("MAPSHEET_PAGE_WIDTH", 2480),
		PageHeight: getEnvAsInt("MAPSHEET_PAGE_HEIGHT", 3508),
		Border:     getEnvAsInt("MAPSHEET_BORDER", 24),
		Overlap:    getEnvAsInt("MAPSHEET_OVERLAP", 48),

		MaxScale: getEnvAsFloat("MAPSHEET_MAX_SCALE", 0),
		MinScale: getEnvAsFloat("MAPSHEET_MIN_SCALE", 0),

		Background: getEnv("MAPSHEET_BACKGROUND", "#ffffff"),
		Stroke:     getEnv("MAPSHEET_STROKE", "#000000"),
		Fill:       getEnv("MAPSHEET_FILL", ""),
		LineWidth:  getEnvAsFloat("MAPSHEET_LINE_WIDTH", 1),

		OutPattern: getEnv("MAPSHEET_OUT_PATTERN", "sheet-%s.png"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}
