package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	APIBase            string
	Port               string
	SessionFile        string
	PendingAssetDir    string
	PlaceholderImage   string
	GeocodeBase        string
	PlacesBase         string
	HTTPTimeout        time.Duration
	CitySearchDebounce time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		APIBase:            getEnvOrDefault("API_BASE", ""),
		Port:               getEnvOrDefault("PORT", "8080"),
		SessionFile:        getEnvOrDefault("SESSION_FILE", "./data/session.json"),
		PendingAssetDir:    getEnvOrDefault("PENDING_ASSET_DIR", "./data/pending"),
		PlaceholderImage:   getEnvOrDefault("PLACEHOLDER_IMAGE", "https://via.placeholder.com/400x300?text=No+Image"),
		GeocodeBase:        getEnvOrDefault("GEOCODE_BASE", "https://api.bigdatacloud.net"),
		PlacesBase:         getEnvOrDefault("PLACES_BASE", "https://nominatim.openstreetmap.org"),
		HTTPTimeout:        getDurationEnv("HTTP_TIMEOUT", 30, time.Second),
		CitySearchDebounce: getDurationEnv("CITY_SEARCH_DEBOUNCE", 300, time.Millisecond),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
