package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"camp-proximity/internal/models"
)

// Config carries every knob of a pipeline run. All values come from the
// environment (optionally via a .env file) with the defaults below.
type Config struct {
	InputFile    string
	FilteredFile string
	MapFile      string
	Camp         models.Coordinate
	ThresholdKm  float64
	ServerPort   string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() Config {
	_ = godotenv.Load()

	viper.SetDefault("INPUT_FILE", "geodetic_data.xlsx")
	viper.SetDefault("FILTERED_FILE", "filtered_geodetic_data.xlsx")
	viper.SetDefault("MAP_FILE", "camp_map.html")
	// Konakovo, Tverskaya Oblast', Russian Federation
	viper.SetDefault("CAMP_LAT", 56.7119)
	viper.SetDefault("CAMP_LON", 36.7614)
	viper.SetDefault("MAX_DISTANCE_KM", 5.0)
	viper.SetDefault("PORT", "9595")
	viper.AutomaticEnv()

	return Config{
		InputFile:    viper.GetString("INPUT_FILE"),
		FilteredFile: viper.GetString("FILTERED_FILE"),
		MapFile:      viper.GetString("MAP_FILE"),
		Camp: models.Coordinate{
			Lat: viper.GetFloat64("CAMP_LAT"),
			Lon: viper.GetFloat64("CAMP_LON"),
		},
		ThresholdKm: viper.GetFloat64("MAX_DISTANCE_KM"),
		ServerPort:  viper.GetString("PORT"),
	}
}
