package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logg.SetLevel(logrus.InfoLevel)
	logg.SetOutput(os.Stdout)
}

// ApplyLogLevel sets the logger level from the loaded config. Unknown levels
// fall back to info.
func ApplyLogLevel(cfg *Config) {
	if cfg == nil {
		return
	}
	lvl, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logg.SetLevel(lvl)
}
