package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func Init() {
	log = logrus.New()
	log.SetOutput(os.Stdout)

	if os.Getenv("ENVIRONMENT") == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		log.SetLevel(logrus.DebugLevel)
	}
}

func Info(args ...interface{}) {
	get().Info(args...)
}

func Error(args ...interface{}) {
	get().Error(args...)
}

func Debug(args ...interface{}) {
	get().Debug(args...)
}

func Warn(args ...interface{}) {
	get().Warn(args...)
}

func Fatal(args ...interface{}) {
	get().Fatal(args...)
}

func get() *logrus.Logger {
	if log == nil {
		Init()
	}
	return log
}
