// Package logger 提供基于 logrus 的日志器
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New 创建日志器
// level: debug/info/warn/error，format: text/json
func New(level, format string, disableTimestamp bool) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stdout

	switch strings.ToLower(format) {
	case "json":
		log.Formatter = &logrus.JSONFormatter{DisableTimestamp: disableTimestamp}
	default:
		log.Formatter = &logrus.TextFormatter{
			DisableTimestamp: disableTimestamp,
			FullTimestamp:    true,
		}
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl
	return log
}

// Discard 返回丢弃所有输出的日志器，供测试使用
func Discard() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}
