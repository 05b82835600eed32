package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitLoggerHonorsLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	InitLogger()
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}

	t.Setenv("LOG_LEVEL", "error")
	InitLogger()
	if GetLogger().Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info level to be disabled")
	}
}

func TestInitLoggerIgnoresBadLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shouting")
	InitLogger()
	l := GetLogger()
	if l == nil {
		t.Fatal("expected a logger")
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected default info level")
	}
}
