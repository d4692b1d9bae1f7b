package config

import (
	"os"
	"strconv"
	"time"

	"github.com/battlesnakeio/gridsnake/rules"
	"golang.org/x/time/rate"
)

// Configuration variables. Command line flags take their defaults from these.
var (
	GridWidth     = getEnvInt("GRID_WIDTH", 20)
	GridHeight    = getEnvInt("GRID_HEIGHT", 20)
	TickInterval  = time.Duration(getEnvInt("TICK_MS", 100)) * time.Millisecond
	FrameInterval = time.Duration(getEnvInt("FRAME_MS", 16)) * time.Millisecond
	BorderPolicy  = getEnvPolicy("BORDER_POLICY", rules.Wrap)

	// Pace of the frame stream served to replay clients.
	StreamRate      = rate.Limit(getEnvInt("STREAM_RPS", 60))
	StreamBurstRate = getEnvInt("STREAM_BURST", 10)

	MaxOpenConns = getEnvInt("MAX_OPEN_CONNS", 20)
	MaxIdleConns = getEnvInt("MAX_IDLE_CONNS", 20)
)

func getEnvInt(varName string, defaults int) int {
	val := os.Getenv(varName)
	if val == "" {
		return defaults
	}
	intVal, err := strconv.ParseInt(val, 10, 32)
	if err != nil {
		return defaults
	}
	return int(intVal)
}

func getEnvPolicy(varName string, defaults rules.BorderPolicy) rules.BorderPolicy {
	p, err := rules.ParseBorderPolicy(os.Getenv(varName))
	if err != nil {
		return defaults
	}
	return p
}
