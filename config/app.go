package config

import (
	"os"
	"strconv"
	"time"
)

// Tunables for the batch drivers. Every knob has a default so the
// daemons come up without any environment at all.

func EvaluatorBatchSize() int {
	return envInt("EVALUATOR_BATCH_SIZE", 200)
}

func EvaluatorTimeBudget() time.Duration {
	return envDuration("EVALUATOR_TIME_BUDGET", 20*time.Second)
}

func EvaluatorAttemptCap() int64 {
	return int64(envInt("EVALUATOR_ATTEMPT_CAP", 5))
}

// EvaluatorStaleAfter is how long a triggering row may sit before a
// later run treats it as a crashed attempt and reclaims it.
func EvaluatorStaleAfter() time.Duration {
	return envDuration("EVALUATOR_STALE_AFTER", 2*time.Minute)
}

func EvaluatorInterval() time.Duration {
	return envDuration("EVALUATOR_INTERVAL", 5*time.Second)
}

func TwapInterval() time.Duration {
	return envDuration("TWAP_INTERVAL", 10*time.Second)
}

func ReconInterval() time.Duration {
	return envDuration("RECON_INTERVAL", 10*time.Minute)
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}

	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}

	return v
}
