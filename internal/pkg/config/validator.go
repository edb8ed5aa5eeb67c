package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// scheduleParser accepts the standard five-field cron format.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks that schedule is a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}
	if _, err := scheduleParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// ValidateTimezone checks that timezone is a loadable IANA name.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}
	return nil
}

// ValidateDuration checks min <= d <= max.
func ValidateDuration(d, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}
	if d < min {
		return fmt.Errorf("duration %v is below minimum %v", d, min)
	}
	if d > max {
		return fmt.Errorf("duration %v exceeds maximum %v", d, max)
	}
	return nil
}

// ValidateIntRange checks min <= value <= max.
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}
	if value < min {
		return fmt.Errorf("value %d is below minimum %d", value, min)
	}
	if value > max {
		return fmt.Errorf("value %d exceeds maximum %d", value, max)
	}
	return nil
}

// ValidateOutputDir checks that dir is non-empty and, if it already exists, is a directory.
// A missing directory is fine; writers create it on first use.
func ValidateOutputDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	info, err := os.Stat(filepath.Clean(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("output directory '%s': %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory '%s' is not a directory", dir)
	}
	return nil
}
