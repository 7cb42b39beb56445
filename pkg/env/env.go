// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package env reads typed settings from environment variables.
//
// Every getter follows the same contract: a missing variable yields the
// default unless required is set, and a value that does not parse is an
// error only when required (otherwise the default is used).
package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetAsString retrieves an environment variable as a string.
func GetAsString(key string, required bool, defaultValue string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		if required {
			return "", fmt.Errorf("required environment variable %s is not set", key)
		}

		return defaultValue, nil
	}

	return value, nil
}

// GetAsInt retrieves an environment variable as an integer.
func GetAsInt(key string, required bool, defaultValue int) (int, error) {
	return parse(key, required, defaultValue, "an integer", strconv.Atoi)
}

// GetAsBool retrieves an environment variable as a boolean. Besides the
// strconv spellings it accepts yes/no, y/n and on/off.
func GetAsBool(key string, required bool, defaultValue bool) (bool, error) {
	return parse(key, required, defaultValue, "a boolean", func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes", "y", "on":
			return true, nil
		case "false", "0", "no", "n", "off":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean %q", s)
		}
	})
}

// GetAsFloat retrieves an environment variable as a float64.
func GetAsFloat(key string, required bool, defaultValue float64) (float64, error) {
	return parse(key, required, defaultValue, "a number", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetAsDuration retrieves an environment variable as a time.Duration
// ("30s", "1m30s").
func GetAsDuration(key string, required bool, defaultValue time.Duration) (time.Duration, error) {
	return parse(key, required, defaultValue, "a duration", time.ParseDuration)
}

func parse[T any](key string, required bool, defaultValue T, what string, conv func(string) (T, error)) (T, error) {
	raw, err := GetAsString(key, required, "")
	if err != nil {
		var zero T
		return zero, err
	}

	if raw == "" {
		return defaultValue, nil
	}

	value, err := conv(strings.TrimSpace(raw))
	if err != nil {
		if required {
			var zero T
			return zero, fmt.Errorf("environment variable %s must be %s: %w", key, what, err)
		}

		return defaultValue, nil
	}

	return value, nil
}
