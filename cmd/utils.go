package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/httprunner/OpenActivity/internal/config"
	"github.com/httprunner/OpenActivity/internal/sdk"
)

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func projectDir() string {
	return firstNonEmpty(rootProject, config.String(config.EnvProjectDir, ""), ".")
}

func sdkLocator() sdk.Locator {
	return sdk.Locator{Override: rootSDK, ProjectDir: projectDir()}
}

func adbTimeout() (time.Duration, error) {
	if val := strings.TrimSpace(rootTimeout); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid --timeout %q", val)
		}
		return parsed, nil
	}
	return config.Duration(config.EnvADBTimeout, 0)
}
