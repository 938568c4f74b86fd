package sdk

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/httprunner/OpenActivity/internal/config"
	"github.com/httprunner/OpenActivity/internal/env"
)

const (
	localPropertiesFile = "local.properties"
	sdkDirKey           = "sdk.dir"
)

// Locator finds the Android SDK root: explicit override first, then the
// ANDROID_HOME / ANDROID_SDK_ROOT environment, then sdk.dir from the project's
// local.properties.
type Locator struct {
	Override   string
	ProjectDir string
}

// ToolRootPath returns the SDK root, or false when none is configured.
func (l Locator) ToolRootPath() (string, bool) {
	if path := strings.TrimSpace(l.Override); path != "" {
		return path, true
	}
	for _, key := range []string{config.EnvAndroidHome, config.EnvAndroidSDKRoot} {
		if path := config.String(key, ""); path != "" {
			log.Debug().Str("env", key).Str("sdk", path).Msg("android sdk from environment")
			return path, true
		}
	}
	if l.ProjectDir == "" {
		return "", false
	}
	path, err := fromLocalProperties(l.ProjectDir)
	if err != nil {
		log.Warn().Err(err).Str("project", l.ProjectDir).Msg("read local.properties failed")
		return "", false
	}
	return path, path != ""
}

func fromLocalProperties(projectDir string) (string, error) {
	file, err := env.FindUp(projectDir, localPropertiesFile)
	if err != nil || file == "" {
		return "", err
	}
	values, err := env.ReadFile(file)
	if err != nil {
		return "", err
	}
	path := unescapeProperty(strings.TrimSpace(values[sdkDirKey]))
	if path != "" {
		log.Debug().Str("file", file).Str("sdk", path).Msg("android sdk from local.properties")
	}
	return path, nil
}

// Android Studio escapes ':' and '\' when it writes Windows paths.
func unescapeProperty(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if value[i] == '\\' && i+1 < len(value) {
			i++
		}
		b.WriteByte(value[i])
	}
	return b.String()
}
