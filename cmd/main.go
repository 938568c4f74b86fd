package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/httprunner/OpenActivity/internal/config"
	"github.com/httprunner/OpenActivity/internal/env"
)

var rootCmd = &cobra.Command{
	Use:   "openactivity",
	Short: "Open the source of the activity shown on an Android device",
	Long: `openactivity asks adb for the focused activity of every attached device or emulator
and opens the matching .java or .kt file of the project.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if rootVerbose || config.Bool(config.EnvVerbose, false) {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
	RunE: runOpen,
}

var (
	rootSDK     string
	rootProject string
	rootEditor  string
	rootTimeout string
	rootVerbose bool
)

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	_ = env.Ensure()

	rootCmd.PersistentFlags().StringVar(&rootSDK, "sdk", "", "Android SDK root, overrides $ANDROID_HOME / $ANDROID_SDK_ROOT")
	rootCmd.PersistentFlags().StringVar(&rootProject, "project", "", "Project directory searched for sources, overrides $OPENACTIVITY_PROJECT_DIR (default \".\")")
	rootCmd.PersistentFlags().StringVar(&rootTimeout, "timeout", "", "Per adb command timeout such as 20s, overrides $OPENACTIVITY_ADB_TIMEOUT (default none)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Log adb output at debug level")
	rootCmd.Flags().StringVar(&rootEditor, "editor", "", "Editor command the file path is appended to, overrides $OPENACTIVITY_EDITOR; prints paths when empty")
	rootCmd.AddCommand(
		newDevicesCmd(),
		newCurrentCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("openactivity command failed")
	}
}
