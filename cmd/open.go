package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	openactivity "github.com/httprunner/OpenActivity"
	"github.com/httprunner/OpenActivity/internal/config"
	"github.com/httprunner/OpenActivity/internal/project"
	"github.com/httprunner/OpenActivity/internal/providers/adb"
)

func runOpen(cmd *cobra.Command, args []string) error {
	timeout, err := adbTimeout()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter := openactivity.NewWriterReporter(cmd.ErrOrStderr())
	editor := firstNonEmpty(rootEditor, config.String(config.EnvEditor, ""))
	dir := projectDir()
	opener := project.NewOpener(dir, project.NewLauncher(editor, cmd.OutOrStdout()), reporter)
	defer opener.Close()

	log.Debug().Str("project", dir).Str("editor", editor).Dur("timeout", timeout).Msg("locating current activity")
	locator := openactivity.NewLocator(sdkLocator(), opener, reporter, bridgeFactory(timeout))
	return checkOutcomes(locator.Run(ctx))
}

func newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the focused activity of each device without opening anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, err := adbTimeout()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reporter := openactivity.NewWriterReporter(cmd.OutOrStdout())
			locator := openactivity.NewLocator(sdkLocator(), nopOpener{}, reporter, bridgeFactory(timeout))
			return checkOutcomes(locator.Run(ctx))
		},
	}
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the serials of attached devices and emulators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, err := adbTimeout()
			if err != nil {
				return err
			}
			sdkRoot, ok := sdkLocator().ToolRootPath()
			if !ok {
				return errors.New(openactivity.MsgNoSDK)
			}
			serials, err := adb.NewDefault(sdkRoot, timeout).ListDevices(cmd.Context())
			if err != nil {
				return errors.New(openactivity.Message(err))
			}
			return printLines(cmd.OutOrStdout(), serials)
		},
	}
}

func bridgeFactory(timeout time.Duration) openactivity.BridgeFactory {
	return func(sdkRoot string) openactivity.Bridge {
		return adb.NewDefault(sdkRoot, timeout)
	}
}

func checkOutcomes(outcomes []openactivity.Outcome) error {
	if len(outcomes) == 0 {
		return errors.New("no activity resolved")
	}
	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d device lookups failed", failed, len(outcomes))
	}
	return nil
}

func printLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return errors.Wrap(err, "write output")
		}
	}
	return nil
}

type nopOpener struct{}

func (nopOpener) OpenSource(context.Context, string) {}
