package openactivity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/httprunner/OpenActivity/internal/providers/adb"
)

// User-visible status messages.
const (
	MsgNoSDK        = "Could not find the path for the Android SDK.  Have you configured it?"
	MsgParseFailure = "Could not parse adb output"
	MsgNoDevices    = "Could not find any devices or emulators"
	MsgGeneric      = "Something went wrong!"
)

// SDKPathProvider resolves the Android SDK root.
type SDKPathProvider interface {
	ToolRootPath() (string, bool)
}

// SourceOpener opens the source file for a class given its simple name.
type SourceOpener interface {
	OpenSource(ctx context.Context, simpleName string)
}

// Reporter shows a status message to the user.
type Reporter interface {
	Report(message string)
}

// Bridge is the adb surface the Locator needs.
type Bridge interface {
	CurrentActivity(ctx context.Context, serial string) (adb.Activity, error)
	ListDevices(ctx context.Context) ([]string, error)
}

// BridgeFactory builds a Bridge for the SDK rooted at sdkRoot.
type BridgeFactory func(sdkRoot string) Bridge

// Outcome is the result of resolving the focused activity on one device scope.
// Serial is empty for the unscoped attempt.
type Outcome struct {
	Serial   string
	Activity adb.Activity
	Err      error
}

// Locator finds the focused activity on the attached devices and opens its source.
type Locator struct {
	sdk       SDKPathProvider
	opener    SourceOpener
	reporter  Reporter
	newBridge BridgeFactory
}

// NewLocator wires a Locator. A nil factory selects the adb binary of the SDK.
func NewLocator(sdk SDKPathProvider, opener SourceOpener, reporter Reporter, newBridge BridgeFactory) *Locator {
	if newBridge == nil {
		newBridge = func(sdkRoot string) Bridge { return adb.NewDefault(sdkRoot, 0) }
	}
	return &Locator{sdk: sdk, opener: opener, reporter: reporter, newBridge: newBridge}
}

// Run resolves the focused activity: first without a device, then once per
// device when adb reports more than one. Per-device outcomes are returned in
// device order. A nil result means nothing was attempted.
func (l *Locator) Run(ctx context.Context) []Outcome {
	logger := log.With().Str("run_id", uuid.NewString()).Logger()

	sdkRoot, ok := l.sdk.ToolRootPath()
	if !ok {
		logger.Warn().Msg("could not find android sdk path")
		l.reporter.Report(MsgNoSDK)
		return nil
	}
	bridge := l.newBridge(sdkRoot)

	activity, err := bridge.CurrentActivity(ctx, "")
	if err == nil {
		l.opened(ctx, "", activity, logger)
		return []Outcome{{Activity: activity}}
	}
	if adb.KindOf(err) != adb.KindAmbiguousDevice {
		l.fail("", err, logger)
		return []Outcome{{Err: err}}
	}

	logger.Info().Msg("multiple devices detected, get the list and try again")
	serials, err := bridge.ListDevices(ctx)
	if err != nil {
		if adb.KindOf(err) == adb.KindNoDevices {
			// adb claimed several devices a moment ago
			logger.Error().Err(err).Msg("got no devices right after a multiple devices message")
			l.reporter.Report(MsgGeneric)
		} else {
			l.fail("", err, logger)
		}
		return []Outcome{{Err: err}}
	}

	outcomes := make([]Outcome, 0, len(serials))
	for _, serial := range serials {
		devLogger := logger.With().Str("serial", serial).Logger()
		activity, err := bridge.CurrentActivity(ctx, serial)
		if err != nil {
			if adb.KindOf(err) == adb.KindAmbiguousDevice {
				devLogger.Error().Err(err).Msg("got a multiple devices message when passing a device id")
			}
			l.fail(serial, err, devLogger)
			outcomes = append(outcomes, Outcome{Serial: serial, Err: err})
			continue
		}
		l.opened(ctx, serial, activity, devLogger)
		outcomes = append(outcomes, Outcome{Serial: serial, Activity: activity})
	}
	return outcomes
}

func (l *Locator) opened(ctx context.Context, serial string, activity adb.Activity, logger zerolog.Logger) {
	logger.Info().Str("activity", activity.String()).Msg("current activity resolved")
	l.reporter.Report(withSerial(serial, "Current activity: "+activity.Class))
	l.opener.OpenSource(ctx, activity.SimpleName())
}

func (l *Locator) fail(serial string, err error, logger zerolog.Logger) {
	if adb.KindOf(err) == adb.KindParse {
		logger.Error().Err(err).Msg("could not parse adb output")
	} else {
		logger.Warn().Err(err).Msg("could not resolve current activity")
	}
	l.reporter.Report(withSerial(serial, Message(err)))
}

// Message translates an adb failure into the text shown to the user.
func Message(err error) string {
	var adbErr *adb.Error
	if !errors.As(err, &adbErr) {
		return MsgGeneric
	}
	switch adbErr.Kind {
	case adb.KindExecution:
		cause := error(adbErr)
		if adbErr.Err != nil {
			cause = errors.Cause(adbErr.Err)
		}
		return fmt.Sprintf("Could not execute adb (%s)", cause.Error())
	case adb.KindNoDevices:
		return MsgNoDevices
	case adb.KindParse:
		return MsgParseFailure
	case adb.KindAmbiguousDevice, adb.KindUnknown:
		return MsgGeneric
	default:
		return MsgGeneric
	}
}

func withSerial(serial, message string) string {
	if serial == "" {
		return message
	}
	return serial + ": " + message
}
