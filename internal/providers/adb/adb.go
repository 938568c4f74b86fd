package adb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	devicesArgs         = []string{"devices"}
	currentActivityArgs = []string{"shell", "dumpsys", "activity", "activities"}
)

// Provider answers device questions by running adb through a Runner.
type Provider struct {
	runner Runner
}

// New creates a Provider backed by the given runner.
func New(runner Runner) *Provider {
	return &Provider{runner: runner}
}

// NewDefault creates a Provider running the adb binary found under sdkRoot.
func NewDefault(sdkRoot string, timeout time.Duration) *Provider {
	path := ToolPath(sdkRoot)
	log.Debug().Str("adb", path).Msg("using adb")
	return New(NewExecRunner(path, timeout))
}

// ListDevices returns the serials printed by `adb devices`, in output order.
func (p *Provider) ListDevices(ctx context.Context) ([]string, error) {
	if p == nil || p.runner == nil {
		return nil, executionError(errors.New("adb provider is nil"), "")
	}
	serials := make([]string, 0, 4)
	for line, err := range p.runner.Lines(ctx, "", devicesArgs...) {
		if err != nil {
			return nil, err
		}
		sig := Classify(line)
		if sig.Kind != SignalDeviceListEntry {
			continue
		}
		log.Debug().Str("serial", sig.Serial).Str("state", sig.State).Msg("adb device listed")
		serials = append(serials, sig.Serial)
	}
	if len(serials) == 0 {
		return nil, &Error{Kind: KindNoDevices, Detail: "could not find devices in the output"}
	}
	return serials, nil
}

// CurrentActivity returns the focused activity, scoped to serial when it is non-empty.
func (p *Provider) CurrentActivity(ctx context.Context, serial string) (Activity, error) {
	if p == nil || p.runner == nil {
		return Activity{}, executionError(errors.New("adb provider is nil"), "")
	}
	for line, err := range p.runner.Lines(ctx, serial, currentActivityArgs...) {
		if err != nil {
			return Activity{}, err
		}
		switch sig := Classify(line); sig.Kind {
		case SignalMultipleDevices:
			return Activity{}, &Error{Kind: KindAmbiguousDevice, Detail: "more than one device/emulator"}
		case SignalDeviceNotFound:
			return Activity{}, &Error{Kind: KindNoDevices, Detail: "device not found"}
		case SignalActivityUnparsable:
			log.Error().Str("serial", serial).Str("line", line).Msg("could not find the focused activity in the line")
			return Activity{}, parseError("could not find the focused activity in the line")
		case SignalFocusedActivity:
			log.Info().Str("serial", serial).Str("activity", sig.Activity.String()).Msg("focused activity found")
			return sig.Activity, nil
		}
	}
	return Activity{}, parseError("no focused activity found in output")
}
