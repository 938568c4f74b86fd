package adb

import (
	"context"
	"iter"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerCall struct {
	serial string
	args   []string
}

// stubRunner replays canned output and records how far each stream was read.
type stubRunner struct {
	lines  []string
	err    error
	calls  []runnerCall
	pulled int
}

func (r *stubRunner) Lines(ctx context.Context, serial string, args ...string) iter.Seq2[string, error] {
	r.calls = append(r.calls, runnerCall{serial: serial, args: args})
	return func(yield func(string, error) bool) {
		for _, line := range r.lines {
			r.pulled++
			if !yield(line, nil) {
				return
			}
		}
		if r.err != nil {
			yield("", r.err)
		}
	}
}

func TestListDevicesKeepsOutputOrder(t *testing.T) {
	runner := &stubRunner{lines: []string{
		"List of devices attached",
		"emulator-5554   device",
		"emulator-5556   device",
		"",
	}}
	serials, err := New(runner).ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"emulator-5554", "emulator-5556"}, serials)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "", runner.calls[0].serial)
	assert.Equal(t, []string{"devices"}, runner.calls[0].args)
}

func TestListDevicesIgnoresResolverSignals(t *testing.T) {
	runner := &stubRunner{lines: []string{
		"* daemon not running; starting now at tcp:5037",
		"* daemon started successfully",
		"List of devices attached",
		"more than one device",
		"error: device not found",
		"mFocusedActivity: broken",
		"R58M123ABC\tunauthorized",
	}}
	serials, err := New(runner).ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"R58M123ABC"}, serials)
}

func TestListDevicesNoDevices(t *testing.T) {
	for name, lines := range map[string][]string{
		"header only": {"List of devices attached", ""},
		"empty":       nil,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := New(&stubRunner{lines: lines}).ListDevices(context.Background())
			require.Error(t, err)
			assert.Equal(t, KindNoDevices, KindOf(err))
		})
	}
}

func TestListDevicesPropagatesExecutionFailure(t *testing.T) {
	launchErr := executionError(errors.New("exec: \"adb\": executable file not found in $PATH"), "")
	_, err := New(&stubRunner{err: launchErr}).ListDevices(context.Background())
	require.Error(t, err)
	assert.Same(t, launchErr, err)
	assert.Equal(t, KindExecution, KindOf(err))
}

func TestCurrentActivityFound(t *testing.T) {
	runner := &stubRunner{lines: []string{
		"ACTIVITY MANAGER ACTIVITIES (dumpsys activity activities)",
		"Display #0 (activities from top to bottom):",
		"  mFocusedActivity: ActivityRecord{42b5d5f8 u0 com.example.app/com.example.app.MainActivity t12}",
		"  mFocusedActivity: ActivityRecord{1 u0 com.other/com.other.Second t13}",
	}}
	activity, err := New(runner).CurrentActivity(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Activity{Package: "com.example.app", Class: "com.example.app.MainActivity"}, activity)
	assert.Equal(t, 3, runner.pulled, "lines after the first focused activity must not be read")
	assert.Equal(t, []string{"shell", "dumpsys", "activity", "activities"}, runner.calls[0].args)
}

func TestCurrentActivityScopedToSerial(t *testing.T) {
	runner := &stubRunner{lines: []string{
		"    mResumedActivity: ActivityRecord{8d1c2e u0 org.jraf.demo/.ui.HomeActivity t31}",
	}}
	activity, err := New(runner).CurrentActivity(context.Background(), "emulator-5556")
	require.NoError(t, err)
	assert.Equal(t, "HomeActivity", activity.SimpleName())
	assert.Equal(t, "emulator-5556", runner.calls[0].serial)
}

func TestCurrentActivityAmbiguousStopsScan(t *testing.T) {
	runner := &stubRunner{lines: []string{
		"adb: error: more than one device/emulator",
		"  mFocusedActivity: ActivityRecord{42b5d5f8 u0 com.example.app/com.example.app.MainActivity t12}",
	}}
	_, err := New(runner).CurrentActivity(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, KindAmbiguousDevice, KindOf(err))
	assert.Equal(t, 1, runner.pulled, "the sentinel after the ambiguity line must not be read")
}

func TestCurrentActivityDeviceNotFound(t *testing.T) {
	runner := &stubRunner{lines: []string{"adb: device 'emulator-5558' not found"}}
	_, err := New(runner).CurrentActivity(context.Background(), "emulator-5558")
	require.Error(t, err)
	assert.Equal(t, KindNoDevices, KindOf(err))
}

func TestCurrentActivityUnparsableLineIsFatal(t *testing.T) {
	runner := &stubRunner{lines: []string{
		"  mFocusedActivity: null",
		"  mFocusedActivity: ActivityRecord{42b5d5f8 u0 com.example.app/com.example.app.MainActivity t12}",
	}}
	_, err := New(runner).CurrentActivity(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, KindParse, KindOf(err))
	assert.Equal(t, 1, runner.pulled)
}

func TestCurrentActivityEndOfStream(t *testing.T) {
	runner := &stubRunner{lines: []string{
		"ACTIVITY MANAGER ACTIVITIES (dumpsys activity activities)",
		"List of devices attached",
	}}
	_, err := New(runner).CurrentActivity(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, KindParse, KindOf(err))
	assert.Contains(t, err.Error(), "no focused activity found in output")
}

func TestCurrentActivityPropagatesReadFailure(t *testing.T) {
	readErr := executionError(errors.New("read |0: file already closed"), "")
	runner := &stubRunner{lines: []string{"Display #0"}, err: readErr}
	_, err := New(runner).CurrentActivity(context.Background(), "")
	require.Error(t, err)
	assert.Same(t, readErr, err)
}

func TestNilProvider(t *testing.T) {
	var p *Provider
	_, err := p.ListDevices(context.Background())
	assert.Equal(t, KindExecution, KindOf(err))
	_, err = p.CurrentActivity(context.Background(), "")
	assert.Equal(t, KindExecution, KindOf(err))
}

func TestKindOfWrapped(t *testing.T) {
	err := errors.Wrap(&Error{Kind: KindParse}, "resolve")
	assert.Equal(t, KindParse, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
