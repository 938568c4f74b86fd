package adb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		line string
		want Signal
	}{
		{
			name: "plain noise",
			line: "Running:",
			want: Signal{Kind: SignalNone},
		},
		{
			name: "empty line",
			line: "",
			want: Signal{Kind: SignalNone},
		},
		{
			name: "multiple devices",
			line: "adb: error: more than one device/emulator",
			want: Signal{Kind: SignalMultipleDevices},
		},
		{
			name: "multiple devices wins over other markers",
			line: "more than one device mFocusedActivity List com.a/com.a.B",
			want: Signal{Kind: SignalMultipleDevices},
		},
		{
			name: "device not found",
			line: "adb: error: device 'emulator-5558' not found",
			want: Signal{Kind: SignalDeviceNotFound},
		},
		{
			name: "adb error prefix is not a device entry",
			line: "adb: error: failed to get feature set",
			want: Signal{Kind: SignalNone},
		},
		{
			name: "adb server version mismatch is not a device entry",
			line: "adb server version (41) doesn't match this client (39); killing...",
			want: Signal{Kind: SignalNone},
		},
		{
			name: "legacy device not found",
			line: "error: device not found",
			want: Signal{Kind: SignalDeviceNotFound},
		},
		{
			name: "focused activity",
			line: "  mFocusedActivity: ActivityRecord{42b5d5f8 u0 com.example.app/com.example.app.MainActivity t12}",
			want: Signal{
				Kind:     SignalFocusedActivity,
				Activity: Activity{Package: "com.example.app", Class: "com.example.app.MainActivity"},
			},
		},
		{
			name: "resumed activity with relative class",
			line: "    mResumedActivity: ActivityRecord{8d1c2e u0 org.jraf.demo/.ui.HomeActivity t31}",
			want: Signal{
				Kind:     SignalFocusedActivity,
				Activity: Activity{Package: "org.jraf.demo", Class: ".ui.HomeActivity"},
			},
		},
		{
			name: "focused marker without package/class",
			line: "  mFocusedActivity: null",
			want: Signal{Kind: SignalActivityUnparsable},
		},
		{
			name: "device list header",
			line: "List of devices attached",
			want: Signal{Kind: SignalDeviceListHeader},
		},
		{
			name: "device list entry",
			line: "emulator-5554\tdevice",
			want: Signal{Kind: SignalDeviceListEntry, Serial: "emulator-5554", State: "device"},
		},
		{
			name: "device list entry with crlf",
			line: "192.168.1.7:5555   unauthorized\r",
			want: Signal{Kind: SignalDeviceListEntry, Serial: "192.168.1.7:5555", State: "unauthorized"},
		},
		{
			name: "daemon chatter",
			line: "* daemon not running; starting now at tcp:5037",
			want: Signal{Kind: SignalNone},
		},
		{
			name: "any two tokens read as a device entry",
			line: "  Stack #0:",
			want: Signal{Kind: SignalDeviceListEntry, Serial: "Stack", State: "#0:"},
		},
		{
			name: "single token",
			line: "emulator-5554",
			want: Signal{Kind: SignalNone},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.line))
		})
	}
}

func TestClassifyNoiseWithMarkerSpacing(t *testing.T) {
	sig := Classify("noise mFocusedActivity noise com.example.app/com.example.app.MainActivity noise")
	require.Equal(t, SignalFocusedActivity, sig.Kind)
	assert.Equal(t, "com.example.app", sig.Activity.Package)
	assert.Equal(t, "com.example.app.MainActivity", sig.Activity.Class)
}

func TestClassifyIsStable(t *testing.T) {
	lines := []string{
		"List of devices attached",
		"emulator-5556 device",
		"  mFocusedActivity: ActivityRecord{1 u0 a.b/.C t1}",
		"  mFocusedActivity: nothing here",
		"adb: error: more than one device/emulator",
	}
	for _, line := range lines {
		assert.Equal(t, Classify(line), Classify(line), line)
	}
}

func TestActivitySimpleName(t *testing.T) {
	assert.Equal(t, "MainActivity", Activity{Class: "com.example.app.MainActivity"}.SimpleName())
	assert.Equal(t, "HomeActivity", Activity{Class: ".ui.HomeActivity"}.SimpleName())
	assert.Equal(t, "Standalone", Activity{Class: "Standalone"}.SimpleName())
}

func FuzzClassify(f *testing.F) {
	seeds := []string{
		"",
		"List of devices attached",
		"emulator-5554\tdevice",
		"* daemon not running; starting now at tcp:5037",
		"adb: error: more than one device/emulator",
		"adb: device 'emulator-5558' not found",
		"  mFocusedActivity: ActivityRecord{42b5d5f8 u0 com.example.app/com.example.app.MainActivity t12}",
		"  mResumedActivity: ActivityRecord{8d1c2e u0 org.jraf.demo/.ui.HomeActivity t31}",
		"  mFocusedActivity: null",
		"adb server version (41) doesn't match this client (39); killing...",
		"\r",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, line string) {
		sig := Classify(line)
		assert.Equal(t, sig, Classify(line))
		assert.GreaterOrEqual(t, int(sig.Kind), int(SignalNone))
		assert.LessOrEqual(t, int(sig.Kind), int(SignalDeviceListEntry))
		switch sig.Kind {
		case SignalFocusedActivity:
			assert.NotEmpty(t, sig.Activity.Class)
			assert.NotEmpty(t, sig.Activity.Package)
		case SignalDeviceListEntry:
			assert.NotEmpty(t, strings.TrimSpace(sig.Serial))
			assert.True(t, isSerial(sig.Serial))
		default:
			assert.Empty(t, sig.Serial)
			assert.Equal(t, Activity{}, sig.Activity)
		}
	})
}
