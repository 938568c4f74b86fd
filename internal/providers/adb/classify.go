package adb

import (
	"regexp"
	"strings"
)

const (
	markerMultipleDevices = "more than one device"
	markerDeviceListHead  = "List"
)

// Older releases print mFocusedActivity, newer ones mResumedActivity / topResumedActivity.
var focusedActivityMarkers = []string{"mFocusedActivity", "ResumedActivity"}

var (
	// "error: device not found" on old adb, "adb: device 'emulator-5556' not found" on current ones.
	deviceNotFoundPattern  = regexp.MustCompile(`device (?:'[^']*' )?not found`)
	activityNamePattern    = regexp.MustCompile(`^.* ([A-Za-z0-9._]+)/([A-Za-z0-9._$]+).*$`)
	deviceListEntryPattern = regexp.MustCompile(`^\s*([^\s*]\S*)\s+(\S+)`)
)

// SignalKind tells the caller what a single output line means.
type SignalKind int

const (
	SignalNone SignalKind = iota
	SignalMultipleDevices
	SignalDeviceNotFound
	SignalFocusedActivity
	// SignalActivityUnparsable marks a focused-activity line whose package/class
	// could not be extracted. Callers must treat it as fatal.
	SignalActivityUnparsable
	SignalDeviceListHeader
	SignalDeviceListEntry
)

func (k SignalKind) String() string {
	switch k {
	case SignalMultipleDevices:
		return "multiple_devices"
	case SignalDeviceNotFound:
		return "device_not_found"
	case SignalFocusedActivity:
		return "focused_activity"
	case SignalActivityUnparsable:
		return "activity_unparsable"
	case SignalDeviceListHeader:
		return "device_list_header"
	case SignalDeviceListEntry:
		return "device_list_entry"
	default:
		return "none"
	}
}

// Activity identifies a component as printed by dumpsys: package/class.
type Activity struct {
	Package string
	Class   string
}

// SimpleName returns the last dot-separated segment of the class name.
func (a Activity) SimpleName() string {
	if idx := strings.LastIndexByte(a.Class, '.'); idx != -1 {
		return a.Class[idx+1:]
	}
	return a.Class
}

func (a Activity) String() string {
	return a.Package + "/" + a.Class
}

// Signal is the classification of one line of adb output.
type Signal struct {
	Kind     SignalKind
	Activity Activity // set for SignalFocusedActivity
	Serial   string   // set for SignalDeviceListEntry
	State    string   // set for SignalDeviceListEntry
}

// Classify maps a line of adb output to a Signal. The checks run in a fixed order
// and the first one that matches wins.
func Classify(line string) Signal {
	line = strings.TrimRight(line, "\r")

	if strings.Contains(line, markerMultipleDevices) {
		return Signal{Kind: SignalMultipleDevices}
	}
	if deviceNotFoundPattern.MatchString(line) {
		return Signal{Kind: SignalDeviceNotFound}
	}
	if hasFocusedActivityMarker(line) {
		m := activityNamePattern.FindStringSubmatch(line)
		if m == nil {
			return Signal{Kind: SignalActivityUnparsable}
		}
		return Signal{
			Kind:     SignalFocusedActivity,
			Activity: Activity{Package: m[1], Class: m[2]},
		}
	}
	if strings.Contains(line, markerDeviceListHead) {
		return Signal{Kind: SignalDeviceListHeader}
	}
	if m := deviceListEntryPattern.FindStringSubmatch(line); m != nil && isSerial(m[1]) {
		return Signal{Kind: SignalDeviceListEntry, Serial: m[1], State: m[2]}
	}
	return Signal{Kind: SignalNone}
}

// isSerial rejects the leading tokens of adb's own messages
// ("adb: error: ...", "adb server version (41) doesn't match ...") and tokens
// made only of spaces regexp's \s does not cover.
func isSerial(token string) bool {
	return token != "adb" && !strings.HasSuffix(token, ":") && strings.TrimSpace(token) != ""
}

func hasFocusedActivityMarker(line string) bool {
	for _, marker := range focusedActivityMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
