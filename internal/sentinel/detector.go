// Package sentinel scans a raw terminal byte stream for the completion
// markers the agent emits. The stream arrives in arbitrary chunks, may
// contain escape sequences interleaved with marker text, and is not
// guaranteed to split on character boundaries, so the detector keeps a
// small bounded accumulator and does all scanning against that.
package sentinel

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Markers the agent prints on their own line to report progress.
const (
	TaskCompleteMarker = "###TASK_COMPLETE###"
	AllCompleteMarker  = "###ALL_TASKS_COMPLETE###"
)

// Signal is the outcome of scanning accumulated output.
type Signal int

const (
	// SignalNone means no marker has been seen yet.
	SignalNone Signal = iota
	// SignalTaskComplete means one task finished and more remain.
	SignalTaskComplete
	// SignalAllComplete means every task finished. Takes priority over
	// SignalTaskComplete when both markers are present.
	SignalAllComplete
)

func (s Signal) String() string {
	switch s {
	case SignalTaskComplete:
		return "task_complete"
	case SignalAllComplete:
		return "all_complete"
	default:
		return "none"
	}
}

// Default buffer bounds. Eviction triggers at maxBuffer and keeps the
// trailing retainBuffer bytes, which is far more than a marker can span.
const (
	defaultMaxBuffer    = 32 * 1024
	defaultRetainBuffer = 16 * 1024
)

// Detector accumulates output bytes and scans them for markers.
// It never blocks and mutates nothing outside its own buffer.
type Detector struct {
	buf    []byte
	max    int
	retain int
}

// NewDetector creates a detector with the default buffer bounds.
func NewDetector() *Detector {
	return NewDetectorSize(defaultMaxBuffer, defaultRetainBuffer)
}

// NewDetectorSize creates a detector with explicit bounds. retain must not
// exceed max and should be at least the longest marker length.
func NewDetectorSize(max, retain int) *Detector {
	if retain > max {
		retain = max
	}
	if min := len(AllCompleteMarker); retain < min {
		retain = min
	}
	return &Detector{max: max, retain: retain}
}

// Feed appends p to the accumulator and scans for markers. It reports the
// strongest signal present in the retained window; once a signal is found
// the caller is expected to stop feeding.
func (d *Detector) Feed(p []byte) Signal {
	d.buf = append(d.buf, p...)

	// Scan before evicting so a marker at the boundary is never lost.
	sig := Scan(d.buf)

	if sig == SignalNone && len(d.buf) > d.max {
		cut := boundaryBefore(d.buf, len(d.buf)-d.retain)
		d.buf = append(d.buf[:0], d.buf[cut:]...)
	}

	return sig
}

// Buffered returns a copy of the currently retained bytes.
func (d *Detector) Buffered() []byte {
	cp := make([]byte, len(d.buf))
	copy(cp, d.buf)
	return cp
}

// Len returns the number of retained bytes.
func (d *Detector) Len() int {
	return len(d.buf)
}

// Scan checks a byte slice for markers. The raw byte search catches the
// common case; the ANSI-stripped pass catches markers the child wrapped in
// color or cursor sequences.
func Scan(data []byte) Signal {
	if bytes.Contains(data, []byte(AllCompleteMarker)) {
		return SignalAllComplete
	}
	if bytes.Contains(data, []byte(TaskCompleteMarker)) {
		return SignalTaskComplete
	}

	if bytes.IndexByte(data, 0x1b) < 0 && bytes.IndexByte(data, 0x9b) < 0 {
		return SignalNone
	}

	clean := StripANSI(string(data))
	if strings.Contains(clean, AllCompleteMarker) {
		return SignalAllComplete
	}
	if strings.Contains(clean, TaskCompleteMarker) {
		return SignalTaskComplete
	}

	return SignalNone
}

// boundaryBefore returns the largest offset <= target that does not fall
// inside a multi-byte UTF-8 sequence. Slicing mid-rune would corrupt the
// retained text, so eviction always rounds down to a rune start.
func boundaryBefore(data []byte, target int) int {
	if target <= 0 {
		return 0
	}
	if target >= len(data) {
		return len(data)
	}
	for target > 0 && !utf8.RuneStart(data[target]) {
		target--
	}
	return target
}

// StripANSI removes CSI, OSC, and bare escape sequences from content.
func StripANSI(content string) string {
	// Fast path: no escape chars at all.
	if !strings.Contains(content, "\x1b") && !strings.Contains(content, "\x9b") {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))

	i := 0
	for i < len(content) {
		if content[i] == '\x1b' {
			// CSI sequence: ESC [ ... final letter
			if i+1 < len(content) && content[i+1] == '[' {
				j := i + 2
				for j < len(content) {
					c := content[j]
					if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
						j++
						break
					}
					j++
				}
				i = j
				continue
			}
			// OSC sequence: ESC ] ... BEL
			if i+1 < len(content) && content[i+1] == ']' {
				bellPos := strings.Index(content[i:], "\x07")
				if bellPos != -1 {
					i += bellPos + 1
					continue
				}
			}
			// DCS sequence: ESC P ... ESC \
			if i+1 < len(content) && content[i+1] == 'P' {
				endPos := strings.Index(content[i:], "\x1b\\")
				if endPos != -1 {
					i += endPos + 2
					continue
				}
			}
			// Other escape: skip 2 chars
			if i+1 < len(content) {
				i += 2
				continue
			}
		}
		if content[i] == '\x9b' {
			// Single-byte CSI introducer.
			j := i + 1
			for j < len(content) {
				c := content[j]
				if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
					j++
					break
				}
				j++
			}
			i = j
			continue
		}
		b.WriteByte(content[i])
		i++
	}

	return b.String()
}
