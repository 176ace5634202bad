package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Task", KeyTask, "udev-watch", Task("udev-watch")},
		{"TaskID", KeyTaskID, "abc-123", TaskID("abc-123")},
		{"Command", KeyCommand, "ddcutil getvcp 10", Command("ddcutil getvcp 10")},
		{"Path", KeyPath, "/tmp/.bctld.state", Path("/tmp/.bctld.state")},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"ErrorNil", KeyError, "", Error(nil)},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}

	if a := ExitCode(2); a.Key != KeyExitCode || a.Value.Int64() != 2 {
		t.Fatalf("ExitCode: unexpected attr %v", a)
	}
}
