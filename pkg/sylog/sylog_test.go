// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package sylog

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"
)

func withLevel(t *testing.T, level int) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	oldLevel := GetLevel()
	oldWriter := SetWriter(&buf)
	SetLevel(level, false)

	t.Cleanup(func() {
		SetWriter(oldWriter)
		SetLevel(oldLevel, true)
	})
	return &buf
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   int
		logFn   func(string, ...interface{})
		printed bool
		label   string
	}{
		{"error at info", int(InfoLevel), Errorf, true, "ERROR:"},
		{"warning at info", int(InfoLevel), Warningf, true, "WARNING:"},
		{"info at info", int(InfoLevel), Infof, true, "INFO:"},
		{"verbose at info", int(InfoLevel), Verbosef, false, ""},
		{"debug at info", int(InfoLevel), Debugf, false, ""},
		{"info at quiet", int(LogLevel), Infof, false, ""},
		{"error at silent", int(ErrorLevel), Errorf, true, "ERROR:"},
		{"verbose at verbose", int(VerboseLevel), Verbosef, true, "VERBOSE:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := withLevel(t, tt.level)
			tt.logFn("message %d\n", 42)

			out := buf.String()
			if !tt.printed {
				if out != "" {
					t.Fatalf("unexpected output: %q", out)
				}
				return
			}
			if !strings.HasPrefix(out, tt.label) {
				t.Errorf("output %q doesn't start with %q", out, tt.label)
			}
			if !strings.HasSuffix(out, "message 42\n") {
				t.Errorf("output %q doesn't end with a single newline terminated message", out)
			}
		})
	}
}

func TestGetEnvVar(t *testing.T) {
	withLevel(t, int(DebugLevel))

	if got, want := GetEnvVar(), "RFSBUILD_MESSAGELEVEL=5"; got != want {
		t.Fatalf("%s was returned instead of %s", got, want)
	}
}

func TestWriter(t *testing.T) {
	buf := withLevel(t, int(LogLevel))
	if Writer() != ioutil.Discard {
		t.Fatalf("Writer() did not return ioutil.Discard at quiet level")
	}

	SetLevel(int(InfoLevel), false)
	if Writer() != buf {
		t.Fatalf("Writer() did not return the configured writer at info level")
	}
}
