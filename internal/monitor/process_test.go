package monitor

import (
	"testing"
)

func TestIsClientProcess(t *testing.T) {
	tests := []struct {
		exe      string
		foldCase bool
		expected bool
	}{
		{"/usr/lib/thunderbird/thunderbird", false, true},
		{"thunderbird", false, true},
		{"/opt/thunderbird/thunderbird.sh", false, true},
		{"/usr/bin/thunderbird-bin", false, false},
		{"/usr/bin/Thunderbird", false, false},
		{"/Applications/Thunderbird.app/Contents/MacOS/Thunderbird", true, true},
		{"THUNDERBIRD.EXE", true, true},
		{"/usr/bin/firefox", true, false},
		{"/usr/bin/thunderbirdd", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		got := isClientProcess(tt.exe, "thunderbird", tt.foldCase)
		if got != tt.expected {
			t.Errorf("isClientProcess(%q, fold=%v) = %v, want %v", tt.exe, tt.foldCase, got, tt.expected)
		}
	}
}

func TestClientRunning(t *testing.T) {
	exes := []string{"/usr/bin/bash", "/usr/lib/thunderbird/thunderbird", "/usr/bin/sleep"}
	if !clientRunning(exes, "thunderbird", false) {
		t.Error("clientRunning() = false, want true")
	}
	if clientRunning(exes[:1], "thunderbird", false) {
		t.Error("clientRunning() without client = true, want false")
	}
	if clientRunning(nil, "thunderbird", false) {
		t.Error("clientRunning(nil) = true, want false")
	}
}

func TestPresenceTransition(t *testing.T) {
	tests := []struct {
		name       string
		wasRunning bool
		running    bool
		first      bool
		expected   presenceAction
	}{
		{"first tick, running", true, true, true, actionRefresh},
		{"first tick, stopped", true, false, true, actionUnknown},
		{"running to stopped", true, false, false, actionUnknown},
		{"stopped to running", false, true, false, actionRefresh},
		{"steady running", true, true, false, actionNone},
		{"steady stopped", false, false, false, actionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := presenceTransition(tt.wasRunning, tt.running, tt.first)
			if got != tt.expected {
				t.Errorf("presenceTransition(%v, %v, %v) = %v, want %v", tt.wasRunning, tt.running, tt.first, got, tt.expected)
			}
		})
	}
}
