// SPDX-License-Identifier: MIT
package audio

import "testing"

func TestDesktopPermissionsAlwaysGranted(t *testing.T) {
	var p DesktopPermissions

	if got := p.MicrophoneStatus(); got != PermissionGranted {
		t.Errorf("Desktop microphone status should be granted, got %v", got)
	}
}

func TestDesktopPermissionsRequestCallback(t *testing.T) {
	var p DesktopPermissions

	var received PermissionStatus = PermissionDenied
	p.RequestMicrophone(func(status PermissionStatus) {
		received = status
	})

	if received != PermissionGranted {
		t.Errorf("Request callback should receive granted, got %v", received)
	}

	// A nil callback must not panic.
	p.RequestMicrophone(nil)
}

func TestPermissionStatusStrings(t *testing.T) {
	tests := []struct {
		status PermissionStatus
		want   string
	}{
		{PermissionNotDetermined, "not determined"},
		{PermissionGranted, "granted"},
		{PermissionDenied, "denied"},
		{PermissionRestricted, "restricted"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status %d: got %q, want %q", tt.status, got, tt.want)
		}
	}
}
