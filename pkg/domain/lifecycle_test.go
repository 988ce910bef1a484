package domain

import (
	"errors"
	"testing"
)

func TestCheckAlertTransitionForwardPaths(t *testing.T) {
	cases := []struct {
		from, to AlertStatus
	}{
		{AlertStatusActive, AlertStatusVerified},
		{AlertStatusActive, AlertStatusResolved},
		{AlertStatusActive, AlertStatusFalseAlarm},
		{AlertStatusVerified, AlertStatusResolved},
		{AlertStatusVerified, AlertStatusVerified},
		{AlertStatusResolved, AlertStatusResolved},
		{AlertStatusFalseAlarm, AlertStatusFalseAlarm},
	}
	for _, tc := range cases {
		if err := CheckAlertTransition("a1", tc.from, tc.to); err != nil {
			t.Fatalf("transition %s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
	}
}

func TestCheckAlertTransitionTerminalStatesAreFrozen(t *testing.T) {
	cases := []struct {
		from, to AlertStatus
	}{
		{AlertStatusResolved, AlertStatusActive},
		{AlertStatusResolved, AlertStatusVerified},
		{AlertStatusResolved, AlertStatusFalseAlarm},
		{AlertStatusFalseAlarm, AlertStatusActive},
		{AlertStatusFalseAlarm, AlertStatusResolved},
	}
	for _, tc := range cases {
		err := CheckAlertTransition("a1", tc.from, tc.to)
		if err == nil {
			t.Fatalf("transition %s -> %s: expected rejection", tc.from, tc.to)
		}
		var lifecycle LifecycleError
		if !errors.As(err, &lifecycle) {
			t.Fatalf("transition %s -> %s: expected LifecycleError, got %T", tc.from, tc.to, err)
		}
		if lifecycle.From != tc.from || lifecycle.To != tc.to {
			t.Fatalf("error carries %s -> %s, want %s -> %s", lifecycle.From, lifecycle.To, tc.from, tc.to)
		}
	}
}

func TestCheckAlertTransitionRejectsUnknownStatus(t *testing.T) {
	if err := CheckAlertTransition("a1", AlertStatusActive, AlertStatus("escalated")); err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestTerminalAlertStatus(t *testing.T) {
	if TerminalAlertStatus(AlertStatusActive) || TerminalAlertStatus(AlertStatusVerified) {
		t.Fatal("active and verified must not be terminal")
	}
	if !TerminalAlertStatus(AlertStatusResolved) || !TerminalAlertStatus(AlertStatusFalseAlarm) {
		t.Fatal("resolved and false-alarm must be terminal")
	}
}
