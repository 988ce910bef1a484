package domain

// Alert lifecycle: active is the initial state, verification and resolution
// move forward, false-alarm is reachable only by a direct status update.
// Resolved and false-alarm are terminal; nothing leaves them. Writing the
// current status again is permitted so verification and resolution stamps
// can be refreshed in place.

var alertStatuses = toSet(
	AlertStatusActive,
	AlertStatusVerified,
	AlertStatusResolved,
	AlertStatusFalseAlarm,
)

var alertTerminalStatuses = toSet(
	AlertStatusResolved,
	AlertStatusFalseAlarm,
)

// KnownAlertStatus reports whether s is a member of the alert lifecycle.
func KnownAlertStatus(s AlertStatus) bool {
	_, ok := alertStatuses[s]
	return ok
}

// TerminalAlertStatus reports whether s admits no further transitions.
func TerminalAlertStatus(s AlertStatus) bool {
	_, ok := alertTerminalStatuses[s]
	return ok
}

// CheckAlertTransition validates a status change against the lifecycle.
// The id only labels the returned error.
func CheckAlertTransition(id string, from, to AlertStatus) error {
	if !KnownAlertStatus(to) {
		return LifecycleError{ID: id, From: from, To: to}
	}
	if from == to {
		return nil
	}
	if TerminalAlertStatus(from) {
		return LifecycleError{ID: id, From: from, To: to}
	}
	return nil
}

func toSet(values ...AlertStatus) map[AlertStatus]struct{} {
	set := make(map[AlertStatus]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
