package domain

import "time"

type LockoutPolicy struct {
	MaxAttempts int
	Window      time.Duration
	// ResetOnExpiry restarts the failure count at 1 when a failure follows an
	// elapsed lockout. When false the stale counter keeps accumulating.
	ResetOnExpiry bool
}

type LockoutStatus struct {
	Locked            bool
	LockedUntil       *time.Time
	RemainingAttempts int
}

func (p LockoutPolicy) Evaluate(failedAttempts int, lockedUntil *time.Time, now time.Time) LockoutStatus {
	status := LockoutStatus{RemainingAttempts: p.remaining(failedAttempts)}
	if lockedUntil != nil && lockedUntil.After(now) {
		status.Locked = true
		status.LockedUntil = lockedUntil
		status.RemainingAttempts = 0
	}
	return status
}

// LockUntil is the lockout expiry stamped when a failure reaches MaxAttempts.
func (p LockoutPolicy) LockUntil(now time.Time) time.Time {
	return now.Add(p.Window)
}

func (p LockoutPolicy) remaining(failedAttempts int) int {
	left := p.MaxAttempts - failedAttempts
	if left < 0 {
		return 0
	}
	return left
}
