package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCycleDays applies when a billing cycle is missing or not a number.
const DefaultCycleDays = 30

// Status is derived purely from a due date and today.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ErrInvalidCycle is returned for zero or negative cycle lengths.
var ErrInvalidCycle = fmt.Errorf("billing cycle must be a positive number of days")

// ParseCycle reads the leading integer of a user-supplied cycle length, so
// "15.5" and "30days" give 15 and 30. Input without a leading number falls back
// to DefaultCycleDays; zero and negative values are rejected.
func ParseCycle(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return DefaultCycleDays, nil
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return DefaultCycleDays, nil
	}
	if n <= 0 {
		return 0, ErrInvalidCycle
	}
	return n, nil
}

// EffectiveCycle guards stored records whose cycle was never set.
func EffectiveCycle(days int) int {
	if days <= 0 {
		return DefaultCycleDays
	}
	return days
}

// InitialDueDate is one cycle after installation.
func InitialDueDate(installDate Date, cycleDays int) Date {
	return installDate.AddDays(EffectiveCycle(cycleDays))
}

// NextDueDate advances exactly one cycle, however overdue the account is.
func NextDueDate(currentDue Date, cycleDays int) Date {
	return currentDue.AddDays(EffectiveCycle(cycleDays))
}

// ClassifyStatus is Inactive only once today is strictly past the due date.
func ClassifyStatus(dueDate, today Date) Status {
	if today.After(dueDate) {
		return StatusInactive
	}
	return StatusActive
}

// DueWithin reports whether dueDate falls in [today, today+days].
func DueWithin(dueDate, today Date, days int) bool {
	if dueDate.IsZero() || dueDate.Before(today) {
		return false
	}
	return today.DaysUntil(dueDate) <= days
}
