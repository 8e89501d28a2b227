package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCycle(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: DefaultCycleDays},
		{raw: "monthly", want: DefaultCycleDays},
		{raw: " 15 ", want: 15},
		{raw: "15.5", want: 15},
		{raw: "30days", want: 30},
		{raw: "+45", want: 45},
		{raw: "-", want: DefaultCycleDays},
		{raw: "0", wantErr: true},
		{raw: "-7", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseCycle(tc.raw)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidCycle, "raw=%q", tc.raw)
			continue
		}
		require.NoError(t, err, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestInitialDueDate(t *testing.T) {
	install := NewDate(2024, time.January, 1)
	assert.Equal(t, NewDate(2024, time.January, 31), InitialDueDate(install, 30))
	assert.Equal(t, NewDate(2024, time.January, 31), InitialDueDate(install, 0), "unset cycle falls back to default")
}

func TestNextDueDateAdvancesOneCycle(t *testing.T) {
	due := NewDate(2024, time.January, 31)
	assert.Equal(t, NewDate(2024, time.March, 1), NextDueDate(due, 30))
	assert.Equal(t, NewDate(2024, time.February, 7), NextDueDate(due, 7))
}

func TestDueDateStaysOnCycleGrid(t *testing.T) {
	install := NewDate(2023, time.November, 17)
	cycle := 28

	due := InitialDueDate(install, cycle)
	for i := 0; i < 24; i++ {
		assert.Zero(t, install.DaysUntil(due)%cycle)
		due = NextDueDate(due, cycle)
	}
}

func TestClassifyStatus(t *testing.T) {
	due := NewDate(2024, time.January, 31)

	assert.Equal(t, StatusActive, ClassifyStatus(due, due.AddDays(-1)))
	assert.Equal(t, StatusActive, ClassifyStatus(due, due))
	assert.Equal(t, StatusInactive, ClassifyStatus(due, due.AddDays(1)))
	assert.Equal(t, StatusInactive, ClassifyStatus(due, due.AddDays(40)))
}

func TestDueWithin(t *testing.T) {
	today := NewDate(2024, time.May, 10)

	assert.True(t, DueWithin(today, today, 3))
	assert.True(t, DueWithin(today.AddDays(3), today, 3))
	assert.False(t, DueWithin(today.AddDays(4), today, 3))
	assert.False(t, DueWithin(today.AddDays(-1), today, 3))
	assert.False(t, DueWithin(Date{}, today, 3))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusInactive.Valid())
	assert.False(t, Status("Paid").Valid())
}
