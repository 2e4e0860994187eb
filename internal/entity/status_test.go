package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusPending, false},
		{StatusActive, StatusPending, false},
		{StatusActive, StatusFailed, false},
		{StatusActive, StatusActive, true},
		{StatusFailed, StatusActive, false},
		{StatusFailed, StatusFailed, true},
		{StatusPending, Status(0), false},
		{StatusPending, Status(9), false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSourceType_Valid(t *testing.T) {
	assert.True(t, SourceTypeImagesAndLinks.Valid())
	assert.True(t, SourceTypeImagesOnly.Valid())
	assert.True(t, SourceTypeLinksOnly.Valid())
	assert.False(t, SourceType("").Valid())
	assert.False(t, SourceType("videos").Valid())
}
