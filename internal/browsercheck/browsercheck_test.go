package browsercheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportOK(t *testing.T) {
	assert.True(t, Report{Markers: 4}.OK())
	assert.False(t, Report{}.OK())
	assert.False(t, Report{Markers: 4, BrokenIcons: 1}.OK())
}
