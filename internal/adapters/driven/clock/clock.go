// Package clock provides the wall clock used outside tests.
package clock

import (
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Clock = Real{}

// Real implements driven.Clock with the time package
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) driven.Timer {
	return time.AfterFunc(d, f)
}
