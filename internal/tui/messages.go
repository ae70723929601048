package tui

import (
	"time"

	"github.com/Veraticus/visit-recap/internal/recap"
)

// recapLoadedMsg carries the result of a fetch-and-build.
type recapLoadedMsg struct {
	err     error
	result  *recap.Result
	refresh bool
}

// exportDoneMsg reports the end of an export.
type exportDoneMsg struct {
	err    error
	target string
	rows   int
	at     time.Time
}
