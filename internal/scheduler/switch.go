package scheduler

import "sync/atomic"

// Switch is the administrative enable flag shared between the scheduler, the
// bot commands, the HTTP endpoints and the config watcher.
type Switch struct {
	enabled atomic.Bool
}

func NewSwitch(enabled bool) *Switch {
	s := &Switch{}
	s.enabled.Store(enabled)
	return s
}

func (s *Switch) Enabled() bool { return s.enabled.Load() }
func (s *Switch) Enable()       { s.enabled.Store(true) }
func (s *Switch) Disable()      { s.enabled.Store(false) }
func (s *Switch) Set(v bool)    { s.enabled.Store(v) }
