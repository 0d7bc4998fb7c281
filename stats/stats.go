//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package stats collects run-time statistics of protocol runs: the
// durations of the correlated-randomness and online phases, and the
// amount of transferred data.
package stats

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/markkurossi/tabulate"
)

// Phase identifies a timed protocol phase.
type Phase int

// Protocol phases.
const (
	PhaseSpPresetup Phase = iota
	PhaseSpSetup
	PhaseMtPresetup
	PhaseMtSetup
	PhaseEvaluate
	numPhases
)

var phaseNames = map[Phase]string{
	PhaseSpPresetup: "SP Presetup",
	PhaseSpSetup:    "SP Setup",
	PhaseMtPresetup: "MT Presetup",
	PhaseMtSetup:    "MT Setup",
	PhaseEvaluate:   "Evaluate",
}

func (p Phase) String() string {
	name, ok := phaseNames[p]
	if ok {
		return name
	}
	return fmt.Sprintf("{Phase %d}", p)
}

// Sample records the start and end times of one phase.
type Sample struct {
	Start time.Time
	End   time.Time
}

// RunTime collects the phase timings of one protocol run. It is safe
// for concurrent use. All methods are no-ops on a nil RunTime so a
// nil collector disables statistics.
type RunTime struct {
	m       sync.Mutex
	samples map[Phase]*Sample
}

// NewRunTime creates an empty run-time statistics collector.
func NewRunTime() *RunTime {
	return &RunTime{
		samples: make(map[Phase]*Sample),
	}
}

// RecordStart records the start time of the phase.
func (rt *RunTime) RecordStart(phase Phase) {
	if rt == nil {
		return
	}
	rt.m.Lock()
	defer rt.m.Unlock()

	rt.samples[phase] = &Sample{
		Start: time.Now(),
	}
}

// RecordEnd records the end time of the phase. The call is a no-op if
// the phase start was not recorded.
func (rt *RunTime) RecordEnd(phase Phase) {
	if rt == nil {
		return
	}
	rt.m.Lock()
	defer rt.m.Unlock()

	s, ok := rt.samples[phase]
	if !ok {
		return
	}
	s.End = time.Now()
}

// Duration returns the recorded duration of the phase, or zero if the
// phase is unrecorded or still open.
func (rt *RunTime) Duration(phase Phase) time.Duration {
	if rt == nil {
		return 0
	}
	rt.m.Lock()
	defer rt.m.Unlock()

	s, ok := rt.samples[phase]
	if !ok || s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Print renders the collected statistics as a table. The sent and
// recvd arguments give the transferred byte counts of the run.
func (rt *RunTime) Print(w io.Writer, sent, recvd uint64) {
	if rt == nil {
		return
	}
	rt.m.Lock()
	defer rt.m.Unlock()

	var total time.Duration
	for _, s := range rt.samples {
		if !s.End.IsZero() {
			total += s.End.Sub(s.Start)
		}
	}

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Phase").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("Xfer").SetAlign(tabulate.MR)

	for p := Phase(0); p < numPhases; p++ {
		s, ok := rt.samples[p]
		if !ok || s.End.IsZero() {
			continue
		}
		d := s.End.Sub(s.Start)
		row := tab.Row()
		row.Column(p.String())
		row.Column(d.String())
		row.Column(fmt.Sprintf("%.2f%%", float64(d)*100/float64(total)))
		row.Column("")
	}

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(total.String())
	row.Column("")
	row.Column(fmt.Sprintf("%s/%s", FileSize(sent), FileSize(recvd)))

	tab.Print(w)
}

// FileSize renders byte counts in human-readable units.
type FileSize uint64

func (s FileSize) String() string {
	if s > 1000*1000*1000*1000 {
		return fmt.Sprintf("%.2fTB", float64(s)/(1000*1000*1000*1000))
	} else if s > 1000*1000*1000 {
		return fmt.Sprintf("%.2fGB", float64(s)/(1000*1000*1000))
	} else if s > 1000*1000 {
		return fmt.Sprintf("%.2fMB", float64(s)/(1000*1000))
	} else if s > 1000 {
		return fmt.Sprintf("%.2fkB", float64(s)/1000)
	} else {
		return fmt.Sprintf("%dB", s)
	}
}
