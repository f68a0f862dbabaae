// Package transcript records the sequence of protocol phases observed
// during a run as plain entries (Entries), and cbor-encodes the whole
// sequence on demand (Marshal).
package transcript

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/luxfi/tprf/protocols/tprf"
)

// Entry is one recorded phase boundary.
type Entry struct {
	Phase string `cbor:"phase"`
	OK    bool   `cbor:"ok"`
	Err   string `cbor:"err,omitempty"`
}

// Recorder implements tprf.Observer, appending one Entry per phase.
type Recorder struct {
	entries []Entry
	started map[string]bool
}

// NewRecorder builds an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{started: make(map[string]bool)}
}

func (r *Recorder) OnPhaseStart(phase string) {
	r.started[phase] = true
}

func (r *Recorder) OnPhaseEnd(phase string, err error) {
	e := Entry{Phase: phase, OK: err == nil}
	if err != nil {
		e.Err = err.Error()
	}
	r.entries = append(r.entries, e)
}

// Entries returns the recorded phase boundaries in order.
func (r *Recorder) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Marshal cbor-encodes the full transcript, for golden-file comparisons or
// cross-process assertions.
func (r *Recorder) Marshal() ([]byte, error) {
	b, err := cbor.Marshal(r.entries)
	if err != nil {
		return nil, fmt.Errorf("transcript: marshal: %w", err)
	}
	return b, nil
}

var _ tprf.Observer = (*Recorder)(nil)
