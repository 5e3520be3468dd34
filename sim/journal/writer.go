package journal

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteJSONL streams the journal as JSON Lines: one transition record per
// line in simulation order, followed by utilization records when present.
// The output is byte-identical across runs with the same seed and
// configuration.
func (j *Journal) WriteJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for i := range j.Transitions {
		if err := enc.Encode(&j.Transitions[i]); err != nil {
			return fmt.Errorf("journal: encode transition %d: %w", i, err)
		}
	}
	for i := range j.Utilizations {
		if err := enc.Encode(&j.Utilizations[i]); err != nil {
			return fmt.Errorf("journal: encode utilization %d: %w", i, err)
		}
	}
	return nil
}

// WriteSnapshot writes the end-of-run snapshot as a single indented JSON
// document.
func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("journal: encode snapshot: %w", err)
	}
	return nil
}
