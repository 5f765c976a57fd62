package midi

import (
	"fmt"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"gruvbok/sequencer"
)

// SMF export resolution.
const (
	exportTicksPerQuarter = 960
	exportTicksPerStep    = exportTicksPerQuarter / 4
)

// ExportSMF renders a song's arrangement to a Standard MIDI File. The song
// layer drives pattern selection bar by bar, exactly as during playback;
// each active step becomes a note using pot0 as pitch and pot1 as velocity
// (a score-level approximation — live pitch mapping belongs to the scripts).
func ExportSMF(song *sequencer.Song, bpm int, path string) error {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(exportTicksPerQuarter)

	var tempoTrack smf.Track
	tempoTrack.Add(0, smf.MetaMeter(4, 4))
	tempoTrack.Add(0, smf.MetaTempo(float64(bpm)))
	tempoTrack.Close(0)
	if err := sm.Add(tempoTrack); err != nil {
		return fmt.Errorf("adding tempo track: %w", err)
	}

	mode0 := sequencer.NewMode0Sequencer(song)
	mode0.CalculateLoopLength()
	mode0.Start()

	// Resolve the pattern each mode plays in each bar of the arrangement.
	bars := mode0.LoopLength()
	patterns := make([][sequencer.NumModes]int, bars)
	for bar := 0; bar < bars; bar++ {
		mode0.ApplyParameters()
		for mode := 1; mode < sequencer.NumModes; mode++ {
			if override := mode0.PatternOverride(mode); override >= 0 {
				patterns[bar][mode] = override
			}
		}
		mode0.AdvanceStep()
	}

	endTick := uint32(bars) * sequencer.StepsPerTrack * exportTicksPerStep

	for mode := 1; mode < sequencer.NumModes; mode++ {
		events := collectModeEvents(song, mode, patterns)
		if len(events) == 0 {
			continue
		}

		var track smf.Track
		var last uint32
		for _, te := range events {
			track.Add(te.tick-last, te.msg)
			last = te.tick
		}
		track.Close(endTick - last)
		if err := sm.Add(track); err != nil {
			return fmt.Errorf("adding track for mode %d: %w", mode, err)
		}
	}

	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

type timedMessage struct {
	tick uint32
	msg  gomidi.Message
}

// collectModeEvents flattens one mode's bars into absolute-tick messages,
// note-offs one step after their note-ons.
func collectModeEvents(song *sequencer.Song, mode int, patterns [][sequencer.NumModes]int) []timedMessage {
	channel := uint8(mode - 1)
	var events []timedMessage

	for bar := range patterns {
		pattern := song.Mode(mode).Pattern(patterns[bar][mode])
		barTick := uint32(bar) * sequencer.StepsPerTrack * exportTicksPerStep

		for track := 0; track < sequencer.TracksPerPattern; track++ {
			for step := 0; step < sequencer.StepsPerTrack; step++ {
				ev := pattern.Event(track, step)
				if !ev.Switch() {
					continue
				}
				pitch := ev.Pot(0)
				velocity := ev.Pot(1)
				on := barTick + uint32(step)*exportTicksPerStep
				events = append(events,
					timedMessage{on, gomidi.NoteOn(channel, pitch, velocity)},
					timedMessage{on + exportTicksPerStep - 1, gomidi.NoteOff(channel, pitch)},
				)
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})
	return events
}
