package sequencer

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Song file formats. The JSON form is sparse and human readable: only active
// events are recorded, addressed by their four indices. The binary form is a
// fixed-size dump of every packed event word for flash storage.

const songFileVersion = "1.0"

// Binary header: "GRVB" magic and a format version, little-endian.
const (
	binaryMagic   uint32 = 0x47525642
	binaryVersion uint32 = 1
)

type songFile struct {
	Version string          `json:"version"`
	Name    string          `json:"name"`
	Tempo   int             `json:"tempo"`
	Events  []songFileEvent `json:"events"`
}

type songFileEvent struct {
	Mode    int      `json:"mode"`
	Pattern int      `json:"pattern"`
	Track   int      `json:"track"`
	Step    int      `json:"step"`
	Switch  bool     `json:"switch"`
	Pots    [4]uint8 `json:"pots"`
}

// Save writes the song as sparse JSON with name and tempo metadata.
func (s *Song) Save(path, name string, tempo int) error {
	f := songFile{
		Version: songFileVersion,
		Name:    name,
		Tempo:   tempo,
	}

	s.eachEvent(func(mode, pattern, track, step int, ev *Event) {
		if !ev.Switch() {
			return
		}
		f.Events = append(f.Events, songFileEvent{
			Mode:    mode,
			Pattern: pattern,
			Track:   track,
			Step:    step,
			Switch:  true,
			Pots:    [4]uint8{ev.Pot(0), ev.Pot(1), ev.Pot(2), ev.Pot(3)},
		})
	})

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load replaces the song with the contents of a sparse JSON file and returns
// the stored name and tempo. Prior state is fully cleared before entries are
// applied; malformed or out-of-range entries are skipped.
func (s *Song) Load(path string) (name string, tempo int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}

	var f songFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", 0, fmt.Errorf("parsing song file: %w", err)
	}
	if f.Version != songFileVersion {
		return "", 0, fmt.Errorf("unsupported song file version %q", f.Version)
	}

	s.Clear()
	for _, fe := range f.Events {
		if fe.Mode < 0 || fe.Mode >= NumModes ||
			fe.Pattern < 0 || fe.Pattern >= PatternsPerMode ||
			fe.Track < 0 || fe.Track >= TracksPerPattern ||
			fe.Step < 0 || fe.Step >= StepsPerTrack {
			continue
		}
		ev := s.Event(fe.Mode, fe.Pattern, fe.Track, fe.Step)
		ev.SetSwitch(fe.Switch)
		for pot := 0; pot < NumPots; pot++ {
			ev.SetPot(pot, fe.Pots[pot])
		}
	}

	return f.Name, f.Tempo, nil
}

// SaveBinary writes magic, version and every packed event word in fixed
// traversal order (mode, pattern, track, step). The result is losslessly
// round-trippable with the in-memory layout.
func (s *Song) SaveBinary(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], binaryMagic)
	if _, err := f.Write(word[:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(word[:], binaryVersion)
	if _, err := f.Write(word[:]); err != nil {
		return err
	}

	var writeErr error
	s.eachEvent(func(_, _, _, _ int, ev *Event) {
		if writeErr != nil {
			return
		}
		binary.LittleEndian.PutUint32(word[:], ev.RawData())
		_, writeErr = f.Write(word[:])
	})
	return writeErr
}

// LoadBinary replaces the song with a binary dump, validating magic and
// version first.
func (s *Song) LoadBinary(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var word [4]byte
	if _, err := io.ReadFull(f, word[:]); err != nil {
		return err
	}
	if binary.LittleEndian.Uint32(word[:]) != binaryMagic {
		return errors.New("not a gruvbok binary song file")
	}
	if _, err := io.ReadFull(f, word[:]); err != nil {
		return err
	}
	if v := binary.LittleEndian.Uint32(word[:]); v != binaryVersion {
		return fmt.Errorf("unsupported binary song version %d", v)
	}

	var readErr error
	s.eachEvent(func(_, _, _, _ int, ev *Event) {
		if readErr != nil {
			return
		}
		if _, readErr = io.ReadFull(f, word[:]); readErr != nil {
			return
		}
		ev.SetRawData(binary.LittleEndian.Uint32(word[:]))
	})
	return readErr
}

// eachEvent visits every event in fixed traversal order.
func (s *Song) eachEvent(fn func(mode, pattern, track, step int, ev *Event)) {
	for mode := 0; mode < NumModes; mode++ {
		for pattern := 0; pattern < PatternsPerMode; pattern++ {
			for track := 0; track < TracksPerPattern; track++ {
				for step := 0; step < StepsPerTrack; step++ {
					fn(mode, pattern, track, step, s.Event(mode, pattern, track, step))
				}
			}
		}
	}
}
