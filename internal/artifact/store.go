// Package artifact writes the scratch audio and transcript files that every
// speech request overwrites.
//
// Both paths are fixed for the life of the process and there is no locking:
// concurrent requests race and the file reflects whichever write finished last.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikhilbhutani/astronautdiary/internal/apperr"
	"github.com/nikhilbhutani/astronautdiary/internal/config"
)

type Store struct {
	audioPath      string
	transcriptPath string
}

func NewStore(cfg config.ArtifactConfig) *Store {
	return &Store{audioPath: cfg.AudioPath, transcriptPath: cfg.TranscriptPath}
}

func (s *Store) AudioPath() string { return s.audioPath }

func (s *Store) TranscriptPath() string { return s.transcriptPath }

// WriteAudio overwrites the audio file with data.
func (s *Store) WriteAudio(data []byte) error {
	if err := writeFile(s.audioPath, data); err != nil {
		return apperr.IO(fmt.Errorf("write audio %s: %w", s.audioPath, err))
	}
	return nil
}

// WriteTranscript overwrites the transcript file with v as indented JSON.
func (s *Store) WriteTranscript(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if err := writeFile(s.transcriptPath, data); err != nil {
		return apperr.IO(fmt.Errorf("write transcript %s: %w", s.transcriptPath, err))
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
