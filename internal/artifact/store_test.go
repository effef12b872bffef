package artifact_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/astronautdiary/internal/apperr"
	"github.com/nikhilbhutani/astronautdiary/internal/artifact"
	"github.com/nikhilbhutani/astronautdiary/internal/config"
)

func newStore(t *testing.T) *artifact.Store {
	t.Helper()
	dir := t.TempDir()
	return artifact.NewStore(config.ArtifactConfig{
		AudioPath:      filepath.Join(dir, "out", "speech.mp3"),
		TranscriptPath: filepath.Join(dir, "out", "transcription.json"),
	})
}

func TestWriteAudioOverwrites(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.WriteAudio([]byte("first call, longer payload")))
	require.NoError(t, s.WriteAudio([]byte("second")))

	got, err := os.ReadFile(s.AudioPath())
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestWriteTranscript(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.WriteTranscript(map[string]string{"text": "hello"}))

	got, err := os.ReadFile(s.TranscriptPath())
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hello"}`, string(got))
}

func TestWriteAudioIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := artifact.NewStore(config.ArtifactConfig{AudioPath: filepath.Join(blocker, "speech.mp3")})
	err := s.WriteAudio([]byte("x"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindIO, apperr.KindOf(err))
}
