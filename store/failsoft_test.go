package store

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type brokenStore struct{}

func (brokenStore) Save(string, []byte) error          { return errors.New("disk gone") }
func (brokenStore) Load(string) ([]byte, bool, error)  { return nil, false, errors.New("disk gone") }
func (brokenStore) Clear() error                       { return errors.New("disk gone") }

func newFailSoft(t *testing.T, inner Store) (*FailSoft, *test.Hook) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	hook := test.NewLocal(log)
	return NewFailSoft(inner, log), hook
}

// Backend failures are logged and absorbed: saves succeed, loads
// report absence, and the caller keeps running on in-memory state.
func TestFailSoftAbsorbsErrors(t *testing.T) {
	t.Parallel()

	s, hook := newFailSoft(t, brokenStore{})

	assert.NoError(t, s.Save("k", []byte("v")))

	blob, ok, err := s.Load("k")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, blob)

	assert.NoError(t, s.Clear())

	assert.Len(t, hook.Entries, 3)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestFailSoftPassesThroughHealthyStore(t *testing.T) {
	t.Parallel()

	s, hook := newFailSoft(t, NewMem())

	assert.NoError(t, s.Save("k", []byte("v")))

	blob, ok, err := s.Load("k")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), blob)

	assert.Empty(t, hook.Entries)
}
