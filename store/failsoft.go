package store

import "github.com/sirupsen/logrus"

// FailSoft wraps a Store so that backend failures are logged and
// absorbed. Saves report success, loads report absence. The core keeps
// operating on its in-memory state either way.
type FailSoft struct {
	inner Store
	log   logrus.FieldLogger
}

func NewFailSoft(inner Store, log logrus.FieldLogger) *FailSoft {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FailSoft{inner: inner, log: log}
}

func (s *FailSoft) Save(key string, blob []byte) error {
	if err := s.inner.Save(key, blob); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("store: save failed")
	}
	return nil
}

func (s *FailSoft) Load(key string) ([]byte, bool, error) {
	blob, ok, err := s.inner.Load(key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("store: load failed")
		return nil, false, nil
	}
	return blob, ok, nil
}

func (s *FailSoft) Clear() error {
	if err := s.inner.Clear(); err != nil {
		s.log.WithError(err).Warn("store: clear failed")
	}
	return nil
}
