package noop

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"stockrecon/internal/port"
)

type noopStorage struct {
	log logrus.FieldLogger
}

// NewNoopStorage creates an ObjectStorage that discards uploads and logs their keys.
func NewNoopStorage(log logrus.FieldLogger) port.ObjectStorage {
	return &noopStorage{log: log.WithField("component", "archive")}
}

func (s *noopStorage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	n, err := io.Copy(io.Discard, input.Body)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"key": input.Key, "bytes": n}).Debug("archive disabled, upload discarded")
	return &port.UploadOutput{Location: "noop://" + input.Bucket + "/" + input.Key}, nil
}

func (s *noopStorage) Delete(context.Context, string, string) error {
	return nil
}
