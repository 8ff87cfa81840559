package queue

import "github.com/taskqueue-go/jobqueue/uuid"

// IDGenerator supplies the externally-generated unique ID a new Job is
// inserted with.
type IDGenerator interface {
	NewID() (string, error)
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() (string, error) {
	u, err := uuid.V4()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// DefaultIDGenerator returns an IDGenerator that mints random version-4
// UUIDs.
func DefaultIDGenerator() IDGenerator {
	return uuidGenerator{}
}
