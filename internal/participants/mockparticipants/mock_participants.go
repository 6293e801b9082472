package mockparticipants

import (
	"github.com/stretchr/testify/mock"
)

type Resolver struct {
	mock.Mock
}

func (r *Resolver) IndividualParticipantIDs(participantID string) ([]string, error) {
	args := r.Called(participantID)

	var res []string
	if args.Get(0) != nil {
		res = args.Get(0).([]string)
	}

	return res, args.Error(1)
}
