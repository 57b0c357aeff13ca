package storage

import (
	"context"

	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/rs/zerolog"
)

// RosterStore persists registered users in registration order.
type RosterStore struct {
	backend Backend
	log     zerolog.Logger
}

func NewRosterStore(b Backend, log zerolog.Logger) *RosterStore {
	return &RosterStore{backend: b, log: log}
}

var _ attendance.RosterRepository = (*RosterStore)(nil)

func (s *RosterStore) Load(ctx context.Context) ([]attendance.User, error) {
	return loadBlob[attendance.User](ctx, s.backend, constants.UsersKey, s.log)
}

func (s *RosterStore) Save(ctx context.Context, users []attendance.User) error {
	return saveBlob(ctx, s.backend, constants.UsersKey, users)
}

// Append adds u at the end of the roster. Callers that need atomicity hold the roster lock.
func (s *RosterStore) Append(ctx context.Context, u attendance.User) error {
	users, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.Save(ctx, append(users, u))
}
