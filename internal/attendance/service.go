package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/smart-attendance/internal/ai"
	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/capture"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/metrics"
	"github.com/kozaktomas/smart-attendance/internal/status"
	"github.com/rs/zerolog"
)

// User facing messages.
const (
	MsgVerifying        = "Verifying your identity... This may take a moment."
	MsgRegistered       = "User %s registered successfully!"
	MsgCheckedIn        = "Welcome, %s! Checked in successfully."
	MsgAlreadyCheckedIn = "%s is already checked in."
	MsgCheckedOut       = "Goodbye, %s! Checked out successfully."
	MsgNotCheckedIn     = "%s, you need to check in first."
	MsgNotRecognized    = "Identity verification failed. User not recognized."
	MsgInvalidInput     = "Name and ID are required."
	MsgDuplicateID      = "A user with ID %s is already registered."
	MsgStorage          = "Could not access stored data. Please try again."
)

// RosterRepository persists the roster as one blob in registration order.
type RosterRepository interface {
	Load(ctx context.Context) ([]User, error)
	Save(ctx context.Context, users []User) error
	// Append adds u after the existing users. The caller holds the roster lock.
	Append(ctx context.Context, u User) error
}

// RecordRepository persists the attendance log as one blob, most-recent-first.
type RecordRepository interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// Capturer produces one photo from a camera.
type Capturer interface {
	Capture(ctx context.Context, cam camera.Camera) (*capture.Frame, error)
}

// Event types published after successful intents.
const (
	EventRegistered = "user.registered"
	EventCheckedIn  = "attendance.checked_in"
	EventCheckedOut = "attendance.checked_out"
)

// Event describes a committed change.
type Event struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	RecordID string    `json:"record_id,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher delivers events. Delivery failures never undo a committed change.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Deps are the collaborators of a Service. Roster, Records, Capturer, Camera and Resolver
// are required.
type Deps struct {
	Roster    RosterRepository
	Records   RecordRepository
	Capturer  Capturer
	Camera    camera.Camera
	Resolver  *Resolver
	Locker    Locker
	Publisher Publisher
	Reporter  status.Reporter
	Now       func() time.Time
	Logger    zerolog.Logger
}

// Service runs the register, check-in and check-out pipelines. Each pipeline ends with a
// final Status on the reporter.
type Service struct {
	roster    RosterRepository
	records   RecordRepository
	capturer  Capturer
	camera    camera.Camera
	resolver  *Resolver
	locker    Locker
	publisher Publisher
	reporter  status.Reporter
	now       func() time.Time
	log       zerolog.Logger
}

func NewService(d Deps) *Service {
	s := &Service{
		roster:    d.Roster,
		records:   d.Records,
		capturer:  d.Capturer,
		camera:    d.Camera,
		resolver:  d.Resolver,
		locker:    d.Locker,
		publisher: d.Publisher,
		reporter:  d.Reporter,
		now:       d.Now,
		log:       d.Logger,
	}
	if s.camera == nil {
		s.camera = camera.None{}
	}
	if s.locker == nil {
		s.locker = NewKeyedMutex()
	}
	if s.reporter == nil {
		s.reporter = status.Discard
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// RegisterInput is a registration request. Camera overrides the default camera, e.g. with a
// still photo uploaded by the client.
type RegisterInput struct {
	Name   string
	ID     string
	Camera camera.Camera
}

// Register captures a reference photo and appends the user to the roster.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	id := NormalizeID(in.ID)
	if name == "" || id == "" {
		metrics.Registrations.WithLabelValues("invalid").Inc()
		s.reporter.SetStatus(status.Error(MsgInvalidInput))
		return User{}, ErrInvalidInput
	}

	roster, err := s.roster.Load(ctx)
	if err != nil {
		return User{}, s.storageFailure("load roster", err)
	}
	if hasID(roster, id) {
		metrics.Registrations.WithLabelValues("duplicate").Inc()
		s.reporter.SetStatus(status.Error(fmt.Sprintf(MsgDuplicateID, id)))
		return User{}, ErrDuplicateID
	}

	frame, err := s.capturer.Capture(ctx, s.cameraFor(in.Camera))
	if err != nil {
		metrics.Registrations.WithLabelValues("capture_failed").Inc()
		return User{}, err
	}

	user := User{ID: id, Name: name, Photo: frame.DataURL()}

	unlock, err := s.locker.Lock(ctx, constants.UsersKey)
	if err != nil {
		return User{}, s.storageFailure("lock roster", err)
	}
	defer unlock()

	// Re-read under the lock; the first read happened before the capture.
	roster, err = s.roster.Load(ctx)
	if err != nil {
		return User{}, s.storageFailure("load roster", err)
	}
	if hasID(roster, id) {
		metrics.Registrations.WithLabelValues("duplicate").Inc()
		s.reporter.SetStatus(status.Error(fmt.Sprintf(MsgDuplicateID, id)))
		return User{}, ErrDuplicateID
	}
	if err := s.roster.Append(ctx, user); err != nil {
		return User{}, s.storageFailure("save roster", err)
	}

	metrics.Registrations.WithLabelValues("registered").Inc()
	metrics.RosterSize.Set(float64(len(roster) + 1))
	s.log.Info().Str("user_id", id).Str("name", name).Msg("User registered")
	s.reporter.SetStatus(status.Success(fmt.Sprintf(MsgRegistered, name)))
	s.publish(ctx, EventRegistered, user, "")
	return user, nil
}

// CheckIn identifies the person in front of the camera and opens a session for them.
func (s *Service) CheckIn(ctx context.Context, cam camera.Camera) (Outcome, error) {
	return s.processAttendance(ctx, ActionCheckIn, cam)
}

// CheckOut identifies the person in front of the camera and closes their open session.
func (s *Service) CheckOut(ctx context.Context, cam camera.Camera) (Outcome, error) {
	return s.processAttendance(ctx, ActionCheckOut, cam)
}

func (s *Service) processAttendance(ctx context.Context, action Action, cam camera.Camera) (Outcome, error) {
	out := Outcome{Action: action}
	log := s.log.With().Str("action", string(action)).Logger()

	// The camera is released inside Capture, before the resolver runs.
	frame, err := s.capturer.Capture(ctx, s.cameraFor(cam))
	if err != nil {
		metrics.Transitions.WithLabelValues(string(action), "capture_failed").Inc()
		return out, err
	}

	s.reporter.SetStatus(status.Loading(MsgVerifying))

	roster, err := s.roster.Load(ctx)
	if err != nil {
		metrics.Transitions.WithLabelValues(string(action), "storage_error").Inc()
		return out, s.storageFailure("load roster", err)
	}

	res, err := s.resolver.Resolve(ctx, frame.JPEG, roster)
	out.Resolution = res
	if err != nil {
		metrics.Transitions.WithLabelValues(string(action), "oracle_error").Inc()
		s.reporter.SetStatus(status.Error(ai.Message(err)))
		return out, err
	}
	if !res.Matched {
		metrics.Transitions.WithLabelValues(string(action), "not_recognized").Inc()
		log.Info().Int("compared", res.Compared).Msg("User not recognized")
		s.reporter.SetStatus(status.Error(MsgNotRecognized))
		return out, ErrNotRecognized
	}
	out.User = res.User

	rec, err := s.transition(ctx, action, res.User)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyCheckedIn):
			metrics.Transitions.WithLabelValues(string(action), "already_checked_in").Inc()
			s.reporter.SetStatus(status.Error(fmt.Sprintf(MsgAlreadyCheckedIn, res.User.Name)))
		case errors.Is(err, ErrNotCheckedIn):
			metrics.Transitions.WithLabelValues(string(action), "not_checked_in").Inc()
			s.reporter.SetStatus(status.Error(fmt.Sprintf(MsgNotCheckedIn, res.User.Name)))
		default:
			metrics.Transitions.WithLabelValues(string(action), "storage_error").Inc()
		}
		return out, err
	}
	out.Record = rec

	metrics.Transitions.WithLabelValues(string(action), "ok").Inc()
	log.Info().Str("user_id", res.User.ID).Str("record_id", rec.ID).Msg("Attendance recorded")

	if action == ActionCheckIn {
		s.reporter.SetStatus(status.Success(fmt.Sprintf(MsgCheckedIn, res.User.Name)))
		s.publish(ctx, EventCheckedIn, res.User, rec.ID)
	} else {
		s.reporter.SetStatus(status.Success(fmt.Sprintf(MsgCheckedOut, res.User.Name)))
		s.publish(ctx, EventCheckedOut, res.User, rec.ID)
	}
	return out, nil
}

// transition runs load, apply and save of the attendance log under the records lock.
func (s *Service) transition(ctx context.Context, action Action, u User) (Record, error) {
	unlock, err := s.locker.Lock(ctx, constants.RecordsKey)
	if err != nil {
		return Record{}, s.storageFailure("lock records", err)
	}
	defer unlock()

	records, err := s.records.Load(ctx)
	if err != nil {
		return Record{}, s.storageFailure("load records", err)
	}

	ledger := NewLedger(records, s.now)
	var rec Record
	if action == ActionCheckIn {
		rec, err = ledger.CheckIn(u)
	} else {
		rec, err = ledger.CheckOut(u)
	}
	if err != nil {
		return Record{}, err
	}

	if err := s.records.Save(ctx, ledger.Records()); err != nil {
		return Record{}, s.storageFailure("save records", err)
	}
	metrics.OpenSessions.Set(float64(ledger.OpenCount()))
	return rec, nil
}

// Users returns the roster in registration order.
func (s *Service) Users(ctx context.Context) ([]User, error) {
	users, err := s.roster.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return users, nil
}

// Records returns the attendance log, most-recent-first.
func (s *Service) Records(ctx context.Context) ([]Record, error) {
	records, err := s.records.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return records, nil
}

// Stats counts users, records and open sessions.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return Stats{}, err
	}
	records, err := s.Records(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Users:        len(users),
		Records:      len(records),
		OpenSessions: NewLedger(records, s.now).OpenCount(),
	}, nil
}

func (s *Service) cameraFor(override camera.Camera) camera.Camera {
	if override != nil {
		return override
	}
	return s.camera
}

func (s *Service) storageFailure(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("Storage failure")
	s.reporter.SetStatus(status.Error(MsgStorage))
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func (s *Service) publish(ctx context.Context, eventType string, u User, recordID string) {
	if s.publisher == nil {
		return
	}
	event := Event{
		ID:       uuid.NewString(),
		Type:     eventType,
		UserID:   u.ID,
		UserName: u.Name,
		RecordID: recordID,
		At:       s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}

func hasID(roster []User, id string) bool {
	for _, u := range roster {
		if NormalizeID(u.ID) == id {
			return true
		}
	}
	return false
}
