package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
)

var ErrNoSeats = errors.New("no seats available")

// maxConditionalAttempts bounds the retry when a conditional update misses
// for a reason the follow-up read no longer shows.
const maxConditionalAttempts = 3

type Publisher interface {
	Publish(models.ClassEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(models.ClassEvent) {}

// Mailer sends the transactional emails that follow a review or an
// enrollment. Implementations must not block the caller.
type Mailer interface {
	ClassReviewed(c models.Class)
	StudentEnrolled(email string, c models.Class)
}

type nopMailer struct{}

func (nopMailer) ClassReviewed(models.Class) {}
func (nopMailer) StudentEnrolled(string, models.Class) {}

// EnrollmentService owns cart and enrollment state. Every mutation is a
// single conditional store update; reads only classify a miss.
type EnrollmentService struct {
	store       database.Store
	events      Publisher
	mailer      Mailer
	overbooking bool
}

func NewEnrollmentService(store database.Store, events Publisher, overbooking bool) *EnrollmentService {
	if events == nil {
		events = nopPublisher{}
	}
	return &EnrollmentService{store: store, events: events, mailer: nopMailer{}, overbooking: overbooking}
}

func (s *EnrollmentService) WithMailer(m Mailer) *EnrollmentService {
	if m != nil {
		s.mailer = m
	}
	return s
}

// AddToSelection puts classID in the user's cart. added is false when it was
// already there.
func (s *EnrollmentService) AddToSelection(ctx context.Context, email, classID string) (res *database.UpdateResult, added bool, err error) {
	for attempt := 0; attempt < maxConditionalAttempts; attempt++ {
		res, err = s.store.AddSelectedClass(ctx, email, classID)
		if err != nil {
			return nil, false, err
		}
		if res.MatchedCount > 0 {
			return res, true, nil
		}

		user, err := s.store.FindUserByEmail(ctx, email)
		if err != nil {
			return nil, false, fmt.Errorf("user %s: %w", email, err)
		}
		if user.HasSelected(classID) {
			return nil, false, nil
		}
	}
	return nil, false, fmt.Errorf("select class %s for %s: update kept missing", classID, email)
}

// RemoveFromSelection drops classID from the cart. Removing an id that is not
// there is not an error.
func (s *EnrollmentService) RemoveFromSelection(ctx context.Context, email, classID string) (*database.UpdateResult, error) {
	res, err := s.store.RemoveSelectedClass(ctx, email, classID)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("user %s: %w", email, database.ErrNotFound)
	}
	return res, nil
}

// EnrollStudent adds email to the class roster, takes a seat and bumps the
// count in one update. enrolled is false when the student already was.
func (s *EnrollmentService) EnrollStudent(ctx context.Context, classID, email string) (res *database.UpdateResult, enrolled bool, err error) {
	class, err := s.store.FindClass(ctx, classID)
	if err != nil {
		return nil, false, fmt.Errorf("class %s: %w", classID, err)
	}

	for attempt := 0; attempt < maxConditionalAttempts; attempt++ {
		if class.IsEnrolled(email) {
			return nil, false, nil
		}
		if !s.overbooking && class.AvailableSeats <= 0 {
			return nil, false, ErrNoSeats
		}

		res, err = s.store.AddEnrollment(ctx, classID, email, !s.overbooking)
		if err != nil {
			return nil, false, err
		}
		if res.MatchedCount > 0 {
			s.afterEnroll(ctx, classID, email)
			return res, true, nil
		}

		if class, err = s.store.FindClass(ctx, classID); err != nil {
			return nil, false, fmt.Errorf("class %s: %w", classID, err)
		}
	}
	return nil, false, fmt.Errorf("enroll %s in %s: update kept missing", email, classID)
}

func (s *EnrollmentService) afterEnroll(ctx context.Context, classID, email string) {
	if _, err := s.store.RemoveSelectedClass(ctx, email, classID); err != nil {
		log.Printf("⚠️ Enrolled %s in %s but could not clear the cart entry: %v", email, classID, err)
	}
	if class := s.publishSeats(ctx, models.EventEnrolled, classID); class != nil {
		s.mailer.StudentEnrolled(email, *class)
	}
}

// UnenrollStudent reverses EnrollStudent. removed is false when the student
// was not on the roster.
func (s *EnrollmentService) UnenrollStudent(ctx context.Context, classID, email string) (res *database.UpdateResult, removed bool, err error) {
	res, err = s.store.RemoveEnrollment(ctx, classID, email)
	if err != nil {
		return nil, false, err
	}
	if res.MatchedCount == 0 {
		if _, err := s.store.FindClass(ctx, classID); err != nil {
			return nil, false, fmt.Errorf("class %s: %w", classID, err)
		}
		return nil, false, nil
	}
	s.publishSeats(ctx, models.EventUnenrolled, classID)
	return res, true, nil
}

func (s *EnrollmentService) publishSeats(ctx context.Context, t models.ClassEventType, classID string) *models.Class {
	class, err := s.store.FindClass(ctx, classID)
	if err != nil {
		log.Printf("⚠️ Could not reload class %s for %s event: %v", classID, t, err)
		return nil
	}
	s.events.Publish(models.NewSeatEvent(t, class))
	return class
}

// Recount repairs enrolledStudentsCount drift left by older writers.
func (s *EnrollmentService) Recount(ctx context.Context) (int64, error) {
	n, err := s.store.RecountEnrollments(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.events.Publish(models.ClassEvent{Type: models.EventRecounted, At: time.Now()})
	}
	return n, nil
}
