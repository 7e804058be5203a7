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

var (
	ErrNotOwner     = errors.New("class belongs to another instructor")
	ErrEmptyPatch   = errors.New("nothing to update")
	ErrInvalidState = errors.New("invalid class status")
)

type ClassService struct {
	store  database.Store
	events Publisher
	mailer Mailer
}

func NewClassService(store database.Store, events Publisher) *ClassService {
	if events == nil {
		events = nopPublisher{}
	}
	return &ClassService{store: store, events: events, mailer: nopMailer{}}
}

func (s *ClassService) WithMailer(m Mailer) *ClassService {
	if m != nil {
		s.mailer = m
	}
	return s
}

// Submit stores a new class for review. Whatever the payload says, the
// class starts Pending with an empty roster and belongs to the caller.
func (s *ClassService) Submit(ctx context.Context, instructorEmail string, c *models.Class) (*database.InsertResult, error) {
	c.InstructorEmail = instructorEmail
	c.Status = models.ClassPending
	c.EnrolledStudents = []string{}
	c.EnrolledStudentsCount = 0
	c.Feedback = ""

	res, err := s.store.InsertClass(ctx, c)
	if err != nil {
		return nil, err
	}
	s.events.Publish(models.ClassEvent{
		Type:    models.EventClassCreated,
		ClassID: c.ID,
		Status:  c.Status,
		At:      time.Now(),
	})
	return res, nil
}

// SetStatus moves a class to Approved or Denied. Nothing moves a class back
// to Pending; overriding one decision with the other is allowed.
func (s *ClassService) SetStatus(ctx context.Context, id string, status models.ClassStatus) (*database.UpdateResult, error) {
	if !status.Valid() || status == models.ClassPending {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, status)
	}

	res, err := s.store.SetClassStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("class %s: %w", id, database.ErrNotFound)
	}
	s.events.Publish(models.ClassEvent{
		Type:    models.EventClassStatus,
		ClassID: id,
		Status:  status,
		At:      time.Now(),
	})
	s.notifyReview(ctx, id)
	return res, nil
}

func (s *ClassService) notifyReview(ctx context.Context, id string) {
	class, err := s.store.FindClass(ctx, id)
	if err != nil {
		log.Printf("⚠️ Could not reload class %s for review email: %v", id, err)
		return
	}
	s.mailer.ClassReviewed(*class)
}

func (s *ClassService) SetFeedback(ctx context.Context, id, feedback string) (*database.UpdateResult, error) {
	res, err := s.store.SetClassFeedback(ctx, id, feedback)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("class %s: %w", id, database.ErrNotFound)
	}
	return res, nil
}

// Update applies an instructor's patch to one of their own classes.
// availableSeats stays patchable here, outside the enrollment path.
func (s *ClassService) Update(ctx context.Context, instructorEmail, id string, p models.ClassPatch) (*database.UpdateResult, error) {
	if p.Empty() {
		return nil, ErrEmptyPatch
	}

	class, err := s.store.FindClass(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", id, err)
	}
	if class.InstructorEmail != instructorEmail {
		return nil, ErrNotOwner
	}
	return s.store.UpdateClass(ctx, id, p)
}
