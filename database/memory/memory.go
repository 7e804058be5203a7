// Package memory is a process-local Store. Every method holds one mutex, so
// each call behaves like a single-document update in the real stores.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
)

var _ database.Store = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	users   []*models.User
	classes []*models.Class
}

func New() *Store {
	return &Store{}
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

func ack(matched, modified int64) *database.UpdateResult {
	return &database.UpdateResult{Acknowledged: true, MatchedCount: matched, ModifiedCount: modified}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func copyUser(u *models.User) models.User {
	out := *u
	out.SelectedClasses = append([]string(nil), u.SelectedClasses...)
	return out
}

func copyClass(c *models.Class) models.Class {
	out := *c
	out.EnrolledStudents = append([]string{}, c.EnrolledStudents...)
	return out
}

func (s *Store) userByEmail(email string) *models.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Store) class(id string) *models.Class {
	for _, c := range s.classes {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) ListUsers(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.User{}
	for _, u := range s.users {
		if role != models.RoleUnset && u.Role != role {
			continue
		}
		out = append(out, copyUser(u))
	}
	return out, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByEmail(email)
	if u == nil {
		return nil, database.ErrNotFound
	}
	out := copyUser(u)
	return &out, nil
}

func (s *Store) InsertUser(_ context.Context, u *models.User) (*database.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByEmail(u.Email) != nil {
		return nil, database.ErrDuplicate
	}
	stored := copyUser(u)
	stored.ID = uuid.NewString()
	s.users = append(s.users, &stored)
	u.ID = stored.ID
	return &database.InsertResult{Acknowledged: true, InsertedID: stored.ID}, nil
}

func (s *Store) SetUserRole(_ context.Context, id string, role models.Role) (*database.UpdateResult, error) {
	if !validID(id) {
		return nil, database.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID != id {
			continue
		}
		if u.Role == role {
			return ack(1, 0), nil
		}
		u.Role = role
		return ack(1, 1), nil
	}
	return ack(0, 0), nil
}

func (s *Store) AddSelectedClass(_ context.Context, email, classID string) (*database.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByEmail(email)
	if u == nil || u.HasSelected(classID) {
		return ack(0, 0), nil
	}
	u.SelectedClasses = append(u.SelectedClasses, classID)
	return ack(1, 1), nil
}

func (s *Store) RemoveSelectedClass(_ context.Context, email, classID string) (*database.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByEmail(email)
	if u == nil {
		return ack(0, 0), nil
	}
	kept := u.SelectedClasses[:0]
	for _, id := range u.SelectedClasses {
		if id != classID {
			kept = append(kept, id)
		}
	}
	modified := int64(len(u.SelectedClasses) - len(kept))
	u.SelectedClasses = kept
	if modified > 0 {
		modified = 1
	}
	return ack(1, modified), nil
}

func (s *Store) ListClasses(_ context.Context, f models.ClassFilter) ([]models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Class{}
	for _, c := range s.classes {
		switch {
		case f.Status != "":
			if c.Status != f.Status {
				continue
			}
		case f.InstructorEmail != "":
			if c.InstructorEmail != f.InstructorEmail {
				continue
			}
		}
		if f.EnrolledEmail != "" && !c.IsEnrolled(f.EnrolledEmail) {
			continue
		}
		out = append(out, copyClass(c))
	}
	if f.SortByPopular {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EnrolledStudentsCount > out[j].EnrolledStudentsCount
		})
	}
	return out, nil
}

func (s *Store) FindClass(_ context.Context, id string) (*models.Class, error) {
	if !validID(id) {
		return nil, database.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.class(id)
	if c == nil {
		return nil, database.ErrNotFound
	}
	out := copyClass(c)
	return &out, nil
}

func (s *Store) FindClassesByIDs(_ context.Context, ids []string) ([]models.Class, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !validID(id) {
			return nil, database.ErrInvalidID
		}
		want[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Class{}
	for _, c := range s.classes {
		if want[c.ID] {
			out = append(out, copyClass(c))
		}
	}
	return out, nil
}

func (s *Store) InsertClass(_ context.Context, c *models.Class) (*database.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyClass(c)
	stored.ID = uuid.NewString()
	s.classes = append(s.classes, &stored)
	c.ID = stored.ID
	return &database.InsertResult{Acknowledged: true, InsertedID: stored.ID}, nil
}

func (s *Store) withClass(id string, fn func(c *models.Class) bool) (*database.UpdateResult, error) {
	if !validID(id) {
		return nil, database.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.class(id)
	if c == nil {
		return ack(0, 0), nil
	}
	if fn(c) {
		return ack(1, 1), nil
	}
	return ack(1, 0), nil
}

func (s *Store) UpdateClass(_ context.Context, id string, p models.ClassPatch) (*database.UpdateResult, error) {
	return s.withClass(id, func(c *models.Class) bool {
		before := copyClass(c)
		if p.Name != nil {
			c.Name = *p.Name
		}
		if p.Image != nil {
			c.Image = *p.Image
		}
		if p.InstructorName != nil {
			c.InstructorName = *p.InstructorName
		}
		if p.Price != nil {
			c.Price = *p.Price
		}
		if p.AvailableSeats != nil {
			c.AvailableSeats = *p.AvailableSeats
		}
		return before.Name != c.Name || before.Image != c.Image ||
			before.InstructorName != c.InstructorName || before.Price != c.Price ||
			before.AvailableSeats != c.AvailableSeats
	})
}

func (s *Store) SetClassStatus(_ context.Context, id string, status models.ClassStatus) (*database.UpdateResult, error) {
	return s.withClass(id, func(c *models.Class) bool {
		if c.Status == status {
			return false
		}
		c.Status = status
		return true
	})
}

func (s *Store) SetClassFeedback(_ context.Context, id, feedback string) (*database.UpdateResult, error) {
	return s.withClass(id, func(c *models.Class) bool {
		if c.Feedback == feedback {
			return false
		}
		c.Feedback = feedback
		return true
	})
}

func (s *Store) AddEnrollment(_ context.Context, id, email string, requireSeat bool) (*database.UpdateResult, error) {
	if !validID(id) {
		return nil, database.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.class(id)
	if c == nil || c.IsEnrolled(email) || (requireSeat && c.AvailableSeats <= 0) {
		return ack(0, 0), nil
	}
	c.EnrolledStudents = append(c.EnrolledStudents, email)
	c.EnrolledStudentsCount++
	c.AvailableSeats--
	return ack(1, 1), nil
}

func (s *Store) RemoveEnrollment(_ context.Context, id, email string) (*database.UpdateResult, error) {
	if !validID(id) {
		return nil, database.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.class(id)
	if c == nil || !c.IsEnrolled(email) {
		return ack(0, 0), nil
	}
	kept := make([]string, 0, len(c.EnrolledStudents))
	for _, e := range c.EnrolledStudents {
		if e != email {
			kept = append(kept, e)
		}
	}
	c.EnrolledStudents = kept
	c.EnrolledStudentsCount--
	c.AvailableSeats++
	return ack(1, 1), nil
}

func (s *Store) RecountEnrollments(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, c := range s.classes {
		if c.EnrolledStudentsCount != len(c.EnrolledStudents) {
			c.EnrolledStudentsCount = len(c.EnrolledStudents)
			n++
		}
	}
	return n, nil
}

// Seed stores classes as-is, keeping caller-supplied ids. Test helper for
// fixtures that need a drifted count or a specific status.
func (s *Store) Seed(classes ...models.Class) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(classes))
	for i := range classes {
		c := copyClass(&classes[i])
		if strings.TrimSpace(c.ID) == "" {
			c.ID = uuid.NewString()
		}
		s.classes = append(s.classes, &c)
		ids = append(ids, c.ID)
	}
	return ids
}
