package services

import (
	"context"
	"sync"
	"testing"

	"github.com/smarifurrahman/linguistic-horizons-server/database/memory"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []models.ClassEvent
}

func (r *recordedEvents) Publish(e models.ClassEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordedEvents) types() []models.ClassEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ClassEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type recordedMail struct {
	mu       sync.Mutex
	reviewed []models.Class
	enrolled []string
}

func (m *recordedMail) ClassReviewed(c models.Class) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviewed = append(m.reviewed, c)
}

func (m *recordedMail) StudentEnrolled(email string, _ models.Class) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrolled = append(m.enrolled, email)
}

func addUser(t *testing.T, store *memory.Store, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, Role: role}
	if _, err := store.InsertUser(context.Background(), u); err != nil {
		t.Fatalf("insert user %s: %v", email, err)
	}
	return u
}

func mustClass(t *testing.T, store *memory.Store, id string) *models.Class {
	t.Helper()
	c, err := store.FindClass(context.Background(), id)
	if err != nil {
		t.Fatalf("find class %s: %v", id, err)
	}
	return c
}
