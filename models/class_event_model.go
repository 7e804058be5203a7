package models

import "time"

type ClassEventType string

const (
	EventClassCreated ClassEventType = "class.created"
	EventClassStatus  ClassEventType = "class.status"
	EventEnrolled     ClassEventType = "class.enrolled"
	EventUnenrolled   ClassEventType = "class.unenrolled"
	EventRecounted    ClassEventType = "classes.recounted"
)

// ClassEvent is pushed to live feed subscribers. It never carries student
// emails.
type ClassEvent struct {
	Type                  ClassEventType `json:"type"`
	ClassID               string         `json:"classId,omitempty"`
	Status                ClassStatus    `json:"status,omitempty"`
	AvailableSeats        *int           `json:"availableSeats,omitempty"`
	EnrolledStudentsCount *int           `json:"enrolledStudentsCount,omitempty"`
	At                    time.Time      `json:"at"`
}

func NewSeatEvent(t ClassEventType, c *Class) ClassEvent {
	seats, count := c.AvailableSeats, c.EnrolledStudentsCount
	return ClassEvent{
		Type:                  t,
		ClassID:               c.ID,
		Status:                c.Status,
		AvailableSeats:        &seats,
		EnrolledStudentsCount: &count,
		At:                    time.Now(),
	}
}
