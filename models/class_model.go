package models

type ClassStatus string

const (
	ClassPending  ClassStatus = "Pending"
	ClassApproved ClassStatus = "Approved"
	ClassDenied   ClassStatus = "Denied"
)

func (s ClassStatus) Valid() bool {
	return s == ClassPending || s == ClassApproved || s == ClassDenied
}

type Class struct {
	ID                    string      `json:"_id"`
	Name                  string      `json:"name"`
	Image                 string      `json:"image,omitempty"`
	InstructorName        string      `json:"instructorName,omitempty"`
	InstructorEmail       string      `json:"instructorEmail"`
	Price                 float64     `json:"price"`
	Status                ClassStatus `json:"status"`
	AvailableSeats        int         `json:"availableSeats"`
	EnrolledStudents      []string    `json:"enrolledStudents"`
	EnrolledStudentsCount int         `json:"enrolledStudentsCount"`
	Feedback              string      `json:"feedback,omitempty"`
}

func (c *Class) IsEnrolled(email string) bool {
	for _, e := range c.EnrolledStudents {
		if e == email {
			return true
		}
	}
	return false
}

// ClassPatch carries the instructor-editable fields. Nil fields are left
// untouched. Status and enrollment bookkeeping are not patchable.
type ClassPatch struct {
	Name           *string  `json:"name,omitempty"`
	Image          *string  `json:"image,omitempty"`
	InstructorName *string  `json:"instructorName,omitempty"`
	Price          *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	AvailableSeats *int     `json:"availableSeats,omitempty" validate:"omitempty,gte=0"`
}

func (p ClassPatch) Empty() bool {
	return p.Name == nil && p.Image == nil && p.InstructorName == nil &&
		p.Price == nil && p.AvailableSeats == nil
}

// ClassFilter mirrors the GET /classes query: Status wins over
// InstructorEmail when both are set.
type ClassFilter struct {
	Status          ClassStatus
	InstructorEmail string
	EnrolledEmail   string
	SortByPopular   bool
}
