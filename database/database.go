package database

import (
	"context"
	"errors"
	"log"

	"github.com/smarifurrahman/linguistic-horizons-server/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
	ErrDuplicate = errors.New("duplicate key")
)

// UpdateResult mirrors the document store acknowledgement the web client reads.
type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// Store is the document store behind every handler. Implementations must
// apply AddSelectedClass, AddEnrollment and RemoveEnrollment as single
// conditional updates: a zero MatchedCount means the filter did not match
// and the caller decides why.
type Store interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	// ListUsers returns every user, or only those with role when it is set.
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) (*InsertResult, error)
	SetUserRole(ctx context.Context, id string, role models.Role) (*UpdateResult, error)
	// AddSelectedClass appends classID to the cart only when it is absent.
	AddSelectedClass(ctx context.Context, email, classID string) (*UpdateResult, error)
	RemoveSelectedClass(ctx context.Context, email, classID string) (*UpdateResult, error)

	ListClasses(ctx context.Context, f models.ClassFilter) ([]models.Class, error)
	FindClass(ctx context.Context, id string) (*models.Class, error)
	FindClassesByIDs(ctx context.Context, ids []string) ([]models.Class, error)
	InsertClass(ctx context.Context, c *models.Class) (*InsertResult, error)
	UpdateClass(ctx context.Context, id string, p models.ClassPatch) (*UpdateResult, error)
	SetClassStatus(ctx context.Context, id string, status models.ClassStatus) (*UpdateResult, error)
	SetClassFeedback(ctx context.Context, id, feedback string) (*UpdateResult, error)
	// AddEnrollment adds email to enrolledStudents, bumps the count and takes
	// a seat. It matches only when email is not enrolled yet and, with
	// requireSeat, only when availableSeats > 0.
	AddEnrollment(ctx context.Context, id, email string, requireSeat bool) (*UpdateResult, error)
	// RemoveEnrollment is the inverse and matches only enrolled emails.
	RemoveEnrollment(ctx context.Context, id, email string) (*UpdateResult, error)
	// RecountEnrollments rewrites enrolledStudentsCount from the set size
	// wherever they disagree and returns how many classes changed.
	RecountEnrollments(ctx context.Context) (int64, error)
}

// SeedAdmin makes sure email exists with the Admin role.
func SeedAdmin(ctx context.Context, s Store, email string) error {
	if email == "" {
		log.Println("ADMIN_EMAIL not set, skipping admin seed.")
		return nil
	}

	user, err := s.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if user == nil {
		_, err := s.InsertUser(ctx, &models.User{Email: email, Role: models.RoleAdmin})
		if err != nil && !errors.Is(err, ErrDuplicate) {
			return err
		}
		log.Println("✅ Admin user seeded successfully")
		return nil
	}

	if user.Role == models.RoleAdmin {
		log.Println("Admin user already exists.")
		return nil
	}

	if _, err := s.SetUserRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return err
	}
	log.Printf("✅ Promoted %s to admin", email)
	return nil
}
