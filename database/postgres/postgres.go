package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var _ database.Store = (*Store)(nil)

type userRow struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name            string         `gorm:"size:255"`
	Email           string         `gorm:"size:255;not null;unique"`
	PhotoURL        string         `gorm:"size:512"`
	Role            string         `gorm:"size:20;not null;default:''"`
	SelectedClasses pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) model() models.User {
	return models.User{
		ID:              r.ID.String(),
		Name:            r.Name,
		Email:           r.Email,
		PhotoURL:        r.PhotoURL,
		Role:            models.Role(r.Role),
		SelectedClasses: []string(r.SelectedClasses),
	}
}

type classRow struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name                  string         `gorm:"size:255;not null"`
	Image                 string         `gorm:"size:512"`
	InstructorName        string         `gorm:"size:255"`
	InstructorEmail       string         `gorm:"size:255;not null;index"`
	Price                 float64        `gorm:"type:numeric(10,2);default:0.00"`
	Status                string         `gorm:"size:20;not null;default:'Pending';index"`
	AvailableSeats        int            `gorm:"not null;default:0"`
	EnrolledStudents      pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	EnrolledStudentsCount int            `gorm:"not null;default:0"`
	Feedback              string         `gorm:"type:text"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (classRow) TableName() string { return "classes" }

func (r classRow) model() models.Class {
	enrolled := []string(r.EnrolledStudents)
	if enrolled == nil {
		enrolled = []string{}
	}
	return models.Class{
		ID:                    r.ID.String(),
		Name:                  r.Name,
		Image:                 r.Image,
		InstructorName:        r.InstructorName,
		InstructorEmail:       r.InstructorEmail,
		Price:                 r.Price,
		Status:                models.ClassStatus(r.Status),
		AvailableSeats:        r.AvailableSeats,
		EnrolledStudents:      enrolled,
		EnrolledStudentsCount: r.EnrolledStudentsCount,
		Feedback:              r.Feedback,
	}
}

type Store struct {
	db *gorm.DB
}

func Connect(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := db.AutoMigrate(&userRow{}, &classRow{}); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	log.Println("✅ Database connected and migrated successfully")
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, database.ErrInvalidID
	}
	return u, nil
}

// result maps RowsAffected onto the acknowledgement. Postgres reports
// matched rows, so a matching no-op still counts as modified.
func result(tx *gorm.DB) (*database.UpdateResult, error) {
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &database.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  tx.RowsAffected,
		ModifiedCount: tx.RowsAffected,
	}, nil
}

func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	q := s.db.WithContext(ctx).Order("created_at asc")
	if role != models.RoleUnset {
		q = q.Where("role = ?", string(role))
	}

	var rows []userRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u := row.model()
	return &u, nil
}

func (s *Store) InsertUser(ctx context.Context, u *models.User) (*database.InsertResult, error) {
	selected := pq.StringArray(u.SelectedClasses)
	if selected == nil {
		selected = pq.StringArray{}
	}
	row := userRow{
		Name:            u.Name,
		Email:           u.Email,
		PhotoURL:        u.PhotoURL,
		Role:            string(u.Role),
		SelectedClasses: selected,
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, database.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	u.ID = row.ID.String()
	return &database.InsertResult{Acknowledged: true, InsertedID: u.ID}, nil
}

func (s *Store) SetUserRole(ctx context.Context, id string, role models.Role) (*database.UpdateResult, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return result(s.db.WithContext(ctx).Model(&userRow{}).
		Where("id = ?", uid).
		Update("role", string(role)))
}

func (s *Store) AddSelectedClass(ctx context.Context, email, classID string) (*database.UpdateResult, error) {
	return result(addSelection(s.db.WithContext(ctx), email, classID))
}

func (s *Store) RemoveSelectedClass(ctx context.Context, email, classID string) (*database.UpdateResult, error) {
	return result(s.db.WithContext(ctx).Model(&userRow{}).
		Where("email = ?", email).
		Update("selected_classes", gorm.Expr("array_remove(selected_classes, ?::text)", classID)))
}

func classRows(rows []classRow) []models.Class {
	out := make([]models.Class, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out
}

func (s *Store) ListClasses(ctx context.Context, f models.ClassFilter) ([]models.Class, error) {
	q := s.db.WithContext(ctx).Model(&classRow{})
	switch {
	case f.Status != "":
		q = q.Where("status = ?", string(f.Status))
	case f.InstructorEmail != "":
		q = q.Where("instructor_email = ?", f.InstructorEmail)
	}
	if f.EnrolledEmail != "" {
		q = q.Where("? = ANY(enrolled_students)", f.EnrolledEmail)
	}
	if f.SortByPopular {
		q = q.Order("enrolled_students_count desc")
	} else {
		q = q.Order("created_at asc")
	}

	var rows []classRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return classRows(rows), nil
}

func (s *Store) FindClass(ctx context.Context, id string) (*models.Class, error) {
	cid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var row classRow
	err = s.db.WithContext(ctx).First(&row, "id = ?", cid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c := row.model()
	return &c, nil
}

func (s *Store) FindClassesByIDs(ctx context.Context, ids []string) ([]models.Class, error) {
	cids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		cid, err := parseID(id)
		if err != nil {
			return nil, err
		}
		cids = append(cids, cid)
	}
	if len(cids) == 0 {
		return []models.Class{}, nil
	}

	var rows []classRow
	if err := s.db.WithContext(ctx).Where("id IN ?", cids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return classRows(rows), nil
}

func (s *Store) InsertClass(ctx context.Context, c *models.Class) (*database.InsertResult, error) {
	enrolled := pq.StringArray(c.EnrolledStudents)
	if enrolled == nil {
		enrolled = pq.StringArray{}
	}
	row := classRow{
		Name:                  c.Name,
		Image:                 c.Image,
		InstructorName:        c.InstructorName,
		InstructorEmail:       c.InstructorEmail,
		Price:                 c.Price,
		Status:                string(c.Status),
		AvailableSeats:        c.AvailableSeats,
		EnrolledStudents:      enrolled,
		EnrolledStudentsCount: c.EnrolledStudentsCount,
		Feedback:              c.Feedback,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	c.ID = row.ID.String()
	return &database.InsertResult{Acknowledged: true, InsertedID: c.ID}, nil
}

func (s *Store) classUpdate(ctx context.Context, id string) (*gorm.DB, error) {
	cid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.db.WithContext(ctx).Model(&classRow{}).Where("id = ?", cid), nil
}

func (s *Store) UpdateClass(ctx context.Context, id string, p models.ClassPatch) (*database.UpdateResult, error) {
	set := map[string]interface{}{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.InstructorName != nil {
		set["instructor_name"] = *p.InstructorName
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.AvailableSeats != nil {
		set["available_seats"] = *p.AvailableSeats
	}
	if len(set) == 0 {
		return &database.UpdateResult{Acknowledged: true}, nil
	}

	q, err := s.classUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return result(q.Updates(set))
}

func (s *Store) SetClassStatus(ctx context.Context, id string, status models.ClassStatus) (*database.UpdateResult, error) {
	q, err := s.classUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return result(q.Update("status", string(status)))
}

func (s *Store) SetClassFeedback(ctx context.Context, id, feedback string) (*database.UpdateResult, error) {
	q, err := s.classUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return result(q.Update("feedback", feedback))
}

func (s *Store) AddEnrollment(ctx context.Context, id, email string, requireSeat bool) (*database.UpdateResult, error) {
	q, err := s.classUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return result(enroll(q, email, requireSeat))
}

func (s *Store) RemoveEnrollment(ctx context.Context, id, email string) (*database.UpdateResult, error) {
	q, err := s.classUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return result(unenroll(q, email))
}

func (s *Store) RecountEnrollments(ctx context.Context) (int64, error) {
	tx := recount(s.db.WithContext(ctx))
	return tx.RowsAffected, tx.Error
}
