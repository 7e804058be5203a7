package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ database.Store = (*Store)(nil)

type Store struct {
	client  *mongo.Client
	users   *mongo.Collection
	classes *mongo.Collection
}

// Connect opens one long-lived client for the whole process and makes sure
// users.email is unique.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:  client,
		users:   db.Collection("users"),
		classes: db.Collection("classes"),
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("⚠️ Could not ensure unique email index: %v", err)
	}

	log.Println("✅ Pinged your deployment. You successfully connected to MongoDB!")
	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type userDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name,omitempty"`
	Email           string             `bson:"email"`
	PhotoURL        string             `bson:"photoURL,omitempty"`
	Role            string             `bson:"role,omitempty"`
	SelectedClasses []string           `bson:"selectedClasses,omitempty"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Email:           d.Email,
		PhotoURL:        d.PhotoURL,
		Role:            models.Role(d.Role),
		SelectedClasses: d.SelectedClasses,
	}
}

type classDoc struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Name                  string             `bson:"name"`
	Image                 string             `bson:"image,omitempty"`
	InstructorName        string             `bson:"instructorName,omitempty"`
	InstructorEmail       string             `bson:"instructorEmail"`
	Price                 float64            `bson:"price"`
	Status                string             `bson:"status"`
	AvailableSeats        int                `bson:"availableSeats"`
	EnrolledStudents      []string           `bson:"enrolledStudents"`
	EnrolledStudentsCount int                `bson:"enrolledStudentsCount"`
	Feedback              string             `bson:"feedback,omitempty"`
}

func (d classDoc) model() models.Class {
	enrolled := d.EnrolledStudents
	if enrolled == nil {
		enrolled = []string{}
	}
	return models.Class{
		ID:                    d.ID.Hex(),
		Name:                  d.Name,
		Image:                 d.Image,
		InstructorName:        d.InstructorName,
		InstructorEmail:       d.InstructorEmail,
		Price:                 d.Price,
		Status:                models.ClassStatus(d.Status),
		AvailableSeats:        d.AvailableSeats,
		EnrolledStudents:      enrolled,
		EnrolledStudentsCount: d.EnrolledStudentsCount,
		Feedback:              d.Feedback,
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, database.ErrInvalidID
	}
	return oid, nil
}

func updateResult(r *mongo.UpdateResult) *database.UpdateResult {
	out := &database.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  r.MatchedCount,
		ModifiedCount: r.ModifiedCount,
		UpsertedCount: r.UpsertedCount,
	}
	if oid, ok := r.UpsertedID.(primitive.ObjectID); ok {
		hex := oid.Hex()
		out.UpsertedID = &hex
	}
	return out
}

func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	filter := bson.M{}
	if role != models.RoleUnset {
		filter["role"] = string(role)
	}

	cur, err := s.users.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]models.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u := doc.model()
	return &u, nil
}

func (s *Store) InsertUser(ctx context.Context, u *models.User) (*database.InsertResult, error) {
	res, err := s.users.InsertOne(ctx, userDoc{
		Name:            u.Name,
		Email:           u.Email,
		PhotoURL:        u.PhotoURL,
		Role:            string(u.Role),
		SelectedClasses: u.SelectedClasses,
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil, database.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	oid := res.InsertedID.(primitive.ObjectID)
	u.ID = oid.Hex()
	return &database.InsertResult{Acknowledged: true, InsertedID: u.ID}, nil
}

func (s *Store) SetUserRole(ctx context.Context, id string, role models.Role) (*database.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"role": string(role)}})
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func (s *Store) AddSelectedClass(ctx context.Context, email, classID string) (*database.UpdateResult, error) {
	filter, update := selectionAdd(email, classID)
	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func (s *Store) RemoveSelectedClass(ctx context.Context, email, classID string) (*database.UpdateResult, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$pull": bson.M{"selectedClasses": classID}},
	)
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func (s *Store) findClasses(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Class, error) {
	cur, err := s.classes.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []classDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]models.Class, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) ListClasses(ctx context.Context, f models.ClassFilter) ([]models.Class, error) {
	filter := bson.M{}
	switch {
	case f.Status != "":
		filter["status"] = string(f.Status)
	case f.InstructorEmail != "":
		filter["instructorEmail"] = f.InstructorEmail
	}
	if f.EnrolledEmail != "" {
		filter["enrolledStudents"] = bson.M{"$in": bson.A{f.EnrolledEmail}}
	}

	opts := options.Find()
	if f.SortByPopular {
		opts.SetSort(bson.D{{Key: "enrolledStudentsCount", Value: -1}})
	}
	return s.findClasses(ctx, filter, opts)
}

func (s *Store) FindClass(ctx context.Context, id string) (*models.Class, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc classDoc
	err = s.classes.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c := doc.model()
	return &c, nil
}

func (s *Store) FindClassesByIDs(ctx context.Context, ids []string) ([]models.Class, error) {
	oids := make(bson.A, 0, len(ids))
	for _, id := range ids {
		oid, err := objectID(id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	return s.findClasses(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (s *Store) InsertClass(ctx context.Context, c *models.Class) (*database.InsertResult, error) {
	enrolled := c.EnrolledStudents
	if enrolled == nil {
		enrolled = []string{}
	}
	res, err := s.classes.InsertOne(ctx, classDoc{
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
	})
	if err != nil {
		return nil, err
	}
	oid := res.InsertedID.(primitive.ObjectID)
	c.ID = oid.Hex()
	return &database.InsertResult{Acknowledged: true, InsertedID: c.ID}, nil
}

func (s *Store) updateClass(ctx context.Context, id string, filter bson.M, update bson.M) (*database.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	filter["_id"] = oid
	res, err := s.classes.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func (s *Store) UpdateClass(ctx context.Context, id string, p models.ClassPatch) (*database.UpdateResult, error) {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.InstructorName != nil {
		set["instructorName"] = *p.InstructorName
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.AvailableSeats != nil {
		set["availableSeats"] = *p.AvailableSeats
	}
	if len(set) == 0 {
		return &database.UpdateResult{Acknowledged: true}, nil
	}
	return s.updateClass(ctx, id, bson.M{}, bson.M{"$set": set})
}

func (s *Store) SetClassStatus(ctx context.Context, id string, status models.ClassStatus) (*database.UpdateResult, error) {
	return s.updateClass(ctx, id, bson.M{}, bson.M{"$set": bson.M{"status": string(status)}})
}

func (s *Store) SetClassFeedback(ctx context.Context, id, feedback string) (*database.UpdateResult, error) {
	return s.updateClass(ctx, id, bson.M{}, bson.M{"$set": bson.M{"feedback": feedback}})
}

func (s *Store) AddEnrollment(ctx context.Context, id, email string, requireSeat bool) (*database.UpdateResult, error) {
	filter, update := enrollment(email, requireSeat)
	return s.updateClass(ctx, id, filter, update)
}

func (s *Store) RemoveEnrollment(ctx context.Context, id, email string) (*database.UpdateResult, error) {
	filter, update := unenrollment(email)
	return s.updateClass(ctx, id, filter, update)
}

func (s *Store) RecountEnrollments(ctx context.Context) (int64, error) {
	filter, pipeline := recount()
	res, err := s.classes.UpdateMany(ctx, filter, pipeline)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
