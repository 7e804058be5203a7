package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// selectionAdd matches the user only while classID is not in the cart yet.
func selectionAdd(email, classID string) (filter, update bson.M) {
	return bson.M{"email": email, "selectedClasses": bson.M{"$ne": classID}},
		bson.M{"$push": bson.M{"selectedClasses": classID}}
}

// enrollment matches only when email is not on the roster and, with
// requireSeat, a seat is left. Roster, count and seats move in one update.
func enrollment(email string, requireSeat bool) (filter, update bson.M) {
	filter = bson.M{"enrolledStudents": bson.M{"$ne": email}}
	if requireSeat {
		filter["availableSeats"] = bson.M{"$gt": 0}
	}
	return filter, bson.M{
		"$addToSet": bson.M{"enrolledStudents": email},
		"$inc":      bson.M{"enrolledStudentsCount": 1, "availableSeats": -1},
	}
}

func unenrollment(email string) (filter, update bson.M) {
	return bson.M{"enrolledStudents": email}, bson.M{
		"$pull": bson.M{"enrolledStudents": email},
		"$inc":  bson.M{"enrolledStudentsCount": -1, "availableSeats": 1},
	}
}

// recount selects classes whose count disagrees with the roster size and
// rewrites the count from it.
func recount() (bson.M, mongo.Pipeline) {
	size := bson.M{"$size": bson.M{"$ifNull": bson.A{"$enrolledStudents", bson.A{}}}}
	return bson.M{"$expr": bson.M{"$ne": bson.A{"$enrolledStudentsCount", size}}},
		mongo.Pipeline{{{Key: "$set", Value: bson.M{"enrolledStudentsCount": size}}}}
}
