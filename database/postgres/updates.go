package postgres

import "gorm.io/gorm"

// addSelection appends classID to the cart only while it is absent.
func addSelection(db *gorm.DB, email, classID string) *gorm.DB {
	return db.Model(&userRow{}).
		Where("email = ? AND NOT (? = ANY(selected_classes))", email, classID).
		Update("selected_classes", gorm.Expr("array_append(selected_classes, ?::text)", classID))
}

// enroll runs on a query already scoped to one class. It matches only when
// email is not on the roster and, with requireSeat, a seat is left.
func enroll(q *gorm.DB, email string, requireSeat bool) *gorm.DB {
	q = q.Where("NOT (? = ANY(enrolled_students))", email)
	if requireSeat {
		q = q.Where("available_seats > 0")
	}
	return q.Updates(map[string]interface{}{
		"enrolled_students":       gorm.Expr("array_append(enrolled_students, ?::text)", email),
		"enrolled_students_count": gorm.Expr("enrolled_students_count + 1"),
		"available_seats":         gorm.Expr("available_seats - 1"),
	})
}

func unenroll(q *gorm.DB, email string) *gorm.DB {
	return q.Where("? = ANY(enrolled_students)", email).Updates(map[string]interface{}{
		"enrolled_students":       gorm.Expr("array_remove(enrolled_students, ?::text)", email),
		"enrolled_students_count": gorm.Expr("enrolled_students_count - 1"),
		"available_seats":         gorm.Expr("available_seats + 1"),
	})
}

func recount(db *gorm.DB) *gorm.DB {
	return db.Model(&classRow{}).
		Where("enrolled_students_count <> cardinality(enrolled_students)").
		Update("enrolled_students_count", gorm.Expr("cardinality(enrolled_students)"))
}
