package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
	"github.com/xuri/excelize/v2"
)

const rosterSheet = "Roster"

type RosterService struct {
	store database.Store
}

func NewRosterService(store database.Store) *RosterService {
	return &RosterService{store: store}
}

// Export renders the class roster as an .xlsx workbook. Only the class's
// instructor or an admin may export it.
func (s *RosterService) Export(ctx context.Context, classID string, requester *models.User) (*bytes.Buffer, string, error) {
	class, err := s.store.FindClass(ctx, classID)
	if err != nil {
		return nil, "", fmt.Errorf("class %s: %w", classID, err)
	}
	if !requester.HasRole(models.RoleAdmin) && class.InstructorEmail != requester.Email {
		return nil, "", ErrNotOwner
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing roster workbook: %v", err)
		}
	}()

	idx, err := f.NewSheet(rosterSheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	if err := f.SetSheetRow(rosterSheet, "A1", &[]interface{}{"#", "Email", "Name"}); err != nil {
		return nil, "", err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", err
	}
	if err := f.SetCellStyle(rosterSheet, "A1", "C1", bold); err != nil {
		return nil, "", err
	}
	if err := f.SetColWidth(rosterSheet, "B", "C", 36); err != nil {
		return nil, "", err
	}

	for i, email := range class.EnrolledStudents {
		name := ""
		user, err := s.store.FindUserByEmail(ctx, email)
		switch {
		case err == nil:
			name = user.Name
		case !errors.Is(err, database.ErrNotFound):
			return nil, "", err
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(rosterSheet, cell, &[]interface{}{i + 1, email, name}); err != nil {
			return nil, "", err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("roster-%s.xlsx", class.ID), nil
}
