package excel

import (
	"io"

	"Gin_postgres_redis_borrow_admin/models"
)

var accountHeader = []string{"Username", "Account Type", "Full Name", "Email", "Delete flag"}

// WriteAccounts never exports password hashes.
func WriteAccounts(w io.Writer, accs []models.Account) error {
	rows := make([][]any, 0, len(accs))
	for _, a := range accs {
		rows = append(rows, []any{a.Username, string(a.AccountType), a.FullName, a.Email, a.DeleteFlag})
	}
	return write(w, "Accounts", accountHeader, rows)
}

// ReadAccounts leaves Password empty, so new accounts get a generated one.
func ReadAccounts(r io.Reader) ([]models.Account, error) {
	rows, err := read(r, accountHeader)
	if err != nil {
		return nil, err
	}
	out := make([]models.Account, 0, len(rows))
	for _, rw := range rows {
		del, err := rw.boolean("Delete flag")
		if err != nil {
			return nil, err
		}
		out = append(out, models.Account{
			Username:    rw.get("Username"),
			AccountType: models.AccountType(rw.get("Account Type")),
			FullName:    rw.get("Full Name"),
			Email:       rw.get("Email"),
			DeleteFlag:  del,
		})
	}
	return out, nil
}

var studentHeader = []string{
	"Student Number", "First Name", "Middle Name", "Last Name", "Email", "Phone Number",
	"Birthday", "Year Level", "Year Section", "Delete flag",
}

func WriteStudents(w io.Writer, sts []models.Student) error {
	rows := make([][]any, 0, len(sts))
	for _, s := range sts {
		var year any = ""
		if s.YearLevel != nil {
			year = s.YearLevel.YearNumber
		}
		section := ""
		if s.YearSection != nil {
			section = s.YearSection.SectionName
		}
		rows = append(rows, []any{
			s.StudentNumber, s.FirstName, s.MiddleName, s.LastName, s.Email, s.PhoneNumber,
			formatTime(s.Birthday), year, section, s.DeleteFlag,
		})
	}
	return write(w, "Students", studentHeader, rows)
}

// ReadStudents returns students whose YearLevel and YearSection carry only
// their natural keys.
func ReadStudents(r io.Reader) ([]models.Student, error) {
	rows, err := read(r, studentHeader)
	if err != nil {
		return nil, err
	}
	out := make([]models.Student, 0, len(rows))
	for _, rw := range rows {
		birthday, err := rw.timestamp("Birthday")
		if err != nil {
			return nil, err
		}
		year, err := rw.number("Year Level")
		if err != nil {
			return nil, err
		}
		del, err := rw.boolean("Delete flag")
		if err != nil {
			return nil, err
		}
		out = append(out, models.Student{
			StudentNumber: rw.get("Student Number"),
			FirstName:     rw.get("First Name"),
			MiddleName:    rw.get("Middle Name"),
			LastName:      rw.get("Last Name"),
			Email:         rw.get("Email"),
			PhoneNumber:   rw.get("Phone Number"),
			Birthday:      birthday,
			YearLevel:     &models.YearLevel{YearNumber: year},
			YearSection:   &models.YearSection{SectionName: rw.get("Year Section")},
			DeleteFlag:    del,
		})
	}
	return out, nil
}

var professorHeader = []string{"Name", "Email", "Phone Number", "Birthday", "Delete flag"}

func WriteProfessors(w io.Writer, ps []models.Professor) error {
	rows := make([][]any, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, []any{p.Name, p.Email, p.PhoneNumber, formatTime(p.Birthday), p.DeleteFlag})
	}
	return write(w, "Professors", professorHeader, rows)
}

func ReadProfessors(r io.Reader) ([]models.Professor, error) {
	rows, err := read(r, professorHeader)
	if err != nil {
		return nil, err
	}
	out := make([]models.Professor, 0, len(rows))
	for _, rw := range rows {
		birthday, err := rw.timestamp("Birthday")
		if err != nil {
			return nil, err
		}
		del, err := rw.boolean("Delete flag")
		if err != nil {
			return nil, err
		}
		out = append(out, models.Professor{
			Name:        rw.get("Name"),
			Email:       rw.get("Email"),
			PhoneNumber: rw.get("Phone Number"),
			Birthday:    birthday,
			DeleteFlag:  del,
		})
	}
	return out, nil
}

var equipmentHeader = []string{
	"Equipment Code", "Barcode", "Name", "Status", "Defective Since", "Is Duplicable", "Is Borrowed", "Delete flag",
}

func WriteEquipments(w io.Writer, es []models.Equipment) error {
	rows := make([][]any, 0, len(es))
	for _, e := range es {
		rows = append(rows, []any{
			e.EquipmentCode, e.Barcode, e.Name, string(e.Status), formatTime(e.DefectiveSince),
			e.IsDuplicable, e.IsBorrowed, e.DeleteFlag,
		})
	}
	return write(w, "Equipments", equipmentHeader, rows)
}

// ReadEquipments ignores "Is Borrowed"; the flag is owned by transactions.
func ReadEquipments(r io.Reader) ([]models.Equipment, error) {
	rows, err := read(r, equipmentHeader)
	if err != nil {
		return nil, err
	}
	out := make([]models.Equipment, 0, len(rows))
	for _, rw := range rows {
		since, err := rw.timestamp("Defective Since")
		if err != nil {
			return nil, err
		}
		dup, err := rw.boolean("Is Duplicable")
		if err != nil {
			return nil, err
		}
		del, err := rw.boolean("Delete flag")
		if err != nil {
			return nil, err
		}
		out = append(out, models.Equipment{
			EquipmentCode:  rw.get("Equipment Code"),
			Barcode:        rw.get("Barcode"),
			Name:           rw.get("Name"),
			Status:         models.EquipmentStatus(rw.get("Status")),
			DefectiveSince: since,
			IsDuplicable:   dup,
			DeleteFlag:     del,
		})
	}
	return out, nil
}

var yearLevelHeader = []string{"Year Number", "Year Name", "Delete flag"}

func WriteYearLevels(w io.Writer, ys []models.YearLevel) error {
	rows := make([][]any, 0, len(ys))
	for _, y := range ys {
		rows = append(rows, []any{y.YearNumber, y.YearName, y.DeleteFlag})
	}
	return write(w, "Year Levels", yearLevelHeader, rows)
}

func ReadYearLevels(r io.Reader) ([]models.YearLevel, error) {
	rows, err := read(r, yearLevelHeader)
	if err != nil {
		return nil, err
	}
	out := make([]models.YearLevel, 0, len(rows))
	for _, rw := range rows {
		n, err := rw.number("Year Number")
		if err != nil {
			return nil, err
		}
		del, err := rw.boolean("Delete flag")
		if err != nil {
			return nil, err
		}
		out = append(out, models.YearLevel{YearNumber: n, YearName: rw.get("Year Name"), DeleteFlag: del})
	}
	return out, nil
}

var yearSectionHeader = []string{"Section Name", "Delete flag"}

func WriteYearSections(w io.Writer, ys []models.YearSection) error {
	rows := make([][]any, 0, len(ys))
	for _, y := range ys {
		rows = append(rows, []any{y.SectionName, y.DeleteFlag})
	}
	return write(w, "Year Sections", yearSectionHeader, rows)
}

func ReadYearSections(r io.Reader) ([]models.YearSection, error) {
	rows, err := read(r, yearSectionHeader)
	if err != nil {
		return nil, err
	}
	out := make([]models.YearSection, 0, len(rows))
	for _, rw := range rows {
		del, err := rw.boolean("Delete flag")
		if err != nil {
			return nil, err
		}
		out = append(out, models.YearSection{SectionName: rw.get("Section Name"), DeleteFlag: del})
	}
	return out, nil
}
