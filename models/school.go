package models

import "time"

const (
	YearLevelTable   = "eb_year_levels"
	YearSectionTable = "eb_year_sections"
	StudentTable     = "eb_students"
	ProfessorTable   = "eb_professors"
)

type YearLevel struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	YearNumber int       `gorm:"uniqueIndex;not null" json:"yearNumber"`
	YearName   string    `gorm:"size:60;not null" json:"yearName"` // "First", "Second", ...
	DeleteFlag bool      `gorm:"not null" json:"deleteFlag"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (YearLevel) TableName() string      { return YearLevelTable }
func (YearLevel) KeyColumn() string      { return "year_number" }
func (y YearLevel) KeyValue() any        { return y.YearNumber }
func (y YearLevel) IsDeleted() bool      { return y.DeleteFlag }
func (y *YearLevel) SetDeleted(del bool) { y.DeleteFlag = del }

type YearSection struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	SectionName string    `gorm:"size:60;uniqueIndex;not null" json:"sectionName"`
	DeleteFlag  bool      `gorm:"not null" json:"deleteFlag"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (YearSection) TableName() string      { return YearSectionTable }
func (YearSection) KeyColumn() string      { return "section_name" }
func (y YearSection) KeyValue() any        { return y.SectionName }
func (y YearSection) IsDeleted() bool      { return y.DeleteFlag }
func (y *YearSection) SetDeleted(del bool) { y.DeleteFlag = del }

type Student struct {
	ID            uint         `gorm:"primaryKey" json:"-"`
	StudentNumber string       `gorm:"size:32;uniqueIndex;not null" json:"studentNumber"`
	FirstName     string       `gorm:"size:120;not null" json:"firstName"`
	MiddleName    string       `gorm:"size:120" json:"middleName"`
	LastName      string       `gorm:"size:120;not null" json:"lastName"`
	Email         string       `gorm:"size:255" json:"email"`
	PhoneNumber   string       `gorm:"size:20" json:"phoneNumber"`
	Birthday      *time.Time   `json:"birthday,omitempty"`
	YearLevelID   uint         `gorm:"index;not null" json:"-"`
	YearLevel     *YearLevel   `gorm:"foreignKey:YearLevelID" json:"yearLevel,omitempty"`
	YearSectionID uint         `gorm:"index;not null" json:"-"`
	YearSection   *YearSection `gorm:"foreignKey:YearSectionID" json:"yearSection,omitempty"`
	DeleteFlag    bool         `gorm:"not null" json:"deleteFlag"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func (Student) TableName() string      { return StudentTable }
func (Student) KeyColumn() string      { return "student_number" }
func (s Student) KeyValue() any        { return s.StudentNumber }
func (s Student) IsDeleted() bool      { return s.DeleteFlag }
func (s *Student) SetDeleted(del bool) { s.DeleteFlag = del }

func (s Student) FullName() string {
	if s.MiddleName == "" {
		return s.FirstName + " " + s.LastName
	}
	return s.FirstName + " " + s.MiddleName + " " + s.LastName
}

type Professor struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	Name        string     `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Email       string     `gorm:"size:255" json:"email"`
	PhoneNumber string     `gorm:"size:20" json:"phoneNumber"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	DeleteFlag  bool       `gorm:"not null" json:"deleteFlag"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Professor) TableName() string      { return ProfessorTable }
func (Professor) KeyColumn() string      { return "name" }
func (p Professor) KeyValue() any        { return p.Name }
func (p Professor) IsDeleted() bool      { return p.DeleteFlag }
func (p *Professor) SetDeleted(del bool) { p.DeleteFlag = del }
