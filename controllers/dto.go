package controllers

import (
	"time"

	"Gin_postgres_redis_borrow_admin/models"
	"Gin_postgres_redis_borrow_admin/services"
)

// Wire shapes. Every entity has an explicit to-DTO mapping; request bodies
// map onto models for creates and onto service patches for updates.

type AccountDTO struct {
	Username    string             `json:"username"`
	AccountType models.AccountType `json:"accountType"`
	FullName    string             `json:"fullName"`
	Email       string             `json:"email"`
	LastSeenAt  *time.Time         `json:"lastSeenAt,omitempty"`
	DeleteFlag  bool               `json:"deleteFlag"`
}

func toAccountDTO(a models.Account) AccountDTO {
	return AccountDTO{
		Username:    a.Username,
		AccountType: a.AccountType,
		FullName:    a.FullName,
		Email:       a.Email,
		LastSeenAt:  a.LastSeenAt,
		DeleteFlag:  a.DeleteFlag,
	}
}

type YearLevelDTO struct {
	YearNumber int    `json:"yearNumber"`
	YearName   string `json:"yearName"`
	DeleteFlag bool   `json:"deleteFlag"`
}

func toYearLevelDTO(y models.YearLevel) YearLevelDTO {
	return YearLevelDTO{YearNumber: y.YearNumber, YearName: y.YearName, DeleteFlag: y.DeleteFlag}
}

type YearSectionDTO struct {
	SectionName string `json:"sectionName"`
	DeleteFlag  bool   `json:"deleteFlag"`
}

func toYearSectionDTO(y models.YearSection) YearSectionDTO {
	return YearSectionDTO{SectionName: y.SectionName, DeleteFlag: y.DeleteFlag}
}

type StudentDTO struct {
	StudentNumber string          `json:"studentNumber"`
	FirstName     string          `json:"firstName"`
	MiddleName    string          `json:"middleName"`
	LastName      string          `json:"lastName"`
	Email         string          `json:"email"`
	PhoneNumber   string          `json:"phoneNumber"`
	Birthday      *time.Time      `json:"birthday,omitempty"`
	YearLevel     *YearLevelDTO   `json:"yearLevel,omitempty"`
	YearSection   *YearSectionDTO `json:"yearSection,omitempty"`
	DeleteFlag    bool            `json:"deleteFlag"`
}

func toStudentDTO(s models.Student) StudentDTO {
	out := StudentDTO{
		StudentNumber: s.StudentNumber,
		FirstName:     s.FirstName,
		MiddleName:    s.MiddleName,
		LastName:      s.LastName,
		Email:         s.Email,
		PhoneNumber:   s.PhoneNumber,
		Birthday:      s.Birthday,
		DeleteFlag:    s.DeleteFlag,
	}
	if s.YearLevel != nil {
		y := toYearLevelDTO(*s.YearLevel)
		out.YearLevel = &y
	}
	if s.YearSection != nil {
		y := toYearSectionDTO(*s.YearSection)
		out.YearSection = &y
	}
	return out
}

type ProfessorDTO struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	DeleteFlag  bool       `json:"deleteFlag"`
}

func toProfessorDTO(p models.Professor) ProfessorDTO {
	return ProfessorDTO{
		Name:        p.Name,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		Birthday:    p.Birthday,
		DeleteFlag:  p.DeleteFlag,
	}
}

type EquipmentDTO struct {
	EquipmentCode  string                 `json:"equipmentCode"`
	Barcode        string                 `json:"barcode"`
	Name           string                 `json:"name"`
	Status         models.EquipmentStatus `json:"status"`
	DefectiveSince *time.Time             `json:"defectiveSince,omitempty"`
	IsDuplicable   bool                   `json:"isDuplicable"`
	IsBorrowed     bool                   `json:"isBorrowed"`
	DeleteFlag     bool                   `json:"deleteFlag"`
}

func toEquipmentDTO(e models.Equipment) EquipmentDTO {
	return EquipmentDTO{
		EquipmentCode:  e.EquipmentCode,
		Barcode:        e.Barcode,
		Name:           e.Name,
		Status:         e.Status,
		DefectiveSince: e.DefectiveSince,
		IsDuplicable:   e.IsDuplicable,
		IsBorrowed:     e.IsBorrowed,
		DeleteFlag:     e.DeleteFlag,
	}
}

// TransactionSummaryDTO names related records by their keys only.
type TransactionSummaryDTO struct {
	TxCode         string          `json:"txCode"`
	Equipments     []string        `json:"equipments"`
	EquipmentsHist []string        `json:"equipmentsHist"`
	Borrower       string          `json:"borrower"`
	BorrowerName   string          `json:"borrowerName"`
	Professor      string          `json:"professor"`
	BorrowedAt     *time.Time      `json:"borrowedAt,omitempty"`
	ReturnedAt     *time.Time      `json:"returnedAt,omitempty"`
	Status         models.TxStatus `json:"status"`
	Returned       bool            `json:"returned"`
	DeleteFlag     bool            `json:"deleteFlag"`
}

func toTransactionSummaryDTO(t models.Transaction) TransactionSummaryDTO {
	out := TransactionSummaryDTO{
		TxCode:         t.TxCode,
		Equipments:     mapSlice(t.Equipments, func(e models.Equipment) string { return e.EquipmentCode }),
		EquipmentsHist: mapSlice(t.EquipmentsHist, func(e models.Equipment) string { return e.EquipmentCode }),
		BorrowedAt:     t.BorrowedAt,
		ReturnedAt:     t.ReturnedAt,
		Status:         t.Status,
		Returned:       t.Returned(),
		DeleteFlag:     t.DeleteFlag,
	}
	if t.Borrower != nil {
		out.Borrower = t.Borrower.StudentNumber
		out.BorrowerName = t.Borrower.FullName()
	}
	if t.Professor != nil {
		out.Professor = t.Professor.Name
	}
	return out
}

type TransactionDTO struct {
	TxCode         string          `json:"txCode"`
	Equipments     []EquipmentDTO  `json:"equipments"`
	EquipmentsHist []EquipmentDTO  `json:"equipmentsHist"`
	Borrower       *StudentDTO     `json:"borrower,omitempty"`
	Professor      *ProfessorDTO   `json:"professor,omitempty"`
	BorrowedAt     *time.Time      `json:"borrowedAt,omitempty"`
	ReturnedAt     *time.Time      `json:"returnedAt,omitempty"`
	Status         models.TxStatus `json:"status"`
	Returned       bool            `json:"returned"`
	DeleteFlag     bool            `json:"deleteFlag"`
}

func toTransactionDTO(t models.Transaction) TransactionDTO {
	out := TransactionDTO{
		TxCode:         t.TxCode,
		Equipments:     mapSlice(t.Equipments, toEquipmentDTO),
		EquipmentsHist: mapSlice(t.EquipmentsHist, toEquipmentDTO),
		BorrowedAt:     t.BorrowedAt,
		ReturnedAt:     t.ReturnedAt,
		Status:         t.Status,
		Returned:       t.Returned(),
		DeleteFlag:     t.DeleteFlag,
	}
	if t.Borrower != nil {
		s := toStudentDTO(*t.Borrower)
		out.Borrower = &s
	}
	if t.Professor != nil {
		p := toProfessorDTO(*t.Professor)
		out.Professor = &p
	}
	return out
}

// transactionView picks the shape asked for with ?complete.
func transactionView(t models.Transaction, complete bool) any {
	if complete {
		return toTransactionDTO(t)
	}
	return toTransactionSummaryDTO(t)
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

// LoginResponse carries the tokens and, for students and professors, their
// record as "profile".
type LoginResponse struct {
	Username     string             `json:"username"`
	AccountType  models.AccountType `json:"accountType"`
	FullName     string             `json:"fullName"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	Profile      any                `json:"profile"`
}

func toLoginResponse(r *services.LoginResult) LoginResponse {
	out := LoginResponse{
		Username:     r.Account.Username,
		AccountType:  r.Account.AccountType,
		FullName:     r.Account.FullName,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
	switch {
	case r.Student != nil:
		out.Profile = toStudentDTO(*r.Student)
	case r.Professor != nil:
		out.Profile = toProfessorDTO(*r.Professor)
	}
	return out
}

// --- requests ---

type AccountCreate struct {
	Username    string             `json:"username" binding:"required"`
	Password    string             `json:"password" binding:"omitempty,min=8"`
	AccountType models.AccountType `json:"accountType" binding:"omitempty,oneof=ADMIN STUDENT PROF"`
	FullName    string             `json:"fullName"`
	Email       string             `json:"email" binding:"omitempty,email"`
}

func (r AccountCreate) model() models.Account {
	return models.Account{
		Username:    r.Username,
		Password:    r.Password,
		AccountType: r.AccountType,
		FullName:    r.FullName,
		Email:       r.Email,
	}
}

type AccountUpdate struct {
	Password    *string             `json:"password" binding:"omitempty,min=8"`
	AccountType *models.AccountType `json:"accountType" binding:"omitempty,oneof=ADMIN STUDENT PROF"`
	FullName    *string             `json:"fullName"`
	Email       *string             `json:"email" binding:"omitempty,email"`
	DeleteFlag  *bool               `json:"deleteFlag"`
}

func (r AccountUpdate) patch() services.AccountPatch {
	return services.AccountPatch{
		Password:    r.Password,
		AccountType: r.AccountType,
		FullName:    r.FullName,
		Email:       r.Email,
		DeleteFlag:  r.DeleteFlag,
	}
}

type StudentCreate struct {
	StudentNumber string     `json:"studentNumber" binding:"required,studentnumber"`
	FirstName     string     `json:"firstName" binding:"required"`
	MiddleName    string     `json:"middleName"`
	LastName      string     `json:"lastName" binding:"required"`
	Email         string     `json:"email" binding:"omitempty,email"`
	PhoneNumber   string     `json:"phoneNumber" binding:"omitempty,phone"`
	Birthday      *time.Time `json:"birthday"`
	YearLevel     int        `json:"yearLevel" binding:"required,min=1"`
	YearSection   string     `json:"yearSection" binding:"required"`
}

// model leaves YearLevel and YearSection key-only; the service resolves them.
func (r StudentCreate) model() models.Student {
	return models.Student{
		StudentNumber: r.StudentNumber,
		FirstName:     r.FirstName,
		MiddleName:    r.MiddleName,
		LastName:      r.LastName,
		Email:         r.Email,
		PhoneNumber:   r.PhoneNumber,
		Birthday:      r.Birthday,
		YearLevel:     &models.YearLevel{YearNumber: r.YearLevel},
		YearSection:   &models.YearSection{SectionName: r.YearSection},
	}
}

type StudentUpdate struct {
	FirstName   *string    `json:"firstName" binding:"omitempty,min=1"`
	MiddleName  *string    `json:"middleName"`
	LastName    *string    `json:"lastName" binding:"omitempty,min=1"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	PhoneNumber *string    `json:"phoneNumber" binding:"omitempty,phone"`
	Birthday    *time.Time `json:"birthday"`
	YearLevel   *int       `json:"yearLevel" binding:"omitempty,min=1"`
	YearSection *string    `json:"yearSection" binding:"omitempty,min=1"`
	DeleteFlag  *bool      `json:"deleteFlag"`
}

func (r StudentUpdate) patch() services.StudentPatch {
	return services.StudentPatch{
		FirstName:   r.FirstName,
		MiddleName:  r.MiddleName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Birthday:    r.Birthday,
		YearLevel:   r.YearLevel,
		YearSection: r.YearSection,
		DeleteFlag:  r.DeleteFlag,
	}
}

type ProfessorCreate struct {
	Name        string     `json:"name" binding:"required"`
	Email       string     `json:"email" binding:"omitempty,email"`
	PhoneNumber string     `json:"phoneNumber" binding:"omitempty,phone"`
	Birthday    *time.Time `json:"birthday"`
}

func (r ProfessorCreate) model() models.Professor {
	return models.Professor{Name: r.Name, Email: r.Email, PhoneNumber: r.PhoneNumber, Birthday: r.Birthday}
}

type ProfessorUpdate struct {
	Email       *string    `json:"email" binding:"omitempty,email"`
	PhoneNumber *string    `json:"phoneNumber" binding:"omitempty,phone"`
	Birthday    *time.Time `json:"birthday"`
	DeleteFlag  *bool      `json:"deleteFlag"`
}

func (r ProfessorUpdate) patch() services.ProfessorPatch {
	return services.ProfessorPatch{
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Birthday:    r.Birthday,
		DeleteFlag:  r.DeleteFlag,
	}
}

type EquipmentCreate struct {
	EquipmentCode string                 `json:"equipmentCode"`
	Barcode       string                 `json:"barcode" binding:"required"`
	Name          string                 `json:"name" binding:"required"`
	Status        models.EquipmentStatus `json:"status" binding:"omitempty,oneof=GOOD DEFECTIVE"`
	IsDuplicable  bool                   `json:"isDuplicable"`
}

func (r EquipmentCreate) model() models.Equipment {
	return models.Equipment{
		EquipmentCode: r.EquipmentCode,
		Barcode:       r.Barcode,
		Name:          r.Name,
		Status:        r.Status,
		IsDuplicable:  r.IsDuplicable,
	}
}

type EquipmentUpdate struct {
	Name         *string                 `json:"name" binding:"omitempty,min=1"`
	Barcode      *string                 `json:"barcode" binding:"omitempty,min=1"`
	Status       *models.EquipmentStatus `json:"status" binding:"omitempty,oneof=GOOD DEFECTIVE"`
	IsDuplicable *bool                   `json:"isDuplicable"`
	DeleteFlag   *bool                   `json:"deleteFlag"`
}

func (r EquipmentUpdate) patch() services.EquipmentPatch {
	return services.EquipmentPatch{
		Name:         r.Name,
		Barcode:      r.Barcode,
		Status:       r.Status,
		IsDuplicable: r.IsDuplicable,
		DeleteFlag:   r.DeleteFlag,
	}
}

type YearLevelCreate struct {
	YearNumber int `json:"yearNumber" binding:"required,min=1"`
}

type YearLevelUpdate struct {
	YearName   *string `json:"yearName" binding:"omitempty,min=1"`
	DeleteFlag *bool   `json:"deleteFlag"`
}

type YearSectionCreate struct {
	SectionName string `json:"sectionName" binding:"required"`
}

type YearSectionUpdate struct {
	DeleteFlag *bool `json:"deleteFlag"`
}

type equipmentRef struct {
	EquipmentCode string `json:"equipmentCode" binding:"required"`
}

type borrowerRef struct {
	StudentNumber string `json:"studentNumber" binding:"required"`
}

type professorRef struct {
	Name string `json:"name" binding:"required"`
}

// TransactionRequest is the body of both POST and PUT /transactions. On PUT
// a present "equipments" array (even empty) replaces the outstanding set.
type TransactionRequest struct {
	TxCode     string          `json:"txCode"`
	Equipments []equipmentRef  `json:"equipments" binding:"omitempty,dive"`
	Borrower   *borrowerRef    `json:"borrower"`
	Professor  *professorRef   `json:"professor"`
	BorrowedAt *time.Time      `json:"borrowedAt"`
	ReturnedAt *time.Time      `json:"returnedAt"`
	Status     models.TxStatus `json:"status" binding:"omitempty,oneof=PENDING ACCEPTED DENIED"`
	DeleteFlag *bool           `json:"deleteFlag"`
}

func (r TransactionRequest) codes() []string {
	if r.Equipments == nil {
		return nil
	}
	return mapSlice(r.Equipments, func(e equipmentRef) string { return e.EquipmentCode })
}

// draft ignores status; new transactions always start PENDING.
func (r TransactionRequest) draft() (services.TransactionDraft, error) {
	if r.Borrower == nil {
		return services.TransactionDraft{}, services.BadRequest("borrower is required")
	}
	if r.Professor == nil {
		return services.TransactionDraft{}, services.BadRequest("professor is required")
	}
	return services.TransactionDraft{
		TxCode:         r.TxCode,
		EquipmentCodes: r.codes(),
		Borrower:       r.Borrower.StudentNumber,
		Professor:      r.Professor.Name,
		BorrowedAt:     r.BorrowedAt,
	}, nil
}

func (r TransactionRequest) patch() services.TransactionPatch {
	p := services.TransactionPatch{
		EquipmentCodes: r.codes(),
		BorrowedAt:     r.BorrowedAt,
		ReturnedAt:     r.ReturnedAt,
		DeleteFlag:     r.DeleteFlag,
	}
	if r.Borrower != nil {
		p.Borrower = &r.Borrower.StudentNumber
	}
	if r.Professor != nil {
		p.Professor = &r.Professor.Name
	}
	if r.Status != "" {
		p.Status = &r.Status
	}
	return p
}
