package excel

import (
	"io"
	"strconv"

	"Gin_postgres_redis_borrow_admin/models"
	"Gin_postgres_redis_borrow_admin/services"
)

var transactionHeader = []string{
	"Transaction Code", "Equipment", "Borrower", "Year and Section", "Professor",
	"Borrowed At", "Returned At", "Status", "Is Returned", "Delete flag",
}

// WriteTransactions emits one row per historical equipment of each
// transaction; "Is Returned" tells whether that item is back.
func WriteTransactions(w io.Writer, ts []models.Transaction) error {
	var rows [][]any
	for _, t := range ts {
		borrower, yearSection, professor := "", "", ""
		if t.Borrower != nil {
			borrower = t.Borrower.StudentNumber
			yearSection = YearAndSection(t.Borrower)
		}
		if t.Professor != nil {
			professor = t.Professor.Name
		}
		for _, e := range t.EquipmentsHist {
			rows = append(rows, []any{
				t.TxCode, e.EquipmentCode, borrower, yearSection, professor,
				formatTime(t.BorrowedAt), formatTime(t.ReturnedAt), string(t.Status),
				!outstanding(t, e), t.DeleteFlag,
			})
		}
	}
	return write(w, "Transactions", transactionHeader, rows)
}

// YearAndSection renders a student's class as "<year number>-<section>".
func YearAndSection(s *models.Student) string {
	year, section := "", ""
	if s.YearLevel != nil {
		year = strconv.Itoa(s.YearLevel.YearNumber)
	}
	if s.YearSection != nil {
		section = s.YearSection.SectionName
	}
	return year + "-" + section
}

func outstanding(t models.Transaction, e models.Equipment) bool {
	for _, o := range t.Equipments {
		if o.EquipmentCode == e.EquipmentCode {
			return true
		}
	}
	return false
}

// ReadTransactions groups rows by transaction code, keeping first-seen
// order. Transaction-level cells are taken from the first row of a group.
func ReadTransactions(r io.Reader) ([]services.TransactionImport, error) {
	rows, err := read(r, transactionHeader)
	if err != nil {
		return nil, err
	}
	var out []services.TransactionImport
	byCode := map[string]int{}
	for _, rw := range rows {
		code := rw.get("Transaction Code")
		if code == "" {
			return nil, rw.errorf("Transaction Code", "empty")
		}
		i, seen := byCode[code]
		if !seen {
			imp, err := transactionFromRow(rw)
			if err != nil {
				return nil, err
			}
			out = append(out, imp)
			i = len(out) - 1
			byCode[code] = i
		}
		equipment := rw.get("Equipment")
		if equipment == "" {
			return nil, rw.errorf("Equipment", "empty")
		}
		returned, err := rw.boolean("Is Returned")
		if err != nil {
			return nil, err
		}
		out[i].EquipmentCodes = append(out[i].EquipmentCodes, equipment)
		if !returned {
			out[i].Outstanding = append(out[i].Outstanding, equipment)
		}
	}
	return out, nil
}

func transactionFromRow(rw row) (services.TransactionImport, error) {
	borrowedAt, err := rw.timestamp("Borrowed At")
	if err != nil {
		return services.TransactionImport{}, err
	}
	returnedAt, err := rw.timestamp("Returned At")
	if err != nil {
		return services.TransactionImport{}, err
	}
	del, err := rw.optBool("Delete flag")
	if err != nil {
		return services.TransactionImport{}, err
	}
	status := models.TxStatus(rw.get("Status"))
	if status != "" && !status.Valid() {
		return services.TransactionImport{}, rw.errorf("Status", "unknown status %q", status)
	}
	return services.TransactionImport{
		TxCode:     rw.get("Transaction Code"),
		Borrower:   rw.get("Borrower"),
		Professor:  rw.get("Professor"),
		BorrowedAt: borrowedAt,
		ReturnedAt: returnedAt,
		Status:     status,
		DeleteFlag: del,
	}, nil
}
