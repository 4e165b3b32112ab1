package models

// Record is implemented by every reference model that is looked up by a
// natural key and soft-deleted through DeleteFlag.
type Record interface {
	KeyColumn() string
	KeyValue() any
	IsDeleted() bool
}

// RecordPtr lets generic code allocate and flag a record.
type RecordPtr[T any] interface {
	*T
	Record
	SetDeleted(bool)
}
