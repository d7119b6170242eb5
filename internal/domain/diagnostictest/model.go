package diagnostictest

import "time"

// DiagnosticTest maps to the diagnostic_tests table.
type DiagnosticTest struct {
	ID          int64     `db:"id" json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	PatientName string    `db:"patient_name" json:"patientName" gorm:"column:patient_name;not null"`
	TestType    string    `db:"test_type" json:"testType" gorm:"column:test_type;not null"`
	Result      string    `db:"result" json:"result" gorm:"column:result;not null"`
	TestDate    time.Time `db:"test_date" json:"testDate" gorm:"column:test_date;not null"`
	Notes       *string   `db:"notes" json:"notes" gorm:"column:notes"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt" gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt" gorm:"column:updated_at;autoUpdateTime:false"`
}

func (DiagnosticTest) TableName() string { return "diagnostic_tests" }
