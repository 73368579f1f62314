package payroll

import (
	"context"
	"time"
)

const ContentTypePDF = "application/pdf"

// Document is a rendered payslip ready for delivery.
type Document struct {
	EmployeeID     string
	FileName       string
	ReferenceMonth string
	ContentType    string
	Content        []byte
}

type DocumentRenderer interface {
	Render(employee Employee, calculation Calculation, company CompanyProfile, reference time.Time) (Document, error)
}

// DocumentCache stores rendered payslip bytes by content key.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, content []byte) error
}
