package jobs

import (
	"context"
	"time"

	"folha/internal/domain/payroll"
	"folha/internal/domain/payslip"
)

// ArchiveResult describes one payslip archive run.
type ArchiveResult struct {
	ReferenceMonth string   `json:"referenceMonth"`
	Files          []string `json:"files"`
}

// PayslipArchive renders the month's payslips for every active employee and
// writes them to the archive.
func PayslipArchive(svc *payroll.Service, archive *payslip.Archive, now func() time.Time) RunFunc {
	return func(ctx context.Context) (any, error) {
		ref := now()
		docs, err := svc.GenerateAll(ctx, payroll.SummaryFilter{}, ref)
		if err != nil {
			return nil, err
		}
		result := ArchiveResult{ReferenceMonth: payslip.MonthKey(ref), Files: make([]string, 0, len(docs))}
		for _, doc := range docs {
			path, err := archive.Save(doc)
			if err != nil {
				return result, err
			}
			result.Files = append(result.Files, path)
		}
		return result, nil
	}
}
