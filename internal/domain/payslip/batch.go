package payslip

import (
	"archive/zip"
	"io"
	"time"

	"folha/internal/domain/payroll"
)

// WriteZip streams a batch of documents as one ZIP archive.
func WriteZip(w io.Writer, docs []payroll.Document, modified time.Time) error {
	zw := zip.NewWriter(w)
	for _, doc := range docs {
		header := &zip.FileHeader{
			Name:     doc.FileName,
			Method:   zip.Deflate,
			Modified: modified,
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		if _, err := fw.Write(doc.Content); err != nil {
			return err
		}
	}
	return zw.Close()
}
