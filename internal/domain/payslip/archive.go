package payslip

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"folha/internal/domain/payroll"
)

const sealedExt = ".enc"

// Sealer encrypts archived documents at rest.
type Sealer interface {
	Configured() bool
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// Archive keeps rendered payslips on disk, one directory per reference month.
type Archive struct {
	Dir    string
	Sealer Sealer
}

func NewArchive(dir string, sealer Sealer) *Archive {
	return &Archive{Dir: dir, Sealer: sealer}
}

func (a *Archive) Save(doc payroll.Document) (string, error) {
	if doc.FileName == "" || doc.ReferenceMonth == "" {
		return "", errors.New("archive: document has no file name or reference month")
	}
	dir := filepath.Join(a.Dir, doc.ReferenceMonth)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(doc.FileName))
	content := doc.Content
	if a.Sealer != nil && a.Sealer.Configured() {
		sealed, err := a.Sealer.Seal(content)
		if err != nil {
			return "", err
		}
		content = sealed
		path += sealedExt
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func (a *Archive) Open(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, sealedExt) {
		return data, nil
	}
	if a.Sealer == nil || !a.Sealer.Configured() {
		return nil, errors.New("archive: sealed payslip but no key configured")
	}
	return a.Sealer.Open(data)
}
