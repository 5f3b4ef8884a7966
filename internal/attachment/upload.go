package attachment

import (
	"fmt"
	"strings"

	apperr "backoffice/pkg/errors"

	"github.com/gabriel-vasile/mimetype"
)

// MaxOperationFiles caps how many files may be merged into one operation upload.
const MaxOperationFiles = 4

const (
	mimePDF  = "application/pdf"
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
)

// File is an in-memory upload.
type File struct {
	Name string
	Data []byte
}

// Kind returns the sniffed MIME type of the file content.
func (f File) Kind() string {
	return mimetype.Detect(f.Data).String()
}

func (f File) IsPDF() bool {
	return mimetype.Detect(f.Data).Is(mimePDF)
}

func (f File) IsImage() bool {
	m := mimetype.Detect(f.Data)
	return m.Is(mimeJPEG) || m.Is(mimePNG)
}

func validateFile(f File) error {
	if len(f.Data) == 0 {
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("el archivo %q está vacío", f.Name))
	}
	if !f.IsPDF() && !f.IsImage() {
		return apperr.New(apperr.CodeValidation,
			fmt.Sprintf("el archivo %q no es PDF ni imagen (%s)", f.Name, f.Kind()))
	}
	return nil
}

// RetentionReceipt is the withholding receipt upload of one order.
type RetentionReceipt struct {
	File     *File
	NroSerie string
}

// Validate blocks the upload before any network call.
func (r RetentionReceipt) Validate() error {
	if strings.TrimSpace(r.NroSerie) == "" {
		return apperr.New(apperr.CodeValidation, "ingrese el número de serie del comprobante")
	}
	if r.File == nil {
		return apperr.New(apperr.CodeValidation, "seleccione el archivo del comprobante")
	}
	return validateFile(*r.File)
}

// OperationFiles is the operation evidence upload: 1 to MaxOperationFiles files.
type OperationFiles []File

func (fs OperationFiles) Validate() error {
	if len(fs) == 0 {
		return apperr.New(apperr.CodeValidation, "seleccione al menos un archivo")
	}
	if len(fs) > MaxOperationFiles {
		return apperr.New(apperr.CodeValidation,
			fmt.Sprintf("puede subir como máximo %d archivos", MaxOperationFiles))
	}
	for _, f := range fs {
		if err := validateFile(f); err != nil {
			return err
		}
	}
	return nil
}
