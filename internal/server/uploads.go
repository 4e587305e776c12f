package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"biblioaccess/internal/services"
)

// allowedUploadExtensions are the document types accepted for task
// attachments.
var allowedUploadExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

func validUploadName(name string) bool {
	_, ok := allowedUploadExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// saveUpload streams a multipart file into the upload directory under a
// uuid-prefixed name so concurrent uploads of the same file never collide.
func (s *Server) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	base := filepath.Base(strings.ReplaceAll(header.Filename, `\`, "/"))
	if base == "" || base == "." {
		return "", services.Wrap(services.ErrValidation, "server", "upload", "missing file name", nil)
	}
	if !validUploadName(base) {
		return "", services.Wrap(services.ErrValidation, "server", "upload",
			fmt.Sprintf("unsupported file type %q, expected pdf, doc, or docx", filepath.Ext(base)), nil)
	}

	if err := os.MkdirAll(s.cfg.Paths.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	target := filepath.Join(s.cfg.Paths.UploadDir, uuid.NewString()+"_"+base)

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return target, nil
}
