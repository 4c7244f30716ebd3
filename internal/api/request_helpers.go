package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/mfeller/metagen-api/internal/domain"
	"github.com/mfeller/metagen-api/internal/filecheck"
)

const (
	// maxMultipartMemory is the in-memory buffer for multipart parsing;
	// larger uploads spill to temporary files.
	maxMultipartMemory = 32 << 20

	// batchFilesField is the multipart field carrying batch files.
	batchFilesField = "files"

	// singleFileField is the multipart field for single-file endpoints.
	singleFileField = "file"
)

// parseBatchFiles reads the multipart batch upload into analysis
// requests, preserving upload order in the request indices. Size bounds
// are checked before any file content is read.
func parseBatchFiles(r *http.Request) ([]domain.AnalysisRequest, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, fmt.Errorf("parsing multipart form: %w", err)
	}

	headers := r.MultipartForm.File[batchFilesField]
	if len(headers) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(headers) > domain.MaxBatchFiles {
		return nil, fmt.Errorf("%w: %d files (maximum %d)",
			domain.ErrBatchTooLarge, len(headers), domain.MaxBatchFiles)
	}

	requests := make([]domain.AnalysisRequest, 0, len(headers))
	for i, fh := range headers {
		payload, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("reading file %q: %w", fh.Filename, err)
		}
		declared := fh.Header.Get("Content-Type")
		requests = append(requests, domain.AnalysisRequest{
			Index:    i,
			FileName: fh.Filename,
			Payload:  payload,
			MIMEType: declared,
			Kind:     filecheck.DetectKind(declared, payload),
		})
	}
	return requests, nil
}

// parseSingleFile reads the one file expected by the single-file
// endpoints.
func parseSingleFile(r *http.Request) (name, declaredMIME string, payload []byte, err error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return "", "", nil, fmt.Errorf("parsing multipart form: %w", err)
	}

	file, fh, err := r.FormFile(singleFileField)
	if err != nil {
		return "", "", nil, fmt.Errorf("missing %q form field: %w", singleFileField, err)
	}
	defer func() { _ = file.Close() }()

	payload, err = io.ReadAll(file)
	if err != nil {
		return "", "", nil, fmt.Errorf("reading file %q: %w", fh.Filename, err)
	}
	return fh.Filename, fh.Header.Get("Content-Type"), payload, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
