package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/adrianliechti/ingester/pkg/provider"
)

func valueFormat(r *http.Request) string {
	if val := r.FormValue("format"); val != "" {
		return strings.ToLower(val)
	}

	return ""
}

func valueMaxPages(r *http.Request) (int, error) {
	val := r.FormValue("max_pages")

	if val == "" {
		return 0, nil
	}

	pages, err := strconv.Atoi(val)

	if err != nil || pages < 0 {
		return 0, errors.New("invalid max_pages: " + val)
	}

	return pages, nil
}

func extension(contentType string) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	switch mediaType {
	case "application/pdf":
		return ".pdf"

	case "application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return ".pptx"
	}

	return ""
}

func (h *Handler) readFile(r *http.Request) (*provider.File, error) {
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()

		data, err := io.ReadAll(file)

		if err != nil {
			return nil, err
		}

		return &provider.File{
			Name: header.Filename,

			Content:     data,
			ContentType: header.Header.Get("Content-Type"),
		}, nil
	}

	contentType := r.Header.Get("Content-Type")
	contentDisposition := r.Header.Get("Content-Disposition")

	_, params, _ := mime.ParseMediaType(contentDisposition)

	filename := params["filename*"]
	filename = strings.TrimPrefix(filename, "UTF-8''")
	filename = strings.TrimPrefix(filename, "utf-8''")

	if filename == "" {
		filename = params["filename"]
	}

	data, err := io.ReadAll(r.Body)

	if err != nil {
		return nil, err
	}

	return &provider.File{
		Name: filename,

		Content:     data,
		ContentType: contentType,
	}, nil
}
