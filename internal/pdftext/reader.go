// Package pdftext extracts plain text from PDF files using pdfcpu.
package pdftext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/wonny/ipo-scorecard/pkg/logger"
)

var pageFilePattern = regexp.MustCompile(`page_(\d+)`)

// Reader reads the text of the first MaxPages pages of a PDF
type Reader struct {
	maxPages int
	logger   *logger.Logger
}

// NewReader creates a PDF text reader
func NewReader(maxPages int, log *logger.Logger) *Reader {
	return &Reader{
		maxPages: maxPages,
		logger:   log.WithComponent("pdftext"),
	}
}

// ReadText returns page texts joined by a blank line
func (r *Reader) ReadText(ctx context.Context, path string) (string, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF context: %w", err)
	}

	pageCount := pdfCtx.PageCount
	if r.maxPages > 0 && pageCount > r.maxPages {
		pageCount = r.maxPages
	}
	if pageCount == 0 {
		return "", nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	outDir, err := os.MkdirTemp("", "scorecard-pdf-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	// pdfcpu에는 텍스트 추출 API가 없음 → 페이지 content stream 추출 후 직접 디코딩
	pages := []string{fmt.Sprintf("1-%d", pageCount)}
	if err := api.ExtractContentFile(path, outDir, pages, model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	streams, err := readPageStreams(outDir)
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(streams))
	for _, s := range streams {
		if text := strings.TrimSpace(DecodeContentStream(s.content)); text != "" {
			texts = append(texts, text)
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"path":       filepath.Base(path),
		"page_count": pdfCtx.PageCount,
		"pages_read": len(streams),
		"text_pages": len(texts),
	}).Debug("Extracted PDF text")

	return strings.Join(texts, "\n\n"), nil
}

type pageStream struct {
	page    int
	content []byte
}

// readPageStreams loads pdfcpu's per-page content files in page order
func readPageStreams(dir string) ([]pageStream, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list extracted content: %w", err)
	}

	var streams []pageStream
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pageFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		page, _ := strconv.Atoi(m[1])

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d content: %w", page, err)
		}
		streams = append(streams, pageStream{page: page, content: content})
	}

	sort.Slice(streams, func(i, j int) bool { return streams[i].page < streams[j].page })
	return streams, nil
}
