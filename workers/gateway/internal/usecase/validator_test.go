package usecase

import (
	"strings"
	"testing"

	"github.com/harshkrt/FinAgent/shared/application/dto"
	"github.com/harshkrt/FinAgent/shared/domain/filing"

	"github.com/stretchr/testify/assert"
)

func TestRequestValidator_Validate(t *testing.T) {
	upload := &dto.Upload{Reader: strings.NewReader("x"), Filename: "report.pdf", Size: 1}

	tests := []struct {
		name     string
		req      *dto.IngestRequest
		expected error
	}{
		{"upload only", &dto.IngestRequest{Upload: upload}, nil},
		{"url only", &dto.IngestRequest{SourceURL: "https://x.test/doc"}, nil},
		{"both", &dto.IngestRequest{Upload: upload, SourceURL: "https://x.test/doc"}, filing.ErrConflictingInput},
		{"neither", &dto.IngestRequest{CompanyName: "acme"}, filing.ErrMissingInput},
		{"blank url", &dto.IngestRequest{SourceURL: "   "}, filing.ErrMissingInput},
		{"upload without filename", &dto.IngestRequest{Upload: &dto.Upload{Reader: strings.NewReader("x")}}, filing.ErrMissingInput},
		{"upload without body", &dto.IngestRequest{Upload: &dto.Upload{Filename: "a.pdf"}}, filing.ErrMissingInput},
		{"nameless upload with url", &dto.IngestRequest{Upload: &dto.Upload{Reader: strings.NewReader("")}, SourceURL: "https://x.test/doc"}, nil},
		{"nil request", nil, filing.ErrMissingInput},
	}

	v := NewRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, filing.CodeInvalidInput, filing.CodeOf(err))
		})
	}
}
