package usecase

import (
	"github.com/harshkrt/FinAgent/shared/application/dto"
	"github.com/harshkrt/FinAgent/shared/domain/filing"
)

type RequestValidator struct{}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// Validate enforces that exactly one of an upload and a source URL is
// present. An upload without a body or filename counts as absent.
func (v *RequestValidator) Validate(req *dto.IngestRequest) error {
	if req == nil {
		return filing.InvalidInput(filing.ErrMissingInput)
	}

	hasUpload := req.HasUpload()
	hasURL := req.HasSourceURL()

	switch {
	case hasUpload && hasURL:
		return filing.InvalidInput(filing.ErrConflictingInput)
	case !hasUpload && !hasURL:
		return filing.InvalidInput(filing.ErrMissingInput)
	}
	return nil
}
