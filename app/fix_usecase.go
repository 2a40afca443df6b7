package app

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/exprlint/domain"
)

// FixUseCase orchestrates the auto-fix workflow
type FixUseCase struct {
	service    domain.FixService
	fileHelper *FileHelper
}

// NewFixUseCase creates a new fix use case
func NewFixUseCase(service domain.FixService, fileHelper *FileHelper) *FixUseCase {
	if fileHelper == nil {
		fileHelper = NewFileHelper()
	}
	return &FixUseCase{
		service:    service,
		fileHelper: fileHelper,
	}
}

// Execute collects the source files of req and fixes them
func (uc *FixUseCase) Execute(ctx context.Context, req domain.FixRequest) (*domain.FixResponse, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewInvalidInputError("invalid request", fmt.Errorf("no input paths specified"))
	}
	if req.Form != "" && !req.Form.IsValid() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid fix form: %s", req.Form), nil)
	}

	files, err := ResolveFilePaths(
		uc.fileHelper,
		req.Paths,
		req.Recursive,
		req.IncludePatterns,
		req.ExcludePatterns,
	)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no source files found in the specified paths", nil)
	}
	req.Paths = files

	response, err := uc.service.Fix(ctx, req)
	if err != nil {
		return nil, domain.NewAnalysisError("fix failed", err)
	}
	return response, nil
}
