package repository

import "errors"

// Repository sentinel errors.
var (
	ErrPlanNotFound      = errors.New("seating plan not found")
	ErrExportJobNotFound = errors.New("export job not found")
	ErrDirectoryNotFound = errors.New("faculty directory not found")
)
