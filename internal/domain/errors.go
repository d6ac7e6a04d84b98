package domain

import "errors"

var (
	ErrNoData            = errors.New("no inventory data available")
	ErrInvalidFileType   = errors.New("only .csv files are accepted")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
	ErrEmptyFile         = errors.New("uploaded file is empty")
	ErrRemoteUnavailable = errors.New("ai service unavailable")
)
