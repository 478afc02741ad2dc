package usecase

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrTeamDiscovery = errors.New("team discovery incomplete")
	ErrDatasetWrite  = errors.New("dataset write failed")
)
