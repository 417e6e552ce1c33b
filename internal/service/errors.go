package service

import (
	"errors"
	"fmt"

	"coachapp/coaching-app/internal/repository"
)

// Error taxonomy. Every failure a service returns wraps exactly one of
// these sentinels so the API layer can classify it with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

func notFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidArgument)...)
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func internalf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInternal)...)
}

// classify maps a repository error into the taxonomy. what names the
// resource for the NotFound/Conflict message.
func classify(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFoundf("%s", what)
	case errors.Is(err, repository.ErrConflict):
		return conflictf("a %s with this name already exists", what)
	default:
		return fmt.Errorf("%s: %v: %w", what, err, ErrInternal)
	}
}
