package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConnectionLost = errors.New("connection lost")
	ErrProtocol       = errors.New("protocol error")
	ErrCommandFailed  = errors.New("player command failed")
	ErrProcessSpawn   = errors.New("process spawn failure")
	ErrProcessExit    = errors.New("process exit failure")
	ErrTimeout        = errors.New("timeout")
	ErrAnalysis       = errors.New("analysis error")
	ErrDecode         = errors.New("decode error")
	ErrConfiguration  = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker so callers can classify the failure with errors.Is.
// The marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrAnalysis
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Degradable reports whether err only degrades the affected artifact of a
// shadowing cycle rather than ending the task that produced it.
func Degradable(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrConnectionLost), errors.Is(err, ErrConfiguration):
		return false
	default:
		return true
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
