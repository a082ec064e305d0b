package hcpn

import (
	"errors"
	"strings"
)

var (
	ErrInvalidName           = errors.New("invalid name")
	ErrDuplicateName         = errors.New("duplicate module name")
	ErrUnknownModule         = errors.New("unknown module")
	ErrUnknownTransition     = errors.New("unknown transition")
	ErrUnknownPlace          = errors.New("unknown place")
	ErrDuplicateSubstitution = errors.New("duplicate substitution")
	ErrCyclicHierarchy       = errors.New("cyclic hierarchy")
	ErrPlaceAlreadyFused     = errors.New("place already fused")
	ErrDomainMismatch        = errors.New("domain mismatch")
	ErrFusionTooSmall        = errors.New("fusion set needs at least two places")
	ErrUnboundPort           = errors.New("unbound port")
	ErrNotExecutable         = errors.New("module cannot be executed")
	ErrDescentLimit          = errors.New("substitution descent exceeded step limit")
)

// Violation is one problem found while validating a hierarchy.
type Violation struct {
	Err        error
	Module     string
	Transition string
	Place      string
	Detail     string
}

func (v *Violation) Error() string {
	var sb strings.Builder
	sb.WriteString(v.Err.Error())
	var where []string
	if v.Module != "" {
		where = append(where, "module "+v.Module)
	}
	if v.Transition != "" {
		where = append(where, "transition "+v.Transition)
	}
	if v.Place != "" {
		where = append(where, "place "+v.Place)
	}
	if len(where) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(where, ", "))
		sb.WriteString(")")
	}
	if v.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(v.Detail)
	}
	return sb.String()
}

func (v *Violation) Unwrap() error {
	return v.Err
}
