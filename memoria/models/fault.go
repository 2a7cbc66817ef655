package models

import "errors"

// FaultOutcome es el resultado de atender un page fault.
type FaultOutcome int

const (
	OutcomeFatal FaultOutcome = iota
	OutcomeImageMapped
	OutcomeHeapMapped
	OutcomeHeapRestored
)

func (o FaultOutcome) String() string {
	switch o {
	case OutcomeImageMapped:
		return "image-mapped"
	case OutcomeHeapMapped:
		return "heap-mapped"
	case OutcomeHeapRestored:
		return "heap-restored"
	default:
		return "fatal"
	}
}

// FaultKind clasifica un fault fatal según la taxonomía de errores.
type FaultKind string

const (
	KindNone               FaultKind = ""
	KindResourceExhausted  FaultKind = "resource-exhausted"
	KindMalformedImage     FaultKind = "malformed-image"
	KindIOError            FaultKind = "io-error"
	KindInvariantViolation FaultKind = "invariant-violation"
)

// ClassifyFaultError mapea un error a su categoría. Un error sin categoría conocida se trata como
// violación de invariante.
func ClassifyFaultError(err error) FaultKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrResourceExhausted):
		return KindResourceExhausted
	case errors.Is(err, ErrMalformedImage):
		return KindMalformedImage
	case errors.Is(err, ErrIO):
		return KindIOError
	default:
		return KindInvariantViolation
	}
}

// FaultResult es el resultado etiquetado del dispatcher.
type FaultResult struct {
	Outcome FaultOutcome
	Err     error
}

// Ok indica si la página quedó mapeada.
func (r FaultResult) Ok() bool {
	return r.Outcome != OutcomeFatal
}

// Kind devuelve la categoría de la falla, vacía si el fault terminó bien.
func (r FaultResult) Kind() FaultKind {
	if r.Ok() {
		return KindNone
	}
	return ClassifyFaultError(r.Err)
}
