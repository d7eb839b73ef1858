package earnings

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedScheme is returned when a scheme type is not recognized.
	ErrUnsupportedScheme = errors.New("unsupported scheme type")

	// ErrFormulaSyntax is returned when a custom formula cannot be parsed.
	ErrFormulaSyntax = errors.New("formula syntax error")

	// ErrFormulaIdentifier is returned when a formula names something outside
	// the variable and function tables.
	ErrFormulaIdentifier = errors.New("formula identifier not allowed")

	// ErrFormulaEval is returned when a parsed formula fails at evaluation time.
	ErrFormulaEval = errors.New("formula evaluation failed")
)

// UnsupportedSchemeError names the rejected type and the supported set.
type UnsupportedSchemeError struct {
	SchemeType string
}

func (e *UnsupportedSchemeError) Error() string {
	names := make([]string, 0, len(supportedTypes))
	for _, t := range supportedTypes {
		names = append(names, string(t))
	}
	return fmt.Sprintf("unsupported scheme type %q (supported: %s)", e.SchemeType, strings.Join(names, ", "))
}

func (e *UnsupportedSchemeError) Unwrap() error {
	return ErrUnsupportedScheme
}

// FormulaError wraps a formula failure with the offending position.
type FormulaError struct {
	Kind error
	Pos  int
	Msg  string
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", e.Kind, e.Pos, e.Msg)
}

func (e *FormulaError) Unwrap() error {
	return e.Kind
}
