// Package importer turns uploaded CSV files into transaction params.
package importer

import (
	"fmt"
	"errors"
	"io"

	"github.com/MrJamesThe3rd/biztrack/internal/importer/bank"
	"github.com/MrJamesThe3rd/biztrack/internal/importer/biztrack"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

type Format string

const (
	// FormatBizTrack is the app's own export layout.
	FormatBizTrack Format = "biztrack"
	// FormatBank is a semicolon separated bank statement.
	FormatBank Format = "bank"
)

var ErrUnknownFormat = errors.New("unknown import format")

// Formats lists the accepted formats.
var Formats = []Format{FormatBizTrack, FormatBank}

type Parser interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}

type Service struct {
	parsers map[Format]Parser
}

func NewService() *Service {
	return &Service{
		parsers: map[Format]Parser{
			FormatBizTrack: biztrack.NewParser(),
			FormatBank:     bank.NewParser(),
		},
	}
}

// Import parses r in the given format. An empty format means FormatBizTrack.
func (s *Service) Import(format Format, r io.Reader) ([]transaction.CreateParams, error) {
	if format == "" {
		format = FormatBizTrack
	}

	p, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w %q, expected one of %v", ErrUnknownFormat, format, Formats)
	}

	return p.Parse(r)
}
