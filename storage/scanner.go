package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/uritemplates/catalog"
	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/logger"
	"github.com/teranos/uritemplates/uritemplate"
)

// Sink records what a scan finds. *catalog.Store is the usual sink.
type Sink interface {
	BeginScan(ctx context.Context, template, source string) (string, error)
	Put(ctx context.Context, e catalog.Entry) error
	FinishScan(ctx context.Context, id string, matched, skipped int) error
}

// ScanResult summarises one scan.
type ScanResult struct {
	ScanID  string          `json:"scan_id,omitempty"`
	Source  string          `json:"source"`
	Matched int             `json:"matched"`
	Skipped int             `json:"skipped"`
	Entries []catalog.Entry `json:"entries"`

	SkippedNames []string `json:"skipped_names,omitempty"`
}

// Scanner parses every name a Source lists with one template.
type Scanner struct {
	Template *uritemplate.Template
	// Sink may be nil, in which case matches are only returned.
	Sink Sink

	logger *zap.SugaredLogger
}

// NewScanner creates a scanner writing to sink.
func NewScanner(tmpl *uritemplate.Template, sink Sink) *Scanner {
	return &Scanner{Template: tmpl, Sink: sink, logger: logger.ComponentLogger("storage.scanner")}
}

// Scan lists src, parses each name and records the ones that match.
// Names the template does not recognise are counted as skipped.
func (s *Scanner) Scan(ctx context.Context, src Source) (ScanResult, error) {
	if s.logger == nil {
		s.logger = logger.ComponentLogger("storage.scanner")
	}
	began := time.Now()
	result := ScanResult{Source: src.String()}

	names, err := src.List(ctx)
	if err != nil {
		return result, err
	}

	if s.Sink != nil {
		if result.ScanID, err = s.Sink.BeginScan(ctx, s.Template.String(), src.String()); err != nil {
			return result, err
		}
	}
	ctx = logger.WithScanID(ctx, result.ScanID)
	log := s.logger.With(logger.FieldsFromContext(ctx)...)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, "scan interrupted")
		}
		r, extra, err := s.Template.Parse(name)
		if err != nil {
			result.Skipped++
			result.SkippedNames = append(result.SkippedNames, name)
			log.Debugw("Skipping name", logger.FieldName, name, logger.FieldError, err.Error())
			continue
		}
		e := catalog.Entry{
			Name:     name,
			Template: s.Template.String(),
			Range:    r,
			Extras:   extra,
			ScanID:   result.ScanID,
		}
		if s.Sink != nil {
			if err := s.Sink.Put(ctx, e); err != nil {
				return result, err
			}
		}
		result.Entries = append(result.Entries, e)
		result.Matched++
	}

	if s.Sink != nil {
		if err := s.Sink.FinishScan(ctx, result.ScanID, result.Matched, result.Skipped); err != nil {
			return result, err
		}
	}

	log.Infow("Scan complete",
		logger.FieldSource, result.Source,
		logger.FieldTemplate, s.Template.String(),
		logger.FieldMatched, result.Matched,
		logger.FieldSkipped, result.Skipped,
		logger.FieldDurationMS, time.Since(began).Milliseconds())
	return result, nil
}
