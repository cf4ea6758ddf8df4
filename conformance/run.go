package conformance

import (
	"slices"
	"strings"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/logger"
	"github.com/teranos/uritemplates/uritemplate"
)

// Options select which cases run.
type Options struct {
	// SkipFirst skips the leading cases, which exercise other tools.
	SkipFirst int
	// Skip lists substrings of whatTests whose cases are skipped.
	Skip []string
}

// Result is the outcome of one template over one range.
type Result struct {
	Index     int      `json:"index"`
	WhatTests string   `json:"what_tests"`
	Template  string   `json:"template,omitempty"`
	TimeRange string   `json:"time_range,omitempty"`
	Want      []string `json:"want,omitempty"`
	Got       []string `json:"got,omitempty"`
	Error     string   `json:"error,omitempty"`
	Skipped   bool     `json:"skipped,omitempty"`
}

// Passed reports whether the produced names equal the expected ones.
func (r Result) Passed() bool {
	return !r.Skipped && r.Error == "" && slices.Equal(r.Want, r.Got)
}

// Report collects every result.
type Report struct {
	Results []Result `json:"results"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
}

// Failures returns the results that neither passed nor were skipped.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Skipped && !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}

// Run formats every range of every case with every template and compares
// the names with the expected output.
func Run(cases []Case, opts Options) *Report {
	log := newLogger()
	report := &Report{}

	for i, c := range cases {
		if i < opts.SkipFirst || skipped(c.WhatTests, opts.Skip) {
			report.Results = append(report.Results, Result{Index: i, WhatTests: c.WhatTests, Skipped: true})
			report.Skipped++
			log.Debugw("Skipping case", "index", i, "what_tests", c.WhatTests)
			continue
		}
		for _, tmpl := range c.Templates {
			for _, tr := range c.TimeRanges {
				res := runOne(i, c, tmpl, tr)
				if res.Passed() {
					report.Passed++
				} else {
					report.Failed++
					log.Warnw("Case failed",
						"index", i,
						logger.FieldTemplate, tmpl,
						logger.FieldRange, tr,
						logger.FieldError, res.Error)
				}
				report.Results = append(report.Results, res)
			}
		}
	}

	log.Infow("Conformance run complete",
		logger.FieldPassed, report.Passed,
		logger.FieldFailed, report.Failed,
		logger.FieldSkipped, report.Skipped)
	return report
}

func runOne(i int, c Case, tmpl, tr string) Result {
	res := Result{Index: i, WhatTests: c.WhatTests, Template: tmpl, TimeRange: tr, Want: c.Outputs}

	start, stop, ok := strings.Cut(tr, "/")
	if !ok || strings.Contains(stop, "/") {
		res.Error = errors.Wrapf(errors.ErrMalformedRange, "%q is not start/stop", tr).Error()
		return res
	}
	got, err := uritemplate.FormatRange(tmpl, start, stop)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Got = got
	return res
}

func skipped(what string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(what, p) {
			return true
		}
	}
	return false
}
