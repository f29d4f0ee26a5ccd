package main

import (
	"fmt"
	"slices"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/flashdeck/internal/config"
)

// answerInput selects between typing the answer and grading oneself.
type answerInput string

const (
	answerInputAuto  answerInput = "auto"
	answerInputTyped answerInput = "typed"
	answerInputSelf  answerInput = "self"
)

func (a *answerInput) Set(val string) error {
	for _, input := range allAnswerInputs {
		if val == string(input) {
			*a = input
			return nil
		}
	}
	return fmt.Errorf("invalid answer input: %s", val)
}

func (a answerInput) String() string {
	return string(a)
}

func (a *answerInput) Type() string {
	return "answerInput"
}

func (a answerInput) enabled(app string) bool {
	switch a {
	case answerInputTyped:
		return true
	case answerInputSelf:
		return false
	default:
		return slices.Contains(typedAnswerApps, app)
	}
}

type reportFormat string

const (
	reportFormatText     reportFormat = "text"
	reportFormatMarkdown reportFormat = "markdown"
)

func (f *reportFormat) Set(val string) error {
	for _, format := range allReportFormats {
		if val == string(format) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s", val)
}

func (f reportFormat) String() string {
	return string(f)
}

func (f *reportFormat) Type() string {
	return "format"
}

type progressBackend string

func (b *progressBackend) Set(val string) error {
	for _, backend := range allProgressBackends {
		if val == string(backend) {
			*b = backend
			return nil
		}
	}
	return fmt.Errorf("invalid backend: %s", val)
}

func (b progressBackend) String() string {
	return string(b)
}

func (b *progressBackend) Type() string {
	return "backend"
}

var (
	_ pflag.Value = (*answerInput)(nil)
	_ pflag.Value = (*reportFormat)(nil)
	_ pflag.Value = (*progressBackend)(nil)

	allAnswerInputs     = []answerInput{answerInputAuto, answerInputTyped, answerInputSelf}
	allReportFormats    = []reportFormat{reportFormatText, reportFormatMarkdown}
	allProgressBackends = []progressBackend{
		config.ProgressBackendYAML,
		config.ProgressBackendSQLite,
		config.ProgressBackendMySQL,
	}
)
