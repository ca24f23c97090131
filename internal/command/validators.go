// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"slices"
)

// Output formats.
const (
	outputText  = "text"
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputDelta = "delta"
	outputRaw   = "raw"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// OutputValidator accepts the formats of the tabular commands.
func OutputValidator(value any) error {
	return oneOf(value, outputText, outputJSON, outputYAML)
}

// ComparisonOutputValidator accepts the formats of call and diff.
func ComparisonOutputValidator(value any) error {
	return oneOf(value, outputText, outputJSON, outputYAML, outputDelta, outputRaw)
}

func oneOf(value any, valid ...string) error {
	s, ok := value.(string)
	if !ok || !slices.Contains(valid, s) {
		return fmt.Errorf("must be one of %v", valid)
	}
	return nil
}
