// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/apiparity/internal/jsonval"
)

// Delta renders a unified, whole-document view of the two bodies. Both are
// wrapped under a "body" key so non-object roots can be compared. Keys named
// in drop are removed from the top level of each object body first. The
// boolean reports whether the documents differ at all.
func Delta(real, clone jsonval.Value, color bool, drop ...string) (string, bool, error) {
	left := wrap(real, drop)
	right := wrap(clone, drop)

	delta := gojsondiff.New().CompareObjects(left, right)
	if !delta.Modified() {
		return "", false, nil
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	}

	out, err := formatter.NewAsciiFormatter(left, config).Format(delta)
	if err != nil {
		return "", true, err
	}

	log.Debugf("delta: %d bytes", len(out))
	return out, true, nil
}

func wrap(v jsonval.Value, drop []string) map[string]interface{} {
	body := v.Interface()
	if m, ok := body.(map[string]interface{}); ok {
		for _, key := range drop {
			delete(m, key)
		}
	}
	return map[string]interface{}{"body": body}
}
