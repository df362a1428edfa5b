// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"encoding/csv"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"
)

// AsLoadFunc adapts a strongly typed loader into a [LoadFunc], so it can be
// registered with [LoadWithFieldLoader] / [LoadWithTypeLoader].
//
//	xenv.LoadWithTypeLoader(
//		reflect.TypeOf(map[string]string(nil)),
//		xenv.AsLoadFunc(xenv.LoadStringMap),
//	)
func AsLoadFunc[T any](fn func(raw string) (T, error)) LoadFunc {
	return func(raw string) (any, error) {
		return fn(raw)
	}
}

// LoadBool parses a boolean, strictly: it accepts "true" and "false" in any
// casing, and nothing else (no "1"/"0" or "yes"/"no" leniency).
func LoadBool(raw string) (bool, error) {
	if strings.EqualFold(raw, "true") {
		return true, nil
	}
	if strings.EqualFold(raw, "false") {
		return false, nil
	}

	return false, fmt.Errorf(`"%s" cannot be parsed as boolean`, raw)
}

// isoTimeLayouts are the accepted ISO-8601 spellings: full datetime
// (with or without offset), calendar date, and time of day.
var isoTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
}

// LoadTime parses an ISO-8601 date, time of day, or datetime.
func LoadTime(raw string) (time.Time, error) {
	for _, layout := range isoTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf(`"%s" cannot be parsed as ISO-8601 date/time`, raw)
}

// LoadStringList parses a single-line CSV list of strings:
// comma as delimiter, double quote as quote character, double quotes
// inside a value doubled, spaces after the comma skipped.
// The empty string yields an empty list.
func LoadStringList(raw string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.TrimLeadingSpace = true

	record, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

// LoadIntList parses a single-line CSV list of integers.
// Items are trimmed of surrounding whitespace before parsing.
// See [LoadStringList] for the CSV rules.
func LoadIntList(raw string) ([]int, error) {
	items, err := LoadStringList(raw)
	if err != nil {
		return nil, err
	}

	list := make([]int, len(items))
	for idx, item := range items {
		value, err := cast.ToIntE(strings.TrimSpace(item))
		if err != nil {
			return nil, err
		}
		list[idx] = value
	}

	return list, nil
}

// LoadStringMap parses a logfmt line into a string-to-string map.
// See [ParseLogfmtLine] for the accepted grammar.
func LoadStringMap(raw string) (map[string]string, error) {
	return ParseLogfmtLine(raw)
}

// LoadFileBytes reads the whole file found at given path.
// It is meant for configurations too sensitive or too large for an
// environment variable itself, like credentials and certificates: the
// variable holds the path, the loader brings in the content.
func LoadFileBytes(raw string) ([]byte, error) {
	info, err := os.Stat(raw)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("file not found: %s", raw)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("no permissions to read: %s", raw)
	case err != nil:
		return nil, err
	case info.IsDir():
		return nil, fmt.Errorf("unexpected directory: %s", raw)
	}

	content, err := os.ReadFile(raw)
	if errors.Is(err, fs.ErrPermission) {
		return nil, fmt.Errorf("no permissions to read: %s", raw)
	}

	return content, err
}

// LoadFileString reads the whole file found at given path as UTF-8 text.
func LoadFileString(raw string) (string, error) {
	content, err := LoadFileBytes(raw)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("could not decode as UTF-8: %s", raw)
	}

	return string(content), nil
}

// LoadFileASCII reads the whole file found at given path as ASCII text.
func LoadFileASCII(raw string) (string, error) {
	content, err := LoadFileBytes(raw)
	if err != nil {
		return "", err
	}
	for _, b := range content {
		if b > 0x7F {
			return "", fmt.Errorf("could not decode as ASCII: %s", raw)
		}
	}

	return string(content), nil
}

// LoadPEMBlocks reads the file found at given path and returns each PEM
// encoded data found in it, re-encoded standalone. A file may hold more
// than one block (certificate chains typically do), hence the list.
func LoadPEMBlocks(raw string) ([]string, error) {
	content, err := LoadFileBytes(raw)
	if err != nil {
		return nil, err
	}

	var blocks []string
	for {
		var block *pem.Block
		block, content = pem.Decode(content)
		if block == nil {
			break
		}
		blocks = append(blocks, string(pem.EncodeToMemory(block)))
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("no valid PEM encoded data found: %s", raw)
	}

	return blocks, nil
}

// LoadPEMBlocksCount returns a loader like [LoadPEMBlocks] that additionally
// enforces the number of PEM encoded data found.
// A maxCount <= 0 means no upper bound.
func LoadPEMBlocksCount(minCount, maxCount int) func(raw string) ([]string, error) {
	return func(raw string) ([]string, error) {
		blocks, err := LoadPEMBlocks(raw)
		if err != nil {
			return nil, err
		}

		var msg string
		if maxCount <= 0 {
			msg = fmt.Sprintf("expected at least %d PEM encoded data: %s", minCount, raw)
		} else {
			msg = fmt.Sprintf(
				"expected between %d and %d PEM encoded data: %s",
				minCount, maxCount, raw,
			)
		}

		if len(blocks) < minCount {
			return nil, errors.New(msg)
		}
		if maxCount > 0 && len(blocks) > maxCount {
			return nil, errors.New(msg)
		}

		return blocks, nil
	}
}

// LoadPEMBlock is a shorthand for files expected to hold exactly
// one PEM encoded data.
func LoadPEMBlock(raw string) (string, error) {
	blocks, err := LoadPEMBlocksCount(1, 1)(raw)
	if err != nil {
		return "", err
	}

	return blocks[0], nil
}
