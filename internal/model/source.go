// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines SourceUnit, the program a pipeline run is building.
package model

import (
	"path/filepath"
	"strings"
)

// SourceExtension is the file extension every source description must carry.
const SourceExtension = ".lf"

// SourceUnit identifies the distributed-program description being built.
type SourceUnit struct {
	// Path is the absolute path of the source description.
	Path string
	// Name is the logical program name, the file stem of Path.
	Name string
}

// NewSourceUnit derives a SourceUnit from a source path. The path is made
// absolute but is not checked for existence.
func NewSourceUnit(path string) (SourceUnit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return SourceUnit{}, err
	}
	base := filepath.Base(abs)
	return SourceUnit{
		Path: abs,
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
	}, nil
}

// String returns the logical name.
func (s SourceUnit) String() string {
	return s.Name
}
