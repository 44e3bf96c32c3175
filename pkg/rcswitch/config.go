// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// protocolFile is the on-disk shape of a protocol definition file.
type protocolFile struct {
	Protocols []ProtocolDef `yaml:"protocols"`
}

// LoadProtocolDefs reads protocol definitions from a YAML file. The
// file replaces the stock table entirely.
func LoadProtocolDefs(path string) ([]ProtocolDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading protocol file: %w", err)
	}
	return ParseProtocolDefs(data)
}

// ParseProtocolDefs parses YAML protocol definitions.
func ParseProtocolDefs(data []byte) ([]ProtocolDef, error) {
	var file protocolFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing protocol file: %w", err)
	}
	if len(file.Protocols) == 0 {
		return nil, fmt.Errorf("protocol file defines no protocols")
	}
	return file.Protocols, nil
}

// LoadProtocolFile reads protocol definitions from a YAML file and
// builds the timing table from them. Definitions that expand to empty
// ranges are rejected here, at configuration time.
func LoadProtocolFile(path string) (*TimingSpecTable, error) {
	defs, err := LoadProtocolDefs(path)
	if err != nil {
		return nil, err
	}
	return NewTimingSpecTable(defs)
}

// SaveProtocolFile writes protocol definitions as YAML, in the shape
// LoadProtocolFile reads back.
func SaveProtocolFile(path string, defs []ProtocolDef) error {
	data, err := yaml.Marshal(protocolFile{Protocols: defs})
	if err != nil {
		return fmt.Errorf("encoding protocol file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing protocol file: %w", err)
	}
	return nil
}
