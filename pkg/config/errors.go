// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package config

import (
	"fmt"
)

// ErrConfigFileExists returned when Persist would overwrite an existing
// config file without the overwrite flag set
type ErrConfigFileExists struct {
	Path string
}

func (e ErrConfigFileExists) Error() string {
	return fmt.Sprintf("Config file already exists: %s", e.Path)
}
