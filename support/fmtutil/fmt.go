// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package fmtutil contains formatting helpers.
package fmtutil

import (
	"encoding/hex"
)

// Hex is a byte slice that renders as a hex-dumped string.
//
// It can be used for easy lazy hex dumping: the dump is only built when a
// logging statement actually formats the value.
type Hex []byte

func (h Hex) String() string { return hex.Dump([]byte(h)) }
