// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package message

import (
	"fmt"
	"mime"
	"os"
)

// Materialize writes a Base64Source's decoded bytes to a temporary file and
// returns its path. Some provider APIs (formatters, see model.Formatter)
// only accept a path or URL reference for multimodal content, not inline
// bytes; this is the one place that bridges the two.
func Materialize(src Base64Source, dir string) (string, error) {
	ext := ""
	if exts, err := mime.ExtensionsByType(src.MediaType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}

	f, err := os.CreateTemp(dir, "agentcore-media-*"+ext)
	if err != nil {
		return "", fmt.Errorf("materialize: create temp file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(src.Data); err != nil {
		return "", fmt.Errorf("materialize: write temp file: %w", err)
	}

	return f.Name(), nil
}
