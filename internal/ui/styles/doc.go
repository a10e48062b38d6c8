// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the console TUI.
//
// All colors are Lip Gloss AdaptiveColors so they follow the terminal's
// light or dark background. The "theme" setting (auto, dark, light) can pin
// the choice. Every status color is paired with an ASCII indicator so state
// never depends on color alone.
package styles
