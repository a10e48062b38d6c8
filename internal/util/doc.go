// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the rbac-console packages:
// crash-safe file writes for config and session files, and width-aware
// string helpers for table rendering.
package util
