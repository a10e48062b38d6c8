// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auditlog derives the security console's view of audit entries:
// severity buckets, summary counters, per-type counts, CSV export and
// locally simulated demo entries.
package auditlog
