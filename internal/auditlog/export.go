// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auditlog

import (
	"encoding/csv"
	"io"

	"github.com/jeranaias/rbac-console/internal/model"
)

// CSVHeader is the first export row.
var CSVHeader = []string{"Type", "User", "IP", "Action", "Timestamp"}

// DefaultExportName is the suggested export file name.
const DefaultExportName = "security_logs.csv"

// ExportCSV writes entries with CSVHeader. Missing actions are written as "-".
func ExportCSV(w io.Writer, entries []model.AuditLogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range entries {
		action := e.Summary()
		if action == "" {
			action = "-"
		}
		row := []string{e.EventType, e.Username, e.IPAddress, action, e.FormattedTime()}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
