package mapping

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportSpreadsheet maps devices listed in an uploaded .xlsx inventory.
// Column A holds the device id, column B an optional sub-venue label. A
// header row is detected by a non-hex first cell and skipped.
func (s *MappingServiceImpl) ImportSpreadsheet(ctx context.Context, tenantID string, file io.Reader) (int, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return 0, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	count := 0
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		deviceID := strings.TrimSpace(row[0])
		if i == 0 && looksLikeHeader(deviceID) {
			continue
		}

		label := ""
		if len(row) > 1 {
			label = strings.TrimSpace(row[1])
		}

		accepted, err := s.BulkMap(ctx, tenantID, []string{deviceID}, label, "spreadsheet import")
		if err != nil {
			return count, err
		}
		count += accepted
	}
	return count, nil
}

func looksLikeHeader(cell string) bool {
	for _, r := range strings.ToLower(cell) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || r == ':' || r == '-' || r == '.' {
			continue
		}
		return true
	}
	return false
}
