package openwith

import (
	"encoding/json"
	"fmt"
	"os"
)

// Report is the JSON scan report, schema-compatible with the original
// cleaner script so existing tooling can keep consuming it.
type Report struct {
	TotalCandidates int        `json:"total_candidates"`
	Broken          []*Entry   `json:"broken"`
	DupByName       [][]*Entry `json:"dup_by_name"`
	DupByNameCmd    [][]*Entry `json:"dup_by_name_cmd"`
}

// BuildReport assembles a report from a scan.
func BuildReport(entries []*Entry) *Report {
	report := &Report{
		TotalCandidates: len(entries),
		Broken:          BrokenEntries(entries),
	}
	for _, g := range GroupsByName(entries) {
		report.DupByName = append(report.DupByName, g)
	}
	for _, g := range GroupsByNameCommand(entries) {
		report.DupByNameCmd = append(report.DupByNameCmd, g)
	}
	return report
}

// WriteJSON writes the report to a file as indented JSON.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}
