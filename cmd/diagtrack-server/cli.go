package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/diagtrack/diagtrack/internal/domain/diagnostictest"
	"github.com/diagtrack/diagtrack/internal/platform/db"
)

func printStatuses(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

// checkDatabase counts stored records and prints the oldest one, if any.
func checkDatabase(ctx context.Context, svc *diagnostictest.Service, w io.Writer) error {
	if err := svc.Ping(ctx); err != nil {
		fmt.Fprintln(w, "Database connection failed.")
		return err
	}
	count, err := svc.Count(ctx)
	if err != nil {
		fmt.Fprintln(w, "Database connection failed.")
		return err
	}
	fmt.Fprintln(w, "Database connection successful.")
	fmt.Fprintf(w, "Found %d diagnostic test records in the database.\n", count)

	if count > 0 {
		sample, err := svc.Sample(ctx)
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(sample, "", "  ")
		if err != nil {
			return fmt.Errorf("encode sample: %w", err)
		}
		fmt.Fprintln(w, "Sample record:")
		fmt.Fprintln(w, string(b))
	}
	return nil
}
