package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"taskboard-backend/internal/database/models"
	"taskboard-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newAuditCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit trail",
	}
	cmd.AddCommand(newAuditListCmd(opts))
	return cmd
}

func newAuditListCmd(opts *options) *cobra.Command {
	var entityType, entityID, action, output string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "table" && output != "yaml" {
				return fmt.Errorf("--output must be table or yaml")
			}
			var id uuid.UUID
			if entityID != "" {
				if entityType == "" {
					return fmt.Errorf("--entity-id requires --entity-type")
				}
				parsed, err := uuid.Parse(entityID)
				if err != nil {
					return fmt.Errorf("invalid --entity-id: %w", err)
				}
				id = parsed
			}

			_, db, err := connect(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer closeDB(db)

			repo := repository.NewAuditLogRepository(db)
			var entries []models.AuditLog
			var total int64
			if id != uuid.Nil {
				entries, total, err = repo.ListByEntity(entityType, id, limit, offset)
			} else {
				entries, total, err = repo.List(entityType, action, limit, offset)
			}
			if err != nil {
				return err
			}

			if output == "yaml" {
				return writeAuditYAML(cmd.OutOrStdout(), entries)
			}
			if err := writeAuditTable(cmd.OutOrStdout(), entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d entries\n", len(entries), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&entityType, "entity-type", "", "Filter by entity type (team, project, task)")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "History of a single entity")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action (created, updated, deleted, ...)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to print")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or yaml")

	return cmd
}

func writeAuditTable(w io.Writer, entries []models.AuditLog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DONE AT\tACTION\tENTITY\tENTITY ID\tDONE BY")
	for _, e := range entries {
		doneBy := e.DoneBy.String()
		if e.Actor != nil && e.Actor.Email != "" {
			doneBy = e.Actor.Email
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.DoneAt.UTC().Format(time.RFC3339), e.Action, e.EntityType, e.EntityID, doneBy)
	}
	return tw.Flush()
}

type auditRecord struct {
	DoneAt     string         `yaml:"done_at"`
	Action     string         `yaml:"action"`
	EntityType string         `yaml:"entity_type"`
	EntityID   string         `yaml:"entity_id"`
	DoneBy     string         `yaml:"done_by"`
	OldValues  map[string]any `yaml:"old_values,omitempty"`
	NewValues  map[string]any `yaml:"new_values,omitempty"`
}

func writeAuditYAML(w io.Writer, entries []models.AuditLog) error {
	records := make([]auditRecord, 0, len(entries))
	for _, e := range entries {
		rec := auditRecord{
			DoneAt:     e.DoneAt.UTC().Format(time.RFC3339),
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID.String(),
			DoneBy:     e.DoneBy.String(),
		}
		// snapshots are JSON objects; YAML is a superset of JSON
		if len(e.OldValues) > 0 {
			_ = yaml.Unmarshal(e.OldValues, &rec.OldValues)
		}
		if len(e.NewValues) > 0 {
			_ = yaml.Unmarshal(e.NewValues, &rec.NewValues)
		}
		records = append(records, rec)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}
