package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"taskboard/internal/handlers/dto"

	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// taskRow то, как задача выглядит в yaml и таблице
type taskRow struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Status      string `yaml:"status"`
	CreatedAt   string `yaml:"createdAt"`
	UpdatedAt   string `yaml:"updatedAt"`
}

func toRow(t dto.TaskResponse) taskRow {
	return taskRow{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func validFormat(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (table, json, yaml)", format)
}

func printTasks(w io.Writer, format string, tasks []dto.TaskResponse) error {
	switch format {
	case outputJSON:
		return printJSON(w, tasks)
	case outputYAML:
		rows := make([]taskRow, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, toRow(t))
		}
		return printYAML(w, rows)
	}

	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tCREATED")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func printTask(w io.Writer, format string, t dto.TaskResponse) error {
	switch format {
	case outputJSON:
		return printJSON(w, t)
	case outputYAML:
		return printYAML(w, toRow(t))
	}

	row := toRow(t)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", row.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", row.Title)
	fmt.Fprintf(tw, "Description:\t%s\n", row.Description)
	fmt.Fprintf(tw, "Status:\t%s\n", row.Status)
	fmt.Fprintf(tw, "Created:\t%s\n", row.CreatedAt)
	fmt.Fprintf(tw, "Updated:\t%s\n", row.UpdatedAt)
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
