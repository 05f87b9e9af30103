package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/database/repository"
)

var (
	noteContent string
	noteTags    string
	noteLimit   int
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Keep free-form notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("note title is empty")
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		now := a.now().UTC()
		n := repository.Note{
			ID:        uuid.NewString(),
			Title:     title,
			Content:   noteContent,
			Tags:      normalizeTags(noteTags),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := a.notes.Insert(ctx, n); err != nil {
			return fmt.Errorf("add note: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), map[string]any{"id": n.ID, "title": n.Title, "tags": n.Tags})
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Added note %q (%s)", title, shortID(n.ID)))
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		notes, err := a.notes.List(ctx, noteLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]map[string]any, 0, len(notes))
			for _, n := range notes {
				out = append(out, map[string]any{
					"id":        n.ID,
					"title":     n.Title,
					"content":   n.Content,
					"tags":      n.Tags,
					"updatedAt": n.UpdatedAt,
				})
			}
			return outputJSON(cmd.OutOrStdout(), out)
		}
		if len(notes) == 0 {
			printDim(cmd.OutOrStdout(), "No notes.")
			return nil
		}
		w := cmd.OutOrStdout()
		for _, n := range notes {
			_, _ = labelColor.Fprintf(w, "%s ", n.Title)
			_, _ = dimColor.Fprintf(w, "%s  %s\n", shortID(n.ID), n.UpdatedAt.In(a.loc).Format("Jan 2 15:04"))
			if n.Content != "" {
				_, _ = fmt.Fprintf(w, "  %s\n", n.Content)
			}
			if n.Tags != "" {
				printDim(w, "  #"+strings.ReplaceAll(n.Tags, ",", " #"))
			}
		}
		return nil
	},
}

var noteRmCmd = &cobra.Command{
	Use:   "rm <note-id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		all, err := a.notes.List(ctx, 1000)
		if err != nil {
			return err
		}
		ids := make([]string, len(all))
		for i, n := range all {
			ids[i] = n.ID
		}
		id, err := resolveID(args[0], ids)
		if err != nil {
			return err
		}
		if err := a.notes.Delete(ctx, id); err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), map[string]any{"success": true, "id": id})
		}
		printSuccess(cmd.OutOrStdout(), "Deleted note "+shortID(id))
		return nil
	},
}

func init() {
	noteAddCmd.Flags().StringVarP(&noteContent, "content", "m", "", "Note body")
	noteAddCmd.Flags().StringVarP(&noteTags, "tags", "t", "", "Comma-separated tags")
	noteListCmd.Flags().IntVarP(&noteLimit, "limit", "n", 20, "Number of notes to list")
	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteRmCmd)
}

// normalizeTags lowercases, trims and dedupes a comma-separated tag list.
func normalizeTags(s string) string {
	seen := map[string]bool{}
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return strings.Join(out, ",")
}
