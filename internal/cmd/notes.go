package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/gravitrone/nebula-notes/internal/note"
	"github.com/gravitrone/nebula-notes/internal/ui/components"
)

// ListCmd returns the `nebula-notes list` command.
func ListCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return withEnv(c, func(_ context.Context, env *Env) error {
				notes := note.Filter(env.Store.Snapshot(), query)
				out := c.OutOrStdout()
				if len(notes) == 0 {
					fmt.Fprintln(out, "no notes found")
					return nil
				}
				for _, n := range notes {
					tags := ""
					if len(n.Tags) > 0 {
						tags = "  [" + strings.Join(n.Tags, ", ") + "]"
					}
					fmt.Fprintf(out, "  %s  %s%s  updated: %s\n",
						shortID(n.ID),
						components.SanitizeOneLine(n.DisplayTitle()),
						components.SanitizeOneLine(tags),
						n.UpdatedAt.Local().Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only notes whose title, content or tags contain this")
	return cmd
}

// NewCmd returns the `nebula-notes new` command.
func NewCmd() *cobra.Command {
	var title, content string
	var tags []string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if content == "-" {
				data, err := io.ReadAll(c.InOrStdin())
				if err != nil {
					return fmt.Errorf("read content: %w", err)
				}
				content = string(data)
			}
			return withEnv(c, func(ctx context.Context, env *Env) error {
				n, _, err := env.Store.Insert(ctx, note.Note{
					Title:   strings.TrimSpace(title),
					Content: content,
					Tags:    tags,
				})
				if err != nil {
					return fmt.Errorf("create note: %w", err)
				}
				fmt.Fprintf(c.OutOrStdout(), "note created: %s\n", n.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "note content, or - to read stdin")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag to add (repeatable)")
	return cmd
}

// ShowCmd returns the `nebula-notes show` command.
func ShowCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withEnv(c, func(_ context.Context, env *Env) error {
				n, err := resolveID(env.Store, args[0])
				if err != nil {
					return err
				}
				out := c.OutOrStdout()
				if raw {
					fmt.Fprint(out, n.Content)
					if !strings.HasSuffix(n.Content, "\n") {
						fmt.Fprintln(out)
					}
					return nil
				}
				fmt.Fprintf(out, "%s\n", components.SanitizeOneLine(n.DisplayTitle()))
				fmt.Fprintf(out, "id: %s\n", n.ID)
				if len(n.Tags) > 0 {
					fmt.Fprintf(out, "tags: %s\n", components.SanitizeOneLine(strings.Join(n.Tags, ", ")))
				}
				fmt.Fprintf(out, "updated: %s\n\n", n.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out, renderMarkdown(n.Content))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print content only, without markdown rendering")
	return cmd
}

func renderMarkdown(content string) string {
	text := components.SanitizeText(content)
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// DeleteCmd returns the `nebula-notes delete` command.
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withEnv(c, func(ctx context.Context, env *Env) error {
				n, err := resolveID(env.Store, args[0])
				if err != nil {
					return err
				}
				if _, err := env.Store.Delete(ctx, n.ID); err != nil {
					return fmt.Errorf("delete note: %w", err)
				}
				fmt.Fprintf(c.OutOrStdout(), "note deleted: %s\n", n.ID)
				return nil
			})
		},
	}
}

// TagCmd returns the `nebula-notes tag` command group.
func TagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Add or remove note tags",
	}
	cmd.AddCommand(tagEditCmd("add", "Add a tag", note.AddTag))
	cmd.AddCommand(tagEditCmd("rm", "Remove a tag", note.RemoveTag))
	return cmd
}

func tagEditCmd(use, short string, edit func([]string, string) ([]string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id> <tag>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return withEnv(c, func(ctx context.Context, env *Env) error {
				n, err := resolveID(env.Store, args[0])
				if err != nil {
					return err
				}
				out := c.OutOrStdout()
				tags, changed := edit(n.Tags, args[1])
				if !changed {
					fmt.Fprintln(out, "tags unchanged")
					return nil
				}
				n.Tags = tags
				n.UpdatedAt = env.Store.Now()
				if _, err := env.Store.Update(ctx, n); err != nil {
					return fmt.Errorf("update note: %w", err)
				}
				fmt.Fprintf(out, "tags: %s\n", strings.Join(n.Tags, ", "))
				return nil
			})
		},
	}
}
