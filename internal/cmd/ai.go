package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gravitrone/nebula-notes/internal/note"
	"github.com/gravitrone/nebula-notes/internal/session"
	"github.com/gravitrone/nebula-notes/internal/textsvc"
)

// AICmd returns the `nebula-notes ai` command group.
func AICmd() *cobra.Command {
	var dryRun bool
	names := make([]string, len(textsvc.Actions))
	for i, a := range textsvc.Actions {
		names[i] = string(a)
	}
	cmd := &cobra.Command{
		Use:   "ai <action> <id>",
		Short: "Run an AI action on a note",
		Long: "Run an AI action on a note and save the result.\n\nActions: " +
			strings.Join(names, ", ") + ".\nTransforms act on the whole note; summarize appends a summary section.",
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			action, err := textsvc.ParseAction(args[0])
			if err != nil {
				return err
			}
			return withEnv(c, func(ctx context.Context, env *Env) error {
				n, err := resolveID(env.Store, args[1])
				if err != nil {
					return err
				}
				svc, err := newTextService(ctx, env)
				if err != nil {
					return fmt.Errorf("AI unavailable: %w", err)
				}

				switch action {
				case textsvc.ActionGenerateTitle:
					if n.Title, err = svc.TitleFrom(ctx, n.Content); err != nil {
						return err
					}
				case textsvc.ActionGenerateTags:
					tags, err := svc.TagsFrom(ctx, n.Content)
					if err != nil {
						return err
					}
					n.Tags = note.MergeTags(n.Tags, tags)
				default:
					out, err := svc.Transform(ctx, action, n.Content)
					if err != nil {
						return err
					}
					n.Content = session.Splice(n.Content, session.Span{}, action, out)
				}
				return saveResult(ctx, c, env, n, dryRun)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the result without saving")
	cmd.AddCommand(aiEnrichCmd())
	return cmd
}

func aiEnrichCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "enrich <id>",
		Short: "Generate a title and tags for a note in one go",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withEnv(c, func(ctx context.Context, env *Env) error {
				n, err := resolveID(env.Store, args[0])
				if err != nil {
					return err
				}
				svc, err := newTextService(ctx, env)
				if err != nil {
					return fmt.Errorf("AI unavailable: %w", err)
				}

				var title string
				var tags []string
				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() (err error) {
					title, err = svc.TitleFrom(gctx, n.Content)
					return err
				})
				g.Go(func() (err error) {
					tags, err = svc.TagsFrom(gctx, n.Content)
					return err
				})
				if err := g.Wait(); err != nil {
					return err
				}
				env.Log.Debug("enriched note", zap.String("id", n.ID), zap.Int("tags", len(tags)))

				n.Title = title
				n.Tags = note.MergeTags(n.Tags, tags)
				return saveResult(ctx, c, env, n, dryRun)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the result without saving")
	return cmd
}

func saveResult(ctx context.Context, c *cobra.Command, env *Env, n note.Note, dryRun bool) error {
	out := c.OutOrStdout()
	if !dryRun {
		n.UpdatedAt = env.Store.Now()
		if _, err := env.Store.Update(ctx, n); err != nil {
			return fmt.Errorf("update note: %w", err)
		}
	}
	fmt.Fprintf(out, "title: %s\n", n.DisplayTitle())
	if len(n.Tags) > 0 {
		fmt.Fprintf(out, "tags: %s\n", strings.Join(n.Tags, ", "))
	}
	fmt.Fprintf(out, "\n%s\n", n.Content)
	if dryRun {
		fmt.Fprintln(out, "(dry run, not saved)")
	}
	return nil
}
