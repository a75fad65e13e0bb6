package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCommentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and post guestbook comments",
		RunE:  runCommentsList,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List comments, newest first",
			RunE:  runCommentsList,
		},
		&cobra.Command{
			Use:   "post <text>...",
			Short: "Post a comment",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDeps(cmd, func(d *Deps) error {
					comment, err := d.App.Comments.HandlePost(cmd.Context(), d.Session, strings.Join(args, " "))
					if err != nil {
						return err
					}
					fmt.Printf("Posted comment %s\n", comment.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a comment (admin)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDeps(cmd, func(d *Deps) error {
					if err := d.App.Comments.HandleDelete(cmd.Context(), d.Session, args[0]); err != nil {
						return err
					}
					fmt.Printf("Deleted comment: %s\n", args[0])
					return nil
				})
			},
		},
	)

	return cmd
}

func runCommentsList(cmd *cobra.Command, args []string) error {
	return withDeps(cmd, func(d *Deps) error {
		result, err := d.App.Comments.HandleList(cmd.Context())
		if err != nil {
			return err
		}
		if result.Total == 0 {
			fmt.Println("No comments yet.")
			return nil
		}
		for _, c := range result.Comments {
			fmt.Printf("[%s] %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.ID)
			fmt.Printf("  %s\n\n", c.Content)
		}
		return nil
	})
}
