package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "image <kind> <id> <file>",
		Short: "Attach an image to a page",
		Long:  "Uploads a jpg, png, gif or webp image to the configured storage and sets it as the page image.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				page, err := d.App.Images.HandleUploadFile(cmd.Context(), d.Session, args[1], args[0], args[2])
				if err != nil {
					return err
				}
				fmt.Printf("Image of %q: %s\n", page.Name, page.ImageURL)
				return nil
			})
		},
	}
}
