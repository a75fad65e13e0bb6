package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/watlas/internal/application/handlers"
	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
)

func newListCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pages in the current view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				result, err := d.App.Pages.HandleList(cmd.Context(), d.Scope(), kind)
				if err != nil {
					return err
				}
				if !result.Selected {
					fmt.Println(noUniverseHint)
					return nil
				}
				if result.Total == 0 {
					fmt.Printf("No pages found (%s).\n", d.View.Describe())
					return nil
				}

				fmt.Printf("Showing %d pages (%s):\n\n", result.Total, d.View.Describe())
				displayPageTable(os.Stdout, result.Pages)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Filter by kind")

	return cmd
}

func newShowCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "show <id-or-slug>",
		Short: "Show a page with its relations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				detail, err := d.App.Pages.HandleShow(cmd.Context(), args[0], kind, d.Scope())
				if err != nil {
					return err
				}
				displayPageDetail(os.Stdout, detail)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Page kind (lets the id be looked up directly)")

	return cmd
}

type pageFlags struct {
	kind      string
	slug      string
	universe  string
	canon     bool
	sections  []string
	relations []string
	imageURL  string
}

func newAddCmd() *cobra.Command {
	var flags pageFlags

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a page",
		Long: "Creates a page. The universe defaults to the selected one.\n" +
			"Sections are given as --section \"Title=Content\" and may be repeated.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.kind, "kind", "k", "", fmt.Sprintf("Page kind %v", entities.KindNames()))
	cmd.Flags().StringVar(&flags.slug, "slug", "", "Readable handle (derived from the name when omitted)")
	cmd.Flags().StringVar(&flags.universe, "page-universe", "", "Universe tag of the page")
	cmd.Flags().BoolVar(&flags.canon, "canon", true, "Whether the page is canon")
	cmd.Flags().StringArrayVarP(&flags.sections, "section", "s", nil, "Section as TITLE=CONTENT")
	cmd.Flags().StringArrayVarP(&flags.relations, "relation", "r", nil, "Related page id")
	cmd.Flags().StringVar(&flags.imageURL, "image-url", "", "Image URL")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func runAdd(cmd *cobra.Command, name string, flags pageFlags) error {
	sections, err := parseSections(flags.sections)
	if err != nil {
		return err
	}

	return withDeps(cmd, func(d *Deps) error {
		universe := flags.universe
		if !cmd.Flags().Changed("page-universe") && d.View.Universe != nil {
			universe = *d.View.Universe
		}

		canon := flags.canon
		page, err := d.App.Pages.HandleCreate(cmd.Context(), d.Session, handlers.PageInput{
			Name:      name,
			Kind:      flags.kind,
			Slug:      flags.slug,
			Canonical: &canon,
			Universe:  universe,
			Relations: flags.relations,
			Sections:  sections,
			ImageURL:  flags.imageURL,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created %s %q (id: %s, slug: %s)\n", page.Kind, page.Name, page.ID, page.Slug)
		return nil
	})
}

func newEditCmd() *cobra.Command {
	var (
		flags       pageFlags
		name        string
		addSections []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id-or-slug>",
		Short: "Edit a page",
		Long: "Changes the given fields of a page. --section replaces every section;\n" +
			"--add-section appends one.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := parseSections(flags.sections)
			if err != nil {
				return err
			}
			extra, err := parseSections(addSections)
			if err != nil {
				return err
			}

			changed := cmd.Flags().Changed
			return withDeps(cmd, func(d *Deps) error {
				page, err := d.App.Pages.HandleEdit(cmd.Context(), d.Session, args[0], flags.kind, func(p *entities.Page) error {
					if changed("name") {
						p.Name = name
					}
					if changed("slug") {
						p.Slug = flags.slug
					}
					if changed("page-universe") {
						p.Universe = flags.universe
					}
					if changed("canon") {
						p.Canonical = flags.canon
					}
					if changed("image-url") {
						p.ImageURL = flags.imageURL
					}
					if changed("section") {
						p.Sections = sections
					}
					p.Sections = append(p.Sections, extra...)
					return nil
				})
				if err != nil {
					return err
				}

				fmt.Printf("Updated %s %q\n", page.Kind, page.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&flags.kind, "kind", "k", "", "Page kind (lets the id be looked up directly)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "New name")
	cmd.Flags().StringVar(&flags.slug, "slug", "", "New slug")
	cmd.Flags().StringVar(&flags.universe, "page-universe", "", "New universe tag")
	cmd.Flags().BoolVar(&flags.canon, "canon", true, "Whether the page is canon")
	cmd.Flags().StringArrayVarP(&flags.sections, "section", "s", nil, "Replace sections (TITLE=CONTENT)")
	cmd.Flags().StringArrayVar(&addSections, "add-section", nil, "Append a section (TITLE=CONTENT)")
	cmd.Flags().StringVar(&flags.imageURL, "image-url", "", "New image URL")

	return cmd
}

func newDeleteCmd() *cobra.Command {
	var (
		kind  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "delete <id-or-slug>",
		Short: "Delete a page",
		Long:  "Deletes a page. Relations pointing at it are kept and shown as missing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirmAction(fmt.Sprintf("Delete page %s?", args[0])) {
				fmt.Println("Cancelled.")
				return nil
			}
			return withDeps(cmd, func(d *Deps) error {
				if err := d.App.Pages.HandleDelete(cmd.Context(), d.Session, args[0], kind); err != nil {
					return err
				}
				fmt.Printf("Deleted page: %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Page kind (lets the id be looked up directly)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func newRelateCmd() *cobra.Command {
	return newRelationCmd("relate <page> <target>", "Add a related page", true)
}

func newUnrelateCmd() *cobra.Command {
	return newRelationCmd("unrelate <page> <target>", "Remove a related page", false)
}

func newRelationCmd(use, short string, include bool) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  "Pages and targets may be given by id or slug. Targets must be visible in the current view.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				page, err := d.App.Pages.HandleRelate(cmd.Context(), d.Session, args[0], kind, args[1], include, d.Scope())
				if err != nil {
					return err
				}
				fmt.Printf("%s now has %d relations\n", page.Name, len(page.Relations))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Page kind (lets the id be looked up directly)")

	return cmd
}

func newTimelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show pages grouped under the years they reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				tl, err := d.App.Pages.HandleTimeline(cmd.Context(), d.Scope())
				if err != nil {
					return err
				}
				if !tl.Selected {
					fmt.Println(noUniverseHint)
					return nil
				}
				displayTimeline(tl.Groups)
				return nil
			})
		},
	}
}

func displayTimeline(groups []graph.TimelineGroup) {
	if len(groups) == 0 {
		fmt.Println("No year pages in view.")
		return
	}
	for _, g := range groups {
		fmt.Println(g.Anchor.Name)
		if len(g.Members) == 0 {
			fmt.Println("  (nothing yet)")
		}
		for _, m := range g.Members {
			fmt.Printf("  - %s (%s)\n", m.Name, m.Kind)
		}
	}
}
