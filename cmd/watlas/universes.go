package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/infrastructure/config"
)

func newUniversesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "universes",
		Short: "Manage universes and the selected one",
		RunE:  runUniversesList,
	}

	cmd.AddCommand(
		newUniversesListCmd(),
		newUniversesAddCmd(),
		newUniversesRemoveCmd(),
		newUniversesUseCmd(),
	)

	return cmd
}

func newUniversesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered universes and those used by pages",
		RunE:  runUniversesList,
	}
}

func runUniversesList(cmd *cobra.Command, args []string) error {
	return withDeps(cmd, func(d *Deps) error {
		names, err := d.App.Pages.HandleUniverses(cmd.Context(), d.Universes.Names())
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Println("No universes yet.")
			fmt.Println("Use 'watlas universes add NAME' to register one.")
			return nil
		}

		fmt.Printf("  %-24s %s\n", "NAME", "DESCRIPTION")
		fmt.Printf("  %-24s %s\n", "----", "-----------")
		for _, name := range names {
			marker := " "
			if d.View.Universe != nil && *d.View.Universe == name {
				marker = "*"
			}
			description := ""
			if entry, ok := d.Universes.Universes[name]; ok {
				description = entry.Description
			} else {
				description = "(unregistered)"
			}
			fmt.Printf("%s %-24s %s\n", marker, name, description)
		}
		fmt.Printf("\nView: %s\n", d.View.Describe())
		return nil
	})
}

func newUniversesAddCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a universe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := projectDir()
			if err != nil {
				return err
			}
			if err := addUniverse(cwd, args[0], description); err != nil {
				return err
			}
			fmt.Printf("Registered universe %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Universe description")

	return cmd
}

func newUniversesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Unregister a universe",
		Long:  "Removes a universe from the registry. Pages tagged with it are not changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := projectDir()
			if err != nil {
				return err
			}
			if err := removeUniverse(cwd, args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed universe %q\n", args[0])
			return nil
		},
	}
}

func newUniversesUseCmd() *cobra.Command {
	var all, none bool

	cmd := &cobra.Command{
		Use:   "use [NAME]",
		Short: "Select the universe to view",
		Long:  "Saves the selected universe. --all views every universe; --none clears the selection.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := projectDir()
			if err != nil {
				return err
			}

			var universe *string
			switch {
			case all:
				u := graph.AllUniverses
				universe = &u
			case none:
			case len(args) == 1:
				universe = &args[0]
			default:
				return errors.New("specify a universe NAME, --all or --none")
			}

			view, err := useUniverse(cwd, universe)
			if err != nil {
				return err
			}
			fmt.Printf("View: %s\n", view.Describe())
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "View every universe")
	cmd.Flags().BoolVar(&none, "none", false, "Clear the selection")
	cmd.MarkFlagsMutuallyExclusive("all", "none")

	return cmd
}

func newCanonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "canon [on|off]",
		Short: "Show or switch between canon and non-canon pages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := projectDir()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				view, err := config.LoadView(cwd)
				if err != nil {
					return err
				}
				fmt.Printf("View: %s\n", view.Describe())
				return nil
			}

			canonical, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			view, err := setCanon(cwd, canonical)
			if err != nil {
				return err
			}
			fmt.Printf("View: %s\n", view.Describe())
			return nil
		},
	}
}

// projectDir returns the current directory once it holds a watlas config.
func projectDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if !config.Exists(cwd) {
		return "", fmt.Errorf("no watlas wiki in %s (run 'watlas init' first)", cwd)
	}
	return cwd, nil
}

func addUniverse(basePath, name, description string) error {
	universes, err := config.LoadUniverses(basePath)
	if err != nil {
		return err
	}
	if universes.Exists(name) {
		return fmt.Errorf("universe %q already exists", name)
	}
	if err := universes.Add(name, config.UniverseEntry{Description: description}); err != nil {
		return err
	}
	return universes.Save(basePath)
}

func removeUniverse(basePath, name string) error {
	universes, err := config.LoadUniverses(basePath)
	if err != nil {
		return err
	}
	if _, err := universes.Get(name); err != nil {
		return err
	}
	universes.Remove(name)
	if err := universes.Save(basePath); err != nil {
		return err
	}

	// Unselect a removed universe.
	view, err := config.LoadView(basePath)
	if err != nil {
		return err
	}
	if view.Universe != nil && *view.Universe == name {
		view.Universe = nil
		return view.Save(basePath)
	}
	return nil
}

// useUniverse saves the selection; nil clears it.
func useUniverse(basePath string, universe *string) (config.ViewState, error) {
	view, err := config.LoadView(basePath)
	if err != nil {
		return config.ViewState{}, err
	}
	if universe == nil {
		view.Universe = nil
	} else {
		view = view.WithUniverse(*universe)
	}
	return view, view.Save(basePath)
}

func setCanon(basePath string, canonical bool) (config.ViewState, error) {
	view, err := config.LoadView(basePath)
	if err != nil {
		return config.ViewState{}, err
	}
	view.Canonical = canonical
	return view, view.Save(basePath)
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid value %q (expected on or off)", s)
	}
	return b, nil
}
