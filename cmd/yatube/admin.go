package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yatube/internal/cache"
	"yatube/internal/db"
	"yatube/internal/services"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := a.openDB()
			if err != nil {
				return err
			}
			if err := db.Migrate(gdb, a.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func cacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the page cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Cache.Backend != "redis" {
				fmt.Fprintln(cmd.OutOrStdout(), "The memory cache lives inside the server process; use POST /admin/cache/clear/ instead.")
				return nil
			}
			store, err := cache.New(cmd.Context(), a.cfg.Cache, a.logger)
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	})
	return cmd
}

func groupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}

	var title, description string
	create := &cobra.Command{
		Use:   "create <slug>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repo()
			if err != nil {
				return err
			}
			if title == "" {
				title = args[0]
			}
			group, err := services.NewGroups(repo, a.logger).Create(cmd.Context(), title, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created group %q (/group/%s/)\n", group.Title, group.Slug)
			return nil
		},
	}
	create.Flags().StringVar(&title, "title", "", "group title (defaults to the slug)")
	create.Flags().StringVar(&description, "description", "", "group description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repo()
			if err != nil {
				return err
			}
			groups, err := services.NewGroups(repo, a.logger).List(cmd.Context())
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", g.Slug, g.Title)
			}
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a group; its posts are kept without a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repo()
			if err != nil {
				return err
			}
			if err := services.NewGroups(repo, a.logger).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, list, del)
	return cmd
}

func userCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var demote bool
	promote := &cobra.Command{
		Use:   "promote <username>",
		Short: "Grant staff rights (or revoke them with --demote)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repo()
			if err != nil {
				return err
			}
			if err := services.NewUsers(repo, a.logger).SetStaff(cmd.Context(), args[0], !demote); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s staff: %t\n", args[0], !demote)
			return nil
		},
	}
	promote.Flags().BoolVar(&demote, "demote", false, "revoke staff rights")

	del := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an account; its posts are kept without an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repo()
			if err != nil {
				return err
			}
			if err := services.NewUsers(repo, a.logger).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(promote, del)
	return cmd
}
