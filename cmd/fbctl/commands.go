package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"filebox/internal/config"
	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"
	fsSvc "filebox/internal/domain/services/filesystem"
	"filebox/internal/seed"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "fbctl",
		Short:         "Manage a filebox workspace from the command line",
		Long:          "fbctl reads and edits the directory tree of a filebox store directly, as the local single user.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.database, "db", cfg.DatabaseURL, "SQLite file path or postgres:// URL")
	flags.StringVar(&opts.prefix, "table-prefix", cfg.TablePrefix, "Table name prefix")
	flags.StringVarP(&opts.workspace, "workspace", "w", cfg.DefaultWorkspace, "Workspace name (created when missing)")
	flags.StringVar(&opts.user, "user", cfg.LocalUserID, "User ID that owns the workspace")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	// withApp opens the store for the duration of one command
	withApp := func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return run(cmd, a, args)
		}
	}

	rootCmd.AddCommand(
		newWorkspacesCmd(withApp),
		newTreeCmd(withApp),
		newLsCmd(withApp),
		newMkdirCmd(withApp),
		newTouchCmd(withApp),
		newMvCmd(withApp),
		newRmCmd(withApp),
		newSeedCmd(withApp, cfg.Environment),
	)
	return rootCmd
}

type appRunner func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error

func newWorkspacesCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "workspaces",
		Short: "List workspaces of the user",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			workspaces, err := a.workspaces.ListWorkspaces(cmd.Context(), a.userID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCREATED")
			for _, ws := range workspaces {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", ws.ID, ws.Name, ws.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		}),
	}
}

func newTreeCmd(withApp appRunner) *cobra.Command {
	var mode string
	var files, asJSON bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the directory tree of the workspace",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			tree, err := a.trees.GetDirectoryTree(cmd.Context(), a.userID, a.workspace.ID, fsSvc.TreeOptions{
				Mode:         mode,
				IncludeFiles: files,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tree)
			}

			printForest(out, tree.Roots)
			printUnplaced(out, "orphans", tree.Orphans)
			printUnplaced(out, "cycles", tree.Cycles)
			printUnplaced(out, "duplicates", tree.Duplicates)
			return nil
		}),
	}
	cmd.Flags().StringVar(&mode, "mode", "", "lenient or strict (default from TREE_MODE)")
	cmd.Flags().BoolVar(&files, "files", false, "Include files, not only directories")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")
	return cmd
}

func newLsCmd(withApp appRunner) *cobra.Command {
	var name, entryType string

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List one directory level",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			parentID, err := a.resolveDir(cmd.Context(), dir)
			if err != nil {
				return err
			}

			entries, err := a.files.ListFiles(cmd.Context(), &fsSvc.ListFilesRequest{
				UserID:      a.userID,
				WorkspaceID: a.workspace.ID,
				ParentID:    parentID,
				Name:        name,
				Type:        entryType,
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				label := e.Name
				if e.IsDir() {
					label += "/"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", label, e.Size, e.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Only entries whose name contains this text")
	cmd.Flags().StringVar(&entryType, "type", "", "Only entries of this type (dir or file)")
	return cmd
}

func newMkdirCmd(withApp appRunner) *cobra.Command {
	var parents bool

	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			parts := splitPath(args[0])
			if len(parts) == 0 {
				return fmt.Errorf("mkdir: missing directory name")
			}

			parentID := models.RootParentID
			for i, part := range parts {
				last := i == len(parts)-1
				existing, err := a.child(ctx, parentID, part)
				if err != nil {
					return err
				}
				if existing != nil {
					if !existing.IsDir() {
						return fmt.Errorf("mkdir: %s: not a directory", part)
					}
					if last && !parents {
						return fmt.Errorf("mkdir: %s: already exists", args[0])
					}
					parentID = existing.ID
					continue
				}
				if !last && !parents {
					return fmt.Errorf("mkdir: %s: no such directory (use -p)", part)
				}

				dir, err := a.files.CreateFile(ctx, &fsSvc.CreateFileRequest{
					UserID:      a.userID,
					WorkspaceID: a.workspace.ID,
					ParentID:    parentID,
					Type:        models.TypeDir,
					Name:        part,
				})
				if err != nil {
					return err
				}
				parentID = dir.ID
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "Create missing parent directories")
	return cmd
}

func newTouchCmd(withApp appRunner) *cobra.Command {
	var size int64

	cmd := &cobra.Command{
		Use:   "touch <path>",
		Short: "Create a file entry",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			dir, base := parentAndBase(args[0])
			parentID, err := a.resolveDir(cmd.Context(), dir)
			if err != nil {
				return err
			}

			file, err := a.files.CreateFile(cmd.Context(), &fsSvc.CreateFileRequest{
				UserID:      a.userID,
				WorkspaceID: a.workspace.ID,
				ParentID:    parentID,
				Type:        models.TypeFile,
				Name:        base,
				Size:        size,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), file.Path)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&size, "size", 0, "Recorded size in bytes")
	return cmd
}

func newMvCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <source> <destination>",
		Short: "Move or rename an entry",
		Long:  "Moves source into destination when destination is an existing directory; otherwise moves and renames it to destination.",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			src, err := a.resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if src == nil {
				return fmt.Errorf("mv: cannot move the workspace root")
			}

			var req fsSvc.UpdateFileRequest
			dst, err := a.resolve(ctx, args[1])
			switch {
			case err == nil && (dst == nil || dst.IsDir()):
				parentID := models.RootParentID
				if dst != nil {
					parentID = dst.ID
				}
				req.ParentID = fsSvc.OptionalParentID{Present: true, Value: &parentID}
			case err == nil:
				return fmt.Errorf("mv: %s: already exists", args[1])
			case !errors.Is(err, domain.ErrNotFound):
				return err
			default:
				dir, base := parentAndBase(args[1])
				parentID, err := a.resolveDir(ctx, dir)
				if err != nil {
					return err
				}
				req.ParentID = fsSvc.OptionalParentID{Present: true, Value: &parentID}
				req.Name = &base
			}

			moved, err := a.files.UpdateFile(ctx, a.userID, src.ID, &req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), moved.Path)
			return nil
		}),
	}
}

func newRmCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete an entry and everything beneath it",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			entry, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("rm: refusing to delete the workspace root")
			}
			return a.files.DeleteFile(cmd.Context(), a.userID, entry.ID)
		}),
	}
}

func newSeedCmd(withApp appRunner, environment string) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Create the entries described by a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if replace && environment == "prod" {
				return fmt.Errorf("seed --replace is blocked in the prod environment")
			}

			doc, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}

			seeder := seed.NewSeeder(a.workspaces, a.files, a.logger)
			out := cmd.OutOrStdout()
			if replace {
				removed, err := seeder.Clear(cmd.Context(), a.userID, doc.Workspace)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "workspace %s: cleared %d top-level entries\n", doc.Workspace, removed)
			}

			result, err := seeder.Apply(cmd.Context(), a.userID, doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "workspace %s: %d created, %d skipped\n", doc.Workspace, result.Created, result.Skipped)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Delete everything in the workspace before seeding")
	return cmd
}
