/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/smartlists/internal/backup"
)

var (
	backupName  string
	backupKeep  int
	backupForce bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage library backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a backup archive",
	Args:  cobra.NoArgs,
	RunE:  runBackupCreate,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup archives, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBackupList,
}

var backupValidateCmd = &cobra.Command{
	Use:   "validate PATH",
	Short: "Check that a backup archive is complete",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupValidate,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore PATH",
	Short: "Restore the library from a backup archive",
	Long: `Restore the backed up directories from an archive.

A safety backup of the current state is taken first. When PATH does not
exist locally and off-site storage is configured, the archive is fetched
from there.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupRestore,
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete PATH",
	Short: "Delete a backup archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupDelete,
}

var backupCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete all but the newest backups",
	Args:  cobra.NoArgs,
	RunE:  runBackupCleanup,
}

func init() {
	backupCreateCmd.Flags().StringVar(&backupName, "name", "", "Archive label (default "+backup.DefaultLabel+")")
	backupRestoreCmd.Flags().BoolVarP(&backupForce, "force", "f", false, "Skip confirmation prompt")
	backupCleanupCmd.Flags().IntVar(&backupKeep, "keep", 0, "Number of backups to keep (default max_backups)")

	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupValidateCmd, backupRestoreCmd, backupDeleteCmd, backupCleanupCmd)
	rootCmd.AddCommand(backupCmd)
}

func backupManager(cmd *cobra.Command) (*backup.Manager, error) {
	if err := loadConfig(cmd); err != nil {
		return nil, err
	}
	return newBackupManager(cmd.Context())
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	manager, err := backupManager(cmd)
	if err != nil {
		return err
	}
	path, err := manager.Create(cmd.Context(), backupName)
	pushMetrics(cmd.Context(), "smartlists_backup")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	manager, err := backupManager(cmd)
	if err != nil {
		return err
	}
	infos, err := manager.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No backups found.")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(out, "%s  %8.1f MB  %s\n",
			info.Created.Format("2006-01-02 15:04:05"),
			float64(info.Size)/(1024*1024),
			info.Path)
	}
	return nil
}

func runBackupValidate(cmd *cobra.Command, args []string) error {
	manager, err := backupManager(cmd)
	if err != nil {
		return err
	}
	if err := manager.Validate(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	manager, err := backupManager(cmd)
	if err != nil {
		return err
	}

	if !backupForce {
		fmt.Printf("Restoring %s replaces the current library files.\n", args[0])
		fmt.Print("Type 'yes' to confirm restore: ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(strings.ToLower(response)) != "yes" {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	if err := manager.Restore(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
	return nil
}

func runBackupDelete(cmd *cobra.Command, args []string) error {
	manager, err := backupManager(cmd)
	if err != nil {
		return err
	}
	if err := manager.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func runBackupCleanup(cmd *cobra.Command, args []string) error {
	manager, err := backupManager(cmd)
	if err != nil {
		return err
	}
	keep := backupKeep
	if keep <= 0 {
		keep = cfg.MaxBackups
	}
	removed, err := manager.Cleanup(cmd.Context(), keep)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, path := range removed {
		fmt.Fprintf(out, "Deleted %s\n", path)
	}
	fmt.Fprintf(out, "%d backups removed, %d kept at most\n", len(removed), keep)
	return nil
}
