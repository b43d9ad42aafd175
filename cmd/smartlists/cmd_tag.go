/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/smartlists/internal/db"
	"github.com/friendsincode/smartlists/internal/models"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Inspect My Tag labels",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags and their ids",
	Long:  "List the tags playlist configurations can refer to by name. Category rows are shown for context but never match.",
	RunE:  runTagList,
}

func init() {
	tagCmd.AddCommand(tagListCmd)
	rootCmd.AddCommand(tagCmd)
}

func runTagList(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}

	lib, database, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close(database)

	tags, err := lib.Tags(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, t := range tags {
		if t.Attribute == models.TagAttributeCategory {
			fmt.Fprintf(out, "%s\n", t.Name)
			continue
		}
		fmt.Fprintf(out, "  %-12d %s\n", t.ID, t.Name)
	}
	return nil
}
