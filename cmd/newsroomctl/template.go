package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/newsroom-console/internal/service"
)

func templateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the article import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, payload, err := service.NewImportService(service.ImportConfig{}, nil, nil).Template()
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			}
			if err := os.WriteFile(out, payload, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "template written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout (default "+service.TemplateFileName+")")
	return cmd
}
