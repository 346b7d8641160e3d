package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxo-cms/internal/pipeline"
)

func generateCmd() *cobra.Command {
	var req pipeline.Request

	command := &cobra.Command{
		Use:   "generate",
		Short: "Run the AI auto desk once and save a draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			postID, err := a.services.Desk.Generate(ctx, req, pipeline.NewLogEmitter(a.log))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), postID)
			return nil
		},
	}

	command.Flags().StringVar(&req.ArtistName, "artist", "", "artist name")
	command.Flags().StringVar(&req.SongTitle, "song", "", "song title")
	command.Flags().StringVar(&req.Language, "language", "", "article language (default English)")
	command.Flags().StringVar(&req.CategoryID, "category", "", "category id for the draft")
	command.Flags().StringVar(&req.Concept, "concept", "", "editorial concept, overrides the stored default")
	_ = command.MarkFlagRequired("artist")
	_ = command.MarkFlagRequired("song")

	return command
}
