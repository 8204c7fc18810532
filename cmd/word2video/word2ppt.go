package main

import (
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/word2video/internal/convert"
	"github.com/thywilljoshua/word2video/internal/storage"
)

func word2pptCmd(a *app) *cobra.Command {
	var input string
	var template string
	var output string
	var maxLeaves int

	cmd := &cobra.Command{
		Use:   "word2ppt",
		Short: "Map a Word document onto a presentation template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			override(cmd, "input", &a.cfg.Paths.Input, input)
			override(cmd, "template", &a.cfg.Paths.Template, template)
			override(cmd, "output", &a.cfg.Paths.PPTX, output)
			override(cmd, "max-leaf-count", &a.cfg.Mapping.MaxLeafCount, maxLeaves)

			res, err := a.word2ppt(cmd.Context())
			if err != nil {
				return err
			}
			uploaded, err := a.publish(cmd.Context(), res.Output)
			if err != nil {
				return err
			}
			printJSON(cmd, struct {
				convert.Result
				Uploaded []storage.Object `json:"uploaded,omitempty"`
			}{res, uploaded})
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "input.docx", "Word document to convert")
	cmd.Flags().StringVarP(&template, "template", "t", "", "presentation template (.pptx)")
	cmd.Flags().StringVarP(&output, "output", "o", "output.pptx", "presentation to write")
	cmd.Flags().IntVar(&maxLeaves, "max-leaf-count", convert.DefaultMaxLeafCount, "leaf headings per slide before a section is split")
	return cmd
}
