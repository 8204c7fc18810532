package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/word2video/internal/config"
	"github.com/thywilljoshua/word2video/internal/convert"
	"github.com/thywilljoshua/word2video/internal/storage"
	"github.com/thywilljoshua/word2video/internal/video"
)

func allCmd(a *app) *cobra.Command {
	var input string
	var template string
	var maxLeaves int
	var pptxPath, audioDir, provider, lang, speed, refAudio, refText string
	var out, subtitle, resolution string
	var fps int
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run word2ppt, tts and ppt2video in sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			override(cmd, "input", &a.cfg.Paths.Input, input)
			override(cmd, "template", &a.cfg.Paths.Template, template)
			override(cmd, "max-leaf-count", &a.cfg.Mapping.MaxLeafCount, maxLeaves)
			bindSpeechFlags(cmd, a, pptxPath, audioDir, provider, lang, speed, refAudio, refText)
			bindVideoFlags(cmd, a, out, subtitle, resolution, fps, duration)

			if err := a.validate(config.StageWord2PPT, config.StageTTS, config.StagePPT2Video); err != nil {
				return err
			}
			ctx := cmd.Context()
			deck, err := a.word2ppt(ctx)
			if err != nil {
				return err
			}
			narr, err := a.tts(ctx)
			if err != nil {
				return err
			}
			vid, err := a.ppt2video(ctx)
			if err != nil {
				return err
			}
			uploaded, err := a.publish(ctx, deck.Output, vid.Video, vid.Subtitle)
			if err != nil {
				return err
			}
			printJSON(cmd, struct {
				Deck      convert.Result   `json:"word2ppt"`
				Narration ttsResult        `json:"tts"`
				Video     video.Result     `json:"ppt2video"`
				Uploaded  []storage.Object `json:"uploaded,omitempty"`
			}{deck, narr, vid, uploaded})
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "input.docx", "Word document to convert")
	cmd.Flags().StringVarP(&template, "template", "t", "", "presentation template (.pptx)")
	cmd.Flags().IntVar(&maxLeaves, "max-leaf-count", convert.DefaultMaxLeafCount, "leaf headings per slide before a section is split")
	addSpeechFlags(cmd, &pptxPath, &audioDir, &provider, &lang, &speed, &refAudio, &refText)
	addVideoFlags(cmd, &out, &subtitle, &resolution, &fps, &duration)
	return cmd
}
