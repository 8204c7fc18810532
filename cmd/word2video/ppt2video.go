package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/word2video/internal/storage"
	"github.com/thywilljoshua/word2video/internal/video"
)

func ppt2videoCmd(a *app) *cobra.Command {
	var pptxPath string
	var audioDir string
	var out string
	var subtitle string
	var resolution string
	var fps int
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "ppt2video",
		Short: "Render the presentation and its narration into a video with subtitles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			override(cmd, "pptx", &a.cfg.Paths.PPTX, pptxPath)
			override(cmd, "audio-dir", &a.cfg.Paths.AudioDir, audioDir)
			bindVideoFlags(cmd, a, out, subtitle, resolution, fps, duration)

			res, err := a.ppt2video(cmd.Context())
			if err != nil {
				return err
			}
			uploaded, err := a.publish(cmd.Context(), res.Video, res.Subtitle)
			if err != nil {
				return err
			}
			printJSON(cmd, struct {
				video.Result
				Uploaded []storage.Object `json:"uploaded,omitempty"`
			}{res, uploaded})
			return nil
		},
	}
	cmd.Flags().StringVar(&pptxPath, "pptx", "output.pptx", "presentation to render")
	cmd.Flags().StringVar(&audioDir, "audio-dir", "audio", "directory holding fragment text and audio")
	addVideoFlags(cmd, &out, &subtitle, &resolution, &fps, &duration)
	return cmd
}

func addVideoFlags(cmd *cobra.Command, out, subtitle, resolution *string, fps *int, duration *time.Duration) {
	cmd.Flags().StringVarP(out, "video", "o", "output.mp4", "video to write")
	cmd.Flags().StringVar(subtitle, "subtitle", "", "subtitle file (default: video path with .srt)")
	cmd.Flags().StringVar(resolution, "resolution", "1920x1080", "video size WIDTHxHEIGHT")
	cmd.Flags().IntVar(fps, "fps", 24, "frames per second")
	cmd.Flags().DurationVar(duration, "default-duration", 5*time.Second, "length of slides without narration")
}

func bindVideoFlags(cmd *cobra.Command, a *app, out, subtitle, resolution string, fps int, duration time.Duration) {
	override(cmd, "video", &a.cfg.Paths.Video, out)
	override(cmd, "subtitle", &a.cfg.Paths.Subtitle, subtitle)
	override(cmd, "resolution", &a.cfg.Video.Resolution, resolution)
	override(cmd, "fps", &a.cfg.Video.FPS, fps)
	override(cmd, "default-duration", &a.cfg.Video.DefaultDuration, duration)
}
