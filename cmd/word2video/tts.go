package main

import (
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/word2video/internal/storage"
)

func ttsCmd(a *app) *cobra.Command {
	var pptxPath string
	var audioDir string
	var provider string
	var lang string
	var speed string
	var refAudio string
	var refText string

	cmd := &cobra.Command{
		Use:   "tts",
		Short: "Export speaker notes as fragments and synthesize their audio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindSpeechFlags(cmd, a, pptxPath, audioDir, provider, lang, speed, refAudio, refText)

			res, err := a.tts(cmd.Context())
			if err != nil {
				return err
			}
			uploaded, err := a.publish(cmd.Context())
			if err != nil {
				return err
			}
			printJSON(cmd, struct {
				ttsResult
				Uploaded []storage.Object `json:"uploaded,omitempty"`
			}{res, uploaded})
			return nil
		},
	}
	addSpeechFlags(cmd, &pptxPath, &audioDir, &provider, &lang, &speed, &refAudio, &refText)
	return cmd
}

func addSpeechFlags(cmd *cobra.Command, pptxPath, audioDir, provider, lang, speed, refAudio, refText *string) {
	cmd.Flags().StringVar(pptxPath, "pptx", "output.pptx", "presentation whose notes are narrated")
	cmd.Flags().StringVar(audioDir, "audio-dir", "audio", "directory for fragment text and audio")
	cmd.Flags().StringVar(provider, "provider", "off", "speech provider: off|gemini|openai|command")
	cmd.Flags().StringVar(lang, "lang", "zh-CN", "narration language (BCP-47)")
	cmd.Flags().StringVar(speed, "speed", "normal", "speech speed: slow|normal|fast")
	cmd.Flags().StringVar(refAudio, "ref-audio", "", "reference voice recording")
	cmd.Flags().StringVar(refText, "ref-text", "", "transcript of the reference recording")
}

func bindSpeechFlags(cmd *cobra.Command, a *app, pptxPath, audioDir, provider, lang, speed, refAudio, refText string) {
	override(cmd, "pptx", &a.cfg.Paths.PPTX, pptxPath)
	override(cmd, "audio-dir", &a.cfg.Paths.AudioDir, audioDir)
	override(cmd, "provider", &a.cfg.Speech.Provider, provider)
	override(cmd, "lang", &a.cfg.Speech.Language, lang)
	override(cmd, "speed", &a.cfg.Speech.Speed, speed)
	override(cmd, "ref-audio", &a.cfg.Speech.RefAudio, refAudio)
	override(cmd, "ref-text", &a.cfg.Speech.RefText, refText)
}
