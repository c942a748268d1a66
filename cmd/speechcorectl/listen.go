package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/rs/zerolog"

	"speechcore/internal/audio"
	"speechcore/internal/bootstrap"
	"speechcore/internal/config"
	"speechcore/plugins/transcription"
	"speechcore/transcribe"
)

func listenCmd() *cobra.Command {
	var streamURL, inputFormat, inputDevice, ffmpegCmd string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Record from the reference ffmpeg capture and stream it for transcription",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(streamURL, ffmpegCmd, inputFormat, inputDevice)
		},
	}

	cmd.Flags().StringVar(&streamURL, "url", os.Getenv("SPEECHCORE_STREAM_URL"), "streaming transcription endpoint")
	cmd.Flags().StringVar(&ffmpegCmd, "ffmpeg", "ffmpeg", "ffmpeg binary to use for capture")
	cmd.Flags().StringVar(&inputFormat, "input-format", "pulse", "ffmpeg input demuxer")
	cmd.Flags().StringVar(&inputDevice, "input-device", "default", "ffmpeg input device")

	return cmd
}

func runListen(streamURL, ffmpegCmd, inputFormat, inputDevice string) error {
	if streamURL == "" {
		return fmt.Errorf("a streaming URL is required: pass --url or set SPEECHCORE_STREAM_URL")
	}

	cfg := config.DefaultConfig()
	cfg.Stream.URL = streamURL

	rec := audio.NewFFMPEGRecorder(ffmpegCmd, inputFormat, inputDevice)

	sdk := bootstrap.Build(bootstrap.Options{
		Config:        cfg,
		AudioRecorder: rec,
		LogLevel:      zerolog.InfoLevel,
		Listener: transcription.Listener{
			OnStreamConnecting: func() { fmt.Println(styleMuted.Render("connecting...")) },
			OnStreamStarted:    func() { fmt.Println(styleSuccess.Render("stream open")) },
			OnStreamUpdated: func(stream transcribe.TranscribeStream) {
				fmt.Println(styleHeader.Render("transcript:"), stream.State.Text)
			},
			OnStreamCompleted: func(_ transcribe.TranscribeStream, err error) {
				if err != nil {
					fmt.Println(styleError.Render("stream ended with error:"), err)
					return
				}
				fmt.Println(styleMuted.Render("stream closed"))
			},
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	unsubscribe := subscribeStateLog(sdk)
	defer unsubscribe()

	sdk.Core.Start(0)
	fmt.Println(styleMuted.Render("recording... press ctrl-c to stop"))

	<-ctx.Done()
	sdk.Core.Stop(0)
	sdk.Core.Release()
	return nil
}

func subscribeStateLog(sdk *bootstrap.SDK) func() {
	states, cancel := sdk.Core.Model().Subscribe()
	go func() {
		for state := range states {
			fmt.Println(styleMuted.Render("state:"), state)
		}
	}()
	return cancel
}
