package renderer

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"runtime"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/richinsley/goocean/options"
)

// numBuffers bounds the frames queued between the renderer and ffmpeg.
const numBuffers = 3

func getArgs(opts *options.RunOptions, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", *opts.Width, *opts.Height),
		"r":       *opts.FPS,
	}

	outputArgs = ffmpeg.KwArgs{"pix_fmt": "yuv420p"}
	hevc := *opts.Codec == "hevc"

	switch goos {
	case "linux":
		log.Println("Using Linux (NVENC) hardware acceleration.")
		if hevc {
			outputArgs["c:v"] = "hevc_nvenc"
		} else {
			outputArgs["c:v"] = "h264_nvenc"
		}
		outputArgs["preset"] = "p2"
	case "darwin":
		log.Println("Using macOS (VideoToolbox) hardware acceleration.")
		if hevc {
			outputArgs["c:v"] = "hevc_videotoolbox"
		} else {
			outputArgs["c:v"] = "h264_videotoolbox"
		}
	default:
		log.Println("Using software encoding pipeline (no hardware acceleration).")
		if hevc {
			outputArgs["c:v"] = "libx265"
		} else {
			outputArgs["c:v"] = "libx264"
		}
	}
	outputArgs["b:v"] = "25M"

	if hevc && filepath.Ext(*opts.OutputFile) == ".mp4" {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// runEncoder is the consumer. It pipes every frame on frameChan to ffmpeg as
// raw RGBA and reports ffmpeg's exit on doneChan.
func runEncoder(opts *options.RunOptions, frameChan <-chan *Frame, doneChan chan<- error) {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := getArgs(opts, runtime.GOOS)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(*opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	if *opts.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(*opts.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// Unblock a writer stuck on a dead ffmpeg.
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	var writeErr error
	for frame := range frameChan {
		if writeErr != nil {
			continue
		}
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			writeErr = fmt.Errorf("writing frame %d to ffmpeg: %w", frame.PTS, err)
			log.Println(writeErr)
		}
	}
	pipeWriter.Close()

	if err := <-errc; err != nil {
		doneChan <- fmt.Errorf("ffmpeg: %w", err)
		return
	}
	doneChan <- writeErr
}
