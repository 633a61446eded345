package renderer

import (
	"context"
	"fmt"
	"io"

	"github.com/richinsley/goshaderdemos/frame"
	"github.com/richinsley/goshaderdemos/logger"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// RecordOptions configures an offline recording.
type RecordOptions struct {
	Duration   float64
	FPS        int
	OutputFile string
	FFMPEGPath string
}

// Frame represents a single rendered frame's data, ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

const numBuffers = 3

func encoderArgs(width, height, fps int) (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", width, height),
		"r":       fps,
	}
	// readback is bottom row first
	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
	}
	return
}

// runEncoder is the consumer. It pipes raw frames into ffmpeg.
func runEncoder(opts RecordOptions, width, height int, frames <-chan *Frame, done chan<- error) {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := encoderArgs(width, height, opts.FPS)
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if opts.FFMPEGPath != "" {
		cmd = cmd.SetFfmpegPath(opts.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := cmd.Run()
		// unblock the writer if ffmpeg exits early
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	var writeErr error
	for f := range frames {
		if writeErr != nil {
			continue
		}
		if _, err := pipeWriter.Write(f.Pixels); err != nil {
			writeErr = fmt.Errorf("writing frame %d to ffmpeg: %w", f.PTS, err)
		}
	}
	pipeWriter.Close()
	if err := <-errc; err != nil {
		done <- fmt.Errorf("ffmpeg: %w", err)
		return
	}
	done <- writeErr
}

// Record renders Duration*FPS frames with clock stepped once per frame and
// encodes them to OutputFile.
func (r *Renderer) Record(ctx context.Context, opts RecordOptions, clock *frame.StepClock) error {
	if r.sync == nil {
		return fmt.Errorf("renderer has no page attached")
	}
	if opts.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", opts.FPS)
	}
	width, height := r.target.Size()
	totalFrames := int(opts.Duration * float64(opts.FPS))
	logger.Log.Info("Starting record mode",
		zap.String("output", opts.OutputFile),
		zap.Int("frames", totalFrames),
		zap.Int("width", width),
		zap.Int("height", height))

	frames := make(chan *Frame, numBuffers)
	done := make(chan error, 1)
	go runEncoder(opts, width, height, frames, done)

	var renderErr error
	for i := 0; i < totalFrames; i++ {
		if renderErr = ctx.Err(); renderErr != nil {
			break
		}
		clock.Step()
		if renderErr = r.sync.Frame(); renderErr != nil {
			break
		}
		pixels := make([]byte, width*height*4)
		if renderErr = r.target.ReadPixels(pixels); renderErr != nil {
			break
		}
		if i > 0 && i%opts.FPS == 0 {
			logger.Log.Debug("Recording progress", zap.Int("frame", i), zap.Int("of", totalFrames))
		}
		frames <- &Frame{Pixels: pixels, PTS: int64(i)}
	}
	close(frames)

	encErr := <-done
	if renderErr != nil {
		return renderErr
	}
	if encErr == nil {
		logger.Log.Info("Recording finished", zap.String("output", opts.OutputFile))
	}
	return encErr
}
