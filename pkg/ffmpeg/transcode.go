package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// Profile is the delivery encoding profile.
type Profile struct {
	MaxEdge      int
	VideoCodec   string
	Preset       string
	CRF          int
	PixelFormat  string
	AudioCodec   string
	AudioBitrate string
	MuxQueueSize int
}

// DefaultProfile produces H.264/AAC MP4 files playable almost everywhere.
var DefaultProfile = Profile{
	MaxEdge:      1920,
	VideoCodec:   "libx264",
	Preset:       "superfast",
	CRF:          26,
	PixelFormat:  "yuv420p",
	AudioCodec:   "aac",
	AudioBitrate: "96k",
	MuxQueueSize: 1024,
}

// VideoFilter fits the frame inside a MaxEdge square without upscaling, pads
// it to even dimensions with the picture centered and forces square pixels.
func (p Profile) VideoFilter() string {
	scale := fmt.Sprintf("scale=w='min(%d,iw)':h='min(%d,ih)':force_original_aspect_ratio=decrease", p.MaxEdge, p.MaxEdge)
	pad := "pad=ceil(iw/2)*2:ceil(ih/2)*2:(ow-iw)/2:(oh-ih)/2"
	return scale + "," + pad + ",setsar=1"
}

// TranscodeArgs builds the ffmpeg arguments that read the concat manifest,
// map the first video stream and any audio, and write target seconds of
// output re-encoded with the profile. A threads value of 0 lets ffmpeg
// choose.
func (p Profile) TranscodeArgs(manifest, output string, target float64, threads int) []string {
	args := make([]string, 0, 48)

	// Input
	args = append(args,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
	)

	// Stream maps, audio is optional
	args = append(args,
		"-map", "0:v:0",
		"-map", "0:a?",
	)

	// Duration cap and container layout
	secs := math.Round(target)
	if !(secs > 0) {
		secs = 0
	}
	args = append(args,
		"-t", strconv.FormatInt(int64(secs), 10),
		"-movflags", "+faststart",
	)

	// Video
	args = append(args,
		"-vf", p.VideoFilter(),
		"-c:v", p.VideoCodec,
		"-preset", p.Preset,
		"-crf", strconv.Itoa(p.CRF),
		"-shortest",
		"-max_muxing_queue_size", strconv.Itoa(p.MuxQueueSize),
		"-threads", strconv.Itoa(threads),
		"-pix_fmt", p.PixelFormat,
	)

	// Audio
	args = append(args,
		"-c:a", p.AudioCodec,
		"-b:a", p.AudioBitrate,
	)

	return append(args, output)
}

// Transcode runs ffmpeg once with args and waits for it to finish.
// It returns the exit code of the process, using 1 when none is available.
// An error is only returned when ffmpeg couldn't be run.
func Transcode(ctx context.Context, r Runner, ffmpeg string, args []string) (int, error) {
	res, err := r.Run(ctx, ffmpeg, args...)
	if err != nil {
		return 1, err
	}
	if res.ExitCode < 0 {
		return 1, nil
	}
	return res.ExitCode, nil
}
