package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"discforge/internal/media"
	"discforge/internal/probe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <input>",
		Short: "Analyze a media file and list its streams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			in := media.NewInput(args[0])
			prober := probe.New(probe.Options{
				FFprobe:           cfg.Tools.FFprobe,
				DurationSeconds:   cfg.Probe.DurationSeconds,
				FastDivisor:       cfg.Probe.FastDivisor,
				OpticalMultiplier: cfg.Probe.OpticalTimeoutMultiplier,
			}, ctx.loggerValue())
			if err := prober.Probe(cmd.Context(), in, false); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if in.ContainerFormat != "" {
				fmt.Fprintf(out, "Container: %s\n", in.ContainerFormat)
			}
			if duration := in.DurationSeconds(); duration > 0 {
				fmt.Fprintf(out, "Duration:  %s\n", formatDuration(duration))
			}
			fmt.Fprintf(out, "Transport stream: %s\n", yesNo(in.TransportStream))
			fmt.Fprintln(out, renderStreamTable(in))
			return nil
		},
	}
}

func renderStreamTable(in *media.Input) string {
	headers := []string{"#", "Type", "Codec", "Details", "Language", "Flags"}
	rows := make([][]string, 0, len(in.Streams))
	for i, stream := range in.Streams {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			streamTypeName(stream.Type),
			stream.CodecName,
			streamDetails(stream),
			stream.Language(),
			streamFlags(stream),
		})
	}
	return renderTable(headers, rows, 1)
}

func streamTypeName(t media.StreamType) string {
	switch t {
	case media.StreamVideo:
		return "video"
	case media.StreamAudio:
		return "audio"
	case media.StreamSubtitle:
		return "subtitle"
	default:
		return "other"
	}
}

func streamDetails(stream *media.Stream) string {
	switch stream.Type {
	case media.StreamVideo:
		details := fmt.Sprintf("%dx%d", stream.Width, stream.Height)
		if stream.FrameRate > 0 {
			details += fmt.Sprintf(" @ %.3g fps", stream.FrameRate)
		}
		if dar := stream.EffectiveDAR(); dar > 0 {
			details += fmt.Sprintf(", DAR %.2f", dar)
		}
		if stream.Rotation() != 0 {
			details += fmt.Sprintf(", rotated %d°", stream.Rotation())
		}
		return details
	case media.StreamAudio:
		var parts []string
		if stream.ChannelCount > 0 {
			parts = append(parts, fmt.Sprintf("%d ch", stream.ChannelCount))
		}
		if stream.SamplingRate > 0 {
			parts = append(parts, fmt.Sprintf("%d Hz", stream.SamplingRate))
		}
		return strings.Join(parts, ", ")
	case media.StreamSubtitle:
		return stream.Kind.String()
	default:
		return ""
	}
}

func streamFlags(stream *media.Stream) string {
	var flags []string
	if stream.Forced {
		flags = append(flags, "forced")
	}
	if stream.Impaired {
		flags = append(flags, "impaired")
	}
	if stream.Commentary {
		flags = append(flags, "commentary")
	}
	if stream.Original {
		flags = append(flags, "original")
	}
	if stream.Dubbed {
		flags = append(flags, "dubbed")
	}
	return strings.Join(flags, " ")
}

func formatDuration(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}
