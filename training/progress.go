package training

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/tsawler/go-chessnet/layers"
)

// ProgressBar provides PyTorch-style training progress visualization
type ProgressBar struct {
	out         io.Writer
	description string
	total       int
	current     int
	startTime   time.Time
	width       int
	metrics     map[string]float64
}

// NewProgressBar creates a new progress bar
func NewProgressBar(out io.Writer, description string, total int) *ProgressBar {
	return &ProgressBar{
		out:         out,
		description: description,
		total:       total,
		startTime:   time.Now(),
		width:       40,
		metrics:     make(map[string]float64),
	}
}

// Update advances the progress bar
func (pb *ProgressBar) Update(step int, metrics map[string]float64) {
	pb.current = step
	for k, v := range metrics {
		pb.metrics[k] = v
	}
	pb.render()
}

// Finish completes the progress bar
func (pb *ProgressBar) Finish() {
	pb.current = pb.total
	pb.render()
	fmt.Fprintln(pb.out)
}

func (pb *ProgressBar) render() {
	percentage := 1.0
	if pb.total > 0 {
		percentage = min(float64(pb.current)/float64(pb.total), 1)
	}
	filled := int(percentage * float64(pb.width))
	bar := strings.Repeat("█", filled) + strings.Repeat(" ", pb.width-filled)

	elapsed := time.Since(pb.startTime)
	var eta time.Duration
	var rate float64
	if pb.current > 0 {
		rate = float64(pb.current) / elapsed.Seconds()
		eta = time.Duration(float64(elapsed)/percentage) - elapsed
	}

	line := fmt.Sprintf("\r%s: %3.0f%%|%s| %d/%d [%s<%s",
		pb.description, percentage*100, bar, pb.current, pb.total,
		formatDuration(elapsed), formatDuration(eta))
	if rate > 0 {
		line += fmt.Sprintf(", %.2fbatch/s", rate)
	}

	keys := make([]string, 0, len(pb.metrics))
	for k := range pb.metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line += fmt.Sprintf(", %s=%.3f", k, pb.metrics[k])
	}
	fmt.Fprint(pb.out, line+"]")
}

// formatDuration formats duration as MM:SS
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// ModelArchitecturePrinter prints PyTorch-style model architecture
type ModelArchitecturePrinter struct {
	modelName string
}

// NewModelArchitecturePrinter creates a new model architecture printer
func NewModelArchitecturePrinter(modelName string) *ModelArchitecturePrinter {
	return &ModelArchitecturePrinter{
		modelName: modelName,
	}
}

// PrintArchitecture prints the network layer by layer followed by
// parameter totals split into trainable and frozen.
func (p *ModelArchitecturePrinter) PrintArchitecture(w io.Writer, net *layers.Network) {
	spec := net.Spec()
	fmt.Fprintf(w, "Model Architecture:\n")
	fmt.Fprintf(w, "%s(\n", p.modelName)
	for i, layer := range spec.Layers {
		line := formatLayer(layer)
		if trainable := countTrainable(net.LayerParameters(i)); trainable > 0 {
			line += fmt.Sprintf("  <- trainable (%s)", formatParameterCount(trainable))
		}
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintf(w, ")\n\n")

	total, trainable := net.NumParameters(), net.NumTrainable()
	fmt.Fprintf(w, "Total parameters: %s\n", formatParameterCount(total))
	fmt.Fprintf(w, "Trainable parameters: %s\n", formatParameterCount(trainable))
	fmt.Fprintf(w, "Non-trainable parameters: %s\n", formatParameterCount(total-trainable))
	fmt.Fprintf(w, "Input size (MB): %.3f\n", calculateInputSize(spec.InputShape))
	fmt.Fprintf(w, "Params size (MB): %.3f\n\n", float64(total*4)/1024/1024)
}

func countTrainable(params []*layers.Parameter) int64 {
	var n int64
	for _, p := range params {
		if p.Trainable {
			n += int64(p.NumElements())
		}
	}
	return n
}

// formatLayer formats a single layer for display
func formatLayer(layer layers.LayerSpec) string {
	switch layer.Type {
	case layers.Conv2D:
		k := layer.IntParam("kernel_size", 0)
		s := layer.IntParam("stride", 1)
		pad := layer.IntParam("padding", 0)
		return fmt.Sprintf("(%s): Conv2d(%d, %d, kernel_size=(%d, %d), stride=(%d, %d), padding=(%d, %d))",
			layer.Name, layer.IntParam("input_channels", 0), layer.IntParam("output_channels", 0), k, k, s, s, pad, pad)
	case layers.Dense:
		return fmt.Sprintf("(%s): Linear(in_features=%d, out_features=%d, bias=%t)",
			layer.Name, layer.IntParam("input_size", 0), layer.IntParam("output_size", 0), layer.BoolParam("use_bias", true))
	case layers.ReLU:
		return fmt.Sprintf("(%s): ReLU(inplace=True)", layer.Name)
	case layers.MaxPool2D:
		return fmt.Sprintf("(%s): MaxPool2d(kernel_size=%d, stride=%d, padding=%d)",
			layer.Name, layer.IntParam("kernel_size", 0), layer.IntParam("stride", 0), layer.IntParam("padding", 0))
	case layers.AdaptiveAvgPool2D:
		return fmt.Sprintf("(%s): AdaptiveAvgPool2d(output_size=(%d, %d))",
			layer.Name, layer.IntParam("output_height", 0), layer.IntParam("output_width", 0))
	case layers.Dropout:
		return fmt.Sprintf("(%s): Dropout(p=%g)", layer.Name, layer.FloatParam("rate", 0))
	case layers.BatchNorm:
		return fmt.Sprintf("(%s): BatchNorm2d(%d, eps=%g, momentum=%g)",
			layer.Name, layer.IntParam("num_features", 0), layer.FloatParam("eps", 1e-5), layer.FloatParam("momentum", 0.1))
	case layers.BasicBlock:
		return fmt.Sprintf("(%s): BasicBlock(out_channels=%d, stride=%d)",
			layer.Name, layer.IntParam("output_channels", 0), layer.IntParam("stride", 1))
	default:
		return fmt.Sprintf("(%s): %s()", layer.Name, layer.Type.String())
	}
}

// formatParameterCount formats parameter count with K/M suffixes
func formatParameterCount(count int64) string {
	if count >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(count)/1000000.0)
	} else if count >= 1000 {
		return fmt.Sprintf("%.1fK", float64(count)/1000.0)
	}
	return fmt.Sprintf("%d", count)
}

// calculateInputSize estimates input tensor size in MB
func calculateInputSize(inputShape []int) float64 {
	size := 1
	for _, dim := range inputShape {
		size *= dim
	}
	return float64(size*4) / 1024 / 1024
}
